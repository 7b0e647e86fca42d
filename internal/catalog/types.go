package catalog

import (
	"errors"
	"time"

	"github.com/ziadkadry99/chatview/internal/transcript"
)

// ErrNotFound is returned when no record exists for a path.
var ErrNotFound = errors.New("catalog: transcript not found")

// Record is the cached state of one rendered transcript.
type Record struct {
	ID           string                  `json:"id"`
	Path         string                  `json:"path"`
	Title        string                  `json:"title"`
	Format       string                  `json:"format"`
	ContentHash  string                  `json:"content_hash"`
	Options      string                  `json:"options"`
	Stats        transcript.Stats        `json:"stats"`
	Diagnostics  []transcript.Diagnostic `json:"diagnostics"`
	RenderedHTML string                  `json:"-"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// Fresh reports whether the record was rendered from content with the given
// hash under the given renderer options.
func (r *Record) Fresh(contentHash, options string) bool {
	return r != nil && r.ContentHash == contentHash && r.Options == options
}

// Build summarizes one static-site generation run.
type Build struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	OutputDir string    `json:"output_dir"`
	Rendered  int       `json:"rendered"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
}
