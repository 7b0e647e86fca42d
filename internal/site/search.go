package site

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/ziadkadry99/chatview/internal/transcript"
)

// maxSearchContent bounds the text stored per transcript in the index.
const maxSearchContent = 2000

// SearchEntry represents a single searchable transcript.
type SearchEntry struct {
	Source  string `json:"source"` // transcript path relative to the source dir
	Path    string `json:"path"`   // generated page path
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Content string `json:"content"`
}

// BuildSearchEntry indexes one parsed transcript. The summary is the first
// user message; the content is every message, flattened and truncated.
func BuildSearchEntry(relPath, title string, tr *transcript.Transcript) SearchEntry {
	entry := SearchEntry{
		Source:  relPath,
		Path:    PagePath(relPath),
		Title:   title,
		Summary: Preview(tr, 200),
	}

	var b strings.Builder
	for _, h := range tr.Headers() {
		b.WriteString(h.Text)
		b.WriteByte(' ')
	}
	for _, s := range tr.Sections() {
		for _, m := range s.Messages {
			if b.Len() >= maxSearchContent {
				break
			}
			b.WriteString(strings.Join(strings.Fields(m.Content), " "))
			b.WriteByte(' ')
		}
	}
	content := strings.TrimSpace(b.String())
	if len(content) > maxSearchContent {
		content = strings.ToValidUTF8(content[:maxSearchContent], "")
	}
	entry.Content = content

	if entry.Title == "" {
		entry.Title = relPath
	}
	return entry
}

// WriteSearchIndex writes the search index as JSON to the given path.
func WriteSearchIndex(entries []SearchEntry, outputPath string) error {
	if entries == nil {
		entries = []SearchEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}
