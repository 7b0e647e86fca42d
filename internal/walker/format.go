package walker

import (
	"path/filepath"
	"strings"
)

// Format is the container format of a transcript file.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatUnknown  Format = "unknown"
)

var extensionToFormat = map[string]Format{
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".txt":      FormatMarkdown,
	".html":     FormatHTML,
	".htm":      FormatHTML,
}

// DetectFormat returns the transcript format for a filename based on its
// extension.
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	if f, ok := extensionToFormat[ext]; ok {
		return f
	}
	return FormatUnknown
}
