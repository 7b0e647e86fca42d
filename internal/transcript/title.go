package transcript

import (
	"path/filepath"
	"strings"
)

// ExtractTitle pulls the first "# " heading from src, falling back to the
// file name of relPath without its extension.
func ExtractTitle(src, relPath string) string {
	for line := range strings.SplitSeq(src, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	if relPath == "" {
		return ""
	}
	base := filepath.Base(relPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
