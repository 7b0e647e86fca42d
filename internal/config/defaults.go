package config

import "slices"

// DefaultInclude matches the transcript formats chatview understands.
var DefaultInclude = []string{"**/*.md", "**/*.html", "**/*.htm"}

// DefaultExcludes are glob patterns skipped when collecting transcripts.
var DefaultExcludes = []string{
	".git/**",
	"node_modules/**",
	".chatview/**",
	"**/README.md",
	"**/index.html",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Title:          "Chats",
		TranscriptsDir: "chats",
		OutputDir:      "site",
		Include:        slices.Clone(DefaultInclude),
		Exclude:        slices.Clone(DefaultExcludes),
		Highlight: HighlightConfig{
			Enabled: true,
			Style:   "github",
		},
		Server: ServerConfig{
			Port:       8080,
			LiveReload: true,
		},
		Database: ".chatview/catalog.db",
	}
}
