package config

// Config is the top-level chatview configuration, corresponding to .chatview.yml.
type Config struct {
	Title          string          `yaml:"title" koanf:"title"`
	TranscriptsDir string          `yaml:"transcripts_dir" koanf:"transcripts_dir"`
	OutputDir      string          `yaml:"output_dir" koanf:"output_dir"`
	Include        []string        `yaml:"include" koanf:"include"`
	Exclude        []string        `yaml:"exclude" koanf:"exclude"`
	EscapeHTML     bool            `yaml:"escape_html" koanf:"escape_html"`
	BlockTags      []string        `yaml:"block_tags" koanf:"block_tags"`
	Collapsed      bool            `yaml:"collapsed" koanf:"collapsed"`
	Highlight      HighlightConfig `yaml:"highlight" koanf:"highlight"`
	Server         ServerConfig    `yaml:"server" koanf:"server"`
	Database       string          `yaml:"database" koanf:"database"`
}

// HighlightConfig controls server-side syntax highlighting of code blocks.
type HighlightConfig struct {
	Enabled bool   `yaml:"enabled" koanf:"enabled"`
	Style   string `yaml:"style" koanf:"style"`
}

// ServerConfig holds settings for `chatview server`.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	LiveReload      bool `yaml:"live_reload" koanf:"live_reload"` // reload open pages when transcripts change
}
