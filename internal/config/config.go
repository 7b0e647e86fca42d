package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/chatview/internal/dom"
	"github.com/ziadkadry99/chatview/internal/highlight"
	"github.com/ziadkadry99/chatview/internal/markup"
	"github.com/ziadkadry99/chatview/internal/walker"
)

// EnvPrefix is the prefix of environment overrides, e.g. CHATVIEW_OUTPUT_DIR.
const EnvPrefix = "CHATVIEW_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (CHATVIEW_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: CHATVIEW_OUTPUT_DIR -> output_dir,
	// CHATVIEW_SERVER__PORT -> server.port.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.TranscriptsDir == "" {
		return fmt.Errorf("transcripts_dir is required")
	}

	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	if c.Highlight.Enabled && c.Highlight.Style != "" {
		if !highlight.Known(c.Highlight.Style) {
			return fmt.Errorf("unknown highlight.style %q", c.Highlight.Style)
		}
	}

	if err := walker.ValidatePatterns(c.Include); err != nil {
		return fmt.Errorf("include: %w", err)
	}
	if err := walker.ValidatePatterns(c.Exclude); err != nil {
		return fmt.Errorf("exclude: %w", err)
	}

	for _, tag := range c.BlockTags {
		if strings.ContainsAny(tag, " \t\n") {
			return fmt.Errorf("invalid block tag %q", tag)
		}
	}

	return nil
}

// RendererOptions converts the markup settings into renderer options.
func (c *Config) RendererOptions() []markup.Option {
	return []markup.Option{
		markup.WithEscapeHTML(c.EscapeHTML),
		markup.WithBlockPrefixes(c.BlockTags...),
	}
}

// HighlightStyle returns the chroma style in use, or "" when highlighting
// is off.
func (c *Config) HighlightStyle() string {
	if !c.Highlight.Enabled {
		return ""
	}
	if c.Highlight.Style == "" {
		return "github"
	}
	return c.Highlight.Style
}

// Pipeline builds a rendering pipeline from the configuration. Pipelines
// are cheap; callers create one per request or run.
func (c *Config) Pipeline() *dom.Pipeline {
	p := &dom.Pipeline{Renderer: markup.NewRenderer(c.RendererOptions()...)}
	if style := c.HighlightStyle(); style != "" {
		p.Highlighter = highlight.New(style)
	}
	return p
}
