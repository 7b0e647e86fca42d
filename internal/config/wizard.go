package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
)

// DefaultConfigPath is where `chatview init` writes its result.
const DefaultConfigPath = ".chatview.yml"

// candidateDirs are checked, in order, when guessing the transcripts directory.
var candidateDirs = []string{"chats", "transcripts", "conversations", "docs"}

// detectTranscriptsDir returns the first candidate directory that exists.
func detectTranscriptsDir() string {
	for _, dir := range candidateDirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return "chats"
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to chatview! Let's configure your chat site.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Site title.
	titleDefault := cfg.Title
	if wd, err := os.Getwd(); err == nil {
		titleDefault = filepath.Base(wd)
	}
	titlePrompt := promptui.Prompt{
		Label:   "Site title",
		Default: titleDefault,
	}
	title, err := titlePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("site title: %w", err)
	}
	cfg.Title = title

	// 2. Transcripts directory.
	transcriptsPrompt := promptui.Prompt{
		Label:   "Directory containing chat transcripts",
		Default: detectTranscriptsDir(),
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("directory is required")
			}
			return nil
		},
	}
	transcriptsDir, err := transcriptsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("transcripts dir: %w", err)
	}
	cfg.TranscriptsDir = transcriptsDir

	// 3. Output directory.
	outputPrompt := promptui.Prompt{
		Label:   "Output directory for the generated site",
		Default: cfg.OutputDir,
	}
	outputDir, err := outputPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}
	cfg.OutputDir = outputDir

	// 4. Highlighting.
	stylePrompt := promptui.Select{
		Label: "Code highlighting style",
		Items: []string{"github", "monokai", "dracula", "solarized-light", "none"},
	}
	_, style, err := stylePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("highlight style: %w", err)
	}
	if style == "none" {
		cfg.Highlight.Enabled = false
	} else {
		cfg.Highlight.Style = style
	}

	// 5. Untrusted input.
	escapePrompt := promptui.Prompt{
		Label:     "Escape raw HTML inside messages (recommended for untrusted transcripts)",
		IsConfirm: true,
	}
	if _, err := escapePrompt.Run(); err == nil {
		cfg.EscapeHTML = true
	} else if err != promptui.ErrAbort {
		return nil, fmt.Errorf("escape html: %w", err)
	}

	// 6. Extra exclude patterns.
	excludePrompt := promptui.Prompt{
		Label:   "Extra exclude patterns (comma-separated, leave blank for defaults)",
		Default: "",
	}
	excludeStr, err := excludePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	if excludeStr != "" {
		cfg.Exclude = append(cfg.Exclude, splitAndTrim(excludeStr)...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
