package cmd

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/chatview/internal/site"
	"github.com/ziadkadry99/chatview/internal/transcript"
	"github.com/ziadkadry99/chatview/internal/walker"
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render a single transcript",
	Long: `Renders one transcript file to HTML. By default only the chat
container is written; --page writes a full page, and with --output also
places its stylesheet and script next to it. --in-place renders an HTML
export into its own document, keeping the rest of the page.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().Bool("page", false, "write a full HTML page instead of a fragment")
	renderCmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")
	renderCmd.Flags().String("title", "", "override the page title")
	renderCmd.Flags().Bool("collapsed", false, "start every section collapsed")
	renderCmd.Flags().Bool("in-place", false, "render an HTML export into its own document")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := args[0]
	format := walker.DetectFormat(path)
	if format == walker.FormatUnknown {
		return fmt.Errorf("%s: unsupported file type (want .md, .txt, .html)", path)
	}
	collapsed, _ := cmd.Flags().GetBool("collapsed")
	collapsed = cfg.Collapsed || collapsed
	page, _ := cmd.Flags().GetBool("page")
	output, _ := cmd.Flags().GetString("output")

	if inPlace, _ := cmd.Flags().GetBool("in-place"); inPlace {
		if format != walker.FormatHTML {
			return fmt.Errorf("%s: --in-place needs an HTML export", path)
		}
		if page {
			return fmt.Errorf("--in-place and --page cannot be combined")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading transcript: %w", err)
		}
		doc, tr, err := site.RenderExport(cfg.Pipeline(), data, collapsed)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", path, err)
		}
		return writeRendered(output, []byte(doc+"\n"), tr)
	}

	src, err := site.LoadSource(path, filepath.ToSlash(filepath.Base(path)), format)
	if err != nil {
		return fmt.Errorf("reading transcript: %w", err)
	}
	if title, _ := cmd.Flags().GetString("title"); title != "" {
		src.Title = title
	}

	content, tr, err := site.RenderChat(cfg.Pipeline(), src, collapsed)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if page {
		err = site.RenderChatPage(&buf, &site.Page{
			SiteTitle:   cfg.Title,
			Title:       src.Title,
			Highlight:   cfg.HighlightStyle() != "",
			SourcePath:  src.RelPath,
			Content:     template.HTML(content),
			Stats:       tr.Stats(),
			Diagnostics: tr.Diagnostics,
		})
		if err != nil {
			return fmt.Errorf("rendering page: %w", err)
		}
	} else {
		buf.WriteString(content)
		buf.WriteByte('\n')
	}

	if err := writeRendered(output, buf.Bytes(), tr); err != nil || output == "" {
		return err
	}
	if page {
		assets, err := site.Assets(cfg.HighlightStyle())
		if err != nil {
			return err
		}
		for name, data := range assets {
			if err := os.WriteFile(filepath.Join(filepath.Dir(output), name), data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", name, err)
			}
		}
	}
	return nil
}

// writeRendered writes data to output, or to stdout when output is empty.
func writeRendered(output string, data []byte, tr *transcript.Transcript) error {
	if output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	st := tr.Stats()
	fmt.Fprintf(os.Stderr, "Wrote %s (%d sections, %d messages)\n", output, st.Sections, st.Messages)
	return nil
}
