package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/chatview/internal/catalog"
	"github.com/ziadkadry99/chatview/internal/progress"
	"github.com/ziadkadry99/chatview/internal/site"
)

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Generate a static site from the transcripts directory",
	Long: `Renders every transcript under transcripts_dir into a self-contained
static HTML site with a sidebar, search, and per-directory index pages.
Unchanged transcripts are reused from the catalog.`,
	RunE: runSite,
}

func init() {
	siteCmd.Flags().Bool("serve", false, "start a local HTTP server after generating")
	siteCmd.Flags().Int("port", 0, "port for the local server (defaults to server.port)")
	siteCmd.Flags().Bool("open", false, "open browser automatically when serving")
	siteCmd.Flags().String("output", "", "override output directory")
	siteCmd.Flags().Bool("collapsed", false, "start every section collapsed")
	siteCmd.Flags().Bool("no-cache", false, "render every transcript, ignoring the catalog")
	rootCmd.AddCommand(siteCmd)
}

func runSite(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.TranscriptsDir); os.IsNotExist(err) {
		return fmt.Errorf("transcripts directory not found at %s\nSet transcripts_dir in %s or run `chatview init`", cfg.TranscriptsDir, cfgFile)
	}

	outputDir, _ := cmd.Flags().GetString("output")
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}
	collapsed, _ := cmd.Flags().GetBool("collapsed")
	noCache, _ := cmd.Flags().GetBool("no-cache")

	var store *catalog.Store
	if !noCache {
		s, closeCatalog, err := openCatalog(cfg)
		if err != nil {
			return err
		}
		defer closeCatalog()
		store = s
	}

	generator := site.NewSiteGenerator(cfg.TranscriptsDir, outputDir, cfg.Title)
	generator.Include = cfg.Include
	generator.Exclude = cfg.Exclude
	generator.Pipeline = cfg.Pipeline()
	generator.HighlightStyle = cfg.HighlightStyle()
	generator.Collapsed = cfg.Collapsed || collapsed
	generator.Catalog = store
	generator.Reporter = progress.NewReporter()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := generator.Generate(ctx)
	if err != nil {
		return fmt.Errorf("generating site: %w", err)
	}

	fmt.Printf("Static site generated: %s (%d pages, %d rendered, %d reused", outputDir, res.Pages, res.Rendered, res.Reused)
	if res.Failed > 0 {
		fmt.Printf(", %d skipped", res.Failed)
	}
	fmt.Println(")")

	serve, _ := cmd.Flags().GetBool("serve")
	if !serve {
		return nil
	}
	port, _ := cmd.Flags().GetInt("port")
	if port == 0 {
		port = cfg.Server.Port
	}
	openBrowser, _ := cmd.Flags().GetBool("open")
	if err := site.Serve(ctx, outputDir, port, openBrowser); err != nil {
		return fmt.Errorf("serving site: %w", err)
	}
	return nil
}
