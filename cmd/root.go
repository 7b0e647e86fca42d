package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/chatview/internal/config"
	"github.com/ziadkadry99/chatview/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "chatview",
	Short: "Render chat transcripts into collapsible, readable pages",
	Long: `chatview turns exported chat transcripts (Markdown or HTML with
<!-- USER --> / <!-- ASSISTANT --> markers) into pages with collapsible
sections and selectable messages. It can build a static site, serve
transcripts on demand, and expose them to AI agents via MCP.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logging.SetDebug(true)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
