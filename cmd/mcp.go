package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/chatview/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing tools to list, read, and render chat transcripts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, closeCatalog, err := openCatalog(cfg)
		if err != nil {
			// The catalog only caches renders; the tools work without it.
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			store, closeCatalog = nil, func() {}
		}
		defer closeCatalog()

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "chatview MCP server started on stdio (transcripts=%s)\n", cfg.TranscriptsDir)

		srv := mcpserver.NewServer(cfg, store)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
