package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/chatview/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize chatview configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure chatview for your transcripts and writes a .chatview.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
