package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/chatview/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Serve transcripts, rendering each page on request",
	Long: `Starts the chatview HTTP server. GET /?path=<transcript> renders a
transcript, a directory path renders its listing, and /api exposes the
transcript list and segmented structure as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serverPort != 0 {
			cfg.Server.Port = serverPort
		}

		store, closeCatalog, err := openCatalog(cfg)
		if err != nil {
			return err
		}
		defer closeCatalog()

		srv, err := server.New(cfg, store)
		if err != nil {
			return fmt.Errorf("creating server: %w", err)
		}

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		if cfg.Server.LiveReload {
			go srv.Watch(ctx, server.DefaultWatchInterval)
		}

		fmt.Fprintf(os.Stderr, "chatview server v%s starting on port %d\n", Version, cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  Transcripts: %s\n", cfg.TranscriptsDir)
		if store != nil {
			fmt.Fprintf(os.Stderr, "  Catalog: %s\n", cfg.Database)
		}

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "port to listen on (defaults to server.port)")
	rootCmd.AddCommand(serverCmd)
}
