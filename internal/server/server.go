// Package server implements the chatview application controller: a chi
// router that renders transcripts on request from the transcripts directory.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/chatview/internal/catalog"
	"github.com/ziadkadry99/chatview/internal/config"
	"github.com/ziadkadry99/chatview/internal/logging"
	"github.com/ziadkadry99/chatview/internal/site"
)

// AssetPrefix is the URL prefix of the shared stylesheet and script.
const AssetPrefix = "/assets/"

// Server serves rendered transcripts over HTTP.
type Server struct {
	cfg        *config.Config
	catalog    *catalog.Store // optional render cache
	assets     map[string][]byte
	options    string
	started    time.Time
	router     chi.Router
	httpServer *http.Server

	hub     *hub
	watchMu sync.Mutex
	hashes  map[string]string // transcript path -> content hash at the last scan
}

// New creates a server for cfg. store may be nil, in which case every
// request renders from scratch.
func New(cfg *config.Config, store *catalog.Store) (*Server, error) {
	assets, err := site.Assets(cfg.HighlightStyle())
	if err != nil {
		return nil, fmt.Errorf("building assets: %w", err)
	}
	s := &Server{
		cfg:     cfg,
		catalog: store,
		assets:  assets,
		options: site.Fingerprint(cfg.Pipeline().Renderer, cfg.HighlightStyle(), cfg.Collapsed),
		started: time.Now(),
		hub:     newHub(),
	}
	s.router = s.buildRouter()
	return s, nil
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.Server.AllowAllOrigins {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Live connections outlive the request timeout.
	if s.cfg.Server.LiveReload {
		r.Get(LivePath, s.handleLive)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		// Health check
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		r.Get("/", s.handleView)
		r.Get(AssetPrefix+"{name}", s.handleAsset)
		r.Route("/api", func(r chi.Router) {
			r.Get("/transcripts", s.handleList)
			r.Get("/transcript", s.handleTranscript)
			r.Get("/search", s.handleSearch)
		})
	})

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logging.Info("server", "chatview server listening on %s (transcripts: %s)", addr, s.cfg.TranscriptsDir)
	return s.httpServer.ListenAndServe()
}

// Shutdown disconnects live clients and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.close()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
