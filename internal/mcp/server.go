// Package mcp exposes the transcripts directory to MCP clients over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/chatview/internal/catalog"
	"github.com/ziadkadry99/chatview/internal/config"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes transcript tools.
type Server struct {
	cfg     *config.Config
	catalog *catalog.Store // optional render cache
	mcp     *server.MCPServer
}

// NewServer creates a new MCP server over the configured transcripts
// directory. store may be nil.
func NewServer(cfg *config.Config, store *catalog.Store) *Server {
	s := &Server{
		cfg:     cfg,
		catalog: store,
	}

	s.mcp = server.NewMCPServer(
		"chatview",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listTranscriptsTool, s.handleListTranscripts)
	s.mcp.AddTool(getTranscriptTool, s.handleGetTranscript)
	s.mcp.AddTool(renderTranscriptTool, s.handleRenderTranscript)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
