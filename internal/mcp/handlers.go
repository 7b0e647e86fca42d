package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/chatview/internal/site"
	"github.com/ziadkadry99/chatview/internal/transcript"
	"github.com/ziadkadry99/chatview/internal/walker"
)

// handleListTranscripts lists transcripts with their titles and counts.
func (s *Server) handleListTranscripts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 50)
	if limit <= 0 {
		limit = 50
	}

	prefix := ""
	if dir := request.GetString("dir", ""); dir != "" {
		_, rel, err := site.ResolvePath(s.cfg.TranscriptsDir, dir)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if rel != "" {
			prefix = rel + "/"
		}
	}

	files, err := site.Collect(s.cfg.TranscriptsDir, s.cfg.Include, s.cfg.Exclude)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing transcripts failed: %v", err)), nil
	}

	var sb strings.Builder
	n := 0
	for _, f := range files {
		if !strings.HasPrefix(f.RelPath, prefix) {
			continue
		}
		if n == limit {
			sb.WriteString("(more transcripts not shown; raise limit to see them)\n")
			break
		}
		src, err := site.LoadSource(f.Path, f.RelPath, f.Format)
		if err != nil {
			fmt.Fprintf(&sb, "- %s: unreadable (%v)\n", f.RelPath, err)
			n++
			continue
		}
		st := src.Parse().Stats()
		fmt.Fprintf(&sb, "- %s: %s (%d sections, %d messages)\n", f.RelPath, src.Title, st.Sections, st.Messages)
		n++
	}

	if n == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No transcripts found in %s.", s.cfg.TranscriptsDir)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Found %d transcript(s):\n%s", n, sb.String())), nil
}

// handleGetTranscript returns a transcript's sections and messages as text.
func (s *Server) handleGetTranscript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: path"), nil
	}
	src, errResult := s.load(path)
	if errResult != nil {
		return errResult, nil
	}

	speaker := transcript.Speaker(request.GetString("speaker", ""))
	return mcp.NewToolResultText(formatTranscript(src, src.Parse(), speaker)), nil
}

// handleRenderTranscript renders a transcript to its chat HTML fragment.
func (s *Server) handleRenderTranscript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: path"), nil
	}
	src, errResult := s.load(path)
	if errResult != nil {
		return errResult, nil
	}

	collapsed := request.GetBool("collapsed", s.cfg.Collapsed)
	pipeline := s.cfg.Pipeline()
	renderer := site.CachedRenderer{
		Pipeline:  pipeline,
		Catalog:   s.catalog,
		Options:   site.Fingerprint(pipeline.Renderer, s.cfg.HighlightStyle(), collapsed),
		Collapsed: collapsed,
	}
	content, _, _, err := renderer.Render(ctx, src)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
	}
	return mcp.NewToolResultText(content), nil
}

// load reads the transcript at a user-supplied path. A non-nil result is
// the tool error to return.
func (s *Server) load(raw string) (*site.Source, *mcp.CallToolResult) {
	abs, rel, err := site.ResolvePath(s.cfg.TranscriptsDir, raw)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	format := walker.DetectFormat(rel)
	if rel == "" || format == walker.FormatUnknown {
		return nil, mcp.NewToolResultError(fmt.Sprintf("%q is not a transcript file", raw))
	}
	notFound := mcp.NewToolResultError(fmt.Sprintf(
		"No transcript found at %q. Use list_transcripts to see what is available.", rel,
	))
	files, err := site.Collect(s.cfg.TranscriptsDir, s.cfg.Include, s.cfg.Exclude)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("listing transcripts failed: %v", err))
	}
	if !slices.ContainsFunc(files, func(f walker.FileInfo) bool { return f.RelPath == rel }) {
		return nil, notFound
	}
	src, err := site.LoadSource(abs, rel, format)
	if errors.Is(err, os.ErrNotExist) {
		return nil, notFound
	}
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("failed to read transcript: %v", err))
	}
	return src, nil
}

// formatTranscript converts a transcript into plain text for agents. When
// speaker is set, other speakers' messages are left out.
func formatTranscript(src *site.Source, tr *transcript.Transcript, speaker transcript.Speaker) string {
	var sb strings.Builder
	st := tr.Stats()
	fmt.Fprintf(&sb, "# %s\n", src.Title)
	fmt.Fprintf(&sb, "Path: %s\n", src.RelPath)
	fmt.Fprintf(&sb, "Sections: %d, messages: %d (user %d, assistant %d)\n",
		st.Sections, st.Messages, st.UserMessages, st.AssistantMessages)

	for _, item := range tr.Items {
		switch it := item.(type) {
		case *transcript.Header:
			fmt.Fprintf(&sb, "\n%s %s [%s]\n", strings.Repeat("#", it.Level), it.Text, it.ID)
		case *transcript.Section:
			fmt.Fprintf(&sb, "\n--- %s ---\n", it.ID)
			for _, m := range it.Messages {
				if speaker != "" && m.Speaker != speaker {
					continue
				}
				fmt.Fprintf(&sb, "\n%s:\n%s\n", strings.ToUpper(string(m.Speaker)), m.Content)
			}
		}
	}

	if len(tr.Diagnostics) > 0 {
		sb.WriteString("\nParse notes:\n")
		for _, d := range tr.Diagnostics {
			fmt.Fprintf(&sb, "- %s\n", d)
		}
	}
	return sb.String()
}
