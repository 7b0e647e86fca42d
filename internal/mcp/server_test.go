package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/chatview/internal/catalog"
	"github.com/ziadkadry99/chatview/internal/config"
	"github.com/ziadkadry99/chatview/internal/db"
)

const planChat = `# Release plan

## Scope
<!-- USER -->
What ships in **v2**?
<!-- ASSISTANT -->
The exporter and the viewer.

## Dates
<!-- USER -->
When?
<!-- ASSISTANT -->
Next Tuesday.
`

func newTestServer(t *testing.T, store *catalog.Store) *Server {
	t.Helper()
	dir := t.TempDir()
	for name, content := range map[string]string{
		"plan.md":          planChat,
		"team/standup.md":  "<!-- USER -->\nstatus?\n<!-- ASSISTANT -->\ngreen\n",
		"team/README.md":   "Team chats.",
		"team/diagram.png": "png",
	} {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.DefaultConfig()
	cfg.TranscriptsDir = dir
	cfg.Highlight.Enabled = false
	return NewServer(cfg, store)
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		required []string
	}{
		{"list_transcripts", listTranscriptsTool, nil},
		{"get_transcript", getTranscriptTool, []string{"path"}},
		{"render_transcript", renderTranscriptTool, []string{"path"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.name {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.name)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
			if strings.Join(tt.tool.InputSchema.Required, ",") != strings.Join(tt.required, ",") {
				t.Errorf("required = %v, want %v", tt.tool.InputSchema.Required, tt.required)
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv := newTestServer(t, nil)
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.cfg.TranscriptsDir == "" {
		t.Error("config not set")
	}
}

func TestHandleListTranscripts(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("all", func(t *testing.T) {
		text := extractText(call(t, srv.handleListTranscripts, map[string]any{}))
		for _, want := range []string{
			"Found 2 transcript(s)",
			"- plan.md: Release plan (2 sections, 4 messages)",
			"- team/standup.md: standup (1 sections, 2 messages)",
		} {
			if !strings.Contains(text, want) {
				t.Errorf("missing %q in:\n%s", want, text)
			}
		}
		if strings.Contains(text, "README") || strings.Contains(text, "diagram") {
			t.Errorf("non-transcripts listed:\n%s", text)
		}
	})

	t.Run("dir filter", func(t *testing.T) {
		text := extractText(call(t, srv.handleListTranscripts, map[string]any{"dir": "team"}))
		if !strings.Contains(text, "Found 1 transcript(s)") || strings.Contains(text, "plan.md") {
			t.Errorf("dir filter output:\n%s", text)
		}
	})

	t.Run("limit", func(t *testing.T) {
		text := extractText(call(t, srv.handleListTranscripts, map[string]any{"limit": float64(1)}))
		if !strings.Contains(text, "Found 1 transcript(s)") || !strings.Contains(text, "more transcripts not shown") {
			t.Errorf("limit output:\n%s", text)
		}
	})

	t.Run("empty dir", func(t *testing.T) {
		text := extractText(call(t, srv.handleListTranscripts, map[string]any{"dir": "nowhere"}))
		if !strings.HasPrefix(text, "No transcripts found") {
			t.Errorf("empty output:\n%s", text)
		}
	})

	t.Run("escaping dir", func(t *testing.T) {
		if !call(t, srv.handleListTranscripts, map[string]any{"dir": "../"}).IsError {
			t.Error("expected error for a dir outside the root")
		}
	})
}

func TestHandleGetTranscript(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("full", func(t *testing.T) {
		result := call(t, srv.handleGetTranscript, map[string]any{"path": "plan.md"})
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := extractText(result)
		for _, want := range []string{
			"# Release plan\n",
			"Sections: 2, messages: 4 (user 2, assistant 2)",
			"## Scope [header-0]",
			"--- section-0 ---",
			"USER:\nWhat ships in **v2**?",
			"ASSISTANT:\nNext Tuesday.",
			"Parse notes:",
		} {
			if !strings.Contains(text, want) {
				t.Errorf("missing %q in:\n%s", want, text)
			}
		}
	})

	t.Run("speaker filter", func(t *testing.T) {
		text := extractText(call(t, srv.handleGetTranscript, map[string]any{"path": "plan.md", "speaker": "assistant"}))
		if strings.Contains(text, "USER:") || !strings.Contains(text, "ASSISTANT:\nThe exporter and the viewer.") {
			t.Errorf("speaker filter output:\n%s", text)
		}
	})

	errCases := map[string]map[string]any{
		"missing path":   {},
		"not found":      {"path": "gone.md"},
		"not a chat":     {"path": "team/diagram.png"},
		"directory":      {"path": "team"},
		"outside root":   {"path": "../plan.md"},
		"root requested": {"path": "/"},
		"intro file":     {"path": "team/README.md"},
	}
	for name, args := range errCases {
		t.Run(name, func(t *testing.T) {
			if !call(t, srv.handleGetTranscript, args).IsError {
				t.Errorf("expected tool error for %v", args)
			}
		})
	}
}

func TestHandleRenderTranscript(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()
	store := catalog.NewStore(database)
	srv := newTestServer(t, store)

	result := call(t, srv.handleRenderTranscript, map[string]any{"path": "plan.md"})
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	html := extractText(result)
	if !strings.HasPrefix(html, `<h1>Release plan</h1><div class="chat-container">`) {
		t.Errorf("unexpected fragment:\n%s", html)
	}
	if !strings.Contains(html, `<p>What ships in <strong>v2</strong>?</p>`) {
		t.Errorf("markup not rendered:\n%s", html)
	}
	if _, err := store.GetByPath(context.Background(), "plan.md"); err != nil {
		t.Errorf("render was not cached: %v", err)
	}

	collapsed := extractText(call(t, srv.handleRenderTranscript, map[string]any{"path": "plan.md", "collapsed": true}))
	if strings.Count(collapsed, `style="display: none"`) != 2 {
		t.Errorf("collapsed render should hide both sections:\n%s", collapsed)
	}

	if !call(t, srv.handleRenderTranscript, map[string]any{"path": "gone.md"}).IsError {
		t.Error("expected error for a missing transcript")
	}
}

// extractText gets the text content from a CallToolResult.
func extractText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
