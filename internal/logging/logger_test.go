package logging

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestInfoAndError(t *testing.T) {
	buf := captureLog(t)
	Info("site", "wrote %d pages", 3)
	Error("site", "skipping %s", "a.md")

	out := buf.String()
	if !strings.Contains(out, "[site] wrote 3 pages") {
		t.Errorf("info line missing: %q", out)
	}
	if !strings.Contains(out, "[site] ERROR skipping a.md") {
		t.Errorf("error line missing: %q", out)
	}
}

func TestDebugToggle(t *testing.T) {
	buf := captureLog(t)
	prev := DebugEnabled()
	t.Cleanup(func() { SetDebug(prev) })

	SetDebug(false)
	Debug("segment", "hidden")
	SetDebug(true)
	Debug("segment", "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "[segment] shown") {
		t.Errorf("unexpected debug output: %q", out)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"line one\nline two", 8, "line one..."},
		{"  padded  ", 10, "padded"},
		{"héllo", 2, "h..."},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
