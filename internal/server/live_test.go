package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestScanDetectsChanges(t *testing.T) {
	srv, dir, _ := newTestServer(t, false)

	if events := srv.poll(); len(events) != 0 {
		t.Fatalf("baseline scan should report nothing, got %+v", events)
	}

	writeFile(t, filepath.Join(dir, "plan.md"), planChat+"<!-- USER -->\nmore\n")
	writeFile(t, filepath.Join(dir, "team", "new.md"), "<!-- USER -->\nhello\n")
	if err := os.Remove(filepath.Join(dir, "team", "standup.md")); err != nil {
		t.Fatal(err)
	}

	events := srv.poll()
	want := []changeEvent{
		{Type: "changed", Path: "plan.md"},
		{Type: "added", Path: "team/new.md"},
		{Type: "removed", Path: "team/standup.md"},
	}
	if len(events) != len(want) {
		t.Fatalf("events = %+v, want %+v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}

	if events := srv.poll(); len(events) != 0 {
		t.Errorf("unchanged tree should report nothing, got %+v", events)
	}
}

func TestLiveSocket(t *testing.T) {
	srv, dir, _ := newTestServer(t, false)
	srv.poll()

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + LivePath
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}

	writeFile(t, filepath.Join(dir, "plan.md"), "<!-- USER -->\nrewritten\n")
	srv.poll()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev changeEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.Type != "changed" || ev.Path != "plan.md" {
		t.Errorf("event = %+v", ev)
	}

	// Shutdown closes live connections.
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("expected going-away close, got %v", err)
	}
}

func TestLivePages(t *testing.T) {
	srv, _, _ := newTestServer(t, false)
	body := get(t, srv, "/?path=plan.md").Body.String()
	if !strings.Contains(body, `data-live="/ws/live" data-source="plan.md"`) {
		t.Error("transcript page should subscribe to live changes")
	}

	srv.cfg.Server.LiveReload = false
	srv.router = srv.buildRouter()
	if strings.Contains(get(t, srv, "/?path=plan.md").Body.String(), "data-live") {
		t.Error("live reload disabled but page still subscribes")
	}
	if w := get(t, srv, LivePath); w.Code != http.StatusNotFound && w.Code != http.StatusMethodNotAllowed {
		t.Errorf("live endpoint should be gone, got %d", w.Code)
	}
}

func TestHubDropsForSlowClients(t *testing.T) {
	h := newHub()
	ch := h.subscribe()
	for i := 0; i < 100; i++ {
		h.broadcast(changeEvent{Type: "changed", Path: "a.md"})
	}
	if len(ch) != cap(ch) {
		t.Errorf("buffered = %d, want %d", len(ch), cap(ch))
	}
	h.unsubscribe(ch)
	h.unsubscribe(ch)
	if h.size() != 0 {
		t.Errorf("size = %d after unsubscribe", h.size())
	}

	h.close()
	if _, ok := <-h.subscribe(); ok {
		t.Error("subscribing to a closed hub should yield a closed channel")
	}
}
