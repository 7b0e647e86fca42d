package server

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/chatview/internal/logging"
	"github.com/ziadkadry99/chatview/internal/site"
)

// LivePath is the websocket endpoint that pushes transcript change events.
const LivePath = "/ws/live"

// DefaultWatchInterval is how often Watch rescans the transcripts directory.
const DefaultWatchInterval = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// changeEvent is the outgoing WebSocket message format.
type changeEvent struct {
	Type string `json:"type"` // "added", "changed" or "removed"
	Path string `json:"path"`
}

// hub fans change events out to connected live clients. Slow clients miss
// events rather than block the watcher.
type hub struct {
	mu      sync.Mutex
	clients map[chan changeEvent]struct{}
	closed  bool
}

func newHub() *hub {
	return &hub{clients: make(map[chan changeEvent]struct{})}
}

func (h *hub) subscribe() chan changeEvent {
	ch := make(chan changeEvent, 16)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	h.clients[ch] = struct{}{}
	return ch
}

func (h *hub) unsubscribe(ch chan changeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
}

func (h *hub) broadcast(ev changeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- ev:
		default:
			logging.Debug("server", "live client lagging; dropped %s %s", ev.Type, ev.Path)
		}
	}
}

// close disconnects every client; later subscribers get a closed channel.
func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.clients {
		delete(h.clients, ch)
		close(ch)
	}
}

func (h *hub) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	// Subscribe before the handshake completes so no event sent after the
	// client connects is missed.
	events := s.hub.subscribe()
	defer s.hub.unsubscribe(events)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("server", "websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	// Clients never send anything; reading surfaces their close frame.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logging.Debug("server", "websocket read: %v", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case ev, ok := <-events:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				logging.Error("server", "websocket write: %v", err)
				return
			}
		}
	}
}

// Watch rescans the transcripts directory every interval and pushes an
// event to live clients for each transcript added, changed, or removed.
// It returns when ctx is cancelled.
func (s *Server) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	s.poll() // baseline

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll()
		}
	}
}

// poll scans once and broadcasts the differences from the previous scan.
func (s *Server) poll() []changeEvent {
	events := s.scan()
	for _, ev := range events {
		logging.Debug("server", "%s %s", ev.Type, ev.Path)
		s.hub.broadcast(ev)
	}
	return events
}

// scan records the current content hashes and returns what changed since
// the previous scan. The first scan only records.
func (s *Server) scan() []changeEvent {
	files, err := site.Collect(s.cfg.TranscriptsDir, s.cfg.Include, s.cfg.Exclude)
	if err != nil {
		logging.Error("server", "watching %s: %v", s.cfg.TranscriptsDir, err)
		return nil
	}
	current := make(map[string]string, len(files))
	for _, f := range files {
		current[f.RelPath] = f.ContentHash
	}

	s.watchMu.Lock()
	previous := s.hashes
	s.hashes = current
	s.watchMu.Unlock()
	if previous == nil {
		return nil
	}

	var events []changeEvent
	for p, hash := range current {
		old, ok := previous[p]
		switch {
		case !ok:
			events = append(events, changeEvent{Type: "added", Path: p})
		case old != hash:
			events = append(events, changeEvent{Type: "changed", Path: p})
		}
	}
	for p := range previous {
		if _, ok := current[p]; !ok {
			events = append(events, changeEvent{Type: "removed", Path: p})
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })
	return events
}
