package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/chatview/internal/logging"
	"github.com/ziadkadry99/chatview/internal/site"
	"github.com/ziadkadry99/chatview/internal/transcript"
	"github.com/ziadkadry99/chatview/internal/walker"
)

var links = site.QueryLinker{Root: "/"}

// stat resolves raw and reports a failure to the client as plain text.
func (s *Server) stat(w http.ResponseWriter, raw string) (abs, rel string, info os.FileInfo, ok bool) {
	abs, rel, err := site.ResolvePath(s.cfg.TranscriptsDir, raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", "", nil, false
	}
	info, err = os.Stat(abs)
	if os.IsNotExist(err) {
		http.Error(w, "not found", http.StatusNotFound)
		return "", "", nil, false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return "", "", nil, false
	}
	return abs, rel, info, true
}

// handleView renders GET /?path=<rel>: a transcript page for a file, a
// directory page for a directory or an empty path.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	abs, rel, info, ok := s.stat(w, r.URL.Query().Get("path"))
	if !ok {
		return
	}

	files, err := site.Collect(s.cfg.TranscriptsDir, s.cfg.Include, s.cfg.Exclude)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !info.IsDir() && !collected(files, rel) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	titles := s.titles(r.Context())

	var buf bytes.Buffer
	if info.IsDir() {
		err = s.renderDir(&buf, abs, rel, files, titles)
	} else {
		err = s.renderChat(r.Context(), &buf, abs, rel, files, titles)
	}
	var he *httpError
	switch {
	case errors.As(err, &he):
		http.Error(w, he.msg, he.status)
		return
	case err != nil:
		logging.Error("server", "rendering %q: %v", rel, err)
		http.Error(w, "rendering failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

type httpError struct {
	status int
	msg    string
}

func (e *httpError) Error() string { return e.msg }

func (s *Server) renderChat(ctx context.Context, buf *bytes.Buffer, abs, rel string, files []walker.FileInfo, titles map[string]string) error {
	src, err := s.load(abs, rel)
	if err != nil {
		return err
	}
	renderer := site.CachedRenderer{
		Pipeline:  s.cfg.Pipeline(),
		Catalog:   s.catalog,
		Options:   s.options,
		Collapsed: s.cfg.Collapsed,
	}
	content, tr, reused, err := renderer.Render(ctx, src)
	if err != nil {
		return err
	}
	logging.Debug("server", "%s rendered (cached=%t)", rel, reused)

	titles[rel] = src.Title
	return site.RenderChatPage(buf, &site.Page{
		SiteTitle:      s.cfg.Title,
		Title:          src.Title,
		AssetBase:      AssetPrefix,
		HomeURL:        links.Dir(""),
		SearchIndexURL: "/api/search",
		LiveURL:        s.liveURL(),
		TreeHTML:       template.HTML(tree(files, titles).ToHTML(rel, links)),
		Highlight:      s.cfg.HighlightStyle() != "",
		SourcePath:     rel,
		Content:        template.HTML(content),
		Stats:          tr.Stats(),
		Diagnostics:    tr.Diagnostics,
	})
}

func (s *Server) renderDir(buf *bytes.Buffer, abs, rel string, files []walker.FileInfo, titles map[string]string) error {
	entries := make([]site.Entry, len(files))
	byPath := make(map[string]walker.FileInfo, len(files))
	for i, f := range files {
		entries[i] = site.Entry{Path: f.RelPath, Title: titles[f.RelPath]}
		byPath[f.RelPath] = f
	}
	dirs, direct := site.Listing(entries, rel, links)

	// Transcripts shown on this page are read for their preview.
	for i := range direct {
		e := &direct[i]
		e.URL = links.Page(e.Path)
		f := byPath[e.Path]
		src, err := site.LoadSource(f.Path, f.RelPath, f.Format)
		if err != nil {
			logging.Error("server", "reading %s: %v", f.RelPath, err)
			continue
		}
		tr := src.Parse()
		e.Title = src.Title
		e.Preview = site.Preview(tr, 160)
		e.Stats = tr.Stats()
		titles[e.Path] = src.Title
	}

	intro, err := site.RenderIntro(abs, s.cfg.HighlightStyle())
	if err != nil {
		logging.Error("server", "intro for %q: %v", rel, err)
	}

	return site.RenderIndexPage(buf, &site.Page{
		SiteTitle:      s.cfg.Title,
		Title:          site.DirTitle(s.cfg.Title, rel),
		AssetBase:      AssetPrefix,
		HomeURL:        links.Dir(""),
		SearchIndexURL: "/api/search",
		LiveURL:        s.liveURL(),
		TreeHTML:       template.HTML(tree(files, titles).ToHTML(rel, links)),
		Highlight:      s.cfg.HighlightStyle() != "",
		Intro:          intro,
		Dirs:           dirs,
		Entries:        direct,
	})
}

func (s *Server) liveURL() string {
	if !s.cfg.Server.LiveReload {
		return ""
	}
	return LivePath
}

// load reads a transcript file, rejecting files chatview cannot render.
func (s *Server) load(abs, rel string) (*site.Source, error) {
	format := walker.DetectFormat(rel)
	if format == walker.FormatUnknown {
		return nil, &httpError{status: http.StatusNotFound, msg: "not a transcript: " + rel}
	}
	return site.LoadSource(abs, rel, format)
}

// titles returns the catalog's known titles, keyed by transcript path.
func (s *Server) titles(ctx context.Context) map[string]string {
	titles := make(map[string]string)
	if s.catalog == nil {
		return titles
	}
	recs, err := s.catalog.List(ctx)
	if err != nil {
		logging.Error("server", "listing catalog: %v", err)
		return titles
	}
	for _, rec := range recs {
		titles[rec.Path] = rec.Title
	}
	return titles
}

// collected reports whether rel survived the include, exclude and
// .gitignore filters.
func collected(files []walker.FileInfo, rel string) bool {
	return slices.ContainsFunc(files, func(f walker.FileInfo) bool { return f.RelPath == rel })
}

func tree(files []walker.FileInfo, titles map[string]string) *site.FileTree {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.RelPath
	}
	return site.BuildTree(paths, titles)
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, ok := s.assets[name]
	if !ok {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, name, s.started, bytes.NewReader(data))
}

// transcriptInfo is one row of GET /api/transcripts.
type transcriptInfo struct {
	Path        string            `json:"path"`
	Format      string            `json:"format"`
	Size        int64             `json:"size"`
	ContentHash string            `json:"content_hash"`
	Title       string            `json:"title,omitempty"`
	Cached      bool              `json:"cached"`
	Stats       *transcript.Stats `json:"stats,omitempty"`
	UpdatedAt   *time.Time        `json:"updated_at,omitempty"`
}

// handleList lists the transcripts on disk, joined with what the catalog
// knows about each.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	files, err := site.Collect(s.cfg.TranscriptsDir, s.cfg.Include, s.cfg.Exclude)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	out := make([]transcriptInfo, len(files))
	for i, f := range files {
		out[i] = transcriptInfo{
			Path:        f.RelPath,
			Format:      string(f.Format),
			Size:        f.Size,
			ContentHash: f.ContentHash,
		}
	}
	if s.catalog != nil {
		recs, err := s.catalog.List(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		byPath := make(map[string]int, len(recs))
		for i, rec := range recs {
			byPath[rec.Path] = i
		}
		for i := range out {
			j, ok := byPath[out[i].Path]
			if !ok {
				continue
			}
			rec := recs[j]
			out[i].Title = rec.Title
			out[i].Cached = rec.Fresh(out[i].ContentHash, s.options)
			out[i].Stats = &rec.Stats
			out[i].UpdatedAt = &rec.UpdatedAt
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleTranscript returns the segmented structure of one transcript.
func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("path")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "path is required"})
		return
	}
	abs, rel, err := site.ResolvePath(s.cfg.TranscriptsDir, raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if info, err := os.Stat(abs); err != nil || info.IsDir() {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "transcript not found: " + rel})
		return
	}
	files, err := site.Collect(s.cfg.TranscriptsDir, s.cfg.Include, s.cfg.Exclude)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !collected(files, rel) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "transcript not found: " + rel})
		return
	}
	src, err := s.load(abs, rel)
	var he *httpError
	if errors.As(err, &he) {
		writeJSON(w, he.status, map[string]string{"error": he.msg})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"path":       rel,
		"title":      src.Title,
		"transcript": src.Parse(),
	})
}

// handleSearch serves the sidebar search index.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	files, err := site.Collect(s.cfg.TranscriptsDir, s.cfg.Include, s.cfg.Exclude)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	entries := make([]site.SearchEntry, 0, len(files))
	for _, f := range files {
		src, err := site.LoadSource(f.Path, f.RelPath, f.Format)
		if err != nil {
			logging.Error("server", "reading %s: %v", f.RelPath, err)
			continue
		}
		e := site.BuildSearchEntry(f.RelPath, src.Title, src.Parse())
		e.Path = links.Page(f.RelPath)
		entries = append(entries, e)
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
