package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ziadkadry99/chatview/internal/catalog"
	"github.com/ziadkadry99/chatview/internal/dom"
	"github.com/ziadkadry99/chatview/internal/interact"
	"github.com/ziadkadry99/chatview/internal/logging"
	"github.com/ziadkadry99/chatview/internal/markup"
	"github.com/ziadkadry99/chatview/internal/transcript"
	"github.com/ziadkadry99/chatview/internal/walker"
)

// Source is a transcript read from disk and reduced to its chat text.
type Source struct {
	RelPath string
	Format  walker.Format
	Text    string // Markdown-subset transcript, markers included.
	Title   string
	Hash    string
}

// LoadSource reads the transcript at path.
func LoadSource(path, relPath string, format walker.Format) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSource(data, relPath, format)
}

// ParseSource extracts the chat text and title from raw file content. HTML
// exports contribute their .markdown-body (or <body>) and <title>; Markdown
// files their first "# " line.
func ParseSource(data []byte, relPath string, format walker.Format) (*Source, error) {
	src := &Source{
		RelPath: relPath,
		Format:  format,
		Hash:    walker.HashBytes(data),
	}
	switch format {
	case walker.FormatHTML:
		text, title, err := dom.ExtractDocument(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", relPath, err)
		}
		src.Text = text
		src.Title = title
		if src.Title == "" {
			src.Title = transcript.ExtractTitle("", relPath)
		}
	default:
		src.Text = string(data)
		src.Title = transcript.ExtractTitle(src.Text, relPath)
	}
	return src, nil
}

// Parse segments the source and logs its diagnostics at debug level.
func (s *Source) Parse() *transcript.Transcript {
	tr := transcript.Parse(s.Text)
	for _, d := range tr.Diagnostics {
		logging.Debug("segment", "%s: %s", s.RelPath, d)
	}
	return tr
}

// RenderChat renders the source into the inner HTML of a .markdown-body
// container: the title heading followed by the chat container. With
// collapsed set, every paired section starts collapsed.
func RenderChat(p *dom.Pipeline, s *Source, collapsed bool) (string, *transcript.Transcript, error) {
	res, err := p.RenderText(s.Text, s.Title)
	if err != nil {
		return "", nil, fmt.Errorf("rendering %s: %w", s.RelPath, err)
	}
	for _, d := range res.Transcript.Diagnostics {
		logging.Debug("segment", "%s: %s", s.RelPath, d)
	}
	if collapsed {
		collapse(res)
	}
	out, err := dom.InnerHTML(res.Container)
	if err != nil {
		return "", nil, fmt.Errorf("serializing %s: %w", s.RelPath, err)
	}
	return out, res.Transcript, nil
}

// RenderExport renders an HTML export in place: the chat replaces the
// content of its .markdown-body (or <body>) and the whole document is
// returned, head and all.
func RenderExport(p *dom.Pipeline, data []byte, collapsed bool) (string, *transcript.Transcript, error) {
	res, err := p.RenderDocument(bytes.NewReader(data))
	if err != nil {
		return "", nil, err
	}
	if collapsed {
		collapse(res)
	}
	out, err := dom.Render(dom.Root(res.Container))
	if err != nil {
		return "", nil, fmt.Errorf("serializing document: %w", err)
	}
	return out, res.Transcript, nil
}

func collapse(res *dom.Result) {
	c := interact.New(res.Container)
	c.Init()
	c.CollapseAll()
}

// Fingerprint identifies the options that affect rendered output, so cached
// renders made under different options are not reused.
func Fingerprint(r *markup.Renderer, highlightStyle string, collapsed bool) string {
	if r == nil {
		r = markup.NewRenderer()
	}
	return r.Fingerprint() + "|hl=" + highlightStyle + "|collapsed=" + strconv.FormatBool(collapsed)
}

// Preview returns the opening of the first user message, for listings.
func Preview(tr *transcript.Transcript, maxLen int) string {
	m, ok := tr.FirstMessage(transcript.SpeakerUser)
	if !ok {
		return ""
	}
	return logging.Truncate(strings.Join(strings.Fields(m.Content), " "), maxLen)
}

// CachedRenderer renders sources through Pipeline, consulting Catalog
// first when it is set. Options is the Fingerprint of the pipeline's
// settings.
type CachedRenderer struct {
	Pipeline  *dom.Pipeline
	Catalog   *catalog.Store
	Options   string
	Collapsed bool
}

// Render returns the chat HTML and parsed transcript for src, and whether
// the HTML came from the catalog. Fresh renders are written back.
func (c CachedRenderer) Render(ctx context.Context, src *Source) (string, *transcript.Transcript, bool, error) {
	if c.Catalog != nil {
		rec, err := c.Catalog.GetByPath(ctx, src.RelPath)
		if err == nil && rec.Fresh(src.Hash, c.Options) && rec.RenderedHTML != "" {
			return rec.RenderedHTML, src.Parse(), true, nil
		}
		if err != nil && !errors.Is(err, catalog.ErrNotFound) {
			logging.Error("site", "catalog lookup %s: %v", src.RelPath, err)
		}
	}

	content, tr, err := RenderChat(c.Pipeline, src, c.Collapsed)
	if err != nil {
		return "", nil, false, err
	}

	if c.Catalog != nil {
		rec := &catalog.Record{
			Path:         src.RelPath,
			Title:        src.Title,
			Format:       string(src.Format),
			ContentHash:  src.Hash,
			Options:      c.Options,
			Stats:        tr.Stats(),
			Diagnostics:  tr.Diagnostics,
			RenderedHTML: content,
		}
		if err := c.Catalog.Upsert(ctx, rec); err != nil {
			logging.Error("site", "caching %s: %v", src.RelPath, err)
		}
	}
	return content, tr, false, nil
}

// ErrOutsideRoot is returned by ResolvePath for paths that climb out of the
// transcripts directory.
var ErrOutsideRoot = errors.New("path must stay inside the transcripts directory")

// ResolvePath maps a user-supplied slash path onto root. Any ".." segment
// is rejected. The returned relative path is cleaned and "" for the root.
func ResolvePath(root, raw string) (abs, rel string, err error) {
	rel = strings.Trim(filepath.ToSlash(raw), "/")
	if rel == "" {
		return root, "", nil
	}
	for part := range strings.SplitSeq(rel, "/") {
		if part == ".." {
			return "", "", ErrOutsideRoot
		}
	}
	rel = path.Clean(rel)
	return filepath.Join(root, filepath.FromSlash(rel)), rel, nil
}
