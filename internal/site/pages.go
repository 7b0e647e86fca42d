package site

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/ziadkadry99/chatview/internal/highlight"
	"github.com/ziadkadry99/chatview/internal/transcript"
)

// Asset file names written next to the generated pages.
const (
	StyleFile       = "style.css"
	ScriptFile      = "chat.js"
	ChromaFile      = "chroma.css"
	SearchIndexFile = "search-index.json"
	IndexFile       = "index.html"
	IntroFile       = "README.md"
)

// Linker maps transcript and directory paths onto page URLs.
type Linker interface {
	Page(relPath string) string
	Dir(relDir string) string
}

// StaticLinker links between files of a generated site. Base is the
// relative prefix back to the site root ("../" for a page one level deep).
type StaticLinker struct {
	Base string
}

func (l StaticLinker) Page(relPath string) string { return l.Base + PagePath(relPath) }

func (l StaticLinker) Dir(relDir string) string {
	if relDir == "" {
		return l.Base + IndexFile
	}
	return l.Base + relDir + "/" + IndexFile
}

// QueryLinker links to the application controller's ?path= route.
type QueryLinker struct {
	Root string // usually "/"
}

func (l QueryLinker) Page(relPath string) string { return l.Root + "?path=" + url.QueryEscape(relPath) }

func (l QueryLinker) Dir(relDir string) string {
	if relDir == "" {
		return l.Root
	}
	return l.Root + "?path=" + url.QueryEscape(relDir)
}

// basePath returns the relative prefix from a page at relPath back to the root.
func basePath(relPath string) string {
	return strings.Repeat("../", strings.Count(relPath, "/"))
}

// Page is the data passed to the page templates.
type Page struct {
	SiteTitle      string
	Title          string
	AssetBase      string
	HomeURL        string
	SearchIndexURL string
	TreeHTML       template.HTML
	Highlight      bool
	IsChat         bool
	LiveURL        string // websocket path for change events; empty disables

	// Transcript pages.
	SourcePath  string
	Content     template.HTML
	Stats       transcript.Stats
	Diagnostics []transcript.Diagnostic

	// Directory pages.
	Intro   template.HTML
	Dirs    []DirLink
	Entries []Entry
}

// DirLink is a subdirectory shown on a directory page.
type DirLink struct {
	Name string
	URL  string
}

// Entry is one transcript shown on a directory page.
type Entry struct {
	Path    string
	Title   string
	URL     string
	Preview string
	Stats   transcript.Stats
}

var (
	chatPage  = template.Must(template.New("chat").Parse(layoutTemplate + chatTemplate))
	indexPage = template.Must(template.New("index").Parse(layoutTemplate + indexTemplate))
)

// RenderChatPage writes a full transcript page.
func RenderChatPage(w io.Writer, p *Page) error {
	p.IsChat = true
	return chatPage.ExecuteTemplate(w, "layout", p)
}

// RenderIndexPage writes a directory page.
func RenderIndexPage(w io.Writer, p *Page) error {
	p.IsChat = false
	return indexPage.ExecuteTemplate(w, "layout", p)
}

// Assets returns the static files every site needs, keyed by file name.
// chroma.css is included when highlightStyle is not empty.
func Assets(highlightStyle string) (map[string][]byte, error) {
	assets := map[string][]byte{
		StyleFile:  []byte(cssContent),
		ScriptFile: []byte(jsContent),
	}
	if highlightStyle != "" {
		css, err := highlight.CSS(highlightStyle)
		if err != nil {
			return nil, err
		}
		assets[ChromaFile] = []byte(css)
	}
	return assets, nil
}

// Listing splits entries into the subdirectories and transcripts directly
// under dir. Both results are sorted.
func Listing(entries []Entry, dir string, links Linker) ([]DirLink, []Entry) {
	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}
	seen := make(map[string]bool)
	var (
		dirs  []DirLink
		files []Entry
	)
	for _, e := range entries {
		rest, ok := strings.CutPrefix(e.Path, prefix)
		if !ok {
			continue
		}
		if sub, _, nested := strings.Cut(rest, "/"); nested {
			if !seen[sub] {
				seen[sub] = true
				dirs = append(dirs, DirLink{Name: sub, URL: links.Dir(prefix + sub)})
			}
			continue
		}
		files = append(files, e)
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return dirs, files
}

// newMarkdown returns the goldmark converter used for directory intros.
func newMarkdown(style string) goldmark.Markdown {
	exts := []goldmark.Extender{extension.GFM}
	if style != "" {
		exts = append(exts, highlighting.NewHighlighting(
			highlighting.WithStyle(style),
			highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
		))
	}
	return goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
}

// RenderIntro converts the README.md in dir, if any, to HTML. A missing
// README yields an empty intro.
func RenderIntro(dir, style string) (template.HTML, error) {
	data, err := os.ReadFile(filepath.Join(dir, IntroFile))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading intro: %w", err)
	}
	var buf bytes.Buffer
	if err := newMarkdown(style).Convert(data, &buf); err != nil {
		return "", fmt.Errorf("converting intro: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// DirTitle is the heading of a directory page.
func DirTitle(siteTitle, dir string) string {
	if dir == "" {
		return siteTitle
	}
	return formatDirName(path.Base(dir))
}
