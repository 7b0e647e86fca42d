// Package site renders a directory of chat transcripts into a static HTML
// site: one page per transcript, a page per directory, a search index, and
// the shared assets.
package site

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ziadkadry99/chatview/internal/catalog"
	"github.com/ziadkadry99/chatview/internal/dom"
	"github.com/ziadkadry99/chatview/internal/logging"
	"github.com/ziadkadry99/chatview/internal/progress"
	"github.com/ziadkadry99/chatview/internal/transcript"
	"github.com/ziadkadry99/chatview/internal/walker"
)

// SiteGenerator converts transcripts into a static HTML site.
type SiteGenerator struct {
	SourceDir string
	OutputDir string
	Title     string
	Include   []string
	Exclude   []string

	// Pipeline renders each transcript. Its Highlighter, if set, must use
	// HighlightStyle so the written chroma.css matches.
	Pipeline       *dom.Pipeline
	HighlightStyle string
	Collapsed      bool

	// Catalog, when set, caches renders across runs: a transcript whose
	// content and options are unchanged reuses its stored HTML.
	Catalog  *catalog.Store
	Reporter progress.Reporter
}

// Result summarizes a generation run.
type Result struct {
	Pages    int // transcript pages written
	Rendered int // transcripts rendered from scratch
	Reused   int // transcripts served from the catalog
	Failed   int // transcripts skipped because of an error
}

// NewSiteGenerator creates a SiteGenerator with the given directories.
func NewSiteGenerator(sourceDir, outputDir, title string) *SiteGenerator {
	return &SiteGenerator{
		SourceDir: sourceDir,
		OutputDir: outputDir,
		Title:     title,
		Pipeline:  &dom.Pipeline{},
	}
}

// page is one transcript on its way to the output directory.
type page struct {
	src     *Source
	tr      *transcript.Transcript
	content string
}

// Generate builds the full static site. Per-transcript failures are logged
// and counted; the run fails only on setup errors or when no transcript
// could be found.
func (g *SiteGenerator) Generate(ctx context.Context) (*Result, error) {
	files, err := Collect(g.SourceDir, g.Include, g.Exclude)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no transcripts found in %s", g.SourceDir)
	}

	if err := os.MkdirAll(g.OutputDir, 0o755); err != nil {
		return nil, err
	}

	reporter := g.Reporter
	if reporter == nil {
		reporter = progress.Nop{}
	}
	pipeline := g.Pipeline
	if pipeline == nil {
		pipeline = &dom.Pipeline{}
	}
	options := Fingerprint(pipeline.Renderer, g.HighlightStyle, g.Collapsed)
	res := &Result{}

	// Load every transcript first so the sidebar can list them all.
	var pages []*page
	claimed := make(map[string]string) // page path -> transcript path
	for _, f := range files {
		if isIndexPath(f.RelPath) {
			logging.Error("site", "%s would replace a directory page; skipping", f.RelPath)
			res.Failed++
			continue
		}
		if prev, ok := claimed[PagePath(f.RelPath)]; ok {
			logging.Error("site", "%s and %s map to the same page; skipping %s", prev, f.RelPath, f.RelPath)
			res.Failed++
			continue
		}
		src, err := LoadSource(f.Path, f.RelPath, f.Format)
		if err != nil {
			logging.Error("site", "reading %s: %v", f.RelPath, err)
			res.Failed++
			continue
		}
		claimed[PagePath(f.RelPath)] = f.RelPath
		pages = append(pages, &page{src: src})
	}

	paths := make([]string, len(pages))
	titles := make(map[string]string, len(pages))
	for i, p := range pages {
		paths[i] = p.src.RelPath
		titles[p.src.RelPath] = p.src.Title
	}
	tree := BuildTree(paths, titles)

	reporter.Start(len(pages))
	var (
		entries []Entry
		search  []SearchEntry
		keep    []string
	)
	for i, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rel := p.src.RelPath
		reporter.Update(i+1, rel)

		reused, err := g.render(ctx, pipeline, p, options)
		if err != nil {
			logging.Error("site", "%v", err)
			res.Failed++
			continue
		}
		if reused {
			res.Reused++
		} else {
			res.Rendered++
		}

		if err := g.writeChatPage(p, tree); err != nil {
			logging.Error("site", "writing %s: %v", rel, err)
			res.Failed++
			continue
		}
		res.Pages++
		keep = append(keep, rel)

		entries = append(entries, Entry{
			Path:    rel,
			Title:   p.src.Title,
			Preview: Preview(p.tr, 160),
			Stats:   p.tr.Stats(),
		})
		search = append(search, BuildSearchEntry(rel, p.src.Title, p.tr))
	}
	reporter.Finish()

	for _, dir := range tree.Dirs() {
		if err := g.writeIndexPage(dir, tree, entries); err != nil {
			return nil, fmt.Errorf("writing index for %q: %w", dir, err)
		}
	}

	if err := WriteSearchIndex(search, filepath.Join(g.OutputDir, SearchIndexFile)); err != nil {
		return nil, fmt.Errorf("writing search index: %w", err)
	}

	assets, err := Assets(g.HighlightStyle)
	if err != nil {
		return nil, err
	}
	for name, data := range assets {
		if err := os.WriteFile(filepath.Join(g.OutputDir, name), data, 0o644); err != nil {
			return nil, err
		}
	}

	if g.Catalog != nil {
		if n, err := g.Catalog.Prune(ctx, keep); err != nil {
			logging.Error("site", "pruning catalog: %v", err)
		} else if n > 0 {
			logging.Debug("site", "pruned %d stale catalog records", n)
		}
		build := &catalog.Build{
			StartedAt: time.Now(),
			OutputDir: g.OutputDir,
			Rendered:  res.Rendered,
			Skipped:   res.Reused,
			Failed:    res.Failed,
		}
		if err := g.Catalog.RecordBuild(ctx, build); err != nil {
			logging.Error("site", "recording build: %v", err)
		}
	}

	return res, nil
}

// Collect lists the transcripts under dir. Directory intros and generated
// index pages are never collected.
func Collect(dir string, include, exclude []string) ([]walker.FileInfo, error) {
	files, err := walker.Walk(walker.WalkerConfig{
		RootDir: dir,
		Include: include,
		Exclude: append(slices.Clone(exclude), "**/"+IntroFile, "**/"+IndexFile),
	})
	if err != nil {
		return nil, fmt.Errorf("collecting transcripts: %w", err)
	}
	return files, nil
}

// render fills p.content and p.tr, from the catalog when the cached render
// is fresh. It reports whether the cached render was used.
func (g *SiteGenerator) render(ctx context.Context, pipeline *dom.Pipeline, p *page, options string) (bool, error) {
	r := CachedRenderer{Pipeline: pipeline, Catalog: g.Catalog, Options: options, Collapsed: g.Collapsed}
	content, tr, reused, err := r.Render(ctx, p.src)
	if err != nil {
		return false, err
	}
	p.content, p.tr = content, tr
	return reused, nil
}

func (g *SiteGenerator) writeChatPage(p *page, tree *FileTree) error {
	rel := p.src.RelPath
	outRel := PagePath(rel)
	base := basePath(outRel)
	links := StaticLinker{Base: base}

	data := &Page{
		SiteTitle:      g.Title,
		Title:          p.src.Title,
		AssetBase:      base,
		HomeURL:        links.Dir(""),
		SearchIndexURL: base + SearchIndexFile,
		TreeHTML:       template.HTML(tree.ToHTML(rel, links)),
		Highlight:      g.HighlightStyle != "",
		SourcePath:     rel,
		Content:        template.HTML(p.content),
		Stats:          p.tr.Stats(),
		Diagnostics:    p.tr.Diagnostics,
	}
	return g.writeFile(outRel, func(f *os.File) error { return RenderChatPage(f, data) })
}

func (g *SiteGenerator) writeIndexPage(dir string, tree *FileTree, entries []Entry) error {
	outRel := IndexFile
	if dir != "" {
		outRel = dir + "/" + IndexFile
	}
	base := basePath(outRel)
	links := StaticLinker{Base: base}

	dirs, files := Listing(entries, dir, links)
	for i := range files {
		files[i].URL = links.Page(files[i].Path)
	}

	intro, err := RenderIntro(filepath.Join(g.SourceDir, filepath.FromSlash(dir)), g.HighlightStyle)
	if err != nil {
		logging.Error("site", "intro for %q: %v", dir, err)
	}

	data := &Page{
		SiteTitle:      g.Title,
		Title:          DirTitle(g.Title, dir),
		AssetBase:      base,
		HomeURL:        links.Dir(""),
		SearchIndexURL: base + SearchIndexFile,
		TreeHTML:       template.HTML(tree.ToHTML(dir, links)),
		Highlight:      g.HighlightStyle != "",
		Intro:          intro,
		Dirs:           dirs,
		Entries:        files,
	}
	return g.writeFile(outRel, func(f *os.File) error { return RenderIndexPage(f, data) })
}

func (g *SiteGenerator) writeFile(outRel string, write func(*os.File) error) error {
	outPath := filepath.Join(g.OutputDir, filepath.FromSlash(outRel))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// isIndexPath reports whether rel would overwrite a generated directory page.
func isIndexPath(rel string) bool {
	return strings.EqualFold(path.Base(PagePath(rel)), IndexFile)
}
