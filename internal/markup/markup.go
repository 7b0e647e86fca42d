// Package markup renders the Markdown subset used inside chat messages.
//
// Rewrites run in a fixed order: fenced code blocks, inline code, strong,
// emphasis, list items, blockquotes, paragraphs. Code is swapped out for
// placeholders after the first two passes and restored at the end, so no
// later pass can touch it.
package markup

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// BaseBlockPrefixes are line prefixes that are never wrapped in <p>.
var BaseBlockPrefixes = []string{
	"<ul", "<ol", "<li", "<blockquote", "<pre", `<div class="code-block"`,
}

// DefaultBlockPrefixes extends the base set with common block-level tags.
var DefaultBlockPrefixes = append(slices.Clone(BaseBlockPrefixes),
	"<table", "<thead", "<tbody", "<tr", "<h1", "<h2", "<h3", "<h4", "<h5", "<h6", "<hr", "<details",
)

// PlaintextLanguage is the code class used for fences without a language.
const PlaintextLanguage = "plaintext"

var (
	fencePattern      = regexp.MustCompile("(?s)```(\\w*)\\n(.*?)\\n?```")
	inlineCodePattern = regexp.MustCompile("`([^`]+)`")
	strongPattern     = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	emPattern         = regexp.MustCompile(`\*([^*]+)\*`)
	blockPlaceholder  = regexp.MustCompile("^\x00B\\d+\x00$")
)

// Renderer converts message content into HTML.
type Renderer struct {
	blockPrefixes []string
	escapeHTML    bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithBlockPrefixes adds line prefixes that suppress paragraph wrapping.
func WithBlockPrefixes(prefixes ...string) Option {
	return func(r *Renderer) {
		for _, p := range prefixes {
			if p = strings.TrimSpace(p); p != "" {
				if !strings.HasPrefix(p, "<") {
					p = "<" + p
				}
				r.blockPrefixes = append(r.blockPrefixes, p)
			}
		}
	}
}

// WithEscapeHTML entity-escapes the content before any rewrite runs.
func WithEscapeHTML(on bool) Option {
	return func(r *Renderer) { r.escapeHTML = on }
}

// NewRenderer returns a renderer using DefaultBlockPrefixes plus any options.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{blockPrefixes: slices.Clone(DefaultBlockPrefixes)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRenderer = NewRenderer()

// Render renders content with the default renderer.
func Render(content string) string {
	return defaultRenderer.Render(content)
}

// Fingerprint identifies the renderer configuration; it changes whenever the
// same input could render differently.
func (r *Renderer) Fingerprint() string {
	return fmt.Sprintf("escape=%t;blocks=%s", r.escapeHTML, strings.Join(r.blockPrefixes, ","))
}

// Render converts one message's raw content to HTML.
func (r *Renderer) Render(content string) string {
	content = strings.TrimRight(content, "\n")
	if r.escapeHTML {
		content = html.EscapeString(content)
	}

	var stash []string
	var keys []string
	keep := func(kind, fragment string) string {
		key := "\x00" + kind + strconv.Itoa(len(stash)) + "\x00"
		stash = append(stash, fragment)
		keys = append(keys, key)
		return key
	}

	// Fenced blocks become their own line so they are never wrapped in <p>.
	content = fencePattern.ReplaceAllStringFunc(content, func(m string) string {
		sub := fencePattern.FindStringSubmatch(m)
		return "\n" + keep("B", codeBlock(sub[1], sub[2])) + "\n"
	})
	content = inlineCodePattern.ReplaceAllStringFunc(content, func(m string) string {
		return keep("I", "<code>"+m[1:len(m)-1]+"</code>")
	})

	content = strongPattern.ReplaceAllString(content, "<strong>$1</strong>")
	content = emPattern.ReplaceAllString(content, "<em>$1</em>")

	lines := strings.Split(content, "\n")
	lines = listItems(lines)
	lines = blockquotes(lines)
	lines = r.paragraphs(lines)

	out := strings.Join(lines, "\n")
	for i, key := range keys {
		out = strings.Replace(out, key, stash[i], 1)
	}
	return out
}

func codeBlock(lang, body string) string {
	var b strings.Builder
	b.WriteString(`<div class="code-block">`)
	class := PlaintextLanguage
	if lang != "" {
		class = lang
		fmt.Fprintf(&b, `<div class="language-tag">%s</div>`, lang)
	}
	fmt.Fprintf(&b, `<pre><code class="language-%s">%s</code></pre></div>`, class, body)
	return b.String()
}

// listItems turns "- " lines into <li> and merges each run into one <ul>.
func listItems(lines []string) []string {
	out := make([]string, 0, len(lines))
	var run []string
	flush := func() {
		if len(run) > 0 {
			out = append(out, "<ul>"+strings.Join(run, "")+"</ul>")
			run = nil
		}
	}
	for _, line := range lines {
		if rest, ok := strings.CutPrefix(line, "- "); ok {
			run = append(run, "<li>"+rest+"</li>")
			continue
		}
		flush()
		out = append(out, line)
	}
	flush()
	return out
}

func blockquotes(lines []string) []string {
	for i, line := range lines {
		if rest, ok := strings.CutPrefix(line, "> "); ok {
			lines[i] = "<blockquote>" + rest + "</blockquote>"
		} else if rest, ok := strings.CutPrefix(line, "&gt; "); ok {
			lines[i] = "<blockquote>" + rest + "</blockquote>"
		}
	}
	return lines
}

func (r *Renderer) paragraphs(lines []string) []string {
	out := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if blockPlaceholder.MatchString(trimmed) || r.isBlock(trimmed) {
			out = append(out, trimmed)
			continue
		}
		out = append(out, "<p>"+trimmed+"</p>")
	}
	return out
}

func (r *Renderer) isBlock(line string) bool {
	for _, p := range r.blockPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
