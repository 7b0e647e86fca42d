// Package highlight colors fenced code blocks in a rendered chat tree with
// chroma. It fills the role a client-side highlighter plays in the browser,
// so generated pages need no script to show highlighted code.
package highlight

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/net/html"

	"github.com/ziadkadry99/chatview/internal/dom"
	"github.com/ziadkadry99/chatview/internal/logging"
	"github.com/ziadkadry99/chatview/internal/markup"
)

// WrapperClass is added to every <pre> whose code was highlighted. The
// stylesheet from CSS scopes its rules under it.
const WrapperClass = "chroma"

const languagePrefix = "language-"

// Highlighter tokenizes code blocks by their language-* class.
type Highlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// New returns a highlighter using the named chroma style. Unknown names fall
// back to chroma's default style.
func New(style string) *Highlighter {
	return &Highlighter{
		style: styles.Get(style),
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
		),
	}
}

// Known reports whether style names a registered chroma style.
func Known(style string) bool {
	_, ok := styles.Registry[style]
	return ok
}

// HighlightAll highlights every <pre><code class="language-X"> under root.
// Blocks without a language, with an unknown language, or already
// highlighted are left as they are.
func (h *Highlighter) HighlightAll(root *html.Node) error {
	for _, code := range dom.FindAll(root, dom.ByTag("code")) {
		pre := code.Parent
		if pre == nil || pre.Type != html.ElementNode || pre.Data != "pre" {
			continue
		}
		if dom.HasClass(pre, WrapperClass) {
			continue
		}
		lang := Language(code)
		if lang == "" || lang == markup.PlaintextLanguage {
			continue
		}
		lexer := lexers.Get(lang)
		if lexer == nil {
			logging.Debug("highlight", "no lexer for %q", lang)
			continue
		}

		src := dom.TextContent(code)
		out, err := h.format(lexer, src)
		if err != nil {
			return fmt.Errorf("highlighting %s block: %w", lang, err)
		}
		dom.RemoveChildren(code)
		if err := dom.AppendHTML(code, out); err != nil {
			return fmt.Errorf("parsing highlighted %s block: %w", lang, err)
		}
		dom.AddClass(pre, WrapperClass)
	}
	return nil
}

func (h *Highlighter) format(lexer chroma.Lexer, src string) (string, error) {
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Language returns the language named by a code element's language-* class.
func Language(code *html.Node) string {
	for _, c := range dom.Classes(code) {
		if lang, ok := strings.CutPrefix(c, languagePrefix); ok {
			return lang
		}
	}
	return ""
}

// CSS returns the stylesheet for the named style.
func CSS(style string) (string, error) {
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(style)); err != nil {
		return "", fmt.Errorf("writing %s stylesheet: %w", style, err)
	}
	return buf.String(), nil
}
