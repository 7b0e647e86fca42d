package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/ziadkadry99/chatview/internal/markup"
	"github.com/ziadkadry99/chatview/internal/transcript"
)

// Pipeline turns a transcript source into a mounted chat DOM.
type Pipeline struct {
	Renderer    *markup.Renderer
	Highlighter Highlighter // optional
}

// Result is the output of one pipeline run.
type Result struct {
	Title      string
	Transcript *transcript.Transcript
	// Container is the input container after mounting: <h1> then .chat-container.
	Container *html.Node
}

// Chat returns the .chat-container element.
func (r *Result) Chat() *html.Node {
	return Find(r.Container, ByClass(ClassContainer))
}

// HTML serializes the mounted container.
func (r *Result) HTML() (string, error) {
	return Render(r.Container)
}

// RenderDocument reads an HTML document and renders the transcript held by
// its .markdown-body element, or by <body> when there is none. The title
// comes from <title>.
func (p *Pipeline) RenderDocument(rd io.Reader) (*Result, error) {
	container, src, title, err := parseDocument(rd)
	if err != nil {
		return nil, err
	}
	return p.mount(container, src, title)
}

// ExtractDocument returns the transcript source and <title> text of an HTML
// document without rendering it.
func ExtractDocument(rd io.Reader) (src, title string, err error) {
	_, src, title, err = parseDocument(rd)
	return src, title, err
}

func parseDocument(rd io.Reader) (container *html.Node, src, title string, err error) {
	doc, err := html.Parse(rd)
	if err != nil {
		return nil, "", "", fmt.Errorf("parsing document: %w", err)
	}
	container = Find(doc, ByClass(ClassMarkdownBody))
	if container == nil {
		container = Find(doc, ByTag("body"))
	}
	if container == nil {
		return nil, "", "", fmt.Errorf("document has no body")
	}
	src, err = InnerHTML(container)
	if err != nil {
		return nil, "", "", fmt.Errorf("reading container: %w", err)
	}
	if t := Find(doc, ByTag("title")); t != nil {
		title = strings.TrimSpace(TextContent(t))
	}
	return container, src, title, nil
}

// RenderText renders a plain-text (Markdown) transcript inside a fresh
// .markdown-body container.
func (p *Pipeline) RenderText(src, title string) (*Result, error) {
	container := Element("div", A("class", ClassMarkdownBody))
	return p.mount(container, src, title)
}

func (p *Pipeline) mount(container *html.Node, src, title string) (*Result, error) {
	tr := transcript.Parse(src)
	chat, err := Build(tr.Items, p.Renderer)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = DefaultTitle
	}
	Mount(container, title, chat)

	if p.Highlighter != nil {
		if err := p.Highlighter.HighlightAll(chat); err != nil {
			return nil, fmt.Errorf("highlighting: %w", err)
		}
	}
	return &Result{Title: title, Transcript: tr, Container: container}, nil
}
