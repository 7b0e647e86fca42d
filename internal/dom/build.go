package dom

import (
	"fmt"
	"strconv"

	"golang.org/x/net/html"

	"github.com/ziadkadry99/chatview/internal/markup"
	"github.com/ziadkadry99/chatview/internal/transcript"
)

// Class names and attribute values that make up the chat DOM contract.
const (
	ClassContainer     = "chat-container"
	ClassSectionHeader = "chat-section-header"
	ClassSectionToggle = "section-toggle"
	ClassHeaderContent = "header-content"
	ClassSection       = "chat-section"
	ClassMessage       = "message"
	ClassSelected      = "selected"
	ClassCodeBlock     = "code-block"
	ClassLanguageTag   = "language-tag"
	ClassMarkdownBody  = "markdown-body"

	GlyphExpanded  = "▼"
	GlyphCollapsed = "►"

	// DefaultTitle is used when a transcript has no title of its own.
	DefaultTitle = "Chat Transcript"
)

// Highlighter colors code blocks in a built tree.
type Highlighter interface {
	HighlightAll(root *html.Node) error
}

// Build materializes transcript items into a detached .chat-container element.
// Message bodies are rendered with r.
func Build(items []transcript.Item, r *markup.Renderer) (*html.Node, error) {
	if r == nil {
		r = markup.NewRenderer()
	}
	container := Element("div", A("class", ClassContainer))
	for _, it := range items {
		var (
			n   *html.Node
			err error
		)
		switch v := it.(type) {
		case *transcript.Header:
			n, err = buildHeader(v)
		case *transcript.Section:
			n, err = buildSection(v, r)
		default:
			err = fmt.Errorf("unknown item type %T", it)
		}
		if err != nil {
			return nil, fmt.Errorf("building %s: %w", it.ItemID(), err)
		}
		container.AppendChild(n)
	}
	return container, nil
}

func buildHeader(h *transcript.Header) (*html.Node, error) {
	row := Element("div",
		A("class", ClassSectionHeader),
		A("id", h.ID),
		A("data-level", strconv.Itoa(h.Level)),
		A("data-section-id", h.SectionID),
	)

	toggle := Element("button",
		A("type", "button"),
		A("class", ClassSectionToggle),
		A("aria-expanded", "true"),
	)
	if h.Paired() {
		SetAttr(toggle, "aria-controls", h.SectionID)
	}
	toggle.AppendChild(Text(GlyphExpanded))
	row.AppendChild(toggle)

	content := Element("div", A("class", ClassHeaderContent))
	if err := AppendHTML(content, h.HTML()); err != nil {
		return nil, err
	}
	row.AppendChild(content)
	return row, nil
}

func buildSection(s *transcript.Section, r *markup.Renderer) (*html.Node, error) {
	sec := Element("div", A("class", ClassSection), A("id", s.ID))
	for _, m := range s.Messages {
		msg := Element("div",
			A("class", ClassMessage+" "+string(m.Speaker)),
			A("data-speaker", string(m.Speaker)),
		)
		if err := AppendHTML(msg, r.Render(m.Content)); err != nil {
			return nil, err
		}
		sec.AppendChild(msg)
	}
	return sec, nil
}

// Mount replaces the children of container with an <h1> title followed by chat.
func Mount(container *html.Node, title string, chat *html.Node) {
	if title == "" {
		title = DefaultTitle
	}
	RemoveChildren(container)
	h1 := Element("h1")
	h1.AppendChild(Text(title))
	container.AppendChild(h1)
	container.AppendChild(chat)
}
