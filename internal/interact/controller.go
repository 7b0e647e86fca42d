// Package interact models the chat page's interactive state: section collapse
// and single-message selection. It mutates the same DOM attributes the
// browser script does, so a page can be put into any reachable state before
// it is served.
package interact

import (
	"golang.org/x/net/html"

	"github.com/ziadkadry99/chatview/internal/dom"
	"github.com/ziadkadry99/chatview/internal/transcript"
)

// Visibility is the display state of a section.
type Visibility int

const (
	Expanded Visibility = iota
	Collapsed
)

func (v Visibility) String() string {
	if v == Collapsed {
		return "collapsed"
	}
	return "expanded"
}

// DirectTextSpeaker marks messages that can never be selected.
const DirectTextSpeaker = "direct-text"

// Controller owns section visibility and the selected message for one tree.
// It is not safe for concurrent use.
type Controller struct {
	root        *html.Node
	initialized bool
	toggles     map[*html.Node]*html.Node // toggle button -> header row
	visibility  map[string]Visibility
	selected    *html.Node
}

// New returns a controller for the tree rooted at root. Call Init before
// dispatching clicks.
func New(root *html.Node) *Controller {
	return &Controller{
		root:       root,
		toggles:    make(map[*html.Node]*html.Node),
		visibility: make(map[string]Visibility),
	}
}

// Init binds the per-header collapse handlers and the selection handler.
// It reports false when the controller was already initialized.
func (c *Controller) Init() bool {
	if c.initialized {
		return false
	}
	c.initialized = true

	for _, hdr := range dom.FindAll(c.root, dom.ByClass(dom.ClassSectionHeader)) {
		btn := dom.Find(hdr, dom.ByClass(dom.ClassSectionToggle))
		if btn == nil {
			continue
		}
		c.toggles[btn] = hdr
		if v, _ := dom.Attr(btn, "aria-expanded"); v == "false" {
			id, _ := dom.Attr(hdr, "id")
			c.visibility[transcript.SectionIDFor(id)] = Collapsed
		}
	}
	for _, msg := range dom.FindAll(c.root, dom.ByClass(dom.ClassMessage)) {
		if !dom.HasClass(msg, dom.ClassSelected) {
			continue
		}
		if c.selected == nil {
			c.selected = msg
		} else {
			dom.RemoveClass(msg, dom.ClassSelected)
		}
	}
	return true
}

// Click dispatches a click on target the way the browser delivers it: the
// header toggle handler first, then the document-level selection handler.
func (c *Controller) Click(target *html.Node) {
	if !c.initialized || target == nil {
		return
	}
	if btn := dom.Closest(target, dom.ByClass(dom.ClassSectionToggle)); btn != nil {
		if hdr, ok := c.toggles[btn]; ok {
			c.toggle(hdr, btn)
		}
	}
	c.selectAt(target)
}

// Toggle flips the section controlled by the header with the given id. It
// reports whether a paired section was found.
func (c *Controller) Toggle(headerID string) bool {
	for btn, hdr := range c.toggles {
		if id, _ := dom.Attr(hdr, "id"); id == headerID {
			return c.toggle(hdr, btn)
		}
	}
	return false
}

// CollapseAll collapses every expanded section that has a header.
func (c *Controller) CollapseAll() int {
	return c.setAll(Collapsed)
}

// ExpandAll expands every collapsed section that has a header.
func (c *Controller) ExpandAll() int {
	return c.setAll(Expanded)
}

func (c *Controller) setAll(want Visibility) int {
	n := 0
	for _, hdr := range dom.FindAll(c.root, dom.ByClass(dom.ClassSectionHeader)) {
		btn := dom.Find(hdr, dom.ByClass(dom.ClassSectionToggle))
		if _, ok := c.toggles[btn]; !ok {
			continue
		}
		id, _ := dom.Attr(hdr, "id")
		if c.Visibility(transcript.SectionIDFor(id)) != want && c.toggle(hdr, btn) {
			n++
		}
	}
	return n
}

// Visibility returns the state of a section; unknown sections are expanded.
func (c *Controller) Visibility(sectionID string) Visibility {
	return c.visibility[sectionID]
}

// Selected returns the selected message element, or nil.
func (c *Controller) Selected() *html.Node {
	return c.selected
}

func (c *Controller) toggle(hdr, btn *html.Node) bool {
	id, _ := dom.Attr(hdr, "id")
	sectionID := transcript.SectionIDFor(id)
	section := dom.FindByID(c.root, sectionID)
	if section == nil {
		return false
	}

	expanded, _ := dom.Attr(btn, "aria-expanded")
	if expanded == "false" {
		dom.SetAttr(btn, "aria-expanded", "true")
		dom.SetAttr(section, "style", "display: block")
		dom.SetText(btn, dom.GlyphExpanded)
		c.visibility[sectionID] = Expanded
	} else {
		dom.SetAttr(btn, "aria-expanded", "false")
		dom.SetAttr(section, "style", "display: none")
		dom.SetText(btn, dom.GlyphCollapsed)
		c.visibility[sectionID] = Collapsed
	}
	return true
}

func (c *Controller) selectAt(target *html.Node) {
	msg := dom.Closest(target, dom.ByClass(dom.ClassMessage))
	if msg == nil {
		c.clearSelection()
		return
	}
	for n := target; n != nil && n != msg; n = n.Parent {
		if isInteractive(n) {
			return
		}
	}
	if speaker, _ := dom.Attr(msg, "data-speaker"); speaker == DirectTextSpeaker {
		return
	}

	if msg == c.selected {
		c.clearSelection()
		return
	}
	c.clearSelection()
	dom.AddClass(msg, dom.ClassSelected)
	c.selected = msg
}

func (c *Controller) clearSelection() {
	if c.selected != nil {
		dom.RemoveClass(c.selected, dom.ClassSelected)
		c.selected = nil
	}
}

func isInteractive(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "a", "button", "pre":
		return true
	}
	return dom.HasClass(n, "code-header") ||
		dom.HasClass(n, dom.ClassLanguageTag) ||
		dom.HasClass(n, dom.ClassSectionToggle)
}
