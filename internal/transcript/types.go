package transcript

import (
	"fmt"
	"strings"
)

// Speaker identifies who authored a message.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Message is a single utterance. Content is trimmed and never empty.
type Message struct {
	Speaker Speaker `json:"speaker"`
	Content string  `json:"content"`
}

// Item is either a *Header or a *Section.
type Item interface {
	ItemID() string
	item()
}

// Section is a contiguous, non-empty run of messages.
type Section struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
}

func (s *Section) ItemID() string { return s.ID }
func (*Section) item()            {}

// Header marks a section boundary. SectionID names the section emitted right
// after it and is empty when the header is followed by another header or by
// the end of the transcript.
type Header struct {
	ID        string `json:"id"`
	Level     int    `json:"level"`
	Text      string `json:"text"`
	SectionID string `json:"section_id,omitempty"`
}

func (h *Header) ItemID() string { return h.ID }
func (*Header) item()            {}

// Paired reports whether a section follows this header.
func (h *Header) Paired() bool { return h.SectionID != "" }

// HTML returns the header text wrapped in its heading tag.
func (h *Header) HTML() string {
	return fmt.Sprintf("<h%d>%s</h%d>", h.Level, h.Text, h.Level)
}

// SectionIDFor maps a header id onto the id of the section it controls.
func SectionIDFor(headerID string) string {
	return strings.Replace(headerID, "header-", "section-", 1)
}

func sectionID(n int) string { return fmt.Sprintf("section-%d", n) }
func headerID(n int) string  { return fmt.Sprintf("header-%d", n) }

// DiagnosticKind names a non-fatal segmentation anomaly.
type DiagnosticKind string

const (
	ParseDropped   DiagnosticKind = "parse_dropped"
	OrphanSpeaker  DiagnosticKind = "orphan_speaker"
	UnpairedHeader DiagnosticKind = "unpaired_header"
)

// Diagnostic records where and why input was dropped or left unpaired.
type Diagnostic struct {
	Kind   DiagnosticKind `json:"kind"`
	Line   int            `json:"line"`
	Detail string         `json:"detail,omitempty"`
}

func (d Diagnostic) String() string {
	if d.Detail == "" {
		return fmt.Sprintf("line %d: %s", d.Line, d.Kind)
	}
	return fmt.Sprintf("line %d: %s (%s)", d.Line, d.Kind, d.Detail)
}

// Transcript is the segmented form of a chat transcript.
type Transcript struct {
	Items       []Item
	Diagnostics []Diagnostic
}

// Sections returns the sections in document order.
func (t *Transcript) Sections() []*Section {
	var out []*Section
	for _, it := range t.Items {
		if s, ok := it.(*Section); ok {
			out = append(out, s)
		}
	}
	return out
}

// Headers returns the headers in document order.
func (t *Transcript) Headers() []*Header {
	var out []*Header
	for _, it := range t.Items {
		if h, ok := it.(*Header); ok {
			out = append(out, h)
		}
	}
	return out
}

// Stats summarizes a transcript.
type Stats struct {
	Sections          int `json:"sections"`
	Messages          int `json:"messages"`
	UserMessages      int `json:"user_messages"`
	AssistantMessages int `json:"assistant_messages"`
}

func (t *Transcript) Stats() Stats {
	var st Stats
	for _, s := range t.Sections() {
		st.Sections++
		for _, m := range s.Messages {
			st.Messages++
			switch m.Speaker {
			case SpeakerUser:
				st.UserMessages++
			case SpeakerAssistant:
				st.AssistantMessages++
			}
		}
	}
	return st
}

// FirstMessage returns the first message from speaker, if any.
func (t *Transcript) FirstMessage(speaker Speaker) (Message, bool) {
	for _, s := range t.Sections() {
		for _, m := range s.Messages {
			if m.Speaker == speaker {
				return m, true
			}
		}
	}
	return Message{}, false
}
