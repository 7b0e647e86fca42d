package transcript

import (
	"fmt"
	"cmp"
	"iter"
	"slices"
	"strings"
)

// Parse tokenizes and segments src in one pass.
func Parse(src string) *Transcript {
	return Segment(Tokenize(src))
}

// Segment folds a token stream into headers and sections.
//
// A header always receives id header-<n>, where n is the number of sections
// emitted so far, so the section that follows it gets section-<n>. When two
// headers meet with no section between them the earlier one is renamed to
// header-<n>-<k> to keep ids unique; it controls no section.
func Segment(tokens iter.Seq[Token]) *Transcript {
	s := &segmenter{}
	for tok := range tokens {
		switch tok.Kind {
		case KindSpeakerUser:
			s.switchSpeaker(SpeakerUser, tok.Line)
		case KindSpeakerAssistant:
			s.switchSpeaker(SpeakerAssistant, tok.Line)
		case KindContent:
			s.content(tok)
		case KindHeader:
			s.header(tok)
		case KindCommentNoise:
		}
	}
	s.flushMessage()
	s.emitSection()
	if h, ok := s.lastHeader(); ok {
		s.diag(UnpairedHeader, s.headerLine, h.ID)
	}
	// Some diagnostics are only known once a later line arrives.
	slices.SortStableFunc(s.diags, func(a, b Diagnostic) int { return cmp.Compare(a.Line, b.Line) })
	return &Transcript{Items: s.items, Diagnostics: s.diags}
}

type segmenter struct {
	speaker     Speaker // empty while idle
	speakerLine int
	current     strings.Builder
	pending     []Message
	items       []Item
	diags       []Diagnostic
	sections    int
	renamed     int
	headerLine  int
}

func (s *segmenter) switchSpeaker(sp Speaker, line int) {
	s.flushMessage()
	s.speaker = sp
	s.speakerLine = line
}

func (s *segmenter) content(tok Token) {
	if s.speaker == "" {
		if tok.Text != "" {
			s.diag(ParseDropped, tok.Line, "")
		}
		return
	}
	s.current.WriteString(tok.Text)
	s.current.WriteByte('\n')
}

func (s *segmenter) header(tok Token) {
	s.flushMessage()
	s.emitSection()

	id := headerID(s.sections)
	if prev, ok := s.lastHeader(); ok {
		prev.ID = fmt.Sprintf("%s-%d", prev.ID, s.renamed)
		s.renamed++
		s.diag(UnpairedHeader, s.headerLine, prev.ID)
	}
	s.items = append(s.items, &Header{ID: id, Level: tok.Level, Text: tok.Text})
	s.headerLine = tok.Line
	s.speaker = ""
}

// flushMessage commits the in-progress message, if it has any text.
func (s *segmenter) flushMessage() {
	if s.speaker == "" {
		return
	}
	content := strings.TrimSpace(s.current.String())
	s.current.Reset()
	if content == "" {
		s.diag(OrphanSpeaker, s.speakerLine, string(s.speaker))
		return
	}
	s.pending = append(s.pending, Message{Speaker: s.speaker, Content: content})
}

func (s *segmenter) emitSection() {
	if len(s.pending) == 0 {
		return
	}
	sec := &Section{ID: sectionID(s.sections), Messages: s.pending}
	if h, ok := s.lastHeader(); ok {
		h.SectionID = sec.ID
	}
	s.items = append(s.items, sec)
	s.pending = nil
	s.sections++
}

// lastHeader returns the final item when it is a header.
func (s *segmenter) lastHeader() (*Header, bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	h, ok := s.items[len(s.items)-1].(*Header)
	return h, ok
}

func (s *segmenter) diag(kind DiagnosticKind, line int, detail string) {
	s.diags = append(s.diags, Diagnostic{Kind: kind, Line: line, Detail: detail})
}
