package transcript

import (
	"iter"
	"regexp"
	"strings"
)

// TokenKind classifies a single source line.
type TokenKind int

const (
	KindContent TokenKind = iota
	KindHeader
	KindSpeakerUser
	KindSpeakerAssistant
	KindCommentNoise
)

func (k TokenKind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindSpeakerUser:
		return "speaker-user"
	case KindSpeakerAssistant:
		return "speaker-assistant"
	case KindCommentNoise:
		return "comment"
	default:
		return "content"
	}
}

// Speaker markers recognized anywhere on a line.
const (
	UserMarker      = "<!-- USER -->"
	AssistantMarker = "<!-- ASSISTANT -->"
)

// Token is one classified line of a transcript. Level and Text are set for
// header tokens; Text holds the trimmed line for content tokens.
type Token struct {
	Kind  TokenKind
	Level int
	Text  string
	Line  int // 1-based source line
}

var headerPattern = regexp.MustCompile(`^(#{2,4})\s+(.+)`)

// Tokenize lazily classifies src line by line.
func Tokenize(src string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		line := 0
		for raw := range strings.SplitSeq(src, "\n") {
			line++
			tok := classify(strings.TrimSpace(raw))
			tok.Line = line
			if !yield(tok) {
				return
			}
		}
	}
}

func classify(line string) Token {
	if m := headerPattern.FindStringSubmatch(line); m != nil {
		return Token{Kind: KindHeader, Level: clampLevel(len(m[1])), Text: strings.TrimSpace(m[2])}
	}
	switch {
	case strings.Contains(line, UserMarker):
		return Token{Kind: KindSpeakerUser}
	case strings.Contains(line, AssistantMarker):
		return Token{Kind: KindSpeakerAssistant}
	case strings.Contains(line, "<!--") || strings.Contains(line, "-->"):
		return Token{Kind: KindCommentNoise, Text: line}
	}
	return Token{Kind: KindContent, Text: line}
}

func clampLevel(n int) int {
	return min(max(n, 2), 4)
}
