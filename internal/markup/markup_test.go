package markup

import (
	"strings"
	"testing"
)

func TestRenderInline(t *testing.T) {
	tests := []struct {
		name, input, want string
	}{
		{"strong", "Hello **world**", "<p>Hello <strong>world</strong></p>"},
		{"inline code", "Hi `there`", "<p>Hi <code>there</code></p>"},
		{"emphasis", "an *important* word", "<p>an <em>important</em> word</p>"},
		{"strong before em", "**a** and *b*", "<p><strong>a</strong> and <em>b</em></p>"},
		{"code alone is a paragraph", "`x`", "<p><code>x</code></p>"},
		{"stars inside inline code", "`a*b*c`", "<p><code>a*b*c</code></p>"},
		{"trailing newline stripped", "text\n", "<p>text</p>"},
		{"blank lines dropped", "one\n\ntwo", "<p>one</p>\n<p>two</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.input); got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRenderLists(t *testing.T) {
	got := Render("Intro\n- one\n- **two**\nafter\n- lone")
	want := "<p>Intro</p>\n<ul><li>one</li><li><strong>two</strong></li></ul>\n<p>after</p>\n<ul><li>lone</li></ul>"
	if got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestRenderBlockquotes(t *testing.T) {
	got := Render("> first\n> second\n&gt; escaped")
	want := "<blockquote>first</blockquote>\n<blockquote>second</blockquote>\n<blockquote>escaped</blockquote>"
	if got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestRenderFencedCodeBlock(t *testing.T) {
	src := "Look:\n```py\n**bold**\n- not a list\n> nor a quote\n`tick`\n```\ndone"
	got := Render(src)

	wantBlock := `<div class="code-block"><div class="language-tag">py</div>` +
		`<pre><code class="language-py">**bold**` + "\n- not a list\n> nor a quote\n`tick`" + `</code></pre></div>`
	if !strings.Contains(got, wantBlock) {
		t.Fatalf("code block not preserved verbatim:\n%s", got)
	}
	if strings.Contains(got, "<strong>") || strings.Contains(got, "<li>") || strings.Contains(got, "<blockquote>") {
		t.Errorf("rewrites leaked into code block:\n%s", got)
	}
	if !strings.HasPrefix(got, "<p>Look:</p>\n") || !strings.HasSuffix(got, "\n<p>done</p>") {
		t.Errorf("surrounding paragraphs wrong:\n%s", got)
	}
	if strings.Contains(got, "<p><div") {
		t.Error("code block must not be wrapped in a paragraph")
	}
}

func TestRenderFenceWithoutLanguage(t *testing.T) {
	got := Render("```\nplain\n```")
	want := `<div class="code-block"><pre><code class="language-plaintext">plain</code></pre></div>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderEmptyFence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"```py\n```", `<div class="code-block"><div class="language-tag">py</div><pre><code class="language-py"></code></pre></div>`},
		{"```\n```", `<div class="code-block"><pre><code class="language-plaintext"></code></pre></div>`},
	}
	for _, tt := range tests {
		if got := Render(tt.src); got != tt.want {
			t.Errorf("Render(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestRenderMultipleFences(t *testing.T) {
	got := Render("```go\na := 1\n```\nbetween *x*\n```sh\nls *\n```")
	if strings.Count(got, `class="code-block"`) != 2 {
		t.Fatalf("want two code blocks:\n%s", got)
	}
	if !strings.Contains(got, "<p>between <em>x</em></p>") {
		t.Errorf("text between fences not rendered:\n%s", got)
	}
	if !strings.Contains(got, "ls *</code>") {
		t.Errorf("second fence body changed:\n%s", got)
	}
}

func TestParagraphGuard(t *testing.T) {
	src := "<table><tr><td>x</td></tr></table>\n<section>custom</section>"

	base := NewRenderer().Render(src)
	if !strings.HasPrefix(base, "<table>") {
		t.Errorf("table wrapped in paragraph: %q", base)
	}
	if !strings.Contains(base, "<p><section>") {
		t.Errorf("unknown tag should be wrapped by default: %q", base)
	}

	extended := NewRenderer(WithBlockPrefixes("section")).Render(src)
	if strings.Contains(extended, "<p><section>") {
		t.Errorf("configured prefix should suppress paragraph: %q", extended)
	}
}

func TestEscapeHTML(t *testing.T) {
	r := NewRenderer(WithEscapeHTML(true))
	got := r.Render("<script>alert(1)</script> **ok**\n> quoted")
	if strings.Contains(got, "<script>") {
		t.Fatalf("raw HTML survived escaping: %q", got)
	}
	if !strings.Contains(got, "&lt;script&gt;") || !strings.Contains(got, "<strong>ok</strong>") {
		t.Errorf("unexpected output: %q", got)
	}
	if !strings.Contains(got, "<blockquote>quoted</blockquote>") {
		t.Errorf("blockquote lost after escaping: %q", got)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	src := "# x\n- a\n- b\n```js\nlet y = `z`\n```\n**q** *r*"
	if Render(src) != Render(src) {
		t.Error("rendering the same input twice gave different output")
	}
}

func TestFingerprint(t *testing.T) {
	a := NewRenderer().Fingerprint()
	b := NewRenderer(WithEscapeHTML(true)).Fingerprint()
	c := NewRenderer(WithBlockPrefixes("<aside")).Fingerprint()
	if a == b || a == c {
		t.Errorf("fingerprints should differ: %q %q %q", a, b, c)
	}
}
