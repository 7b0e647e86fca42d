package walker

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// writeTree creates files (relative path -> content) under a temp dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func relPaths(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.RelPath
	}
	sort.Strings(out)
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

const sampleChat = "## Intro\n<!-- USER -->\nHello\n<!-- ASSISTANT -->\nHi\n"

func TestWalk_BasicTraversal(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"one.md":            sampleChat,
		"team/two.html":     "<html><body>" + sampleChat + "</body></html>",
		"team/notes.txt":    sampleChat,
		"team/diagram.png":  "png",
		"archive/old.htm":   sampleChat,
		"archive/script.js": "var x;",
	})

	files, err := Walk(WalkerConfig{RootDir: dir})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	want := []string{"archive/old.htm", "one.md", "team/notes.txt", "team/two.html"}
	if got := relPaths(files); !equal(got, want) {
		t.Errorf("Walk() = %v, want %v", got, want)
	}
}

func TestWalk_FileInfoFields(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.md":   sampleChat,
		"b.html": sampleChat,
	})

	files, err := Walk(WalkerConfig{RootDir: dir})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}

	for _, f := range files {
		if !filepath.IsAbs(f.Path) {
			t.Errorf("FileInfo.Path %q is not absolute", f.Path)
		}
		if f.Size != int64(len(sampleChat)) {
			t.Errorf("FileInfo.Size for %s is %d", f.RelPath, f.Size)
		}
		if len(f.ContentHash) != 64 {
			t.Errorf("FileInfo.ContentHash for %s has length %d, expected 64", f.RelPath, len(f.ContentHash))
		}
		if f.ContentHash != HashBytes([]byte(sampleChat)) {
			t.Errorf("ContentHash for %s does not match HashBytes", f.RelPath)
		}
	}
	if files[0].Format != FormatMarkdown || files[1].Format != FormatHTML {
		t.Errorf("formats = %s, %s", files[0].Format, files[1].Format)
	}
}

func TestWalk_IncludeExclude(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.md":             sampleChat,
		"nested/b.md":      sampleChat,
		"nested/c.html":    sampleChat,
		"nested/README.md": "# About",
		"drafts/d.md":      sampleChat,
	})

	tests := []struct {
		name    string
		include []string
		exclude []string
		want    []string
	}{
		{
			name: "no filters",
			want: []string{"a.md", "drafts/d.md", "nested/README.md", "nested/b.md", "nested/c.html"},
		},
		{
			name:    "markdown only",
			include: []string{"*.md"},
			want:    []string{"a.md", "drafts/d.md", "nested/README.md", "nested/b.md"},
		},
		{
			name:    "doublestar include",
			include: []string{"nested/**"},
			want:    []string{"nested/README.md", "nested/b.md", "nested/c.html"},
		},
		{
			name:    "exclude readmes and drafts",
			exclude: []string{"**/README.md", "drafts/**"},
			want:    []string{"a.md", "nested/b.md", "nested/c.html"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := Walk(WalkerConfig{RootDir: dir, Include: tt.include, Exclude: tt.exclude})
			if err != nil {
				t.Fatalf("Walk() error: %v", err)
			}
			if got := relPaths(files); !equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWalk_SkipsBinaryFiles(t *testing.T) {
	tmpDir := t.TempDir()

	os.WriteFile(filepath.Join(tmpDir, "chat.md"), []byte(sampleChat), 0644)

	// A transcript-looking name with NUL bytes inside.
	binary := make([]byte, 100)
	binary[50] = 0x00
	os.WriteFile(filepath.Join(tmpDir, "corrupt.md"), binary, 0644)

	files, err := Walk(WalkerConfig{RootDir: tmpDir})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if got := relPaths(files); !equal(got, []string{"chat.md"}) {
		t.Errorf("expected only chat.md, got %v", got)
	}
}

func TestWalk_SkipsLargeFiles(t *testing.T) {
	tmpDir := t.TempDir()

	os.WriteFile(filepath.Join(tmpDir, "small.md"), []byte("small"), 0644)

	big := make([]byte, 200)
	for i := range big {
		big[i] = 'A'
	}
	os.WriteFile(filepath.Join(tmpDir, "big.md"), big, 0644)

	files, err := Walk(WalkerConfig{
		RootDir:     tmpDir,
		MaxFileSize: 100,
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if got := relPaths(files); !equal(got, []string{"small.md"}) {
		t.Errorf("big.md should have been skipped, got %v", got)
	}
}

func TestWalk_DefaultExcludeDirs(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"node_modules/pkg/README.md": "x",
		".git/description.md":        "x",
		".chatview/cache.md":         "x",
		"chat.md":                    sampleChat,
	})

	files, err := Walk(WalkerConfig{RootDir: dir})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if got := relPaths(files); !equal(got, []string{"chat.md"}) {
		t.Errorf("expected 1 file, got %v", got)
	}
}

func TestWalk_Gitignore(t *testing.T) {
	dir := writeTree(t, map[string]string{
		".gitignore":        "# private\nsecret.md\nscratch/\n/exports/*.html\n",
		"chat.md":           sampleChat,
		"secret.md":         sampleChat,
		"scratch/tmp.md":    sampleChat,
		"exports/a.html":    sampleChat,
		"nested/exports.md": sampleChat,
	})

	files, err := Walk(WalkerConfig{RootDir: dir})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	want := []string{"chat.md", "nested/exports.md"}
	if got := relPaths(files); !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWalk_MissingRoot(t *testing.T) {
	if _, err := Walk(WalkerConfig{RootDir: filepath.Join(t.TempDir(), "absent")}); err == nil {
		t.Error("expected an error for a missing root")
	}
}

func TestWalk_ContentHashConsistency(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.md": sampleChat, "b.md": "other"})

	files1, err := Walk(WalkerConfig{RootDir: dir})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	files2, err := Walk(WalkerConfig{RootDir: dir})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	hash1 := make(map[string]string)
	for _, f := range files1 {
		hash1[f.RelPath] = f.ContentHash
	}
	for _, f := range files2 {
		if h := hash1[f.RelPath]; h != f.ContentHash {
			t.Errorf("content hash mismatch for %s: %s vs %s", f.RelPath, h, f.ContentHash)
		}
	}
	if hash1["a.md"] == hash1["b.md"] {
		t.Error("different content produced the same hash")
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"chat.md", FormatMarkdown},
		{"CHAT.MD", FormatMarkdown},
		{"dir/log.markdown", FormatMarkdown},
		{"notes.txt", FormatMarkdown},
		{"export.html", FormatHTML},
		{"export.htm", FormatHTML},
		{"image.png", FormatUnknown},
		{"Makefile", FormatUnknown},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.filename); got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestMatchesInclude_Empty(t *testing.T) {
	if !MatchesInclude("any/file.md", nil) {
		t.Error("empty include patterns should match everything")
	}
}

func TestMatchesExclude_Empty(t *testing.T) {
	if MatchesExclude("any/file.md", nil) {
		t.Error("empty exclude patterns should match nothing")
	}
}

func TestMatches_BaseName(t *testing.T) {
	if !MatchesInclude("deep/nested/chat.md", []string{"*.md"}) {
		t.Error("*.md should match by base name at any depth")
	}
	if MatchesExclude("deep/chat.md", []string{"other/**"}) {
		t.Error("other/** should not match deep/chat.md")
	}
}

func TestValidatePatterns(t *testing.T) {
	if err := ValidatePatterns([]string{"**/*.md", "chats/*.html"}); err != nil {
		t.Errorf("valid patterns rejected: %v", err)
	}
	if err := ValidatePatterns([]string{"[unclosed"}); err == nil {
		t.Error("expected an error for a malformed pattern")
	}
}
