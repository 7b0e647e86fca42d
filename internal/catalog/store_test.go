package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/ziadkadry99/chatview/internal/db"
	"github.com/ziadkadry99/chatview/internal/transcript"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func sampleRecord(path string) *Record {
	tr := transcript.Parse("## A\n<!-- USER -->\nhi\n<!-- ASSISTANT -->\nhello\nstray")
	return &Record{
		Path:         path,
		Title:        "Sample",
		Format:       "markdown",
		ContentHash:  "hash-1",
		Options:      "opts-1",
		Stats:        tr.Stats(),
		Diagnostics:  []transcript.Diagnostic{{Kind: transcript.UnpairedHeader, Line: 7}},
		RenderedHTML: `<div class="chat-container"></div>`,
	}
}

func TestUpsertAndGetByPath(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	rec := sampleRecord("team/a.md")
	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("Upsert should assign an id")
	}

	got, err := store.GetByPath(ctx, "team/a.md")
	if err != nil {
		t.Fatalf("GetByPath: %v", err)
	}
	if got.ID != rec.ID || got.Title != "Sample" || got.ContentHash != "hash-1" {
		t.Errorf("got %+v", got)
	}
	if got.Stats.Messages != 2 || got.Stats.UserMessages != 1 || got.Stats.AssistantMessages != 1 {
		t.Errorf("stats = %+v", got.Stats)
	}
	if len(got.Diagnostics) != 1 || got.Diagnostics[0].Kind != transcript.UnpairedHeader {
		t.Errorf("diagnostics = %v", got.Diagnostics)
	}
	if got.RenderedHTML != rec.RenderedHTML {
		t.Errorf("RenderedHTML = %q", got.RenderedHTML)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}
}

func TestUpsertKeepsID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	first := sampleRecord("a.md")
	if err := store.Upsert(ctx, first); err != nil {
		t.Fatal(err)
	}

	second := sampleRecord("a.md")
	second.ContentHash = "hash-2"
	if err := store.Upsert(ctx, second); err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("id changed on update: %s -> %s", first.ID, second.ID)
	}

	got, err := store.GetByPath(ctx, "a.md")
	if err != nil {
		t.Fatal(err)
	}
	if got.ContentHash != "hash-2" {
		t.Errorf("ContentHash = %q, want hash-2", got.ContentHash)
	}
}

func TestUpsertRequiresPath(t *testing.T) {
	store := setupStore(t)
	if err := store.Upsert(context.Background(), &Record{}); err == nil {
		t.Error("expected an error for a record without a path")
	}
}

func TestGetByPathNotFound(t *testing.T) {
	store := setupStore(t)
	_, err := store.GetByPath(context.Background(), "missing.md")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListDeletePrune(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for _, p := range []string{"c.md", "a.md", "b/x.html"} {
		if err := store.Upsert(ctx, sampleRecord(p)); err != nil {
			t.Fatal(err)
		}
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 || list[0].Path != "a.md" || list[1].Path != "b/x.html" || list[2].Path != "c.md" {
		t.Fatalf("List order = %v", list)
	}
	if list[0].RenderedHTML != "" {
		t.Error("List should not load rendered HTML")
	}

	if err := store.Delete(ctx, "c.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "c.md"); err != nil {
		t.Errorf("deleting a missing path: %v", err)
	}

	n, err := store.Prune(ctx, []string{"a.md"})
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Errorf("Prune removed %d rows, want 1", n)
	}
	list, _ = store.List(ctx)
	if len(list) != 1 || list[0].Path != "a.md" {
		t.Errorf("after prune: %v", list)
	}

	n, err = store.Prune(ctx, nil)
	if err != nil || n != 1 {
		t.Errorf("Prune(nil) = %d, %v; want 1, nil", n, err)
	}
}

func TestFresh(t *testing.T) {
	rec := sampleRecord("a.md")
	tests := []struct {
		hash, opts string
		want       bool
	}{
		{"hash-1", "opts-1", true},
		{"hash-2", "opts-1", false},
		{"hash-1", "opts-2", false},
	}
	for _, tt := range tests {
		if got := rec.Fresh(tt.hash, tt.opts); got != tt.want {
			t.Errorf("Fresh(%q, %q) = %v, want %v", tt.hash, tt.opts, got, tt.want)
		}
	}
	var missing *Record
	if missing.Fresh("hash-1", "opts-1") {
		t.Error("a nil record is never fresh")
	}
}

func TestBuilds(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if _, err := store.LastBuild(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("LastBuild on empty catalog: %v", err)
	}

	if err := store.RecordBuild(ctx, &Build{OutputDir: "site", Rendered: 1}); err != nil {
		t.Fatal(err)
	}
	second := &Build{OutputDir: "site", Rendered: 2, Skipped: 3, Failed: 1}
	if err := store.RecordBuild(ctx, second); err != nil {
		t.Fatal(err)
	}

	last, err := store.LastBuild(ctx)
	if err != nil {
		t.Fatalf("LastBuild: %v", err)
	}
	if last.ID != second.ID || last.Skipped != 3 || last.Failed != 1 {
		t.Errorf("LastBuild = %+v", last)
	}
}
