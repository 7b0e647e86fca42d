// Package catalog persists rendered transcripts so unchanged files are not
// re-rendered.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/chatview/internal/db"
	"github.com/ziadkadry99/chatview/internal/transcript"
)

// Store provides CRUD operations for catalog records.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Upsert inserts rec or replaces the record with the same path. A new record
// gets a UUID; an existing one keeps its id. rec.ID and rec.UpdatedAt are
// set from the stored row.
func (s *Store) Upsert(ctx context.Context, rec *Record) error {
	if rec.Path == "" {
		return fmt.Errorf("catalog: record has no path")
	}
	diags := rec.Diagnostics
	if diags == nil {
		diags = []transcript.Diagnostic{}
	}
	diagJSON, err := json.Marshal(diags)
	if err != nil {
		return fmt.Errorf("marshalling diagnostics: %w", err)
	}

	s.db.Lock()
	defer s.db.Unlock()

	var ts string
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO transcripts (
			id, path, title, format, content_hash, options,
			sections, messages, user_messages, assistant_messages,
			diagnostics, rendered_html, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(path) DO UPDATE SET
			title = excluded.title,
			format = excluded.format,
			content_hash = excluded.content_hash,
			options = excluded.options,
			sections = excluded.sections,
			messages = excluded.messages,
			user_messages = excluded.user_messages,
			assistant_messages = excluded.assistant_messages,
			diagnostics = excluded.diagnostics,
			rendered_html = excluded.rendered_html,
			updated_at = excluded.updated_at
		RETURNING id, updated_at`,
		uuid.New().String(),
		rec.Path,
		rec.Title,
		rec.Format,
		rec.ContentHash,
		rec.Options,
		rec.Stats.Sections,
		rec.Stats.Messages,
		rec.Stats.UserMessages,
		rec.Stats.AssistantMessages,
		string(diagJSON),
		rec.RenderedHTML,
	).Scan(&rec.ID, &ts)
	if err != nil {
		return fmt.Errorf("upserting transcript %s: %w", rec.Path, err)
	}
	rec.UpdatedAt = parseTime(ts)
	return nil
}

// GetByPath returns the full record, including rendered HTML, for path.
func (s *Store) GetByPath(ctx context.Context, path string) (*Record, error) {
	s.db.RLock()
	defer s.db.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, path, title, format, content_hash, options,
			   sections, messages, user_messages, assistant_messages,
			   diagnostics, rendered_html, updated_at
		FROM transcripts WHERE path = ?`, path)
	rec, err := scanRecord(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading transcript %s: %w", path, err)
	}
	return rec, nil
}

// List returns every record ordered by path. RenderedHTML is not loaded.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	s.db.RLock()
	defer s.db.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, title, format, content_hash, options,
			   sections, messages, user_messages, assistant_messages,
			   diagnostics, updated_at
		FROM transcripts ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("listing transcripts: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows, false)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Delete removes the record for path. Deleting a missing path is not an error.
func (s *Store) Delete(ctx context.Context, path string) error {
	s.db.Lock()
	defer s.db.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM transcripts WHERE path = ?", path); err != nil {
		return fmt.Errorf("deleting transcript %s: %w", path, err)
	}
	return nil
}

// Prune removes every record whose path is not in keep and returns the
// number of deleted rows.
func (s *Store) Prune(ctx context.Context, keep []string) (int64, error) {
	s.db.Lock()
	defer s.db.Unlock()

	query := "DELETE FROM transcripts"
	args := make([]any, len(keep))
	if len(keep) > 0 {
		query += " WHERE path NOT IN (?" + strings.Repeat(", ?", len(keep)-1) + ")"
		for i, p := range keep {
			args[i] = p
		}
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("pruning transcripts: %w", err)
	}
	return res.RowsAffected()
}

// RecordBuild stores a site build summary. If b.ID is empty a UUID is generated.
func (s *Store) RecordBuild(ctx context.Context, b *Build) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.StartedAt.IsZero() {
		b.StartedAt = time.Now()
	}

	s.db.Lock()
	defer s.db.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO site_builds (id, started_at, output_dir, rendered, skipped, failed)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID,
		b.StartedAt.UTC().Format(time.DateTime),
		b.OutputDir,
		b.Rendered,
		b.Skipped,
		b.Failed,
	)
	if err != nil {
		return fmt.Errorf("recording build: %w", err)
	}
	return nil
}

// LastBuild returns the most recent build, or ErrNotFound.
func (s *Store) LastBuild(ctx context.Context) (*Build, error) {
	s.db.RLock()
	defer s.db.RUnlock()

	var (
		b  Build
		ts string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, output_dir, rendered, skipped, failed
		FROM site_builds ORDER BY started_at DESC, rowid DESC LIMIT 1`,
	).Scan(&b.ID, &ts, &b.OutputDir, &b.Rendered, &b.Skipped, &b.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading last build: %w", err)
	}
	b.StartedAt = parseTime(ts)
	return &b, nil
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner, withHTML bool) (*Record, error) {
	var (
		rec      Record
		diagJSON string
		ts       string
	)
	dest := []any{
		&rec.ID, &rec.Path, &rec.Title, &rec.Format, &rec.ContentHash, &rec.Options,
		&rec.Stats.Sections, &rec.Stats.Messages, &rec.Stats.UserMessages, &rec.Stats.AssistantMessages,
		&diagJSON,
	}
	if withHTML {
		dest = append(dest, &rec.RenderedHTML)
	}
	dest = append(dest, &ts)

	if err := sc.Scan(dest...); err != nil {
		return nil, err
	}
	rec.UpdatedAt = parseTime(ts)
	if err := json.Unmarshal([]byte(diagJSON), &rec.Diagnostics); err != nil {
		rec.Diagnostics = nil
	}
	return &rec, nil
}

func parseTime(ts string) time.Time {
	if t, err := time.Parse(time.DateTime, ts); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t
	}
	return time.Time{}
}
