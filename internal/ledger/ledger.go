// Package ledger archives removal records in PostgreSQL. The text removal
// logs stay the replay input; the ledger keeps every run queryable.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"tagsync/internal/removallog"
	"tagsync/internal/tags"
	"tagsync/internal/textutil"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// DB is the subset of pgxpool.Pool the ledger needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const schema = `CREATE TABLE IF NOT EXISTS tag_removals (
	hash        TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL,
	position    TEXT NOT NULL,
	dialogue    INTEGER NOT NULL,
	file_path   TEXT NOT NULL,
	file_line   INTEGER NOT NULL,
	tag         TEXT NOT NULL,
	before_text TEXT NOT NULL,
	after_text  TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS tag_removals_run_idx ON tag_removals (run_id)`

const insertRemoval = `INSERT INTO tag_removals
	(hash, run_id, position, dialogue, file_path, file_line, tag, before_text, after_text)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (hash) DO NOTHING`

const selectColumns = `SELECT run_id, position, dialogue, file_path, file_line, tag, before_text, after_text, created_at
FROM tag_removals`

// Entry is one archived removal.
type Entry struct {
	RunID     string    `json:"run_id"`
	Position  string    `json:"position"`
	Dialogue  int       `json:"dialogue"`
	Path      string    `json:"file_path"`
	FileLine  int       `json:"file_line"`
	Tag       string    `json:"tag"`
	Before    string    `json:"before"`
	After     string    `json:"after"`
	CreatedAt time.Time `json:"created_at"`
}

// Record converts the entry back to a removal record.
func (e Entry) Record() removallog.Record {
	pos, _ := tags.ParsePosition(e.Position)
	return removallog.Record{
		Position: pos,
		Dialogue: e.Dialogue,
		Path:     e.Path,
		FileLine: e.FileLine,
		Tag:      e.Tag,
		Before:   e.Before,
		After:    e.After,
	}
}

// Store persists removal records.
type Store struct {
	db DB
}

// NewStore creates a ledger store on db.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the ledger table if needed.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure ledger schema: %w", err)
	}
	return nil
}

// RecordHash is the dedupe key of a removal. A record replayed from the same
// log hashes the same, so appending twice stores it once.
func RecordHash(r removallog.Record) string {
	return textutil.Hash(
		r.Position.String(),
		fmt.Sprint(r.Dialogue),
		r.Path,
		fmt.Sprint(r.FileLine),
		r.Tag,
		r.Before,
	)
}

// Append stores records under runID and returns how many were new.
func (s *Store) Append(ctx context.Context, runID string, records []removallog.Record) (int, error) {
	inserted := 0
	for _, r := range records {
		tag, err := s.db.Exec(ctx, insertRemoval,
			RecordHash(r),
			runID,
			r.Position.String(),
			r.Dialogue,
			r.Path,
			r.FileLine,
			r.Tag,
			r.Before,
			r.After,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert removal: %w", err)
		}
		if tag.RowsAffected() > 0 {
			inserted++
		}
	}

	log.Info().Str("run", runID).Int("records", len(records)).Int("inserted", inserted).Msg("Removals archived")
	return inserted, nil
}

// ListRun returns the removals of one run ordered by file and line.
func (s *Store) ListRun(ctx context.Context, runID string) ([]Entry, error) {
	return s.list(ctx, selectColumns+` WHERE run_id = $1 ORDER BY file_path, file_line`, runID)
}

// ListAll returns every archived removal.
func (s *Store) ListAll(ctx context.Context) ([]Entry, error) {
	return s.list(ctx, selectColumns+` ORDER BY created_at, file_path, file_line`)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query removals: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.RunID, &e.Position, &e.Dialogue, &e.Path, &e.FileLine, &e.Tag, &e.Before, &e.After, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan removal: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate removals: %w", err)
	}
	return entries, nil
}

// ExportTSV writes entries to a TSV file.
func ExportTSV(entries []Entry, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create TSV file: %w", err)
	}
	defer f.Close()

	fmt.Fprintln(f, "run_id\tposition\tdialogue\tfile_path\tfile_line\ttag\tbefore\tafter")
	for _, e := range entries {
		fmt.Fprintf(f, "%s\t%s\t%d\t%s\t%d\t%s\t%s\t%s\n",
			e.RunID,
			e.Position,
			e.Dialogue,
			escapeTSV(e.Path),
			e.FileLine,
			escapeTSV(e.Tag),
			escapeTSV(e.Before),
			escapeTSV(e.After),
		)
	}

	log.Info().Str("path", outputPath).Int("entries", len(entries)).Msg("Exported removals to TSV")
	return f.Close()
}

// ExportJSON writes entries to a JSON file.
func ExportJSON(entries []Entry, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create JSON file: %w", err)
	}
	defer f.Close()

	if entries == nil {
		entries = []Entry{}
	}

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(entries); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}

	log.Info().Str("path", outputPath).Int("entries", len(entries)).Msg("Exported removals to JSON")
	return f.Close()
}

// escapeTSV replaces tabs and newlines in a string for TSV safety.
func escapeTSV(s string) string {
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}
