// Package store persists per-document extraction results in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dgallion1/hearinglist/internal/report"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	hearing_id   TEXT NOT NULL,
	source       TEXT NOT NULL,
	method       TEXT NOT NULL,
	candidates   INTEGER NOT NULL,
	warning      TEXT NOT NULL DEFAULT '',
	content_hash TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS documents_hearing ON documents(hearing_id);
CREATE INDEX IF NOT EXISTS documents_hash ON documents(hearing_id, content_hash);
CREATE TABLE IF NOT EXISTS entities (
	document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	name        TEXT NOT NULL,
	PRIMARY KEY (document_id, position)
);
`

var pragmas = []string{
	"PRAGMA foreign_keys=ON",
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=10000",
	"PRAGMA synchronous=NORMAL",
}

// DocumentRecord is one processed document and its cleaned entities.
type DocumentRecord struct {
	HearingID   string
	Source      string
	Method      string
	Candidates  int
	Warning     string
	ContentHash string
	Entities    []string
}

// Store wraps a single-connection SQLite database.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite serialises writers anyway; one connection keeps pragmas in effect.
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	log.Debug("store opened", "path", path)
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveDocument inserts the document and its entities in one transaction and
// returns the document id.
func (s *Store) SaveDocument(ctx context.Context, rec DocumentRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO documents (hearing_id, source, method, candidates, warning, content_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.HearingID, rec.Source, rec.Method, rec.Candidates, rec.Warning, rec.ContentHash,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("insert document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("document id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO entities (document_id, position, name) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare entities: %w", err)
	}
	defer stmt.Close()
	for i, name := range rec.Entities {
		if _, err := stmt.ExecContext(ctx, id, i, name); err != nil {
			return 0, fmt.Errorf("insert entity: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	s.log.Debug("document stored", "hearing", rec.HearingID, "source", rec.Source, "entities", len(rec.Entities))
	return id, nil
}

// HasDocument reports whether content with this hash was already stored for
// the hearing.
func (s *Store) HasDocument(ctx context.Context, hearingID, contentHash string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE hearing_id = ? AND content_hash = ?`,
		hearingID, contentHash).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("lookup document: %w", err)
	}
	return n > 0, nil
}

// HearingEntities returns the hearing's entities across all its documents,
// in insertion order. Repeats are kept.
func (s *Store) HearingEntities(ctx context.Context, hearingID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.name FROM entities e JOIN documents d ON d.id = e.document_id
		 WHERE d.hearing_id = ? ORDER BY d.id, e.position`, hearingID)
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Hearings lists hearing ids in the order they were first stored.
func (s *Store) Hearings(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT hearing_id FROM documents GROUP BY hearing_id ORDER BY MIN(id)`)
	if err != nil {
		return nil, fmt.Errorf("query hearings: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// EntityCounts counts entity occurrences over every stored document, most
// frequent first, ties in first-stored order. A limit <= 0 returns all.
func (s *Store) EntityCounts(ctx context.Context, limit int) ([]report.Count, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.name, COUNT(*) AS n FROM entities e
		 GROUP BY e.name ORDER BY n DESC, MIN(e.rowid) LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("count entities: %w", err)
	}
	defer rows.Close()

	out := []report.Count{}
	for rows.Next() {
		var c report.Count
		if err := rows.Scan(&c.Entity, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
