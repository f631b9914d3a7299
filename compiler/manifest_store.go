package compiler

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Artifact kinds recorded in the manifest store.
const (
	KindImplemented = "impl"
	KindStub        = "stub"
	KindMain        = "main"
)

const manifestSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id      TEXT PRIMARY KEY,
	started INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS artifacts (
	run  TEXT NOT NULL REFERENCES runs(id),
	seq  INTEGER NOT NULL,
	kind TEXT NOT NULL,
	type TEXT NOT NULL,
	path TEXT NOT NULL
);
`

// ManifestStore keeps the registries of generation runs in a sqlite
// database so that later builds can ask what a run produced.
type ManifestStore struct {
	db *sql.DB
}

func OpenManifestStore(path string) (*ManifestStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("manifest open error: %w", err)
	}
	if _, err := db.Exec(manifestSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("manifest schema error: %w", err)
	}
	return &ManifestStore{db: db}, nil
}

func (s *ManifestStore) Close() error {
	return s.db.Close()
}

// Record stores r as a new run and returns the run id.
func (s *ManifestStore) Record(ctx context.Context, r *Registry) (string, error) {
	id := uuid.NewString()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("manifest begin error: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "INSERT INTO runs (id, started) VALUES (?, ?)", id, time.Now().UnixNano()); err != nil {
		return "", fmt.Errorf("manifest run error: %w", err)
	}
	seq := 0
	insert := func(kind string, typ, path string) error {
		seq++
		_, err := tx.ExecContext(ctx,
			"INSERT INTO artifacts (run, seq, kind, type, path) VALUES (?, ?, ?, ?, ?)",
			id, seq, kind, typ, path)
		return err
	}
	for _, t := range r.Implemented {
		if err := insert(KindImplemented, t.Name, implPath(t)); err != nil {
			return "", fmt.Errorf("manifest artifact error: %w", err)
		}
	}
	for _, t := range r.Stubs {
		if err := insert(KindStub, t.Name, stubPath(t)); err != nil {
			return "", fmt.Errorf("manifest artifact error: %w", err)
		}
	}
	for _, t := range r.Mains {
		if err := insert(KindMain, t.Name, implPath(t)); err != nil {
			return "", fmt.Errorf("manifest artifact error: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("manifest commit error: %w", err)
	}
	return id, nil
}

// Artifacts returns the paths of one kind recorded for a run, in the order
// they were generated.
func (s *ManifestStore) Artifacts(ctx context.Context, runID, kind string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT path FROM artifacts WHERE run = ? AND kind = ? ORDER BY seq", runID, kind)
	if err != nil {
		return nil, fmt.Errorf("manifest query error: %w", err)
	}
	defer rows.Close()
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("manifest scan error: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// LatestRun returns the id of the most recent run, or "" when none was
// recorded.
func (s *ManifestStore) LatestRun(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, "SELECT id FROM runs ORDER BY started DESC LIMIT 1").Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("manifest query error: %w", err)
	}
	return id, nil
}
