package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/cohort/pkg/domain"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id  TEXT PRIMARY KEY,
	chain   TEXT NOT NULL,
	payload BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS cycles (
	run_id  TEXT NOT NULL,
	cycle   INTEGER NOT NULL,
	payload BLOB NOT NULL,
	PRIMARY KEY (run_id, cycle)
);`

// Store implements ports.ResultStore and ports.TraceSink on a SQLite file.
// Results are stored as JSON documents; cycle records one row per cycle.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = filepath.Join(".cohort", "runs.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers, which SQLite requires anyway.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Save upserts the result. The trace is stored through Append, not here.
func (s *Store) Save(ctx context.Context, runID string, result *domain.RunResult) error {
	data, err := json.Marshal(result.Summary())
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs(run_id,chain,payload) VALUES(?,?,?)
		 ON CONFLICT(run_id) DO UPDATE SET chain=excluded.chain, payload=excluded.payload`,
		runID, result.Chain, data)
	if err != nil {
		return fmt.Errorf("upsert run %s: %w", runID, err)
	}
	return nil
}

// Load retrieves a result.
func (s *Store) Load(ctx context.Context, runID string) (*domain.RunResult, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM runs WHERE run_id = ?`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select run %s: %w", runID, err)
	}
	var result domain.RunResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return &result, nil
}

// Delete removes a result and its cycle records.
func (s *Store) Delete(ctx context.Context, runID string) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM cycles WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("delete cycles: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return tx.Commit()
}

// List returns stored run IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id FROM runs ORDER BY run_id`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Append stores one cycle record.
func (s *Store) Append(ctx context.Context, runID string, rec domain.CycleRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal cycle %d: %w", rec.Cycle, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cycles(run_id,cycle,payload) VALUES(?,?,?)
		 ON CONFLICT(run_id,cycle) DO UPDATE SET payload=excluded.payload`,
		runID, rec.Cycle, data)
	if err != nil {
		return fmt.Errorf("insert cycle %d: %w", rec.Cycle, err)
	}
	return nil
}

// Records returns the stored cycle records of runID ordered by cycle.
func (s *Store) Records(ctx context.Context, runID string) ([]domain.CycleRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM cycles WHERE run_id = ? ORDER BY cycle`, runID)
	if err != nil {
		return nil, fmt.Errorf("select cycles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.CycleRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var rec domain.CycleRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("decode cycle: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
