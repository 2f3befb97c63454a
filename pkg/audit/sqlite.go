package audit

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed sqlite_schema.sql
var sqliteSchema string

// SQLiteStore persists records in a local SQLite file. Appends are
// serialised in-process; one process owns one file.
type SQLiteStore struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenSQLite opens or creates the database at path (":memory:" for tests).
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("audit.OpenSQLite open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if path != ":memory:" {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("audit.OpenSQLite set WAL mode: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("audit.OpenSQLite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("audit.Append begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var prev string
	err = tx.QueryRowContext(ctx,
		`SELECT hash FROM audit_records WHERE adapter = ? ORDER BY seq DESC LIMIT 1`, r.Adapter,
	).Scan(&prev)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("audit.Append last hash: %w", err)
	}

	r.Seal(prev)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO audit_records (id, adapter, tool, kind, duration_ms, args_digest, at, hash, prev_hash)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Adapter, r.Tool, r.Kind, r.DurationMS, r.ArgsDigest,
		r.At.Format(time.RFC3339Nano), r.Hash, r.PrevHash,
	)
	if err != nil {
		return fmt.Errorf("audit.Append insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("audit.Append commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Chain(ctx context.Context, adapter string, since time.Time) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, adapter, tool, kind, duration_ms, args_digest, at, hash, prev_hash
		 FROM audit_records WHERE adapter = ? ORDER BY seq ASC`, adapter)
	if err != nil {
		return nil, fmt.Errorf("audit.Chain: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var at string
		if err := rows.Scan(&r.ID, &r.Adapter, &r.Tool, &r.Kind, &r.DurationMS, &r.ArgsDigest, &at, &r.Hash, &r.PrevHash); err != nil {
			return nil, fmt.Errorf("audit.Chain scan: %w", err)
		}
		r.At, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("audit.Chain parse time %q: %w", at, err)
		}
		if r.At.Before(since) {
			continue
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit.Chain iteration: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
