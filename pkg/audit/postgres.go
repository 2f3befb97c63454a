package audit

import (
	"context"
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed postgres_schema.sql
var postgresSchema string

// PostgresStore persists records in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("audit.OpenPostgres connect: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("audit.OpenPostgres schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Append inserts r. A per-adapter advisory lock serialises chain appends so
// concurrent writers cannot fork the chain.
func (s *PostgresStore) Append(ctx context.Context, r *Record) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("audit.Append begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", adapterLockID(r.Adapter)); err != nil {
		return fmt.Errorf("audit.Append advisory lock: %w", err)
	}

	var prev string
	err = tx.QueryRow(ctx, `
		SELECT hash FROM audit_records
		WHERE adapter = $1
		ORDER BY seq DESC LIMIT 1`, r.Adapter).Scan(&prev)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("audit.Append last hash: %w", err)
	}

	r.Seal(prev)
	_, err = tx.Exec(ctx, `
		INSERT INTO audit_records (id, adapter, tool, kind, duration_ms, args_digest, at, hash, prev_hash)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		r.ID, r.Adapter, r.Tool, r.Kind, r.DurationMS, r.ArgsDigest, r.At, r.Hash, r.PrevHash,
	)
	if err != nil {
		return fmt.Errorf("audit.Append insert: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("audit.Append commit: %w", err)
	}
	return nil
}

// Chain returns an adapter's records at or after since, in append order.
func (s *PostgresStore) Chain(ctx context.Context, adapter string, since time.Time) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, adapter, tool, kind, duration_ms, args_digest, at, hash, prev_hash
		FROM audit_records
		WHERE adapter = $1 AND at >= $2
		ORDER BY seq ASC`, adapter, since)
	if err != nil {
		return nil, fmt.Errorf("audit.Chain: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Adapter, &r.Tool, &r.Kind, &r.DurationMS, &r.ArgsDigest, &r.At, &r.Hash, &r.PrevHash); err != nil {
			return nil, fmt.Errorf("audit.Chain scan: %w", err)
		}
		r.At = r.At.UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit.Chain iteration: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// adapterLockID derives a deterministic advisory-lock ID from an adapter name.
func adapterLockID(adapter string) int64 {
	h := fnv.New64a()
	h.Write([]byte("audit:" + adapter))
	return int64(binary.BigEndian.Uint64(h.Sum(nil)))
}
