package audit

import (
	"context"
	"fmt"
	"time"
)

// Store appends records and reads chains back. Append seals the record
// against the adapter's latest hash atomically.
type Store interface {
	Append(ctx context.Context, r *Record) error
	Chain(ctx context.Context, adapter string, since time.Time) ([]Record, error)
	Close() error
}

// Open picks a backend: Postgres when dsn is set, otherwise SQLite when path
// is set. Both empty means auditing is off and Open returns nil, nil.
func Open(ctx context.Context, dsn, path string) (Store, error) {
	switch {
	case dsn != "":
		s, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("audit.Open postgres: %w", err)
		}
		return s, nil
	case path != "":
		s, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("audit.Open sqlite: %w", err)
		}
		return s, nil
	}
	return nil, nil
}
