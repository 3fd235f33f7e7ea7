// Package store implements the lab's storage gateway over an embedded SQLite
// database.
//
// The gateway exposes exactly three operations — Execute, FetchOne, FetchAll —
// all taking a SQL string plus positional parameters. Handlers never see the
// driver; they see rows as map[string]any because two of the lab's endpoints
// are deliberately dynamic in shape (SELECT * profile reads, mass-assignment
// updates with attacker-chosen columns).
//
// Positional binding is the one real defence the lab keeps: values always
// travel as ? parameters, so the demonstrated weaknesses are authorization
// bugs, not SQL injection.
//
// WHY modernc.org/sqlite?
// Pure-Go translation of SQLite — no CGo, no C toolchain, cross-compiles
// anywhere Go does. The driver registers itself with database/sql under the
// name "sqlite" via the blank import below.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gethuk-security/api-security-lab/internal/apperror"
)

// Store wraps the sql.DB pool. It is the only component that knows the
// storage driver.
type Store struct {
	conn *sql.DB
}

// Result reports the outcome of a mutation.
type Result struct {
	LastID  int64 `json:"last_id"`
	Changes int64 `json:"changes"`
}

// Open opens (or creates) the database at path, creating the parent
// directory when needed, and applies the connection PRAGMAs. Use ":memory:"
// in tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: creating data directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening database: %w", err)
	}

	// An in-memory database exists per connection; cap the pool at one so
	// tests see a single coherent database.
	if path == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: pinging database: %w", err)
	}

	// WAL lets concurrent reads proceed during a write; foreign keys are off
	// by default in SQLite and the schema relies on them.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: enabling foreign keys: %w", err)
	}

	return &Store{conn: conn}, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Execute runs a non-returning mutation and reports {last_id, changes}.
func (s *Store) Execute(ctx context.Context, query string, args ...any) (Result, error) {
	res, err := s.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return Result{}, apperror.Storage(err, query)
	}

	// SQLite always supports both of these; errors here mean driver trouble,
	// not query trouble.
	lastID, err := res.LastInsertId()
	if err != nil {
		return Result{}, apperror.Storage(err, query)
	}
	changes, err := res.RowsAffected()
	if err != nil {
		return Result{}, apperror.Storage(err, query)
	}

	return Result{LastID: lastID, Changes: changes}, nil
}

// FetchOne returns at most one row as a column→value map, or nil when the
// query matches nothing. Callers treat nil as "absent" and map it to a 404
// themselves — the gateway does not decide what absence means.
func (s *Store) FetchOne(ctx context.Context, query string, args ...any) (map[string]any, error) {
	rows, err := s.FetchAll(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// FetchAll returns every matching row as a column→value map.
func (s *Store) FetchAll(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperror.Storage(err, query)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, apperror.Storage(err, query)
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, apperror.Storage(err, query)
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = normalize(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Storage(err, query)
	}

	return out, nil
}

// normalize converts driver values into JSON-friendly Go values. SQLite TEXT
// columns can surface as []byte; timestamps as time.Time.
func normalize(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	default:
		return v
	}
}
