package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"database/sql"

	_ "modernc.org/sqlite"
)

// Sentinel errors handlers translate to HTTP statuses.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrBadTransition = errors.New("invalid status transition")
)

// sqlUTCNow renders 'now' (plus optional modifiers) as an RFC 3339 SQL
// expression. Timestamp columns store RFC 3339 text, and SQLite compares
// datetimes as plain strings, so cutoffs must use the same format.
func sqlUTCNow(modifiers ...string) string {
	expr := `strftime('%Y-%m-%dT%H:%M:%SZ','now'`
	for _, m := range modifiers {
		expr += `,'` + m + `'`
	}
	return expr + `)`
}

type DB struct {
	Pool *sql.DB
}

func Open(path string) (*DB, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// reasonable defaults
	pool.SetMaxOpenConns(1) // sqlite typically wants 1 writer
	pool.SetConnMaxLifetime(5 * time.Minute)

	// quick ping
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}

	return &DB{Pool: pool}, nil
}

func (d *DB) Close() error {
	if d == nil || d.Pool == nil {
		return nil
	}
	return d.Pool.Close()
}
