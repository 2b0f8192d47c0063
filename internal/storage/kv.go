// Package storage persists key/value entries in SQLite or PostgreSQL, for
// deployments where the web server and the sheets worker share one store.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

func (d Dialect) driverName() string {
	return string(d)
}

type queries struct {
	get string
	set string
}

var dialectQueries = map[Dialect]queries{
	SQLite: {
		get: `SELECT value FROM kv_entries WHERE key = ?`,
		set: `INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
	},
	Postgres: {
		get: `SELECT value FROM kv_entries WHERE key = $1`,
		set: `INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
	},
}

// KVStore implements kv.Store over a kv_entries table.
type KVStore struct {
	db      *sql.DB
	dialect Dialect
	q       queries
}

// OpenSQLite opens (creating if needed) the database file at dbPath and
// migrates it.
func OpenSQLite(dbPath string) (*KVStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	return open(SQLite, dbPath)
}

// OpenPostgres connects to the database at url and migrates it.
func OpenPostgres(url string) (*KVStore, error) {
	return open(Postgres, url)
}

func open(dialect Dialect, dsn string) (*KVStore, error) {
	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}
	if dialect == SQLite {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dialect, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &KVStore{db: db, dialect: dialect, q: dialectQueries[dialect]}, nil
}

func (s *KVStore) Dialect() Dialect {
	return s.dialect
}

func (s *KVStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable. Used by readiness checks.
func (s *KVStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.q.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, s.q.set, key, value); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}
