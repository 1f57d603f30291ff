package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	_ "github.com/lib/pq"
)

const defaultPostgresTable = "geotrack_kv"

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresStore keeps values in a two column key/value table.
type PostgresStore struct {
	db    *sql.DB
	table string
}

// OpenPostgresStore opens dsn with lib/pq and ensures the table exists.
func OpenPostgresStore(ctx context.Context, dsn, table string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is not configured")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(2)

	store, err := NewPostgresStore(ctx, db, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresStore uses an already opened database and creates the table if missing.
func NewPostgresStore(ctx context.Context, db *sql.DB, table string) (*PostgresStore, error) {
	if table == "" {
		table = defaultPostgresTable
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value TEXT NOT NULL)", table)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}

	return &PostgresStore{db: db, table: table}, nil
}

func (p *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	row := p.db.QueryRowContext(ctx, fmt.Sprintf("SELECT value FROM %s WHERE key=$1", p.table), key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (p *PostgresStore) Set(ctx context.Context, key, value string) error {
	query := fmt.Sprintf("INSERT INTO %s(key, value) VALUES($1, $2) ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value", p.table)
	_, err := p.db.ExecContext(ctx, query, key, value)
	return err
}

func (p *PostgresStore) Close() error { return p.db.Close() }
