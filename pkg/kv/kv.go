// Package kv provides the single-slot persistent key-value capability the
// tracker stores its history in. Values are opaque strings; every Set is a
// full overwrite and the last writer wins.
package kv

import (
	"context"
	"fmt"
)

// Store is a string valued key-value store scoped to the local installation.
type Store interface {
	// Get returns the value stored under key. ok is false when nothing is stored.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Backend string

	FilePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PostgresDSN   string
	PostgresTable string
}

// Open builds the Store described by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(opts.FilePath, nil), nil
	case BackendRedis:
		return OpenRedisStore(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	case BackendPostgres:
		return OpenPostgresStore(ctx, opts.PostgresDSN, opts.PostgresTable)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
