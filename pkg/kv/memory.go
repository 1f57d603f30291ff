package kv

import (
	"context"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// MemoryStore keeps values in process memory. Nothing survives a restart.
type MemoryStore struct {
	values cmap.ConcurrentMap[string, string]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: cmap.New[string]()}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values.Get(key)
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.values.Set(key, value)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
