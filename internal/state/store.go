// Package state is the console's key-value persistence port. Everything
// the browser kept in local storage (auth token, chosen upstream host,
// favorite-field usage) goes through a Store so tests can swap in a
// fake and production can split durable and ephemeral keys across
// Postgres and Redis.
package state

import (
	"context"
	"sync"
)

// Store persists string values under string keys. Mutations flush
// synchronously; a returned nil means the value is durable.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Memory is the in-process Store used by tests and by the worker when
// no backing service is configured.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
