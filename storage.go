package session

import (
	"context"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

// ErrKeyNotFound is returned by backends for missing keys.
var ErrKeyNotFound = goerrors.New("storage key not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// MemoryBackend is a process-local StorageBackend. It is the default for
// Manager and the workhorse for tests.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: map[string]string{}}
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, ok := m.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return val, nil
}

func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// NullBackend is the backend for non-interactive contexts: every read
// misses and writes are swallowed, so token operations degrade to no-ops
// without errors.
type NullBackend struct{}

func (NullBackend) Get(context.Context, string) (string, error) {
	return "", ErrKeyNotFound
}

func (NullBackend) Set(context.Context, string, string) error { return nil }

func (NullBackend) Delete(context.Context, string) error { return nil }
