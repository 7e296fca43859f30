package store

import (
	"context"
	"errors"
	"sync"
)

// errMemoryClosed is returned by every operation after Close.
var errMemoryClosed = errors.New("store: memory store is closed")

// Memory is an in-memory KV backend. It exists for tests and for running the
// server without a database file; contents are lost on Close.
type Memory struct {
	mu     sync.RWMutex
	data   map[string]string
	closed bool
}

var _ KV = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, errMemoryClosed
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errMemoryClosed
	}
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errMemoryClosed
	}
	delete(m.data, key)
	return nil
}

// Close releases the contents. Every later operation fails with an explicit
// error rather than panicking or silently succeeding.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	m.closed = true
	return nil
}

// Len reports the number of stored keys. Test helper.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
