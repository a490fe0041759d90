package storage

import (
	"context"
	"sync"
)

// MemoryGateway keeps everything in a map. Used for tests and ephemeral runs.
type MemoryGateway struct {
	mu     sync.RWMutex
	data   map[string]string
	closed bool
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{data: make(map[string]string)}
}

func (m *MemoryGateway) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryGateway) Set(_ context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.data[key] = value
	return nil
}

func (m *MemoryGateway) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.data, key)
	return nil
}

func (m *MemoryGateway) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var _ GatewayInterface = (*MemoryGateway)(nil)
