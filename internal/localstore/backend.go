package localstore

import (
	"context"
	"errors"
	"maps"
	"sync"
)

var (
	ErrNotExist      = errors.New("key does not exist")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Backend is raw byte storage addressed by fully qualified key names.
// Read returns ErrNotExist for missing keys.
type Backend interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, value []byte) error
	Delete(ctx context.Context, name string) error
}

// MemoryBackend keeps values in process memory. A positive quota caps the
// total stored bytes the way browser storage does.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string][]byte
	used   int
	quota  int
}

func NewMemoryBackend(quotaBytes int) *MemoryBackend {
	return &MemoryBackend{
		values: make(map[string][]byte),
		quota:  quotaBytes,
	}
}

func (m *MemoryBackend) Read(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[name]
	if !ok {
		return nil, ErrNotExist
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *MemoryBackend) Write(_ context.Context, name string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	used := m.used - len(m.values[name]) + len(value)
	if m.quota > 0 && used > m.quota {
		return ErrQuotaExceeded
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.values[name] = stored
	m.used = used
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.used -= len(m.values[name])
	delete(m.values, name)
	return nil
}

// Snapshot copies every stored value. Used by tests and debugging endpoints.
func (m *MemoryBackend) Snapshot() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.values)
}
