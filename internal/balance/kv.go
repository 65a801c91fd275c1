package balance

import (
	"context"
	"sync"
)

// KV is the key-value persistence collaborator behind a Store. Putting an
// unknown amount removes the key.
type KV interface {
	Get(ctx context.Context, key string) (Amount, error)
	Put(ctx context.Context, key string, amount Amount) error
}

type memoryKV struct {
	mu      sync.RWMutex
	storage map[string]int64
}

// NewMemoryKV constructs a concurrency-safe in-memory KV, used in tests and
// when no external store is configured.
func NewMemoryKV() KV {
	return &memoryKV{storage: make(map[string]int64)}
}

func (m *memoryKV) Get(_ context.Context, key string) (Amount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.storage[key]
	if !ok {
		return Unknown, nil
	}
	return Of(v), nil
}

func (m *memoryKV) Put(_ context.Context, key string, amount Amount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !amount.Known {
		delete(m.storage, key)
		return nil
	}
	m.storage[key] = amount.Value
	return nil
}
