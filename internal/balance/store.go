package balance

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Store holds a single optional balance and the key it is persisted under.
//
// Store performs no mutual exclusion. Each Get and Set is an indivisible
// single-word operation, so readers never see a torn value, but a Get
// followed by a Set is not atomic: callers that need read-modify-write
// semantics must serialize them. Persistence is outside that contract too:
// with unserialized writers the last value persisted may differ from the
// last value held in memory.
type Store struct {
	key   string
	kv    KV
	value atomic.Pointer[int64]
}

// NewStore creates a store with an unknown balance that writes through to kv.
func NewStore(kv KV, key string) *Store {
	if kv == nil {
		kv = NewMemoryKV()
	}
	return &Store{key: key, kv: kv}
}

// Open creates a store and seeds it with the value persisted under key.
func Open(ctx context.Context, kv KV, key string) (*Store, error) {
	s := NewStore(kv, key)
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Key returns the persistence key.
func (s *Store) Key() string {
	return s.key
}

// Load replaces the in-memory balance with the persisted one.
func (s *Store) Load(ctx context.Context) error {
	amount, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("load balance %s: %w", s.key, err)
	}
	s.value.Store(amount.Ptr())
	return nil
}

// Get returns the current balance.
func (s *Store) Get() Amount {
	return FromPtr(s.value.Load())
}

// Set publishes amount and persists it. The in-memory value is updated even
// when persistence fails.
func (s *Store) Set(ctx context.Context, amount Amount) error {
	s.value.Store(amount.Ptr())
	if err := s.kv.Put(ctx, s.key, amount); err != nil {
		return fmt.Errorf("persist balance %s: %w", s.key, err)
	}
	return nil
}
