package store

import (
	"context"
	"sync"
)

// Cache keys. Every owner holds exactly one value per key.
const (
	KeyWorkingSet = "workingSet"
	KeyHistory    = "history"
)

// Backend is the durable key-value substrate under the local cache:
// one JSON value per (owner, key).
type Backend interface {
	Get(ctx context.Context, owner, key string) ([]byte, bool, error)
	Put(ctx context.Context, owner, key string, value []byte) error
}

type memKey struct {
	owner string
	key   string
}

// MemoryBackend keeps values in-process. It backs tests and runs without a
// database configured.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[memKey][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[memKey][]byte)}
}

func (b *MemoryBackend) Get(ctx context.Context, owner, key string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[memKey{owner, key}]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (b *MemoryBackend) Put(ctx context.Context, owner, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	b.values[memKey{owner, key}] = stored
	return nil
}
