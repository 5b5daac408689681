package sessionstore

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoryCapacity bounds the in-process backend when no capacity
// is given.
const DefaultMemoryCapacity = 65536

// MemoryBackend keeps records in a capacity-bounded LRU cache. Intended
// for tests and development; at capacity the least recently used
// session is evicted.
type MemoryBackend struct {
	mu      sync.Mutex
	records *lru.Cache[string, map[string]any]
}

var _ Backend = (*MemoryBackend)(nil)

func NewMemoryBackend(capacity int) *MemoryBackend {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	cache, _ := lru.New[string, map[string]any](capacity)
	return &MemoryBackend{records: cache}
}

func (b *MemoryBackend) FindProjected(ctx context.Context, sessionID string, fields ...string) (map[string]any, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	record, ok := b.records.Get(sessionID)
	if !ok {
		return nil, false, nil
	}

	projected := make(map[string]any)
	if len(fields) == 0 {
		for k, v := range record {
			projected[k] = v
		}
		return projected, true, nil
	}
	for _, f := range fields {
		if v, ok := record[f]; ok {
			projected[f] = v
		}
	}
	return projected, true, nil
}

func (b *MemoryBackend) SetField(ctx context.Context, sessionID, field string, value any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	record, ok := b.records.Get(sessionID)
	if !ok {
		record = make(map[string]any)
		b.records.Add(sessionID, record)
	}
	record[field] = value
	return nil
}

func (b *MemoryBackend) UnsetField(ctx context.Context, sessionID, field string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	record, ok := b.records.Get(sessionID)
	if !ok {
		return nil
	}
	delete(record, field)
	if len(record) == 0 {
		b.records.Remove(sessionID)
	}
	return nil
}

func (b *MemoryBackend) DeleteRecord(ctx context.Context, sessionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records.Remove(sessionID)
	return nil
}

func (b *MemoryBackend) DeleteExpiredBefore(ctx context.Context, cutoff int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sessionID := range b.records.Keys() {
		record, ok := b.records.Peek(sessionID)
		if !ok {
			continue
		}
		if deadline, ok := record[ExpiresField].(int64); ok && deadline < cutoff {
			b.records.Remove(sessionID)
		}
	}
	return nil
}

func (b *MemoryBackend) Ping(ctx context.Context) error {
	return nil
}

func (b *MemoryBackend) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records.Purge()
	return nil
}
