package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// memoryBackend is an in-process Backend, used by tests and available
// as a throwaway store when no durable driver is configured.
type memoryBackend struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryBackend() Backend {
	return &memoryBackend{docs: make(map[string][]byte)}
}

func (b *memoryBackend) Read(ctx context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	doc, ok := b.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(doc))
	copy(out, doc)
	return out, nil
}

func (b *memoryBackend) Write(ctx context.Context, key string, val []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	doc := make([]byte, len(val))
	copy(doc, val)
	b.docs[key] = doc
	return nil
}

func (b *memoryBackend) Erase(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.docs, key)
	return nil
}

func (b *memoryBackend) KeysPrefix(ctx context.Context, prefix string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var keys []string
	for k := range b.docs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
