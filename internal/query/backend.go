package query

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Backend stores cache entries by key. The Cache serializes access, so
// implementations do not need their own locking.
type Backend interface {
	Get(key string) (Entry, bool)
	Set(key string, e Entry)
	Delete(key string)
	Keys() []string
}

// MapBackend is an unbounded in-memory Backend.
type MapBackend struct {
	entries map[string]Entry
}

// NewMapBackend returns an empty MapBackend.
func NewMapBackend() *MapBackend {
	return &MapBackend{entries: make(map[string]Entry)}
}

func (b *MapBackend) Get(key string) (Entry, bool) {
	e, ok := b.entries[key]
	return e, ok
}

func (b *MapBackend) Set(key string, e Entry) { b.entries[key] = e }

func (b *MapBackend) Delete(key string) { delete(b.entries, key) }

func (b *MapBackend) Keys() []string {
	keys := make([]string, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	return keys
}

// LRUBackend keeps at most a fixed number of entries, evicting the least
// recently used one. An evicted key is simply re-fetched on next load.
type LRUBackend struct {
	cache *lru.Cache[string, Entry]
}

// NewLRUBackend returns a Backend holding at most size entries.
func NewLRUBackend(size int) (*LRUBackend, error) {
	c, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, err
	}
	return &LRUBackend{cache: c}, nil
}

func (b *LRUBackend) Get(key string) (Entry, bool) { return b.cache.Get(key) }

func (b *LRUBackend) Set(key string, e Entry) { b.cache.Add(key, e) }

func (b *LRUBackend) Delete(key string) { b.cache.Remove(key) }

func (b *LRUBackend) Keys() []string { return b.cache.Keys() }
