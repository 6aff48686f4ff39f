// Package query holds asynchronous query results keyed by string and lets
// callers mutate them optimistically.
//
// A view reads an Entry with Read, fills it with Fetch, and changes it with
// Mutate. Mutate shows a predicted value immediately, runs the durable write,
// then replaces the prediction with whatever the write returned. Subscribers
// hear about every change to every key.
package query

import (
	"context"
	"sync"
	"time"
)

// Entry is the cached state of one key.
type Entry struct {
	Data      any
	Err       error
	IsLoading bool
	Stale     bool
	UpdatedAt time.Time
}

// Fetcher loads the authoritative value for a key.
type Fetcher func(ctx context.Context) (any, error)

// Producer performs a write and returns the value the key should settle to.
type Producer func(ctx context.Context) (any, error)

type keyState struct {
	fetcher  Fetcher
	inflight int
	// mutated counts mutation writes; a fetch that saw a different count
	// when it started is older than the data it would overwrite.
	mutated uint64
	// writes counts every data write; rollback only happens when nothing
	// else wrote since the optimistic value was applied.
	writes uint64
}

// Cache is safe for concurrent use. Fetchers, producers and subscribers
// always run without the internal lock held.
type Cache struct {
	mu      sync.Mutex
	backend Backend
	state   map[string]*keyState
	subs    map[int]func(key string)
	nextSub int
	now     func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithBackend replaces the default unbounded map backend.
func WithBackend(b Backend) Option {
	return func(c *Cache) { c.backend = b }
}

// WithClock sets the time source used for Entry.UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New returns an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		backend: NewMapBackend(),
		state:   make(map[string]*keyState),
		subs:    make(map[int]func(string)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Read returns the current entry for key without blocking on any load.
// A key that was never loaded reads as the zero Entry.
func (c *Cache) Read(key string) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, _ := c.backend.Get(key)
	return e
}

// HasFetcher reports whether key has been fetched at least once and can
// therefore be revalidated.
func (c *Cache) HasFetcher(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.state[key]
	return ok && s.fetcher != nil
}

// Fetch remembers fetcher for key, runs it and stores the result.
// A fetch error is kept in Entry.Err alongside whatever data was there.
// The result is dropped if a mutation wrote to key while the fetch ran.
func (c *Cache) Fetch(ctx context.Context, key string, fetcher Fetcher) Entry {
	c.mu.Lock()
	s := c.keyState(key)
	s.fetcher = fetcher
	s.inflight++
	started := s.mutated
	e, _ := c.backend.Get(key)
	e.IsLoading = true
	c.backend.Set(key, e)
	c.mu.Unlock()
	c.notify(key)

	data, err := fetcher(ctx)

	c.mu.Lock()
	s = c.keyState(key)
	s.inflight--
	e, _ = c.backend.Get(key)
	if s.mutated == started {
		if err != nil {
			e.Err = err
		} else {
			e.Data = data
			e.Err = nil
			e.Stale = false
			e.UpdatedAt = c.now()
			s.writes++
		}
	}
	e.IsLoading = s.inflight > 0
	c.backend.Set(key, e)
	c.mu.Unlock()
	c.notify(key)

	return e
}

// MutateOption configures a single Mutate call.
type MutateOption func(*mutateOptions)

type mutateOptions struct {
	optimistic    any
	hasOptimistic bool
	rollback      bool
	revalidate    bool
}

// WithOptimistic shows v under the key while the producer runs.
func WithOptimistic(v any) MutateOption {
	return func(o *mutateOptions) {
		o.optimistic = v
		o.hasOptimistic = true
	}
}

// WithRollback restores the value from before the optimistic write when the
// producer fails. Without it the optimistic value stays.
func WithRollback() MutateOption {
	return func(o *mutateOptions) { o.rollback = true }
}

// WithRevalidate re-runs the key's fetcher after a successful write.
func WithRevalidate() MutateOption {
	return func(o *mutateOptions) { o.revalidate = true }
}

// Mutate applies the optimistic value (if any), runs producer and settles
// the entry with the producer's result. On failure Entry.Err is set and the
// error returned.
//
// Concurrent mutations of one key are not ordered; the last to settle wins.
func (c *Cache) Mutate(ctx context.Context, key string, producer Producer, opts ...MutateOption) (any, error) {
	var o mutateOptions
	for _, opt := range opts {
		opt(&o)
	}

	c.mu.Lock()
	s := c.keyState(key)
	before, existed := c.backend.Get(key)
	e := before
	if o.hasOptimistic {
		e.Data = o.optimistic
		s.mutated++
		s.writes++
	}
	e.Err = nil
	s.inflight++
	e.IsLoading = true
	c.backend.Set(key, e)
	applied := s.writes
	c.mu.Unlock()
	c.notify(key)

	data, err := producer(ctx)

	c.mu.Lock()
	s = c.keyState(key)
	s.inflight--
	e, _ = c.backend.Get(key)
	if err != nil {
		e.Err = err
		if o.rollback && o.hasOptimistic && s.writes == applied {
			if existed {
				e.Data = before.Data
			} else {
				e.Data = nil
			}
			s.mutated++
			s.writes++
		}
	} else {
		e.Data = data
		e.Err = nil
		e.Stale = false
		e.UpdatedAt = c.now()
		s.mutated++
		s.writes++
	}
	e.IsLoading = s.inflight > 0
	c.backend.Set(key, e)
	fetcher := s.fetcher
	c.mu.Unlock()
	c.notify(key)

	if err != nil {
		return nil, err
	}
	if o.revalidate && fetcher != nil {
		c.Fetch(ctx, key, fetcher)
	}
	return data, nil
}

// Revalidate marks every key accepted by match as stale and re-runs its
// fetcher. Keys without a fetcher are only marked. It returns the number of
// keys matched.
func (c *Cache) Revalidate(ctx context.Context, match func(key string) bool) int {
	type job struct {
		key     string
		fetcher Fetcher
	}

	c.mu.Lock()
	seen := make(map[string]bool)
	var jobs []job
	consider := func(key string) {
		if seen[key] || !match(key) {
			return
		}
		seen[key] = true
		if e, ok := c.backend.Get(key); ok {
			e.Stale = true
			c.backend.Set(key, e)
		}
		var f Fetcher
		if s, ok := c.state[key]; ok {
			f = s.fetcher
		}
		jobs = append(jobs, job{key: key, fetcher: f})
	}
	for _, key := range c.backend.Keys() {
		consider(key)
	}
	for key, s := range c.state {
		if s.fetcher != nil {
			consider(key)
		}
	}
	c.mu.Unlock()

	for _, j := range jobs {
		if j.fetcher == nil {
			c.notify(j.key)
			continue
		}
		c.Fetch(ctx, j.key, j.fetcher)
	}
	return len(jobs)
}

// Subscribe registers fn to be called with the key of every changed entry.
// The returned function removes the subscription.
func (c *Cache) Subscribe(fn func(key string)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// Clear drops every entry and remembered fetcher. Subscriptions stay.
func (c *Cache) Clear() {
	c.mu.Lock()
	for _, key := range c.backend.Keys() {
		c.backend.Delete(key)
	}
	c.state = make(map[string]*keyState)
	c.mu.Unlock()
}

// keyState must be called with c.mu held.
func (c *Cache) keyState(key string) *keyState {
	s, ok := c.state[key]
	if !ok {
		s = &keyState{}
		c.state[key] = s
	}
	return s
}

func (c *Cache) notify(key string) {
	c.mu.Lock()
	subs := make([]func(string), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(key)
	}
}
