// Package handler implements the optimistic write conventions of every view
// and the loaders that fill the query cache from the store.
//
// A mutation targets one cache key, the one the issuing view renders. It
// predicts the next value of that key, shows it, writes to the store and
// then settles the key with the stored result. Any other cached key that
// holds tasks is revalidated afterwards because due-date groups and project
// lists are derived from task fields.
package handler

import (
	"errors"
	"time"

	"github.com/nhle/taskplanner/internal/bucket"
	"github.com/nhle/taskplanner/internal/query"
	"github.com/nhle/taskplanner/internal/store"
)

// ErrPendingTask is returned when a task that has not been stored yet is
// updated or deleted.
var ErrPendingTask = errors.New("task is still being saved")

// ErrUnsupportedKey is returned when an operation cannot target a key.
var ErrUnsupportedKey = errors.New("operation not supported for this key")

// Handlers binds the query cache to a store.
type Handlers struct {
	cache     *query.Cache
	store     store.Store
	now       func() time.Time
	layout    bucket.Layout
	weekStart time.Weekday
	rollback  bool
}

// Option configures Handlers.
type Option func(*Handlers)

// WithClock sets the time used to compute due-date groups.
func WithClock(now func() time.Time) Option {
	return func(h *Handlers) { h.now = now }
}

// WithLayout selects the due-date group layout.
func WithLayout(layout bucket.Layout, weekStart time.Weekday) Option {
	return func(h *Handlers) {
		h.layout = layout
		h.weekStart = weekStart
	}
}

// WithRollback makes failed writes restore the value shown before the
// optimistic update.
func WithRollback(enabled bool) Option {
	return func(h *Handlers) { h.rollback = enabled }
}

// New returns Handlers writing through s and caching in cache.
func New(cache *query.Cache, s store.Store, opts ...Option) *Handlers {
	h := &Handlers{
		cache:     cache,
		store:     s,
		now:       time.Now,
		layout:    bucket.Rolling,
		weekStart: time.Sunday,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Cache returns the cache the handlers write to.
func (h *Handlers) Cache() *query.Cache { return h.cache }

// Now returns the time due-date groups are computed against.
func (h *Handlers) Now() time.Time { return h.now() }

// Groups returns the due-date groups as of now.
func (h *Handlers) Groups() []bucket.Group {
	return bucket.Groups(h.layout, h.now(), h.weekStart)
}

func (h *Handlers) mutateOptions(opts ...query.MutateOption) []query.MutateOption {
	if h.rollback {
		opts = append(opts, query.WithRollback())
	}
	return opts
}
