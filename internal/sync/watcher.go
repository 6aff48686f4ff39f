// Package sync carries query cache notifications into the Bubble Tea loop
// and keeps date-derived cache keys current as the local day changes.
package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskplanner/internal/bucket"
	"github.com/nhle/taskplanner/internal/query"
)

// ChangedMsg is a tea.Msg sent when a cache key changed.
type ChangedMsg struct {
	Key string
}

// DayChangedMsg is a tea.Msg sent after the local day rolled over and the
// due-date groups were revalidated.
type DayChangedMsg struct {
	Day         time.Time
	Revalidated int
}

// defaultInterval is how often the day rollover check runs.
const defaultInterval = time.Minute

// Watcher subscribes to a query cache and feeds its changes to the UI.
type Watcher struct {
	cache       *query.Cache
	interval    time.Duration
	now         func() time.Time
	changeCh    chan tea.Msg
	stopCh      chan struct{}
	unsubscribe func()
	mu          gosync.Mutex
	running     bool
	day         time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval sets how often the watcher checks for a new day.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) { w.interval = d }
}

// WithClock sets the watcher's time source.
func WithClock(now func() time.Time) Option {
	return func(w *Watcher) { w.now = now }
}

// New creates a Watcher for cache.
func New(cache *query.Cache, opts ...Option) *Watcher {
	w := &Watcher{
		cache:    cache,
		interval: defaultInterval,
		now:      time.Now,
		changeCh: make(chan tea.Msg, 64),
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start subscribes to the cache, starts the day rollover ticker and returns
// a command waiting for the first message.
func (w *Watcher) Start() tea.Cmd {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	select {
	case <-w.stopCh:
		// Restarted after Stop.
		w.stopCh = make(chan struct{})
	default:
	}
	stop := w.stopCh
	w.day = bucket.StartOfDay(w.now())
	w.unsubscribe = w.cache.Subscribe(func(key string) {
		w.send(ChangedMsg{Key: key})
	})
	w.mu.Unlock()

	go w.tick(stop)

	return w.WaitForNextChange()
}

// Stop unsubscribes from the cache and halts the ticker.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	w.unsubscribe()
	close(w.stopCh)
	w.running = false
}

// CheckDay revalidates the due-date group keys if the local day differs
// from the one last seen. It reports whether it did.
func (w *Watcher) CheckDay(ctx context.Context) bool {
	today := bucket.StartOfDay(w.now())

	w.mu.Lock()
	if today.Equal(w.day) {
		w.mu.Unlock()
		return false
	}
	w.day = today
	w.mu.Unlock()

	n := w.cache.Revalidate(ctx, query.IsGroupKey)
	w.send(DayChangedMsg{Day: today, Revalidated: n})
	return true
}

func (w *Watcher) tick(stop <-chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.CheckDay(context.Background())
		}
	}
}

// send queues msg without blocking. A dropped ChangedMsg is harmless since
// views read the cache in full on every render.
func (w *Watcher) send(msg tea.Msg) {
	select {
	case w.changeCh <- msg:
	default:
	}
}

// WaitForNextChange returns a tea.Cmd that waits for the next message.
// Call it again after handling each message to keep listening.
func (w *Watcher) WaitForNextChange() tea.Cmd {
	w.mu.Lock()
	stop := w.stopCh
	w.mu.Unlock()

	return func() tea.Msg {
		select {
		case msg := <-w.changeCh:
			return msg
		case <-stop:
			return nil
		}
	}
}
