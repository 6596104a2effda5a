package livesync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"agency-portal/internal/metrics"
)

// Unsubscribe stops a subscription. It is safe to call more than once.
// Once it returns no further callback begins for that subscription.
type Unsubscribe func()

// Manager fans change events out to query subscriptions.
type Manager struct {
	source Source
	logger *slog.Logger

	mu      sync.RWMutex
	subs    map[string]map[*subscription]struct{}
	pending map[string][]*Pending
}

type subscription struct {
	query   Query
	onData  func([]Document)
	onError func(error)

	// kick holds at most one queued refresh, so bursts of changes collapse
	// into a single re-query.
	kick   chan struct{}
	cancel context.CancelFunc
	closed atomic.Bool

	// mu is held for the whole of a callback; inCallback marks that window
	// so a callback can unsubscribe itself without waiting on its own lock.
	mu         sync.Mutex
	inCallback atomic.Bool
}

// deliver runs fn unless the subscription is closed.
func (s *subscription) deliver(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return false
	}
	s.inCallback.Store(true)
	defer s.inCallback.Store(false)
	fn()
	return true
}

func NewManager(source Source, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		source:  source,
		logger:  logger,
		subs:    make(map[string]map[*subscription]struct{}),
		pending: make(map[string][]*Pending),
	}
}

// Subscribe delivers the current result of q to onData right away and again
// after every change to q's collection. Query failures go to onError, which
// may be nil. The subscription ends when the returned Unsubscribe is called
// or ctx is cancelled.
func (m *Manager) Subscribe(ctx context.Context, q Query, onData func([]Document), onError func(error)) Unsubscribe {
	ctx, cancel := context.WithCancel(ctx)
	s := &subscription{
		query:   q,
		onData:  onData,
		onError: onError,
		kick:    make(chan struct{}, 1),
		cancel:  cancel,
	}
	s.kick <- struct{}{}

	m.mu.Lock()
	set, ok := m.subs[q.Collection]
	if !ok {
		set = make(map[*subscription]struct{})
		m.subs[q.Collection] = set
	}
	set[s] = struct{}{}
	m.mu.Unlock()
	metrics.ActiveSubscriptions.Inc()

	go m.run(ctx, s)

	return func() { m.stop(s) }
}

func (m *Manager) stop(s *subscription) {
	// Holding mu waits out a callback already in flight, unless the caller
	// is that callback.
	if !s.inCallback.Load() {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.cancel()

	m.mu.Lock()
	if set, ok := m.subs[s.query.Collection]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(m.subs, s.query.Collection)
		}
	}
	m.mu.Unlock()
	metrics.ActiveSubscriptions.Dec()
}

func (m *Manager) run(ctx context.Context, s *subscription) {
	defer m.stop(s)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.kick:
		}

		docs, err := m.snapshot(ctx, s.query)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			m.logger.Error("live query failed",
				slog.String("collection", s.query.Collection),
				slog.String("error", err.Error()))
			metrics.SnapshotsDelivered.WithLabelValues(s.query.Collection, "error").Inc()
			if s.onError != nil {
				s.deliver(func() { s.onError(err) })
			}
			continue
		}

		if !s.deliver(func() { s.onData(docs) }) {
			return
		}
		metrics.SnapshotsDelivered.WithLabelValues(s.query.Collection, "ok").Inc()
	}
}

// Publish schedules a refresh for every subscription on the event's
// collection. It never blocks.
func (m *Manager) Publish(ev ChangeEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if ev.Collection == "" || ev.Op == OpResync {
		for _, set := range m.subs {
			kickAll(set)
		}
		return
	}
	kickAll(m.subs[ev.Collection])
}

func kickAll(set map[*subscription]struct{}) {
	for s := range set {
		select {
		case s.kick <- struct{}{}:
		default:
		}
	}
}

// Active returns the number of open subscriptions.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, set := range m.subs {
		n += len(set)
	}
	return n
}

// Close ends every open subscription.
func (m *Manager) Close() {
	m.mu.RLock()
	var all []*subscription
	for _, set := range m.subs {
		for s := range set {
			all = append(all, s)
		}
	}
	m.mu.RUnlock()

	for _, s := range all {
		m.stop(s)
	}
}

func (m *Manager) snapshot(ctx context.Context, q Query) ([]Document, error) {
	docs, err := m.source.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", q.Collection, err)
	}
	return m.mergePending(q, docs), nil
}
