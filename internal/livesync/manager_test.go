package livesync_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-portal/internal/livesync"
)

// memorySource is an in-memory collection store that publishes a change
// event on every write, the way the database triggers do.
type memorySource struct {
	mu   sync.Mutex
	docs map[string][]livesync.Document
	err  error
	mgr  *livesync.Manager
}

func newMemorySource() *memorySource {
	return &memorySource{docs: make(map[string][]livesync.Document)}
}

func (s *memorySource) Query(_ context.Context, q livesync.Query) ([]livesync.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []livesync.Document
	for _, d := range s.docs[q.Collection] {
		if q.Matches(d) {
			out = append(out, d)
		}
	}
	if q.Descending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *memorySource) put(collection string, doc livesync.Document) {
	s.mu.Lock()
	list := s.docs[collection]
	replaced := false
	for i, d := range list {
		if d.ID() == doc.ID() {
			list[i] = doc
			replaced = true
		}
	}
	if !replaced {
		list = append(list, doc)
	}
	s.docs[collection] = list
	s.mu.Unlock()

	op := livesync.OpInsert
	if replaced {
		op = livesync.OpUpdate
	}
	s.mgr.Publish(livesync.ChangeEvent{Collection: collection, Op: op, ID: doc.ID()})
}

func (s *memorySource) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func setup(t *testing.T) (*livesync.Manager, *memorySource) {
	t.Helper()
	src := newMemorySource()
	mgr := livesync.NewManager(src, nil)
	src.mgr = mgr
	t.Cleanup(mgr.Close)
	return mgr, src
}

func collect(t *testing.T, mgr *livesync.Manager, q livesync.Query) (<-chan []livesync.Document, livesync.Unsubscribe) {
	t.Helper()
	ch := make(chan []livesync.Document, 32)
	unsub := mgr.Subscribe(context.Background(), q, func(docs []livesync.Document) {
		ch <- docs
	}, nil)
	t.Cleanup(unsub)
	return ch, unsub
}

func waitFor(t *testing.T, ch <-chan []livesync.Document, cond func([]livesync.Document) bool) []livesync.Document {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case docs := <-ch:
			if cond(docs) {
				return docs
			}
		case <-timeout:
			t.Fatal("timed out waiting for snapshot")
			return nil
		}
	}
}

func names(docs []livesync.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d["name"].(string))
	}
	return out
}

func hasName(name string) func([]livesync.Document) bool {
	return func(docs []livesync.Document) bool {
		for _, d := range docs {
			if d["name"] == name {
				return true
			}
		}
		return false
	}
}

func TestSubscribe_DeliversInitialSnapshot(t *testing.T) {
	mgr, src := setup(t)
	src.docs["clients"] = []livesync.Document{{"id": "1", "name": "Acme", "status": "Active"}}

	ch, _ := collect(t, mgr, livesync.NewQuery("clients"))

	docs := waitFor(t, ch, func([]livesync.Document) bool { return true })
	assert.Equal(t, []string{"Acme"}, names(docs))
}

func TestSubscribe_RefreshesOnChange(t *testing.T) {
	mgr, src := setup(t)
	ch, _ := collect(t, mgr, livesync.NewQuery("clients").OrderByDesc("created_at"))
	waitFor(t, ch, func(docs []livesync.Document) bool { return len(docs) == 0 })

	src.put("clients", livesync.Document{"id": "1", "name": "Acme", "status": "Active"})
	src.put("clients", livesync.Document{"id": "2", "name": "Globex", "status": "Active"})

	docs := waitFor(t, ch, func(docs []livesync.Document) bool { return len(docs) == 2 })
	assert.Equal(t, []string{"Globex", "Acme"}, names(docs))
}

func TestSubscribe_StatusLifecycle(t *testing.T) {
	mgr, src := setup(t)
	active, _ := collect(t, mgr, livesync.NewQuery("clients").Where("status", "Active"))
	completed, _ := collect(t, mgr, livesync.NewQuery("clients").Where("status", "Completed"))

	src.put("clients", livesync.Document{"id": "1", "name": "Acme", "status": "Active"})
	waitFor(t, active, hasName("Acme"))

	src.put("clients", livesync.Document{"id": "1", "name": "Acme", "status": "Completed"})
	waitFor(t, active, func(docs []livesync.Document) bool { return len(docs) == 0 })
	waitFor(t, completed, hasName("Acme"))
}

func TestUnsubscribe_StopsCallbacks(t *testing.T) {
	mgr, src := setup(t)

	var mu sync.Mutex
	calls := 0
	first := make(chan struct{})
	unsub := mgr.Subscribe(context.Background(), livesync.NewQuery("clients"), func([]livesync.Document) {
		mu.Lock()
		calls++
		if calls == 1 {
			close(first)
		}
		mu.Unlock()
	}, nil)

	<-first
	unsub()
	unsub()

	for i := 0; i < 5; i++ {
		src.put("clients", livesync.Document{"id": "x", "name": "Acme"})
	}
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, mgr.Active())
}

func TestUnsubscribe_FromInsideCallback(t *testing.T) {
	mgr, _ := setup(t)

	var unsub livesync.Unsubscribe
	ready := make(chan struct{})
	done := make(chan struct{})
	unsub = mgr.Subscribe(context.Background(), livesync.NewQuery("clients"), func([]livesync.Document) {
		<-ready
		unsub()
		close(done)
	}, nil)
	close(ready)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("unsubscribing from the callback blocked")
	}
	assert.Eventually(t, func() bool { return mgr.Active() == 0 }, time.Second, 5*time.Millisecond)
}

func TestUnsubscribe_WaitsForCallbackInFlight(t *testing.T) {
	mgr, src := setup(t)

	var stopped atomic.Bool
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	unsub := mgr.Subscribe(context.Background(), livesync.NewQuery("clients"), func([]livesync.Document) {
		if stopped.Load() {
			t.Error("callback began after unsubscribe returned")
		}
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
	}, nil)
	<-entered

	returned := make(chan struct{})
	go func() {
		unsub()
		stopped.Store(true)
		close(returned)
	}()

	select {
	case <-returned:
		t.Fatal("unsubscribe returned while a callback was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("unsubscribe never returned")
	}

	for i := 0; i < 5; i++ {
		src.put("clients", livesync.Document{"id": "x", "name": "Acme"})
	}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, mgr.Active())
}

func TestSubscribe_ContextCancelEndsSubscription(t *testing.T) {
	mgr, _ := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan struct{}, 1)
	mgr.Subscribe(ctx, livesync.NewQuery("clients"), func([]livesync.Document) {
		got <- struct{}{}
	}, nil)
	<-got

	cancel()

	assert.Eventually(t, func() bool { return mgr.Active() == 0 }, time.Second, 5*time.Millisecond)
}

func TestSubscribe_ReportsErrors(t *testing.T) {
	mgr, src := setup(t)
	src.setErr(errors.New("connection refused"))

	errs := make(chan error, 1)
	mgr.Subscribe(context.Background(), livesync.NewQuery("invoices"), func([]livesync.Document) {
		t.Error("unexpected snapshot")
	}, func(err error) {
		errs <- err
	})

	select {
	case err := <-errs:
		assert.Contains(t, err.Error(), "invoices")
	case <-time.After(2 * time.Second):
		t.Fatal("no error delivered")
	}
}

func TestOptimistic_ConfirmReplacesPending(t *testing.T) {
	mgr, src := setup(t)
	ch, _ := collect(t, mgr, livesync.NewQuery("clients").Where("status", "Active"))
	waitFor(t, ch, func(docs []livesync.Document) bool { return len(docs) == 0 })

	doc := livesync.Document{"id": "42", "name": "Acme", "status": "Active"}
	p := mgr.Optimistic("clients", doc)

	docs := waitFor(t, ch, hasName("Acme"))
	assert.Equal(t, "pending", docs[0][livesync.SyncField])
	assert.Equal(t, livesync.StatePending, p.State())

	src.put("clients", doc)
	p.Confirm()

	docs = waitFor(t, ch, func(docs []livesync.Document) bool {
		return len(docs) == 1 && docs[0][livesync.SyncField] == nil
	})
	assert.Equal(t, "42", docs[0].ID())
	assert.Equal(t, livesync.StateConfirmed, p.State())
}

func TestOptimistic_FailRemovesPending(t *testing.T) {
	mgr, _ := setup(t)
	ch, _ := collect(t, mgr, livesync.NewQuery("clients"))

	p := mgr.Optimistic("clients", livesync.Document{"id": "7", "name": "Ghost"})
	waitFor(t, ch, hasName("Ghost"))

	boom := errors.New("permission denied")
	p.Fail(boom)
	p.Confirm()

	waitFor(t, ch, func(docs []livesync.Document) bool { return len(docs) == 0 })
	assert.Equal(t, livesync.StateFailed, p.State())
	assert.ErrorIs(t, p.Err(), boom)
}

func TestOptimistic_RespectsFilters(t *testing.T) {
	mgr, _ := setup(t)
	ch, _ := collect(t, mgr, livesync.NewQuery("clients").Where("status", "Completed"))
	waitFor(t, ch, func(docs []livesync.Document) bool { return len(docs) == 0 })

	mgr.Optimistic("clients", livesync.Document{"id": "1", "name": "Acme", "status": "Active"})

	select {
	case docs := <-ch:
		assert.Empty(t, docs)
	case <-time.After(100 * time.Millisecond):
	}
}

type clientRecord struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

func TestWatch_DecodesRecords(t *testing.T) {
	mgr, src := setup(t)
	src.docs["clients"] = []livesync.Document{{"id": "1", "name": "Acme", "status": "Active"}}

	ch := make(chan []clientRecord, 4)
	unsub := livesync.Watch(mgr, context.Background(), livesync.NewQuery("clients"), func(records []clientRecord) {
		ch <- records
	}, nil)
	defer unsub()

	select {
	case records := <-ch:
		require.Len(t, records, 1)
		assert.Equal(t, clientRecord{ID: "1", Name: "Acme", Status: "Active"}, records[0])
	case <-time.After(2 * time.Second):
		t.Fatal("no records delivered")
	}
}

func TestQuery_Matches(t *testing.T) {
	q := livesync.NewQuery("projects").Where("client_id", "c1").Where("status", "Sourcing")

	assert.True(t, q.Matches(livesync.Document{"client_id": "c1", "status": "Sourcing"}))
	assert.False(t, q.Matches(livesync.Document{"client_id": "c2", "status": "Sourcing"}))
	assert.False(t, q.Matches(livesync.Document{"client_id": "c1"}))

	base := livesync.NewQuery("projects").Where("client_id", "c1")
	_ = base.Where("status", "Completed")
	assert.Len(t, base.Filters, 1)
}
