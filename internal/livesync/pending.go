package livesync

import "sync"

type SyncState string

const (
	StatePending   SyncState = "pending"
	StateConfirmed SyncState = "confirmed"
	StateFailed    SyncState = "failed"
)

// SyncField marks optimistic documents in snapshots.
const SyncField = "_sync"

// Pending is a locally created document that has not been confirmed by the
// store yet. Until it settles it appears in every matching snapshot,
// flagged with SyncField. Settling removes it; on Confirm the stored row
// takes its place, on Fail it simply disappears.
type Pending struct {
	m          *Manager
	collection string
	doc        Document

	mu    sync.Mutex
	state SyncState
	err   error
}

// Optimistic registers doc as pending in collection. doc must carry the id
// the store will use so the stored row can replace it.
func (m *Manager) Optimistic(collection string, doc Document) *Pending {
	p := &Pending{
		m:          m,
		collection: collection,
		doc:        cloneDoc(doc),
		state:      StatePending,
	}

	m.mu.Lock()
	m.pending[collection] = append(m.pending[collection], p)
	m.mu.Unlock()

	m.Publish(ChangeEvent{Collection: collection, Op: OpInsert, ID: doc.ID()})
	return p
}

func (p *Pending) Confirm() {
	p.settle(StateConfirmed, nil, OpUpdate)
}

func (p *Pending) Fail(err error) {
	p.settle(StateFailed, err, OpDelete)
}

func (p *Pending) State() SyncState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Err returns the failure passed to Fail, if any.
func (p *Pending) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Pending) settle(state SyncState, err error, op string) {
	p.mu.Lock()
	if p.state != StatePending {
		p.mu.Unlock()
		return
	}
	p.state = state
	p.err = err
	p.mu.Unlock()

	p.m.dropPending(p)
	p.m.Publish(ChangeEvent{Collection: p.collection, Op: op, ID: p.doc.ID()})
}

func (m *Manager) dropPending(p *Pending) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.pending[p.collection]
	for i, other := range list {
		if other == p {
			list = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(m.pending, p.collection)
		return
	}
	m.pending[p.collection] = list
}

func (m *Manager) mergePending(q Query, docs []Document) []Document {
	m.mu.RLock()
	list := m.pending[q.Collection]
	var extra []Document
	if len(list) > 0 {
		stored := make(map[string]struct{}, len(docs))
		for _, d := range docs {
			stored[d.ID()] = struct{}{}
		}
		for _, p := range list {
			if _, ok := stored[p.doc.ID()]; ok {
				continue
			}
			if !q.Matches(p.doc) {
				continue
			}
			d := cloneDoc(p.doc)
			d[SyncField] = string(StatePending)
			extra = append(extra, d)
		}
	}
	m.mu.RUnlock()

	if len(extra) == 0 {
		return docs
	}
	merged := make([]Document, 0, len(docs)+len(extra))
	if q.Descending {
		// newest first: pending records are the newest
		for i := len(extra) - 1; i >= 0; i-- {
			merged = append(merged, extra[i])
		}
		return append(merged, docs...)
	}
	merged = append(merged, docs...)
	return append(merged, extra...)
}

func cloneDoc(d Document) Document {
	out := make(Document, len(d)+1)
	for k, v := range d {
		out[k] = v
	}
	return out
}

// PendingCount reports how many optimistic documents in collection have
// not settled yet.
func (m *Manager) PendingCount(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending[collection])
}
