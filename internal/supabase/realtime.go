package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lib/pq"

	"agency-portal/internal/livesync"
	"agency-portal/internal/metrics"
)

// ChangeChannel is the NOTIFY channel the change triggers publish on.
const ChangeChannel = "portal_changes"

// Sink receives change events from the database.
type Sink interface {
	Publish(ev livesync.ChangeEvent)
}

// RealtimeClient listens for row changes on ChangeChannel and fans them out
// to every registered sink.
type RealtimeClient struct {
	dsn    string
	logger *slog.Logger

	mu    sync.RWMutex
	sinks []Sink
}

func NewRealtimeClient(dsn string, logger *slog.Logger) *RealtimeClient {
	return &RealtimeClient{
		dsn:    dsn,
		logger: logger,
	}
}

func (r *RealtimeClient) AddSink(s Sink) {
	r.mu.Lock()
	r.sinks = append(r.sinks, s)
	r.mu.Unlock()
}

// Run blocks until ctx is done. A nil notification means the listener
// reconnected and may have missed events, so sinks get an OpResync.
func (r *RealtimeClient) Run(ctx context.Context) error {
	listener := pq.NewListener(r.dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventDisconnected:
			r.logger.Warn("change listener disconnected", "error", err)
		case pq.ListenerEventConnectionAttemptFailed:
			r.logger.Warn("change listener reconnect failed", "error", err)
		case pq.ListenerEventReconnected:
			r.logger.Info("change listener reconnected")
		}
	})
	defer listener.Close()

	if err := listener.Listen(ChangeChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", ChangeChannel, err)
	}
	r.logger.Info("listening for changes", "channel", ChangeChannel)

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			if n == nil {
				r.broadcast(livesync.ChangeEvent{Op: livesync.OpResync})
				continue
			}
			ev, err := ParseChange(n.Extra)
			if err != nil {
				r.logger.Warn("ignoring malformed change event", "error", err, "payload", n.Extra)
				continue
			}
			r.broadcast(ev)
		case <-ping.C:
			go func() {
				if err := listener.Ping(); err != nil {
					r.logger.Warn("change listener ping failed", "error", err)
				}
			}()
		}
	}
}

func (r *RealtimeClient) broadcast(ev livesync.ChangeEvent) {
	metrics.ChangeEvents.WithLabelValues(ev.Collection, ev.Op).Inc()

	r.mu.RLock()
	sinks := make([]Sink, len(r.sinks))
	copy(sinks, r.sinks)
	r.mu.RUnlock()

	for _, s := range sinks {
		s.Publish(ev)
	}
}

// ParseChange decodes a notification payload written by notify_portal_change.
func ParseChange(payload string) (livesync.ChangeEvent, error) {
	var ev livesync.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ev, fmt.Errorf("failed to decode change: %w", err)
	}
	if ev.Collection == "" {
		return ev, errors.New("change has no collection")
	}
	switch ev.Op {
	case livesync.OpInsert, livesync.OpUpdate, livesync.OpDelete:
	default:
		return ev, fmt.Errorf("unknown change op %q", ev.Op)
	}
	return ev, nil
}
