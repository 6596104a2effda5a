package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"agency-portal/internal/livesync"
	"agency-portal/internal/metrics"
	"agency-portal/internal/models"
)

const submissionsCollection = "form_submissions"

type SubmissionStore interface {
	GetSubmission(ctx context.Context, id uuid.UUID) (*models.FormSubmission, error)
	MarkSubmissionNotified(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Dispatcher emails the agency about new form submissions. It consumes
// database change events and sends from a bounded worker pool.
type Dispatcher struct {
	store      SubmissionStore
	mailer     Mailer
	recipients []string
	agency     string
	pool       *ants.Pool
	logger     *slog.Logger
	backoffs   []time.Duration
	timeout    time.Duration
}

type Option func(*Dispatcher)

func WithBackoffs(b []time.Duration) Option {
	return func(d *Dispatcher) { d.backoffs = b }
}

func WithAgencyName(name string) Option {
	return func(d *Dispatcher) { d.agency = name }
}

func NewDispatcher(store SubmissionStore, mailer Mailer, recipients []string, workers int, logger *slog.Logger, opts ...Option) (*Dispatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 4
	}
	d := &Dispatcher{
		store:      store,
		mailer:     mailer,
		recipients: recipients,
		agency:     "agency",
		logger:     logger,
		backoffs:   DefaultBackoffs,
		timeout:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}

	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(v any) {
		logger.Error("notification worker panic", slog.Any("panic", v))
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create notification pool: %w", err)
	}
	d.pool = pool
	return d, nil
}

// Publish implements the change feed sink. Only new form submissions are
// of interest.
func (d *Dispatcher) Publish(ev livesync.ChangeEvent) {
	if ev.Collection != submissionsCollection || ev.Op != livesync.OpInsert {
		return
	}
	id, err := uuid.Parse(ev.ID)
	if err != nil {
		d.logger.Warn("ignoring submission event with bad id", slog.String("id", ev.ID))
		return
	}
	if err := d.pool.Submit(func() { d.notifySubmission(id) }); err != nil {
		d.logger.Error("failed to queue submission notification",
			slog.String("submission_id", ev.ID),
			slog.String("error", err.Error()))
	}
}

func (d *Dispatcher) notifySubmission(id uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	logger := d.logger.With(slog.String("submission_id", id.String()))
	if len(d.recipients) == 0 {
		logger.Warn("no notification recipients configured")
		return
	}

	sub, err := d.store.GetSubmission(ctx, id)
	if err != nil {
		logger.Error("failed to load submission", slog.String("error", err.Error()))
		return
	}
	if sub.NotifiedAt != nil {
		return
	}

	subject, body, err := RenderSubmission(*sub)
	if err != nil {
		logger.Error("failed to render submission email", slog.String("error", err.Error()))
		return
	}

	msg := Message{To: d.recipients, Subject: subject, HTML: body}
	err = RetryWithBackoff(ctx, func() error {
		return d.mailer.Send(ctx, msg)
	}, len(d.backoffs)+1, d.backoffs)
	if err != nil {
		metrics.NotificationsSent.WithLabelValues("submission", "failed").Inc()
		logger.Error("failed to send submission email", slog.String("error", err.Error()))
		return
	}
	metrics.NotificationsSent.WithLabelValues("submission", "sent").Inc()

	if err := d.store.MarkSubmissionNotified(ctx, id, time.Now()); err != nil {
		logger.Error("failed to mark submission notified", slog.String("error", err.Error()))
	}
}

// SendInvite emails a team invite link.
func (d *Dispatcher) SendInvite(ctx context.Context, email, link string) error {
	subject, body, err := RenderInvite(d.agency, link)
	if err != nil {
		return err
	}
	if err := d.mailer.Send(ctx, Message{To: []string{email}, Subject: subject, HTML: body}); err != nil {
		metrics.NotificationsSent.WithLabelValues("invite", "failed").Inc()
		return err
	}
	metrics.NotificationsSent.WithLabelValues("invite", "sent").Inc()
	return nil
}

// Close waits briefly for queued notifications and stops the pool.
func (d *Dispatcher) Close() {
	_ = d.pool.ReleaseTimeout(3 * time.Second)
}
