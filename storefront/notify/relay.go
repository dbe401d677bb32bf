package notify

import (
	"context"
	"errors"
	"time"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell"
)

const (
	defaultInterval    = 2 * time.Second
	defaultBatchSize   = 50
	defaultMaxAttempts = 8
	defaultBaseBackoff = 5 * time.Second
	defaultMaxBackoff  = 30 * time.Minute
)

const (
	// RelayDispatchedMetric counts dispatch outcomes, labeled with outcome and kind.
	RelayDispatchedMetric = "notification_relay_dispatched_total"

	// RelayBatchDurationMetric tracks the duration of one relay batch.
	RelayBatchDurationMetric = "notification_relay_batch_duration_seconds"

	outcomeSent      = "sent"
	outcomeFailed    = "failed"
	outcomeAbandoned = "abandoned"

	logMsgRelayStarted        = "notification relay started"
	logMsgRelayStopped        = "notification relay stopped"
	logMsgRelayBatchFailed    = "notification relay batch failed"
	logMsgDispatchFailed      = "notification dispatch failed"
	logMsgNotificationAbandon = "notification abandoned"
	logMsgNotificationLogged  = "notification"

	logAttrKind      = "kind"
	logAttrRecipient = "recipient"
	logAttrOrderID   = "order_id"
	logAttrStatus    = "status"
	logAttrAttempts  = "attempts"
	logAttrError     = "error"
	logAttrOutcome   = "outcome"
	logAttrInterval  = "interval"
)

// OutboxStore defines the interface needed by the Relay for outbox operations.
type OutboxStore interface {
	FetchDueNotifications(ctx context.Context, limit int, now time.Time) ([]orderstore.StorableNotification, error)
	MarkNotificationSent(ctx context.Context, id int64, sentAt time.Time) error
	MarkNotificationFailed(ctx context.Context, id int64, failure string, nextAttemptAt time.Time, abandonedAt *time.Time) error
}

// BatchStats summarizes one relay pass.
type BatchStats struct {
	Sent      int
	Failed    int
	Abandoned int
}

// Relay moves outbox records to a Dispatcher.
type Relay struct {
	store       OutboxStore
	dispatcher  Dispatcher
	interval    time.Duration
	batchSize   int
	maxAttempts int
	baseBackoff time.Duration
	maxBackoff  time.Duration
	now         func() time.Time
	logger      shell.Logger
	metrics     shell.MetricsCollector
}

// Option configures a Relay.
type Option func(*Relay)

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithBatchSize sets how many records one poll fetches.
func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithMaxAttempts sets after how many failed dispatches a record is abandoned.
func WithMaxAttempts(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithBackoff sets the delay after the first failure and the cap; the delay doubles per failure.
func WithBackoff(base, limit time.Duration) Option {
	return func(r *Relay) {
		r.baseBackoff = base
		r.maxBackoff = limit
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Relay) {
		r.now = now
	}
}

func WithLogger(logger shell.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

func WithMetrics(collector shell.MetricsCollector) Option {
	return func(r *Relay) {
		r.metrics = collector
	}
}

// NewRelay creates a Relay with optional configuration.
func NewRelay(store OutboxStore, dispatcher Dispatcher, opts ...Option) *Relay {
	r := &Relay{
		store:       store,
		dispatcher:  dispatcher,
		interval:    defaultInterval,
		batchSize:   defaultBatchSize,
		maxAttempts: defaultMaxAttempts,
		baseBackoff: defaultBaseBackoff,
		maxBackoff:  defaultMaxBackoff,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run polls until ctx is done. Batch errors are logged and retried on the next tick.
func (r *Relay) Run(ctx context.Context) error {
	r.info(logMsgRelayStarted, logAttrInterval, r.interval.String())

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.RelayBatch(ctx); err != nil && ctx.Err() == nil {
			r.warn(logMsgRelayBatchFailed, logAttrError, err.Error())
		}

		select {
		case <-ctx.Done():
			r.info(logMsgRelayStopped)
			return nil
		case <-ticker.C:
		}
	}
}

// RelayBatch processes one batch of due records. Records still in backoff are not fetched,
// so they never hold back newer ones.
func (r *Relay) RelayBatch(ctx context.Context) (BatchStats, error) {
	start := time.Now()
	defer func() {
		if r.metrics != nil {
			r.metrics.RecordDuration(RelayBatchDurationMetric, time.Since(start), nil)
		}
	}()

	stats := BatchStats{}

	due, err := r.store.FetchDueNotifications(ctx, r.batchSize, r.now())
	if err != nil {
		return stats, err
	}

	for _, record := range due {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stats, ctxErr
		}

		outcome, relayErr := r.relay(ctx, record)
		if relayErr != nil {
			return stats, relayErr
		}

		switch outcome {
		case outcomeSent:
			stats.Sent++
		case outcomeFailed:
			stats.Failed++
		case outcomeAbandoned:
			stats.Abandoned++
		}

		if r.metrics != nil {
			r.metrics.IncrementCounter(RelayDispatchedMetric, map[string]string{logAttrOutcome: outcome, logAttrKind: record.Kind})
		}
	}

	return stats, nil
}

// relay dispatches one record and marks it. Only a failure to mark is returned as an error.
func (r *Relay) relay(ctx context.Context, record orderstore.StorableNotification) (string, error) {
	message, err := shell.NotificationMessageFrom(record)
	if err == nil {
		err = r.dispatcher.Dispatch(ctx, message, record.PayloadJSON)
	}

	now := r.now()

	if err == nil {
		return outcomeSent, r.store.MarkNotificationSent(ctx, record.ID, now)
	}

	attempts := record.Attempts + 1

	// an undecodable payload will never succeed
	if attempts >= r.maxAttempts || errors.Is(err, shell.ErrUnmarshalingNotificationFailed) {
		r.warn(
			logMsgNotificationAbandon,
			logAttrOrderID, record.OrderID,
			logAttrKind, record.Kind,
			logAttrAttempts, attempts,
			logAttrError, err.Error(),
		)

		return outcomeAbandoned, r.store.MarkNotificationFailed(ctx, record.ID, err.Error(), now, &now)
	}

	r.warn(
		logMsgDispatchFailed,
		logAttrOrderID, record.OrderID,
		logAttrKind, record.Kind,
		logAttrAttempts, attempts,
		logAttrError, err.Error(),
	)

	return outcomeFailed, r.store.MarkNotificationFailed(ctx, record.ID, err.Error(), now.Add(r.backoff(attempts)), nil)
}

// backoff returns base × 2^(attempts-1), capped at maxBackoff.
func (r *Relay) backoff(attempts int) time.Duration {
	delay := r.baseBackoff
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= r.maxBackoff {
			return r.maxBackoff
		}
	}

	return min(delay, r.maxBackoff)
}

func (r *Relay) info(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Info(msg, args...)
	}
}

func (r *Relay) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
