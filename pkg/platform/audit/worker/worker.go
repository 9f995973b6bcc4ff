// Package worker relays the audit outbox to a sink (Kafka in production).
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	audit "examreg/pkg/platform/audit"
	"examreg/pkg/platform/circuit"
)

const (
	defaultInterval  = 2 * time.Second
	defaultBatchSize = 100
)

// Sink delivers a batch of outbox entries. A nil error means every entry was
// accepted.
type Sink interface {
	Publish(ctx context.Context, entries []audit.OutboxEntry) error
}

// Relay polls the outbox and publishes pending entries in id order. Entries
// are marked published only after the sink accepts the whole batch, so
// delivery is at least once.
type Relay struct {
	outbox   audit.Outbox
	sink     Sink
	interval time.Duration
	batch    int
	breaker  *circuit.Breaker
	logger   *slog.Logger
	metrics  *Metrics
}

type Option func(*Relay)

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batch = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) { r.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(r *Relay) { r.metrics = m }
}

func NewRelay(outbox audit.Outbox, sink Sink, opts ...Option) *Relay {
	r := &Relay{
		outbox:   outbox,
		sink:     sink,
		interval: defaultInterval,
		batch:    defaultBatchSize,
		breaker:  circuit.New("audit-relay", circuit.WithFailureThreshold(3), circuit.WithSuccessThreshold(1)),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run flushes on every tick until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := r.Flush(ctx); err != nil && !errors.Is(err, context.Canceled) {
				r.logger.WarnContext(ctx, "audit relay flush failed", "error", err)
			}
		}
	}
}

// Flush publishes pending entries until the outbox is drained or a batch
// fails. It returns how many entries were published.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	published := 0
	for {
		entries, err := r.outbox.Pending(ctx, r.batch)
		if err != nil {
			return published, err
		}
		if len(entries) == 0 {
			return published, nil
		}

		if err := r.sink.Publish(ctx, entries); err != nil {
			r.recordFailure(ctx, err)
			return published, err
		}
		ids := make([]int64, len(entries))
		for i, e := range entries {
			ids[i] = e.ID
		}
		if err := r.outbox.MarkPublished(ctx, ids, time.Now()); err != nil {
			return published, err
		}
		r.recordSuccess(ctx, len(entries))
		published += len(entries)

		if len(entries) < r.batch {
			return published, nil
		}
	}
}

func (r *Relay) recordFailure(ctx context.Context, err error) {
	if r.metrics != nil {
		r.metrics.IncPublishFailures()
	}
	if _, change := r.breaker.RecordFailure(); change.Opened {
		r.logger.ErrorContext(ctx, "audit relay circuit opened", "error", err)
		if r.metrics != nil {
			r.metrics.SetCircuitBreakerState(true)
		}
	}
}

func (r *Relay) recordSuccess(ctx context.Context, n int) {
	if r.metrics != nil {
		r.metrics.AddPublished(n)
	}
	if _, change := r.breaker.RecordSuccess(); change.Closed {
		r.logger.InfoContext(ctx, "audit relay circuit closed")
		if r.metrics != nil {
			r.metrics.SetCircuitBreakerState(false)
		}
	}
}
