// Package publisher emits audit events that may be lost under load: security
// and operations events. With an async buffer the caller never blocks on the
// store; a full buffer drops the event and reports it.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	id "examreg/pkg/domain"
	audit "examreg/pkg/platform/audit"
)

// ErrBufferFull is returned by Emit when the async buffer has no room.
var ErrBufferFull = errors.New("audit buffer full")

// Store is the append side plus the read used by admin views and tests.
type Store interface {
	audit.Store
	ListByAccount(ctx context.Context, accountID id.AccountID) ([]audit.Event, error)
}

type Publisher struct {
	store  Store
	logger *slog.Logger

	buffer chan audit.Event
	wg     sync.WaitGroup
	once   sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer makes Emit enqueue into a buffer of size n drained by a
// background goroutine.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.buffer = make(chan audit.Event, n)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records event, stamping the time when it is unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Category = audit.AuditEvent(event.Action).Category()

	if p.buffer == nil {
		return p.store.Append(ctx, event)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case p.buffer <- event:
		return nil
	default:
		p.logger.WarnContext(ctx, "audit event dropped", "action", event.Action, "reason", "buffer_full")
		return ErrBufferFull
	}
}

// List returns the events recorded for an account.
func (p *Publisher) List(ctx context.Context, accountID id.AccountID) ([]audit.Event, error) {
	return p.store.ListByAccount(ctx, accountID)
}

// Close stops accepting events and waits until the buffer is drained.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Error("audit append failed", "action", event.Action, "error", err)
		}
	}
}
