package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Publisher fans committed events out to a store. Sync by default; with an
// async buffer events are persisted by a background worker and dropped (with
// a log line) when the buffer is full; event delivery is best-effort and
// never blocks or fails a committed operation.
type Publisher struct {
	store  Store
	logger *slog.Logger

	inbox chan Event
	wg    sync.WaitGroup
	once  sync.Once
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithAsyncBuffer switches the publisher to buffered async delivery.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan Event, size)
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records one event. The event id and timestamp are stamped here so
// callers only describe the fact.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()

	if p.inbox == nil {
		if err := p.store.Append(ctx, event); err != nil && p.logger != nil {
			p.logger.WarnContext(ctx, "event append failed",
				"action", event.Action,
				"error", err.Error(),
			)
		}
		return
	}

	select {
	case p.inbox <- event:
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "event buffer full, dropping event",
				"action", event.Action,
			)
		}
	}
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.inbox {
		if err := p.store.Append(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Warn("event append failed",
				"action", event.Action,
				"error", err.Error(),
			)
		}
	}
}

// Close drains buffered events and stops the worker.
func (p *Publisher) Close() {
	if p.inbox == nil {
		return
	}
	p.once.Do(func() { close(p.inbox) })
	p.wg.Wait()
}
