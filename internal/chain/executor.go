package chain

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Executor serializes every public operation: exactly one operation executes
// to completion at a time across the whole system. Each operation runs with
// a fresh undo journal; on error (or panic) the journal unwinds before the
// lock is released, so callers observe either the full effect of an
// operation or none of it.
type Executor struct {
	clock    *Clock
	logger   *slog.Logger
	tracer   trace.Tracer
	observer Observer
	// gate is the single-writer queue; a plain mutex is enough because
	// operations never suspend mid-execution.
	gate chan struct{}
}

// Observer receives the outcome of every executed operation. The platform
// metrics registry implements it; tests use it to count commits and aborts.
type Observer interface {
	OperationExecuted(op string, height uint64, err error)
}

type Option func(*Executor)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

func WithObserver(obs Observer) Option {
	return func(e *Executor) {
		e.observer = obs
	}
}

func NewExecutor(clock *Clock, opts ...Option) *Executor {
	e := &Executor{
		clock:  clock,
		tracer: otel.Tracer("scholarchain/chain"),
		gate:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs op under the global serialization gate. The clock ticks once
// per accepted operation before fn runs, so fn observes the height of the
// block it executes in.
func (e *Executor) Execute(ctx context.Context, op string, fn func(ctx context.Context) error) (err error) {
	e.gate <- struct{}{}
	defer func() { <-e.gate }()

	height := e.clock.Tick()

	ctx, span := e.tracer.Start(ctx, "chain.execute",
		trace.WithAttributes(
			attribute.String("op", op),
			attribute.Int64("height", int64(height)),
		),
	)
	defer span.End()

	tx := &Tx{}
	ctx = WithTx(ctx, tx)

	defer func() {
		if r := recover(); r != nil {
			tx.rollback()
			err = fmt.Errorf("operation %s panicked: %v", op, r)
			e.observe(op, height, err)
		}
	}()

	if err = fn(ctx); err != nil {
		tx.rollback()
		span.RecordError(err)
		if e.logger != nil {
			e.logger.WarnContext(ctx, "operation aborted",
				"op", op,
				"height", height,
				"error", err.Error(),
			)
		}
		e.observe(op, height, err)
		return err
	}

	if e.logger != nil {
		e.logger.DebugContext(ctx, "operation committed",
			"op", op,
			"height", height,
		)
	}
	e.observe(op, height, nil)
	return nil
}

// Height exposes the clock to read paths that run outside Execute.
func (e *Executor) Height() uint64 {
	return e.clock.Height()
}

func (e *Executor) observe(op string, height uint64, err error) {
	if e.observer != nil {
		e.observer.OperationExecuted(op, height, err)
	}
}
