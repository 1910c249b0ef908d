package chain

import (
	"context"
	"sync"
)

// Value is a journaled scalar cell used for runtime-mutable configuration
// (min stake, voting period, thresholds). Set inside an executor operation
// restores the prior value on abort.
type Value[T any] struct {
	mu sync.RWMutex
	v  T
}

func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{v: initial}
}

func (c *Value[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v
}

func (c *Value[T]) Set(ctx context.Context, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tx, ok := TxFrom(ctx); ok {
		prev := c.v
		tx.OnRollback(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.v = prev
		})
	}
	c.v = v
}
