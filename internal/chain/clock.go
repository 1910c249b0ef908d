// Package chain provides the logical time source and the serialized
// transaction executor every public operation runs under.
package chain

import "sync"

// Clock is the monotonic block-height counter. All time windows in the
// system (reputation voting period, dispute vote period) are measured in
// counter units. The executor ticks it once per accepted operation; aborted
// operations do not roll it back, mirroring a host ledger where a failed
// transaction still consumes its slot.
type Clock struct {
	mu     sync.Mutex
	height uint64
}

func NewClock() *Clock {
	return &Clock{}
}

// Height returns the current block height.
func (c *Clock) Height() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

// Tick advances the height by one and returns the new value.
func (c *Clock) Tick() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.height++
	return c.height
}
