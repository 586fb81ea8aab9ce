package core

import "sync/atomic"

// Clock is the monotonic height source all components stamp their records
// with. Replay pins it to each journaled height so deadline checks and
// timestamps reproduce exactly.
//
// Thread-safety: safe for concurrent use, though under the single-writer
// service only one goroutine advances it.
type Clock struct {
	height atomic.Uint64
}

func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock pinned to a specific height.
func NewClockAt(h Height) *Clock {
	c := &Clock{}
	c.height.Store(uint64(h))
	return c
}

// Now returns the current height.
func (c *Clock) Now() Height {
	return Height(c.height.Load())
}

// Advance increments the height by one and returns the new value.
func (c *Clock) Advance() Height {
	return Height(c.height.Add(1))
}

// Set pins the clock. Used by journal replay; never called on a live clock
// with a smaller value.
func (c *Clock) Set(h Height) {
	c.height.Store(uint64(h))
}
