package store

import "sync/atomic"

// Clock is the monotonic logical clock that stamps journal entries.
//
// Every violation in a run gets a strictly increasing seq from its clock,
// so concurrent reporters never race on ordering and traces read back in
// the order violations were detected.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock whose next value is start+1. ResumeRun uses
// it to continue a run after its last recorded seq.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}
