// Package tally holds the instrumentation counters a benchmark driver owns
// and lends to a string family for the duration of a timed run.
package tally

import "go.uber.org/atomic"

// Counters records copy constructions and storage allocations/releases.
// Increments are atomic so concurrent runs produce exact totals.
type Counters struct {
	copies atomic.Int64
	allocs atomic.Int64
	frees  atomic.Int64
}

// Snapshot is a point-in-time copy of Counters.
type Snapshot struct {
	Copies int64
	Allocs int64
	Frees  int64
}

func (c *Counters) Copy()  { c.copies.Inc() }
func (c *Counters) Alloc() { c.allocs.Inc() }
func (c *Counters) Free()  { c.frees.Inc() }

// Reset zeroes all counters. Call it between timed runs.
func (c *Counters) Reset() {
	c.copies.Store(0)
	c.allocs.Store(0)
	c.frees.Store(0)
}

// Snapshot returns the current values.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Copies: c.copies.Load(),
		Allocs: c.allocs.Load(),
		Frees:  c.frees.Load(),
	}
}

// Live is the number of allocations not yet released.
func (s Snapshot) Live() int64 { return s.Allocs - s.Frees }

// Sub returns s - o field by field.
func (s Snapshot) Sub(o Snapshot) Snapshot {
	return Snapshot{
		Copies: s.Copies - o.Copies,
		Allocs: s.Allocs - o.Allocs,
		Frees:  s.Frees - o.Frees,
	}
}
