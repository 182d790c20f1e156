// Package prim holds the synchronization primitives the string variants are
// built on.
package prim

import "go.uber.org/atomic"

// Int is an integer whose increment, decrement and compare are atomic.
// The zero value is ready to use.
type Int struct {
	v atomic.Int64
}

// NewInt returns an Int holding v.
func NewInt(v int64) *Int {
	i := &Int{}
	i.v.Store(v)
	return i
}

// Increment adds one and returns the new value.
func (i *Int) Increment() int64 { return i.v.Inc() }

// Decrement subtracts one and returns the new value.
func (i *Int) Decrement() int64 { return i.v.Dec() }

// Compare atomically reads the value and returns -1, 0 or 1 depending on
// whether it is less than, equal to or greater than v.
func (i *Int) Compare(v int64) int {
	cur := i.v.Load()
	switch {
	case cur < v:
		return -1
	case cur == v:
		return 0
	default:
		return 1
	}
}

// Load returns the current value.
func (i *Int) Load() int64 { return i.v.Load() }

// Store sets the value.
func (i *Int) Store(v int64) { i.v.Store(v) }
