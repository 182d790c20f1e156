// Package eager holds the string variants that never share storage: every
// copy is a deep copy. They are the baselines the COW variants are
// measured against.
package eager

import (
	"github.com/pavanmanishd/cowbench/arena"
	"github.com/pavanmanishd/cowbench/cow"
	"github.com/pavanmanishd/cowbench/tally"
)

// PlainFamily creates Plain strings. Storage comes from the runtime heap,
// or from a fixed-block arena for the fast-allocator flavour.
type PlainFamily struct {
	counters *tally.Counters
	blocks   *arena.Blocks[byte]
}

// NewPlain returns a family allocating from the heap.
func NewPlain(counters *tally.Counters) *PlainFamily {
	if counters == nil {
		counters = &tally.Counters{}
	}
	return &PlainFamily{counters: counters}
}

// NewPlainFast returns a family allocating storage from a fixed-block
// arena of count blocks of blockLen bytes. Strings longer than a block
// cannot be represented.
func NewPlainFast(counters *tally.Counters, blockLen, count int) *PlainFamily {
	f := NewPlain(counters)
	f.blocks = arena.New[byte](blockLen, count)
	return f
}

// Counters returns the family's counters.
func (f *PlainFamily) Counters() *tally.Counters { return f.counters }

// Arena returns the storage arena statistics; zero for heap families.
func (f *PlainFamily) Arena() arena.Metrics {
	if f.blocks == nil {
		return arena.Metrics{}
	}
	return f.blocks.Metrics()
}

// New returns an empty string.
func (f *PlainFamily) New() *Plain { return &Plain{fam: f} }

func (f *PlainFamily) alloc(n int) []byte {
	f.counters.Alloc()
	if f.blocks == nil {
		return make([]byte, n)
	}
	return arena.Must(arena.Allocator[byte](f.blocks), n)
}

func (f *PlainFamily) free(b []byte) {
	if b == nil {
		return
	}
	f.counters.Free()
	if f.blocks != nil {
		arena.MustFree(arena.Allocator[byte](f.blocks), b)
	}
}

// Plain owns its buffer outright. len(buf) is the capacity.
type Plain struct {
	fam  *PlainFamily
	buf  []byte
	used int
}

// Clone returns a full copy of s.
func (s *Plain) Clone() *Plain {
	c := &Plain{fam: s.fam, buf: s.fam.alloc(len(s.buf)), used: s.used}
	copy(c.buf, s.buf[:s.used])
	s.fam.counters.Copy()
	return c
}

// Release frees s's buffer.
func (s *Plain) Release() {
	s.fam.free(s.buf)
	s.buf = nil
	s.used = 0
}

// Clear frees the buffer and empties s.
func (s *Plain) Clear() { s.Release() }

// Append adds c to the end of s.
func (s *Plain) Append(c byte) {
	s.reserve(s.used + 1)
	s.buf[s.used] = c
	s.used++
}

// Len returns the number of bytes in s.
func (s *Plain) Len() int { return s.used }

// Ref returns a reference to the n'th byte.
func (s *Plain) Ref(n int) *byte { return &s.buf[:s.used][n] }

// At returns the n'th byte.
func (s *Plain) At(n int) byte { return *s.Ref(n) }

func (s *Plain) reserve(n int) {
	if len(s.buf) >= n {
		return
	}
	var nb []byte
	if c := cow.GrowCap(len(s.buf), n); c > 0 {
		nb = s.fam.alloc(c)
	}
	copy(nb, s.buf[:s.used])
	s.fam.free(s.buf)
	s.buf = nb
}
