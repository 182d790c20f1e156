package cow

import (
	"fmt"
	"unsafe"

	"github.com/pavanmanishd/cowbench/prim"
	"github.com/pavanmanishd/cowbench/tally"
)

// header sits in the first bytes of every Packed allocation, directly
// followed by cap bytes of character data.
type header struct {
	cap  int
	used int
	refs prim.Int
}

const (
	wordSize    = int(unsafe.Sizeof(uint64(0)))
	headerBytes = int(unsafe.Sizeof(header{}))
	headerWords = (headerBytes + wordSize - 1) / wordSize
)

// PackedFamily creates Packed strings and owns their counters.
type PackedFamily struct {
	counters *tally.Counters
	// cloned, when set, runs between the detach copy and the count
	// decrement in ensureUnique.
	cloned func()
}

// NewPacked returns a family of single-allocation strings.
func NewPacked(counters *tally.Counters) *PackedFamily {
	if counters == nil {
		counters = &tally.Counters{}
	}
	return &PackedFamily{counters: counters}
}

// Counters returns the family's counters.
func (f *PackedFamily) Counters() *tally.Counters { return f.counters }

// New returns an empty Packed string. Even the empty string owns one
// allocation holding its header.
func (f *PackedFamily) New() *Packed {
	h := f.alloc(0)
	h.refs.Store(1)
	return &Packed{fam: f, h: h}
}

// alloc returns a header followed by capacity bytes, in one allocation.
// The backing array is []uint64 so the header is word aligned.
func (f *PackedFamily) alloc(capacity int) *header {
	f.counters.Alloc()
	words := make([]uint64, headerWords+(capacity+wordSize-1)/wordSize)
	h := (*header)(unsafe.Pointer(&words[0]))
	h.cap = capacity
	return h
}

func (f *PackedFamily) free(h *header) {
	if h != nil {
		f.counters.Free()
	}
}

// clone returns a new Exclusive block holding h's bytes with capacity
// GrowCap(h.cap, n).
func (f *PackedFamily) clone(h *header, n int) *header {
	nh := f.alloc(GrowCap(h.cap, n))
	nh.used = h.used
	copy(chars(nh), chars(h)[:h.used])
	nh.refs.Store(1)
	return nh
}

// chars returns the character region that follows h.
func chars(h *header) []byte {
	if h.cap == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Add(unsafe.Pointer(h), headerWords*wordSize)), h.cap)
}

// Packed is a copy-on-write string using atomic reference counts whose
// capacity, length and count live in the same allocation as its bytes, so
// a buffer costs one allocation over its whole life.
type Packed struct {
	fam *PackedFamily
	h   *header
}

// Clone returns a copy of s, sharing the block when it is shareable.
func (s *Packed) Clone() *Packed {
	c := &Packed{fam: s.fam}
	if s.h.refs.Compare(0) > 0 {
		c.h = s.h
		s.h.refs.Increment()
	} else {
		c.h = s.fam.clone(s.h, 0)
	}
	s.fam.counters.Copy()
	return c
}

// Release drops s's reference. s must not be used afterwards.
func (s *Packed) Release() {
	if s.h == nil {
		return
	}
	if s.h.refs.Decrement() < 1 {
		s.fam.free(s.h)
	}
	s.h = nil
}

// Swap exchanges the contents of s and o.
func (s *Packed) Swap(o *Packed) {
	s.h, o.h = o.h, s.h
}

// Clear empties s by swapping in a fresh string and releasing the old one.
func (s *Packed) Clear() {
	tmp := s.fam.New()
	s.Swap(tmp)
	tmp.Release()
}

// Append adds c to the end of s.
func (s *Packed) Append(c byte) {
	s.ensureUnique(s.h.used + 1)
	chars(s.h)[s.h.used] = c
	s.h.used++
}

// Len returns the number of bytes in s.
func (s *Packed) Len() int { return s.h.used }

// Ref returns a reference to the n'th byte and makes s's block
// unshareable.
func (s *Packed) Ref(n int) *byte {
	s.ensureUnshareable(s.h.cap)
	if n < 0 || n >= s.h.used {
		panic(fmt.Sprintf("cow: index %d out of range [0:%d]", n, s.h.used))
	}
	return &chars(s.h)[n]
}

// At is non-const indexed access through Ref.
func (s *Packed) At(n int) byte { return *s.Ref(n) }

// Bytes returns a copy of s's contents.
func (s *Packed) Bytes() []byte {
	out := make([]byte, s.h.used)
	copy(out, chars(s.h))
	return out
}

// State returns the sharing state of s's block.
func (s *Packed) State() State { return State(s.h.refs.Load()) }

// Shares reports whether s and o hold the same block.
func (s *Packed) Shares(o *Packed) bool { return s.h == o.h }

func (s *Packed) reserve(n int) {
	if s.h.cap >= n {
		return
	}
	nh := s.fam.clone(s.h, n)
	s.fam.free(s.h)
	s.h = nh
}

func (s *Packed) ensureUnique(n int) {
	if s.h.refs.Compare(1) > 0 {
		nh := s.fam.clone(s.h, n)
		if s.fam.cloned != nil {
			s.fam.cloned()
		}
		if s.h.refs.Decrement() >= 1 {
			s.h = nh
			return
		}
		// Every other owner left while we copied.
		s.fam.free(nh)
		s.h.refs.Store(1)
	}
	s.reserve(n)
	s.h.refs.Store(1)
}

func (s *Packed) ensureUnshareable(n int) {
	s.ensureUnique(n)
	s.h.refs.Store(int64(Unshareable))
}
