package cow

import "fmt"

// String is a copy-on-write string whose buffer sharing is governed by the
// policy P. Create Strings with Family.New or Clone and give each one back
// with Release.
type String[S any, P Policy[S]] struct {
	buf *Buf[S, P]
}

// The COW variants measured by the harness.
type (
	UnsafeString  = String[Unsync, *Unsync]
	AtomicString  = String[Atomic, *Atomic]
	CritSecString = String[CritSecRefs, *CritSecRefs]
	MutexString   = String[MutexRefs, *MutexRefs]
)

// Clone returns a copy of s. A shareable buffer is attached in O(1); an
// unshareable one is deep-copied.
func (s *String[S, P]) Clone() *String[S, P] {
	c := &String[S, P]{}
	if s.buf.policy().tryShare() {
		c.buf = s.buf
	} else {
		c.buf = s.buf.clone(0)
	}
	s.buf.fam.counters.Copy()
	return c
}

// Release drops s's reference, freeing the buffer when s was its last
// owner. s must not be used afterwards.
func (s *String[S, P]) Release() {
	if s.buf == nil {
		return
	}
	if s.buf.policy().release() {
		s.buf.destroy()
	}
	s.buf = nil
}

// Clear empties s. A shared buffer is left untouched for its other owners.
func (s *String[S, P]) Clear() {
	if s.buf.policy().leave() {
		s.buf = s.buf.fam.newBuf()
		return
	}
	s.buf.clear()
	s.buf.policy().setState(Exclusive)
}

// Append adds c to the end of s.
func (s *String[S, P]) Append(c byte) {
	s.ensureUnique(s.buf.used + 1)
	s.buf.data[s.buf.used] = c
	s.buf.used++
}

// Len returns the number of bytes in s.
func (s *String[S, P]) Len() int { return s.buf.used }

// Ref returns a reference to the n'th byte. Because the caller may keep the
// reference, s's buffer becomes unshareable: later copies of s are deep
// until s is cleared.
func (s *String[S, P]) Ref(n int) *byte {
	s.ensureUnshareable(len(s.buf.data))
	if n < 0 || n >= s.buf.used {
		panic(fmt.Sprintf("cow: index %d out of range [0:%d]", n, s.buf.used))
	}
	return &s.buf.data[n]
}

// At is non-const indexed access: it reads through Ref.
func (s *String[S, P]) At(n int) byte { return *s.Ref(n) }

// Bytes returns a copy of s's contents without touching the sharing state.
func (s *String[S, P]) Bytes() []byte {
	out := make([]byte, s.buf.used)
	copy(out, s.buf.data)
	return out
}

// State returns the sharing state of s's buffer.
func (s *String[S, P]) State() State { return s.buf.State() }

// Shares reports whether s and o hold the same buffer.
func (s *String[S, P]) Shares(o *String[S, P]) bool { return s.buf == o.buf }

func (s *String[S, P]) ensureUnique(n int) {
	if c := s.buf.policy().unique(s.buf, n); c != nil {
		s.buf = c.(*Buf[S, P])
		return
	}
	s.buf.reserve(n)
	s.buf.policy().setState(Exclusive)
}

func (s *String[S, P]) ensureUnshareable(n int) {
	s.ensureUnique(n)
	s.buf.policy().setState(Unshareable)
}
