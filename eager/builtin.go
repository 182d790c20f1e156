package eager

import "bytes"

// SliceFamily creates Slice strings. It keeps no counters: a byte slice
// manages its own storage and the harness cannot see its allocations.
type SliceFamily struct{}

// NewSlice returns a family of slice-backed strings.
func NewSlice() *SliceFamily { return &SliceFamily{} }

// New returns an empty string.
func (*SliceFamily) New() *Slice { return &Slice{} }

// Slice is backed by a []byte grown with append. Copies are deep.
type Slice struct {
	b []byte
}

func (s *Slice) Clone() *Slice   { return &Slice{b: bytes.Clone(s.b)} }
func (s *Slice) Release()        { s.b = nil }
func (s *Slice) Clear()          { s.b = s.b[:0] }
func (s *Slice) Append(c byte)   { s.b = append(s.b, c) }
func (s *Slice) Len() int        { return len(s.b) }
func (s *Slice) Ref(n int) *byte { return &s.b[n] }
func (s *Slice) At(n int) byte   { return s.b[n] }

// NativeFamily creates Native strings. Like SliceFamily it keeps no
// counters.
type NativeFamily struct{}

// NewNative returns a family of Go-string-backed strings.
func NewNative() *NativeFamily { return &NativeFamily{} }

// New returns an empty string.
func (*NativeFamily) New() *Native { return &Native{} }

// Native is backed by an immutable Go string. Copies share the bytes for
// free; every Append builds a new string. There is no Ref: the bytes of a
// Go string cannot be handed out for writing.
type Native struct {
	s string
}

func (s *Native) Clone() *Native { return &Native{s: s.s} }
func (s *Native) Release()       { s.s = "" }
func (s *Native) Clear()         { s.s = "" }
func (s *Native) Append(c byte)  { s.s += string([]byte{c}) }
func (s *Native) Len() int       { return len(s.s) }
func (s *Native) At(n int) byte  { return s.s[n] }
