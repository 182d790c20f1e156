package bench

import (
	"errors"
	"fmt"
	"time"
)

// Str is the contract every string variant satisfies. T is the variant's
// own handle type, so Clone stays statically typed.
type Str[T any] interface {
	// Clone is copy construction.
	Clone() T
	// Release is destruction; the handle must not be used afterwards.
	Release()
	Clear()
	Append(c byte)
	Len() int
	// At is non-const indexed access. COW variants make the buffer
	// unshareable.
	At(n int) byte
}

// ErrShortString is returned when the initial length is too short for the
// indexed reads a workload performs.
var ErrShortString = errors.New("bench: initial string too short for workload")

// ErrFill is returned when a string does not hold the bytes it was filled
// with, so timing it would measure a different workload.
var ErrFill = errors.New("bench: string lost bytes while filling")

// cycle is the number of inner iterations per outer loop ('a' through 'y').
const cycle = 25

// Fill appends length 'X' bytes to s.
func Fill[T Str[T]](s T, length int) {
	for i := 0; i < length; i++ {
		s.Append('X')
	}
}

// Measure fills s to length, calls reset, then times loops operations of
// workload k on s. It returns the elapsed time and the checksum of every
// byte read.
func Measure[T Str[T]](s T, k Kind, loops, length int, reset func()) (time.Duration, int64, error) {
	if length < k.minLength() {
		return 0, 0, fmt.Errorf("%w: %s needs %d, got %d", ErrShortString, k, k.minLength(), length)
	}
	Fill(s, length)
	if n := s.Len(); n != length {
		return 0, 0, fmt.Errorf("%w: length %d, want %d", ErrFill, n, length)
	}
	if reset != nil {
		reset()
	}
	t := StartTimer()
	sum := runLoop(k, s, loops/cycle, length)
	return t.Elapsed(), sum, nil
}

// runLoop executes outer*25 steps of workload k against s.
func runLoop[T Str[T]](k Kind, s T, outer, length int) int64 {
	var sum int64
	switch k {
	case ConstCopy:
		for i := 0; i < outer; i++ {
			for c := byte('a'); c <= 'y'; c++ {
				s2 := s.Clone()
				s2.Release()
			}
		}
	case Append:
		for i := 0; i < outer; i++ {
			for c := byte('a'); c <= 'y'; c++ {
				if s.Len() > length {
					s.Clear()
				}
				s.Append(c)
			}
		}
	case Operator:
		for i := 0; i < outer; i++ {
			for c := byte('a'); c <= 'y'; c++ {
				sum += int64(s.At(0))
			}
		}
	case MutatingCopy2A:
		for i := 0; i < outer; i++ {
			for c := byte('a'); c <= 'y'; c++ {
				s2 := s.Clone()
				switch i % 3 {
				case 0:
					sum += int64(s2.At(0))
				case 1:
					s2.Append(c)
				}
				s2.Release()
			}
		}
	case MutatingCopy2B:
		for i := 0; i < outer; i++ {
			for c := byte('a'); c <= 'y'; c++ {
				s2 := s.Clone()
				switch i % 4 {
				case 0:
					sum += int64(s2.At(0))
					sum += int64(s2.At(1))
					sum += int64(s2.At(2))
				case 1:
					s2.Append(c)
					s2.Append(c)
					s2.Append(c)
				}
				s2.Release()
			}
		}
	}
	return sum
}

// mutatesSource reports whether k writes the string it is given rather
// than copies of it.
func (k Kind) mutatesSource() bool { return k == Append || k == Operator }
