// Package cow implements copy-on-write strings.
//
// A String shares its buffer with its copies until one of them is written.
// How the sharing is counted is a type parameter: Unsync, Atomic, or one of
// the lock-based Locked policies. Packed is a separate variant whose count,
// length and bytes live in a single allocation.
//
// Handing out a reference to a byte (Ref, At) makes the buffer
// unshareable, so later copies of that string are deep until it is
// cleared:
//
//	f := cow.NewAtomic(nil, 0)
//	s := f.New()
//	s.Append('x')
//	t := s.Clone() // shares s's buffer
//	t.Append('y')  // t detaches first
//
// Every String must be given back with Release. Buffer headers come from a
// fixed-block arena owned by the Family.
package cow
