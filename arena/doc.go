// Package arena implements a fixed-block allocator.
//
// # Overview
//
// A Blocks arena preallocates a fixed number of same-sized blocks and hands
// them out one at a time. It exists to take the general-purpose allocator
// out of a comparison: every allocation costs the same short linear scan
// and never touches the runtime heap.
//
// # Basic Usage
//
//	a := arena.New[byte](3000, 100) // 100 blocks of 3000 bytes
//
//	buf, err := a.Allocate(120) // len 120, cap 3000
//	if err != nil {
//		// errors.Is(err, arena.ErrBadAlloc)
//	}
//	_ = a.Deallocate(buf)
//
// Blocks of a struct type work the same way; allocate one element and take
// its address:
//
//	hdrs := arena.New[header](1, 100)
//	h := &arena.Must[header](hdrs, 1)[0]
//
// # Failure
//
// Allocate fails with ErrTooLarge when n exceeds the block length and with
// ErrExhausted when every block is in use. Deallocate of an empty slice is
// a no-op; a slice that does not start at one of the arena's blocks fails
// with ErrForeignBlock. All of these wrap ErrBadAlloc. Callers that treat
// allocation failure as fatal use Must and MustFree.
//
// # Thread Safety
//
// By default in-use markers are toggled with compare-and-swap, so a Blocks
// may be shared between goroutines. WithThreadSafe(false) switches to plain
// loads and stores; wrap such an arena in Safe to serialize it behind a
// prim.Locker instead.
//
// # Metrics
//
//	m := a.Metrics()
//	fmt.Printf("in use %d, highest %d, ops %d\n", m.InUse, m.Highest, m.TotalOps)
package arena
