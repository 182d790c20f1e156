package cow

import "github.com/pavanmanishd/cowbench/prim"

// State is a buffer's sharing state. A positive value counts the strings
// sharing the buffer and means the buffer may be shared by reference.
// Unshareable marks a buffer with exactly one owner that has handed out a
// character reference; copies of it must be deep. Zero never occurs while
// the buffer is referenced.
type State int64

const (
	// Unshareable is the state of a buffer that must be deep-copied.
	Unshareable State = -1
	// Exclusive is the state of a shareable buffer with one owner.
	Exclusive State = 1
)

// Shareable reports whether a copy may attach to the buffer.
func (s State) Shareable() bool { return s > 0 }

// Shared reports whether more than one string holds the buffer.
func (s State) Shared() bool { return s > 1 }

// Owners returns the number of strings holding the buffer.
func (s State) Owners() int {
	if s < 0 {
		return 1
	}
	return int(s)
}

// buffer is the view of a Buf the sharing policies need: a way to make a
// private copy and a way to throw one away.
type buffer interface {
	cloneBuf(n int) buffer
	destroy()
}

// Policy decides how a buffer is shared. It is implemented by a pointer to
// the per-buffer state S stored inside each Buf.
type Policy[S any] interface {
	*S

	// init puts a freshly constructed buffer in the Exclusive state.
	init()
	state() State
	setState(State)

	// tryShare attaches one more owner if the buffer is shareable.
	tryShare() bool
	// release drops one owner and reports whether none remain.
	release() bool
	// leave detaches a clearing string. It reports whether other owners
	// remain; when it returns false the caller owns the buffer alone.
	leave() bool
	// unique runs the detach protocol ahead of a write. If b is shared it
	// returns a private clone of at least n bytes the caller must adopt;
	// nil means the caller already owns b alone.
	unique(b buffer, n int) buffer
}

// Unsync is the unsynchronized policy. Concurrent use of strings sharing a
// buffer is a data race: two goroutines can both observe a single owner and
// write the same buffer in place.
type Unsync struct {
	n int64
}

func (r *Unsync) init()            { r.n = 1 }
func (r *Unsync) state() State     { return State(r.n) }
func (r *Unsync) setState(s State) { r.n = int64(s) }

func (r *Unsync) tryShare() bool {
	if r.n > 0 {
		r.n++
		return true
	}
	return false
}

func (r *Unsync) release() bool {
	r.n--
	return r.n < 1
}

func (r *Unsync) leave() bool {
	if r.n > 1 {
		r.n--
		return true
	}
	return false
}

func (r *Unsync) unique(b buffer, n int) buffer {
	if r.n > 1 {
		c := b.cloneBuf(n)
		r.n--
		return c
	}
	return nil
}

// Atomic keeps the count in a prim.Int.
type Atomic struct {
	n prim.Int
}

func (r *Atomic) init()            { r.n.Store(1) }
func (r *Atomic) state() State     { return State(r.n.Load()) }
func (r *Atomic) setState(s State) { r.n.Store(int64(s)) }

func (r *Atomic) tryShare() bool {
	if r.n.Compare(0) > 0 {
		r.n.Increment()
		return true
	}
	return false
}

func (r *Atomic) release() bool { return r.n.Decrement() < 1 }

// leave also covers two strings clearing at once: whichever decrements
// last finds no other owner and keeps the buffer.
func (r *Atomic) leave() bool { return r.n.Decrement() >= 1 }

func (r *Atomic) unique(b buffer, n int) buffer {
	if r.n.Compare(1) <= 0 {
		return nil
	}
	c := b.cloneBuf(n)
	if r.n.Decrement() < 1 {
		// The other owners left while we copied; keep the source buffer.
		c.destroy()
		r.n.Store(1)
		return nil
	}
	return c
}

type lockPtr[L any] interface {
	*L
	prim.Locker
}

// Locked serializes every count decision behind a lock of type L. The
// clone taken by unique happens inside the critical section so the source
// cannot change under it; frees and fresh buffers happen after release.
type Locked[L any, PL lockPtr[L]] struct {
	mu L
	n  int64
}

// CritSecRefs and MutexRefs are the two lock-based policies.
type (
	CritSecRefs = Locked[prim.CritSec, *prim.CritSec]
	MutexRefs   = Locked[prim.Mutex, *prim.Mutex]
)

func (r *Locked[L, PL]) lock() prim.Guard[PL] { return prim.Acquire(PL(&r.mu)) }

func (r *Locked[L, PL]) init() { r.n = 1 }

func (r *Locked[L, PL]) state() State {
	g := r.lock()
	defer g.Unlock()
	return State(r.n)
}

// setState is only called by the sole owner.
func (r *Locked[L, PL]) setState(s State) { r.n = int64(s) }

func (r *Locked[L, PL]) tryShare() bool {
	g := r.lock()
	defer g.Unlock()
	if r.n > 0 {
		r.n++
		return true
	}
	return false
}

func (r *Locked[L, PL]) release() bool {
	g := r.lock()
	defer g.Unlock()
	r.n--
	return r.n < 1
}

func (r *Locked[L, PL]) leave() bool {
	g := r.lock()
	defer g.Unlock()
	if r.n > 1 {
		r.n--
		return true
	}
	return false
}

func (r *Locked[L, PL]) unique(b buffer, n int) buffer {
	g := r.lock()
	defer g.Unlock()
	if r.n > 1 {
		c := b.cloneBuf(n)
		r.n--
		return c
	}
	return nil
}
