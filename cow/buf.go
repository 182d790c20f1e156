package cow

import (
	"unsafe"

	"github.com/pavanmanishd/cowbench/arena"
	"github.com/pavanmanishd/cowbench/prim"
	"github.com/pavanmanishd/cowbench/tally"
)

// GrowCap returns the capacity to allocate when a buffer of capacity cur
// must hold at least n bytes: the larger of 1.5×cur and n, rounded up to a
// multiple of 4. It returns 0 when both are 0.
func GrowCap(cur, n int) int {
	needed := cur + cur/2
	if n > needed {
		needed = n
	}
	if needed == 0 {
		return 0
	}
	return 4 * ((needed-1)/4 + 1)
}

// Buf is the reference-counted backing store shared by Strings. len(data)
// is the capacity; the first used bytes are the string.
type Buf[S any, P Policy[S]] struct {
	data []byte
	used int
	refs S
	fam  *Family[S, P]
}

func (b *Buf[S, P]) policy() P { return P(&b.refs) }

// State returns the buffer's sharing state.
func (b *Buf[S, P]) State() State { return b.policy().state() }

// Cap returns the allocated capacity.
func (b *Buf[S, P]) Cap() int { return len(b.data) }

// Used returns the number of bytes in use.
func (b *Buf[S, P]) Used() int { return b.used }

// reserve grows the storage in place so it holds at least n bytes.
func (b *Buf[S, P]) reserve(n int) {
	if len(b.data) >= n {
		return
	}
	var nd []byte
	if c := GrowCap(len(b.data), n); c > 0 {
		b.fam.counters.Alloc()
		nd = make([]byte, c)
	}
	copy(nd, b.data[:b.used])
	if b.data != nil {
		b.fam.counters.Free()
	}
	b.data = nd
}

// clear drops the storage. The sharing state is left alone.
func (b *Buf[S, P]) clear() {
	if b.data != nil {
		b.fam.counters.Free()
		b.data = nil
	}
	b.used = 0
}

// clone returns a new Exclusive buffer holding b's bytes with capacity
// GrowCap(b.Cap(), n).
func (b *Buf[S, P]) clone(n int) *Buf[S, P] {
	c := b.fam.newBuf()
	if size := GrowCap(len(b.data), n); size > 0 {
		b.fam.counters.Alloc()
		c.data = make([]byte, size)
	}
	copy(c.data, b.data[:b.used])
	c.used = b.used
	return c
}

func (b *Buf[S, P]) cloneBuf(n int) buffer { return b.clone(n) }

func (b *Buf[S, P]) destroy() {
	b.clear()
	b.fam.freeBuf(b)
}

// Family owns what a set of Strings of one variant share: the instrument
// counters and the fixed-block arena their Bufs live in.
type Family[S any, P Policy[S]] struct {
	counters *tally.Counters
	bufs     arena.Allocator[Buf[S, P]]
}

// NewFamily creates a family whose Buf headers come from bufs.
func NewFamily[S any, P Policy[S]](counters *tally.Counters, bufs arena.Allocator[Buf[S, P]]) *Family[S, P] {
	if counters == nil {
		counters = &tally.Counters{}
	}
	return &Family[S, P]{counters: counters, bufs: bufs}
}

// Counters returns the family's counters.
func (f *Family[S, P]) Counters() *tally.Counters { return f.counters }

// Arena returns the statistics of the Buf header arena.
func (f *Family[S, P]) Arena() arena.Metrics { return f.bufs.Metrics() }

// New returns an empty String.
func (f *Family[S, P]) New() *String[S, P] {
	return &String[S, P]{buf: f.newBuf()}
}

func (f *Family[S, P]) newBuf() *Buf[S, P] {
	b := &arena.Must(f.bufs, 1)[0]
	b.data = nil
	b.used = 0
	b.fam = f
	b.policy().init()
	return b
}

func (f *Family[S, P]) freeBuf(b *Buf[S, P]) {
	b.fam = nil
	arena.MustFree(f.bufs, unsafe.Slice(b, 1))
}

// NewUnsafe returns a family using the unsynchronized policy. Its strings
// must not be shared between goroutines.
func NewUnsafe(counters *tally.Counters, blocks int) *Family[Unsync, *Unsync] {
	bufs := arena.New[Buf[Unsync, *Unsync]](1, blocks, arena.WithThreadSafe(false))
	return NewFamily[Unsync, *Unsync](counters, bufs)
}

// NewAtomic returns a family using atomic reference counts.
func NewAtomic(counters *tally.Counters, blocks int) *Family[Atomic, *Atomic] {
	bufs := arena.New[Buf[Atomic, *Atomic]](1, blocks)
	return NewFamily[Atomic, *Atomic](counters, bufs)
}

// NewCritSec returns a family serializing counts behind a prim.CritSec.
func NewCritSec(counters *tally.Counters, blocks int) *Family[CritSecRefs, *CritSecRefs] {
	bufs := arena.NewSafe[Buf[CritSecRefs, *CritSecRefs]](&prim.CritSec{}, 1, blocks)
	return NewFamily[CritSecRefs, *CritSecRefs](counters, bufs)
}

// NewMutex returns a family serializing counts behind a prim.Mutex.
func NewMutex(counters *tally.Counters, blocks int) *Family[MutexRefs, *MutexRefs] {
	bufs := arena.NewSafe[Buf[MutexRefs, *MutexRefs]](&prim.Mutex{}, 1, blocks)
	return NewFamily[MutexRefs, *MutexRefs](counters, bufs)
}
