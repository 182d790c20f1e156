package arena

import (
	"errors"
	"fmt"
	"unsafe"

	"go.uber.org/atomic"
)

const (
	// DefaultBlockLen is the per-block capacity used when none is given.
	DefaultBlockLen = 3000
	// DefaultCount is the number of blocks preallocated when none is given.
	DefaultCount = 100
)

var (
	// ErrBadAlloc is wrapped by every allocation failure.
	ErrBadAlloc = errors.New("arena: bad allocation")

	ErrTooLarge     = fmt.Errorf("%w: request exceeds block size", ErrBadAlloc)
	ErrExhausted    = fmt.Errorf("%w: no free block", ErrBadAlloc)
	ErrForeignBlock = fmt.Errorf("%w: pointer not owned by arena", ErrBadAlloc)
	ErrDoubleFree   = fmt.Errorf("%w: block already free", ErrBadAlloc)
)

// Allocator is the contract shared by Blocks and Safe.
type Allocator[T any] interface {
	Allocate(n int) ([]T, error)
	Deallocate(p []T) error
	Metrics() Metrics
}

// Blocks is a fixed-block allocator. It preallocates count blocks of
// blockLen elements each and hands them out one at a time.
type Blocks[T any] struct {
	buf        []T
	inUse      []atomic.Int32
	blockLen   int
	threadSafe bool

	stats stats
}

// Option configures a Blocks.
type Option func(*options)

type options struct {
	threadSafe bool
}

// WithThreadSafe selects atomic (true, the default) or plain in-use markers.
func WithThreadSafe(on bool) Option {
	return func(o *options) { o.threadSafe = on }
}

// New creates a Blocks with count blocks of blockLen elements. blockLen is
// rounded up so each block spans a multiple of 4 bytes. Non-positive
// arguments select the defaults.
func New[T any](blockLen, count int, opts ...Option) *Blocks[T] {
	var zero T
	if unsafe.Sizeof(zero) == 0 {
		panic("arena: zero-sized element type")
	}
	if blockLen <= 0 {
		blockLen = DefaultBlockLen
	}
	if count <= 0 {
		count = DefaultCount
	}
	o := options{threadSafe: true}
	for _, opt := range opts {
		opt(&o)
	}
	// Keep every block a multiple of 4 bytes long.
	for uintptr(blockLen)*unsafe.Sizeof(zero)%4 != 0 {
		blockLen++
	}
	return &Blocks[T]{
		buf:        make([]T, blockLen*count),
		inUse:      make([]atomic.Int32, count),
		blockLen:   blockLen,
		threadSafe: o.threadSafe,
	}
}

// Allocate returns a free block sliced to n elements (cap is the block
// length). The contents are whatever the previous owner left there.
func (b *Blocks[T]) Allocate(n int) ([]T, error) {
	if n > b.blockLen {
		return nil, fmt.Errorf("%w: size %d, expected at most %d", ErrTooLarge, n, b.blockLen)
	}
	if n < 0 {
		n = 0
	}
	for i := range b.inUse {
		if !b.claim(i) {
			continue
		}
		b.stats.alloc()
		start := i * b.blockLen
		return b.buf[start : start+n : start+b.blockLen], nil
	}
	return nil, fmt.Errorf("%w: %d blocks in use", ErrExhausted, len(b.inUse))
}

// AllocateZeroed is Allocate followed by clearing the returned elements.
func (b *Blocks[T]) AllocateZeroed(n int) ([]T, error) {
	p, err := b.Allocate(n)
	if err != nil {
		return nil, err
	}
	clear(p[:cap(p)])
	return p, nil
}

// Deallocate returns the block p starts at to the arena. An empty p is a
// no-op.
func (b *Blocks[T]) Deallocate(p []T) error {
	if cap(p) == 0 {
		return nil
	}
	i, err := b.index(p)
	if err != nil {
		return err
	}
	if !b.unclaim(i) {
		return fmt.Errorf("%w: block %d", ErrDoubleFree, i)
	}
	b.stats.free()
	return nil
}

// claim marks block i in use, reporting whether it was free.
func (b *Blocks[T]) claim(i int) bool {
	m := &b.inUse[i]
	if b.threadSafe {
		return m.CompareAndSwap(0, 1)
	}
	if m.Load() != 0 {
		return false
	}
	m.Store(1)
	return true
}

func (b *Blocks[T]) unclaim(i int) bool {
	m := &b.inUse[i]
	if b.threadSafe {
		return m.CompareAndSwap(1, 0)
	}
	if m.Load() != 1 {
		return false
	}
	m.Store(0)
	return true
}

// index maps the first element of p to its block number.
func (b *Blocks[T]) index(p []T) (int, error) {
	var zero T
	size := unsafe.Sizeof(zero)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(b.buf)))
	ptr := uintptr(unsafe.Pointer(unsafe.SliceData(p)))
	span := uintptr(len(b.buf)) * size
	if ptr < base || ptr >= base+span {
		return 0, ErrForeignBlock
	}
	blockBytes := uintptr(b.blockLen) * size
	off := ptr - base
	if off%blockBytes != 0 {
		return 0, fmt.Errorf("%w: offset %d is inside a block", ErrForeignBlock, off)
	}
	return int(off / blockBytes), nil
}

// BlockLen returns the per-block capacity after rounding.
func (b *Blocks[T]) BlockLen() int { return b.blockLen }

// Count returns the number of blocks in the arena.
func (b *Blocks[T]) Count() int { return len(b.inUse) }

// Must returns the allocation or panics with the allocation error.
// Allocation failure is fatal to every string variant.
func Must[T any](a Allocator[T], n int) []T {
	p, err := a.Allocate(n)
	if err != nil {
		panic(err)
	}
	return p
}

// MustFree deallocates p or panics.
func MustFree[T any](a Allocator[T], p []T) {
	if err := a.Deallocate(p); err != nil {
		panic(err)
	}
}
