package arena

import "github.com/pavanmanishd/cowbench/prim"

// Safe serializes a Blocks behind a lock instead of relying on atomic
// in-use markers. The lock-based string families use it so the allocator
// follows the same discipline as their reference counts.
type Safe[T any, L prim.Locker] struct {
	lock L
	b    *Blocks[T]
}

// NewSafe wraps a Blocks with plain markers behind lock.
func NewSafe[T any, L prim.Locker](lock L, blockLen, count int) *Safe[T, L] {
	return &Safe[T, L]{lock: lock, b: New[T](blockLen, count, WithThreadSafe(false))}
}

// Allocate thread-safely returns a free block sliced to n elements.
func (s *Safe[T, L]) Allocate(n int) ([]T, error) {
	g := prim.Acquire(s.lock)
	defer g.Unlock()
	return s.b.Allocate(n)
}

// Deallocate thread-safely returns p's block to the arena.
func (s *Safe[T, L]) Deallocate(p []T) error {
	if cap(p) == 0 {
		return nil
	}
	g := prim.Acquire(s.lock)
	defer g.Unlock()
	return s.b.Deallocate(p)
}

// Metrics returns a snapshot of the wrapped arena's statistics.
func (s *Safe[T, L]) Metrics() Metrics {
	g := prim.Acquire(s.lock)
	defer g.Unlock()
	return s.b.Metrics()
}
