package arena

import "go.uber.org/atomic"

// stats tracks block usage. It is updated with atomics in both marker
// modes so metrics stay readable from any goroutine.
type stats struct {
	current  atomic.Int64
	highest  atomic.Int64
	totalOps atomic.Int64
}

func (s *stats) alloc() {
	s.totalOps.Inc()
	cur := s.current.Inc()
	for {
		hi := s.highest.Load()
		if cur <= hi || s.highest.CompareAndSwap(hi, cur) {
			return
		}
	}
}

func (s *stats) free() {
	s.totalOps.Inc()
	s.current.Dec()
}

// InUse returns the number of blocks currently allocated.
func (b *Blocks[T]) InUse() int { return int(b.stats.current.Load()) }

// Highest returns the largest number of blocks ever in use at once.
func (b *Blocks[T]) Highest() int { return int(b.stats.highest.Load()) }

// TotalOps returns the number of successful allocations plus deallocations.
func (b *Blocks[T]) TotalOps() int64 { return b.stats.totalOps.Load() }

// Utilization returns the ratio of blocks in use to blocks available.
func (b *Blocks[T]) Utilization() float64 {
	return float64(b.InUse()) / float64(b.Count())
}

// Metrics returns a snapshot of arena statistics.
func (b *Blocks[T]) Metrics() Metrics {
	return Metrics{
		InUse:       b.InUse(),
		Highest:     b.Highest(),
		TotalOps:    b.TotalOps(),
		Count:       b.Count(),
		BlockLen:    b.BlockLen(),
		Utilization: b.Utilization(),
	}
}

// Metrics contains statistical information about a block arena.
type Metrics struct {
	InUse       int     // Blocks currently allocated
	Highest     int     // High-water mark of InUse
	TotalOps    int64   // Allocations plus deallocations
	Count       int     // Blocks in the arena
	BlockLen    int     // Elements per block
	Utilization float64 // InUse / Count
}
