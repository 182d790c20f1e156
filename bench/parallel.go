package bench

import (
	"context"
	"fmt"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/pavanmanishd/cowbench/tally"
)

// measureParallel shares one source string between p.Workers goroutines.
// Copy workloads clone the shared source directly; workloads that write
// the string give each worker its own copy of the source first, so the
// first write detaches it.
func measureParallel[T Str[T]](ctx context.Context, newStr func() T, c *tally.Counters, k Kind, p Params) (Measurement, error) {
	if p.Length < k.minLength() {
		return Measurement{}, fmt.Errorf("%w: %s needs %d, got %d", ErrShortString, k, k.minLength(), p.Length)
	}
	src := newStr()
	defer src.Release()
	Fill(src, p.Length)
	if n := src.Len(); n != p.Length {
		return Measurement{}, fmt.Errorf("%w: length %d, want %d", ErrFill, n, p.Length)
	}
	c.Reset()

	outer := p.Loops / cycle / p.Workers
	var sum atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	t := StartTimer()
	for w := 0; w < p.Workers; w++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s := src
			if k.mutatesSource() {
				s = src.Clone()
				defer s.Release()
			}
			sum.Add(runLoop(k, s, outer, p.Length))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Measurement{}, err
	}
	return Measurement{Elapsed: t.Elapsed(), Counts: c.Snapshot(), Checksum: sum.Load()}, nil
}
