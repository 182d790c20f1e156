package bench

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pavanmanishd/cowbench/arena"
	"github.com/pavanmanishd/cowbench/cow"
	"github.com/pavanmanishd/cowbench/eager"
	"github.com/pavanmanishd/cowbench/tally"
)

// ErrUnknownVariant is returned by Lookup.
var ErrUnknownVariant = errors.New("bench: unknown variant")

// Params sizes one measurement.
type Params struct {
	Loops  int // operations per measurement, split across workers
	Length int // initial string length
	// Blocks is the block count of the fixed-block arenas a variant
	// uses. Zero selects the arena default.
	Blocks  int
	Workers int // more than one runs the workload in parallel
}

// Measurement is what one timed run of one variant produced.
type Measurement struct {
	Elapsed  time.Duration
	Counts   tally.Snapshot
	Checksum int64
	// Arena is the header or block arena state after the run. It is nil
	// for variants that do not allocate from one.
	Arena *arena.Metrics
}

// family is what a variant constructor hands back: something that makes
// empty strings, optionally backed by an arena.
type family[T any] interface {
	New() T
}

type arenaFamily interface {
	Arena() arena.Metrics
}

func arenaOf(f any) *arena.Metrics {
	af, ok := f.(arenaFamily)
	if !ok {
		return nil
	}
	m := af.Arena()
	if m.Count == 0 {
		return nil
	}
	return &m
}

// Variant is one string implementation under test.
type Variant struct {
	Name string
	// Unsynchronized variants race when strings sharing a buffer are used
	// from several goroutines. The parallel runner skips them.
	Unsynchronized bool

	measure func(ctx context.Context, k Kind, p Params) (Measurement, error)
	// contents runs workload k on a fresh string and returns what the
	// string holds afterwards, read back through At.
	contents func(k Kind, loops, length int) ([]byte, error)
}

// Measure runs workload k once against a fresh string of this variant.
func (v Variant) Measure(ctx context.Context, k Kind, p Params) (Measurement, error) {
	return v.measure(ctx, k, p)
}

// define builds a Variant from a family constructor. open receives the
// counters the run owns.
func define[T Str[T]](name string, unsync bool, open func(c *tally.Counters, blocks int) family[T]) Variant {
	return Variant{
		Name:           name,
		Unsynchronized: unsync,
		measure: func(ctx context.Context, k Kind, p Params) (Measurement, error) {
			var c tally.Counters
			fam := open(&c, p.Blocks)
			if p.Workers > 1 {
				m, err := measureParallel(ctx, fam.New, &c, k, p)
				if err != nil {
					return Measurement{}, err
				}
				m.Arena = arenaOf(fam)
				return m, nil
			}
			s := fam.New()
			elapsed, sum, err := Measure(s, k, p.Loops, p.Length, c.Reset)
			s.Release()
			if err != nil {
				return Measurement{}, err
			}
			return Measurement{Elapsed: elapsed, Counts: c.Snapshot(), Checksum: sum, Arena: arenaOf(fam)}, nil
		},
		contents: func(k Kind, loops, length int) ([]byte, error) {
			var c tally.Counters
			s := open(&c, 0).New()
			defer s.Release()
			if _, _, err := Measure(s, k, loops, length, nil); err != nil {
				return nil, err
			}
			out := make([]byte, s.Len())
			for i := range out {
				out[i] = s.At(i)
			}
			return out, nil
		},
	}
}

// Variants returns every variant in report order.
func Variants() []Variant {
	return []Variant{
		define("PlainFast", false, func(c *tally.Counters, blocks int) family[*eager.Plain] {
			return eager.NewPlainFast(c, 0, blocks)
		}),
		define("Plain", false, func(c *tally.Counters, _ int) family[*eager.Plain] {
			return eager.NewPlain(c)
		}),
		define("COWUnsafe", true, func(c *tally.Counters, blocks int) family[*cow.UnsafeString] {
			return cow.NewUnsafe(c, blocks)
		}),
		define("COWAtomic", false, func(c *tally.Counters, blocks int) family[*cow.AtomicString] {
			return cow.NewAtomic(c, blocks)
		}),
		define("COWPacked", false, func(c *tally.Counters, _ int) family[*cow.Packed] {
			return cow.NewPacked(c)
		}),
		define("COWCritSec", false, func(c *tally.Counters, blocks int) family[*cow.CritSecString] {
			return cow.NewCritSec(c, blocks)
		}),
		define("COWMutex", false, func(c *tally.Counters, blocks int) family[*cow.MutexString] {
			return cow.NewMutex(c, blocks)
		}),
		define("Slice", false, func(*tally.Counters, int) family[*eager.Slice] {
			return eager.NewSlice()
		}),
		define("Native", false, func(*tally.Counters, int) family[*eager.Native] {
			return eager.NewNative()
		}),
	}
}

// Lookup returns the named variants in the order given. An empty list
// selects every variant.
func Lookup(names []string) ([]Variant, error) {
	all := Variants()
	if len(names) == 0 {
		return all, nil
	}
	out := make([]Variant, 0, len(names))
	for _, name := range names {
		found := false
		for _, v := range all {
			if strings.EqualFold(v.Name, strings.TrimSpace(name)) {
				out = append(out, v)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
		}
	}
	return out, nil
}
