package bench

import (
	"fmt"
	"time"

	"go.uber.org/atomic"

	"github.com/pavanmanishd/cowbench/prim"
)

// IntOp is one integer-operation timing.
type IntOp struct {
	Name    string
	Elapsed time.Duration
	Final   int64
}

// intSink keeps the plain loops from being optimized away.
var intSink int64

// IntOps times loops increments and decrements of a plain integer, of an
// integer read and written through atomic loads and stores, and of a
// prim.Int. It is the cost floor the reference-counting variants build on.
func IntOps(loops int) []IntOp {
	n := int64(loops)
	ops := make([]IntOp, 0, 6)

	t := StartTimer()
	var p int64
	for p < n {
		p++
	}
	ops = append(ops, IntOp{Name: "++plain", Elapsed: t.Elapsed(), Final: p})
	intSink += p

	t = StartTimer()
	for p > 0 {
		p--
	}
	ops = append(ops, IntOp{Name: "--plain", Elapsed: t.Elapsed(), Final: p})
	intSink += p

	var v atomic.Int64
	t = StartTimer()
	for v.Load() < n {
		v.Store(v.Load() + 1)
	}
	ops = append(ops, IntOp{Name: "++loadstore", Elapsed: t.Elapsed(), Final: v.Load()})

	t = StartTimer()
	for v.Load() > 0 {
		v.Store(v.Load() - 1)
	}
	ops = append(ops, IntOp{Name: "--loadstore", Elapsed: t.Elapsed(), Final: v.Load()})

	var a prim.Int
	t = StartTimer()
	for a.Increment() < n {
	}
	ops = append(ops, IntOp{Name: "++atomic", Elapsed: t.Elapsed(), Final: a.Load()})

	t = StartTimer()
	for a.Decrement() > 0 {
	}
	ops = append(ops, IntOp{Name: "--atomic", Elapsed: t.Elapsed(), Final: a.Load()})

	return ops
}

// RunIntOps reports IntOps timings, one result per operation per run,
// instead of measuring string variants.
func (r *Runner) RunIntOps() error {
	r.log.Info("timing integer operations", "session", r.session, "runs", r.runs, "loops", r.params.Loops)
	for run := 1; run <= r.runs; run++ {
		for _, op := range IntOps(r.params.Loops) {
			res := Result{
				Session:  r.session,
				Run:      run,
				Variant:  op.Name,
				Workload: "intops",
				Workers:  1,
				Elapsed:  op.Elapsed,
				Checksum: op.Final,
			}
			if err := r.sink.Write(res); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
		}
	}
	return r.sink.Flush()
}
