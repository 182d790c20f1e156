package bench

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pavanmanishd/cowbench/eager"
)

// Result is one reported line: one variant, one run.
type Result struct {
	Session  string        `json:"session"`
	Run      int           `json:"run"`
	Variant  string        `json:"variant"`
	Workload string        `json:"workload"`
	Workers  int           `json:"workers"`
	Elapsed  time.Duration `json:"elapsed_ns"`
	Copies   int64         `json:"copies"`
	Allocs   int64         `json:"allocs"`
	Frees    int64         `json:"frees"`
	Checksum int64         `json:"checksum"`
	// ArenaHighest and ArenaOps report the variant's arena, when it has
	// one: the most blocks in use at once and the allocate/free count.
	ArenaHighest int   `json:"arena_highest,omitempty"`
	ArenaOps     int64 `json:"arena_ops,omitempty"`
}

// Millis returns Elapsed in fractional milliseconds.
func (r Result) Millis() float64 {
	return float64(r.Elapsed) / float64(time.Millisecond)
}

// Sink receives results as they are produced.
type Sink interface {
	Write(Result) error
	// Flush is called once after the last result of a session.
	Flush() error
}

// Runner drives every selected variant through a workload, run after run.
type Runner struct {
	sink     Sink
	variants []Variant
	kind     Kind
	runs     int
	params   Params
	warmup   time.Duration
	log      *slog.Logger
	session  string
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithWarmup sets the pause before the first timed run.
func WithWarmup(d time.Duration) Option {
	return func(r *Runner) { r.warmup = d }
}

// WithSession overrides the generated session id.
func WithSession(id string) Option {
	return func(r *Runner) { r.session = id }
}

// NewRunner returns a Runner that reports to sink.
func NewRunner(sink Sink, variants []Variant, k Kind, runs int, p Params, opts ...Option) *Runner {
	r := &Runner{
		sink:     sink,
		variants: variants,
		kind:     k,
		runs:     runs,
		params:   p,
		warmup:   time.Second,
		log:      slog.Default(),
		session:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Session returns the id stamped on every result.
func (r *Runner) Session() string { return r.session }

// Run warms up, then measures every variant runs times. It stops between
// measurements when ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("preparing for clean timing runs",
		"session", r.session, "workload", r.kind.String(),
		"runs", r.runs, "loops", r.params.Loops, "length", r.params.Length,
		"workers", r.workers())
	if err := r.warm(ctx); err != nil {
		return err
	}

	for run := 1; run <= r.runs; run++ {
		for _, v := range r.variants {
			if err := ctx.Err(); err != nil {
				return err
			}
			if r.params.Workers > 1 && v.Unsynchronized {
				r.log.Warn("skipping unsynchronized variant in parallel mode", "variant", v.Name)
				continue
			}
			m, err := v.Measure(ctx, r.kind, r.params)
			if err != nil {
				return fmt.Errorf("%s: %w", v.Name, err)
			}
			res := Result{
				Session:  r.session,
				Run:      run,
				Variant:  v.Name,
				Workload: r.kind.String(),
				Workers:  r.workers(),
				Elapsed:  m.Elapsed,
				Copies:   m.Counts.Copies,
				Allocs:   m.Counts.Allocs,
				Frees:    m.Counts.Frees,
				Checksum: m.Checksum,
			}
			attrs := []any{"run", run, "variant", v.Name, "elapsed", m.Elapsed, "live", m.Counts.Live()}
			if m.Arena != nil {
				res.ArenaHighest = m.Arena.Highest
				res.ArenaOps = m.Arena.TotalOps
				attrs = append(attrs, slog.Group("arena",
					"in_use", m.Arena.InUse, "highest", m.Arena.Highest,
					"ops", m.Arena.TotalOps, "utilization", m.Arena.Utilization))
			}
			r.log.Debug("measured", attrs...)
			if err := r.sink.Write(res); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
		}
	}
	return r.sink.Flush()
}

// warm sleeps, then runs a short throwaway Plain measurement so the first
// timed variant does not pay for page faults and cold caches.
func (r *Runner) warm(ctx context.Context) error {
	if r.warmup > 0 {
		t := time.NewTimer(r.warmup)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	s := eager.NewPlain(nil).New()
	defer s.Release()
	_, _, err := Measure(s, r.kind, 10000, 10, nil)
	return err
}

func (r *Runner) workers() int {
	if r.params.Workers < 1 {
		return 1
	}
	return r.params.Workers
}
