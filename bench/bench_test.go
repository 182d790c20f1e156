package bench

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/cowbench/cow"
	"github.com/pavanmanishd/cowbench/eager"
	"github.com/pavanmanishd/cowbench/tally"
)

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	got, err := ParseKind("MIX2B")
	require.NoError(t, err)
	assert.Equal(t, MutatingCopy2B, got)

	_, err = ParseKind("bogus")
	assert.ErrorIs(t, err, ErrUnknownWorkload)
	assert.Equal(t, "Kind(42)", Kind(42).String())
}

func TestMeasureCounts(t *testing.T) {
	const loops, length = 2500, 20 // 100 outer iterations

	tests := []struct {
		kind   Kind
		copies int64
		allocs int64
		sum    int64
	}{
		// Every copy shares; nothing allocates.
		{ConstCopy, 2500, 0, 0},
		// The source is never shared, so reading it never copies.
		{Operator, 0, 0, 2500 * 'X'},
		// Every third outer iteration reads (detach), every third appends
		// (detach).
		{MutatingCopy2A, 2500, 34*25 + 33*25, 34 * 25 * 'X'},
		{MutatingCopy2B, 2500, 25*25 + 25*25, 25 * 25 * 3 * 'X'},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			c := &tally.Counters{}
			s := cow.NewAtomic(c, 0).New()
			defer s.Release()

			_, sum, err := Measure(s, tt.kind, loops, length, c.Reset)
			require.NoError(t, err)
			snap := c.Snapshot()
			assert.Equal(t, tt.copies, snap.Copies)
			assert.Equal(t, tt.allocs, snap.Allocs)
			assert.Equal(t, tt.sum, sum)
		})
	}
}

func TestMeasureAppendWraps(t *testing.T) {
	s := eager.NewPlain(nil).New()
	defer s.Release()
	_, _, err := Measure(s, Append, 2500, 10, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, s.Len(), 11)
	assert.Positive(t, s.Len())
}

func TestMeasureShortString(t *testing.T) {
	s := eager.NewSlice().New()
	_, _, err := Measure(s, MutatingCopy2B, 100, 2, nil)
	assert.ErrorIs(t, err, ErrShortString)

	_, _, err = Measure(eager.NewSlice().New(), ConstCopy, 100, 0, nil)
	assert.NoError(t, err)
}

func TestEveryVariantEveryKind(t *testing.T) {
	p := Params{Loops: 2500, Length: 16}
	for _, v := range Variants() {
		var sums []int64
		for _, k := range Kinds() {
			m, err := v.Measure(context.Background(), k, p)
			require.NoError(t, err, "%s/%s", v.Name, k)
			sums = append(sums, m.Checksum)
		}
		// Every variant reads the same bytes.
		assert.Equal(t, []int64{0, 0, 2500 * 'X', 34 * 25 * 'X', 25 * 25 * 3 * 'X'}, sums, v.Name)
	}
}

func TestFillLength(t *testing.T) {
	for _, v := range Variants() {
		for _, n := range []int{0, 1, 4, 5, 9, 16, 100} {
			got, err := v.contents(ConstCopy, 0, n)
			require.NoError(t, err, "%s/%d", v.Name, n)
			assert.Equal(t, bytes.Repeat([]byte{'X'}, n), got, "%s/%d", v.Name, n)
		}
	}
}

// lossy keeps at most four bytes.
type lossy struct{ b []byte }

func (l *lossy) Clone() *lossy { return &lossy{b: append([]byte(nil), l.b...)} }
func (l *lossy) Release()      {}
func (l *lossy) Clear()        { l.b = l.b[:0] }
func (l *lossy) Len() int      { return len(l.b) }
func (l *lossy) At(n int) byte { return l.b[n] }
func (l *lossy) Append(c byte) {
	if len(l.b) < 4 {
		l.b = append(l.b, c)
	}
}

func TestMeasureRejectsShortFill(t *testing.T) {
	_, _, err := Measure(&lossy{}, Operator, 100, 4, nil)
	require.NoError(t, err)
	_, _, err = Measure(&lossy{}, Operator, 100, 5, nil)
	assert.ErrorIs(t, err, ErrFill)

	var c tally.Counters
	_, err = measureParallel(context.Background(), func() *lossy { return &lossy{} }, &c, ConstCopy,
		Params{Loops: 100, Length: 8, Workers: 2})
	assert.ErrorIs(t, err, ErrFill)
}

// appendModel replays the Append workload on a plain byte slice.
func appendModel(loops, length int) []byte {
	b := bytes.Repeat([]byte{'X'}, length)
	for i := 0; i < loops/cycle; i++ {
		for c := byte('a'); c <= 'y'; c++ {
			if len(b) > length {
				b = b[:0]
			}
			b = append(b, c)
		}
	}
	return b
}

func TestWorkloadContents(t *testing.T) {
	const loops, length = 2500, 16
	want := map[Kind][]byte{
		ConstCopy:      bytes.Repeat([]byte{'X'}, length),
		Append:         appendModel(loops, length),
		Operator:       bytes.Repeat([]byte{'X'}, length),
		MutatingCopy2A: bytes.Repeat([]byte{'X'}, length),
		MutatingCopy2B: bytes.Repeat([]byte{'X'}, length),
	}
	require.Len(t, want[Append], length+1)

	for _, v := range Variants() {
		for _, k := range Kinds() {
			got, err := v.contents(k, loops, length)
			require.NoError(t, err, "%s/%s", v.Name, k)
			assert.Equal(t, string(want[k]), string(got), "%s/%s", v.Name, k)
		}
	}
}

func TestChecksumFollowsBytes(t *testing.T) {
	// Operator reads s[0] once per step; mix2b reads s[0..2] of a copy
	// on every step of each outer iteration divisible by 4.
	const loops, length = 5000, 32
	outer := int64(loops / cycle)
	readsB := (outer + 3) / 4 * cycle

	for _, v := range Variants() {
		op, err := v.Measure(context.Background(), Operator, Params{Loops: loops, Length: length})
		require.NoError(t, err, v.Name)
		assert.Equal(t, int64(loops)*'X', op.Checksum, v.Name)

		mb, err := v.Measure(context.Background(), MutatingCopy2B, Params{Loops: loops, Length: length})
		require.NoError(t, err, v.Name)
		assert.Equal(t, readsB*3*'X', mb.Checksum, v.Name)
	}
}

func TestArenaMetricsInMeasurement(t *testing.T) {
	p := Params{Loops: 2500, Length: 16}
	for _, v := range Variants() {
		m, err := v.Measure(context.Background(), MutatingCopy2A, p)
		require.NoError(t, err, v.Name)
		switch v.Name {
		case "Plain", "COWPacked", "Slice", "Native":
			assert.Nil(t, m.Arena, v.Name)
		default:
			require.NotNil(t, m.Arena, v.Name)
			assert.Positive(t, m.Arena.Highest, v.Name)
			assert.Positive(t, m.Arena.TotalOps, v.Name)
			// Every string is released before the snapshot.
			assert.Zero(t, m.Arena.InUse, v.Name)
		}
	}
}

func TestLookup(t *testing.T) {
	all, err := Lookup(nil)
	require.NoError(t, err)
	names := make([]string, len(all))
	for i, v := range all {
		names[i] = v.Name
	}
	assert.Equal(t, []string{
		"PlainFast", "Plain", "COWUnsafe", "COWAtomic", "COWPacked",
		"COWCritSec", "COWMutex", "Slice", "Native",
	}, names)

	some, err := Lookup([]string{"cowmutex", " Plain "})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "COWMutex", some[0].Name)
	assert.Equal(t, "Plain", some[1].Name)

	_, err = Lookup([]string{"Rope"})
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestParallelMeasure(t *testing.T) {
	p := Params{Loops: 10000, Length: 16, Blocks: 64, Workers: 4}
	vs, err := Lookup([]string{"COWAtomic", "COWPacked", "COWCritSec", "COWMutex", "PlainFast", "Plain"})
	require.NoError(t, err)
	for _, v := range vs {
		for _, k := range Kinds() {
			m, err := v.Measure(context.Background(), k, p)
			require.NoError(t, err, "%s/%s", v.Name, k)
			if k == ConstCopy {
				assert.Equal(t, int64(10000), m.Counts.Copies, v.Name)
			}
			if k == MutatingCopy2A {
				// 4 workers, 100 outer iterations each.
				assert.Equal(t, int64(4*34*25*'X'), m.Checksum, v.Name)
			}
		}
	}
}

func TestParallelMeasureCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v, err := Lookup([]string{"COWAtomic"})
	require.NoError(t, err)
	_, err = v[0].Measure(ctx, ConstCopy, Params{Loops: 1000, Length: 4, Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTimer(t *testing.T) {
	tm := StartTimer()
	time.Sleep(2 * time.Millisecond)
	assert.GreaterOrEqual(t, tm.Elapsed(), 2*time.Millisecond)
	assert.GreaterOrEqual(t, tm.ElapsedMillis(), 2.0)
}

func TestIntOps(t *testing.T) {
	ops := IntOps(1000)
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.Name
		if op.Name[0] == '+' {
			assert.Equal(t, int64(1000), op.Final, op.Name)
		} else {
			assert.Equal(t, int64(0), op.Final, op.Name)
		}
	}
	assert.Equal(t, []string{"++plain", "--plain", "++loadstore", "--loadstore", "++atomic", "--atomic"}, names)
}

// memSink collects results.
type memSink struct {
	results []Result
	flushed int
	failAt  int
}

func (m *memSink) Write(r Result) error {
	if m.failAt > 0 && len(m.results)+1 == m.failAt {
		return errors.New("disk full")
	}
	m.results = append(m.results, r)
	return nil
}

func (m *memSink) Flush() error {
	m.flushed++
	return nil
}

func TestRunner(t *testing.T) {
	vs, err := Lookup([]string{"Plain", "COWAtomic"})
	require.NoError(t, err)
	sink := &memSink{}
	r := NewRunner(sink, vs, MutatingCopy2A, 2, Params{Loops: 2500, Length: 8},
		WithWarmup(0), WithSession("s-1"))

	require.NoError(t, r.Run(context.Background()))
	require.Len(t, sink.results, 4)
	assert.Equal(t, 1, sink.flushed)

	for i, res := range sink.results {
		assert.Equal(t, "s-1", res.Session)
		assert.Equal(t, i/2+1, res.Run)
		assert.Equal(t, "mix2a", res.Workload)
		assert.Equal(t, 1, res.Workers)
		assert.Equal(t, int64(2500), res.Copies)
	}
	assert.Equal(t, "Plain", sink.results[0].Variant)
	assert.Equal(t, "COWAtomic", sink.results[1].Variant)
	// Plain copies always allocate, and appending to a full copy
	// reallocates; the COW copies only allocate when written.
	assert.Equal(t, int64(2500+33*25), sink.results[0].Allocs)
	assert.Less(t, sink.results[1].Allocs, int64(2500))

	// Plain allocates from the heap; COWAtomic takes its headers from an
	// arena.
	assert.Zero(t, sink.results[0].ArenaHighest)
	assert.Zero(t, sink.results[0].ArenaOps)
	assert.Positive(t, sink.results[1].ArenaHighest)
	assert.Positive(t, sink.results[1].ArenaOps)
}

func TestRunnerSessionID(t *testing.T) {
	r := NewRunner(&memSink{}, nil, ConstCopy, 1, Params{})
	assert.Len(t, r.Session(), 36)
}

func TestRunnerSkipsUnsynchronizedInParallel(t *testing.T) {
	vs, err := Lookup([]string{"COWUnsafe", "COWAtomic"})
	require.NoError(t, err)
	sink := &memSink{}
	r := NewRunner(sink, vs, ConstCopy, 1, Params{Loops: 2500, Length: 8, Workers: 2}, WithWarmup(0))

	require.NoError(t, r.Run(context.Background()))
	require.Len(t, sink.results, 1)
	assert.Equal(t, "COWAtomic", sink.results[0].Variant)
	assert.Equal(t, 2, sink.results[0].Workers)
}

func TestRunnerStopsOnSinkError(t *testing.T) {
	sink := &memSink{failAt: 2}
	r := NewRunner(sink, Variants(), ConstCopy, 1, Params{Loops: 250, Length: 4}, WithWarmup(0))
	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Len(t, sink.results, 1)
	assert.Zero(t, sink.flushed)
}

func TestRunnerCanceledDuringWarmup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRunner(&memSink{}, Variants(), ConstCopy, 1, Params{Loops: 250}, WithWarmup(time.Hour))
	assert.ErrorIs(t, r.Run(ctx), context.Canceled)
}

func TestRunIntOps(t *testing.T) {
	sink := &memSink{}
	r := NewRunner(sink, nil, ConstCopy, 2, Params{Loops: 100}, WithWarmup(0))
	require.NoError(t, r.RunIntOps())
	assert.Len(t, sink.results, 12)
	assert.Equal(t, "intops", sink.results[0].Workload)
	assert.Equal(t, 1, sink.flushed)
}
