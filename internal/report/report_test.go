package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/cowbench/bench"
)

func results() []bench.Result {
	return []bench.Result{
		{Session: "s", Run: 1, Variant: "Plain", Workload: "mix2a", Workers: 1, Elapsed: 1234 * time.Millisecond, Copies: 1000000, Allocs: 1000000, Frees: 1000000},
		{Session: "s", Run: 1, Variant: "COWAtomic", Workload: "mix2a", Workers: 1, Elapsed: 56 * time.Millisecond, Copies: 1000000, Allocs: 666680, Checksum: 2958840},
		{Session: "s", Run: 2, Variant: "Plain", Workload: "mix2a", Workers: 1, Elapsed: 1200 * time.Millisecond, Copies: 1000000, Allocs: 1000000},
	}
}

func write(t *testing.T, s bench.Sink) {
	t.Helper()
	for _, r := range results() {
		require.NoError(t, s.Write(r))
	}
	require.NoError(t, s.Flush())
}

func TestNew(t *testing.T) {
	for _, f := range Formats() {
		s, err := New(f, &bytes.Buffer{}, "")
		require.NoError(t, err)
		assert.NotNil(t, s)
	}
	_, err := New("xml", &bytes.Buffer{}, "")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	write(t, NewTable(&buf, "Running 1000000 iterations with strings of length 100:"))

	want := "Running 1000000 iterations with strings of length 100:\n\n" +
		"            Plain   1234ms  copies: 1000000  allocs: 1000000\n" +
		"        COWAtomic     56ms  copies: 1000000  allocs:  666680\n" +
		"\n" +
		"            Plain   1200ms  copies: 1000000  allocs: 1000000\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func TestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTable(&buf, "header").Flush())
	assert.Empty(t, buf.String())
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	write(t, NewJSON(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &got))
	assert.Equal(t, "COWAtomic", got["variant"])
	assert.Equal(t, float64(56*time.Millisecond), got["elapsed_ns"])
	assert.Equal(t, float64(666680), got["allocs"])
	assert.Equal(t, float64(2958840), got["checksum"])
}

func TestProm(t *testing.T) {
	var buf bytes.Buffer
	write(t, NewProm(&buf))
	out := buf.String()

	assert.Contains(t, out, "# TYPE cowbench_elapsed_seconds gauge")
	assert.Contains(t, out, `cowbench_elapsed_seconds{run="1",variant="COWAtomic",workers="1",workload="mix2a"} 0.056`)
	assert.Contains(t, out, `cowbench_allocs{run="2",variant="Plain",workers="1",workload="mix2a"} 1e+06`)
	assert.Contains(t, out, `cowbench_copies{run="1",variant="Plain",workers="1",workload="mix2a"} 1e+06`)
}
