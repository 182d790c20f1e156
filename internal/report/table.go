package report

import (
	"fmt"
	"io"

	"github.com/pavanmanishd/cowbench/bench"
)

// Table writes one aligned line per result, with a blank line between
// runs.
type Table struct {
	w       io.Writer
	header  string
	lastRun int
}

// NewTable returns a table sink.
func NewTable(w io.Writer, header string) *Table {
	return &Table{w: w, header: header}
}

func (t *Table) Write(r bench.Result) error {
	if t.lastRun == 0 && t.header != "" {
		if _, err := fmt.Fprintf(t.w, "%s\n\n", t.header); err != nil {
			return err
		}
	}
	if t.lastRun != 0 && r.Run != t.lastRun {
		if _, err := fmt.Fprintln(t.w); err != nil {
			return err
		}
	}
	t.lastRun = r.Run
	_, err := fmt.Fprintf(t.w, "  %15s%7dms  copies:%8d  allocs:%8d\n",
		r.Variant, r.Elapsed.Milliseconds(), r.Copies, r.Allocs)
	return err
}

func (t *Table) Flush() error {
	if t.lastRun == 0 {
		return nil
	}
	_, err := fmt.Fprintln(t.w)
	return err
}
