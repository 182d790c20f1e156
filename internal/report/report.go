// Package report holds the result sinks the benchmark driver writes to.
package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/pavanmanishd/cowbench/bench"
)

// ErrUnknownFormat is returned by New.
var ErrUnknownFormat = errors.New("report: unknown format")

// Formats lists the names New accepts.
func Formats() []string { return []string{"table", "json", "prom"} }

// New returns the sink for format writing to w. header is printed above
// the table format and ignored by the others.
func New(format string, w io.Writer, header string) (bench.Sink, error) {
	switch format {
	case "table", "":
		return NewTable(w, header), nil
	case "json":
		return NewJSON(w), nil
	case "prom":
		return NewProm(w), nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %v)", ErrUnknownFormat, format, Formats())
	}
}
