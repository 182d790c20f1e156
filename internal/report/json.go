package report

import (
	"io"

	"github.com/bytedance/sonic"

	"github.com/pavanmanishd/cowbench/bench"
)

// JSON writes each result as one JSON object per line.
type JSON struct {
	w io.Writer
}

// NewJSON returns a JSON lines sink.
func NewJSON(w io.Writer) *JSON { return &JSON{w: w} }

func (j *JSON) Write(r bench.Result) error {
	b, err := sonic.Marshal(r)
	if err != nil {
		return err
	}
	_, err = j.w.Write(append(b, '\n'))
	return err
}

func (j *JSON) Flush() error { return nil }
