// Package bench drives the string variants through the timed workloads
// and reports one Result per variant per run.
package bench

import (
	"errors"
	"fmt"
	"strings"
)

// Kind selects the operation mix a timed run executes.
type Kind int

const (
	// ConstCopy copies the string and drops the copy.
	ConstCopy Kind = iota
	// Append appends one byte, clearing the string once it outgrows its
	// initial length.
	Append
	// Operator reads byte 0 through non-const indexed access.
	Operator
	// MutatingCopy2A copies; a third of the copies are read through
	// indexed access and a third get one append.
	MutatingCopy2A
	// MutatingCopy2B copies; a quarter of the copies get three indexed
	// reads and a quarter get three appends.
	MutatingCopy2B
)

var kindNames = [...]string{
	ConstCopy:      "constcopy",
	Append:         "append",
	Operator:       "operator",
	MutatingCopy2A: "mix2a",
	MutatingCopy2B: "mix2b",
}

// ErrUnknownWorkload is returned by ParseKind.
var ErrUnknownWorkload = errors.New("bench: unknown workload")

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a workload name back to its Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownWorkload, s)
}

// Kinds returns every workload in declaration order.
func Kinds() []Kind {
	ks := make([]Kind, len(kindNames))
	for i := range ks {
		ks[i] = Kind(i)
	}
	return ks
}

// minLength is the shortest initial string a workload can index into.
func (k Kind) minLength() int {
	switch k {
	case Operator, MutatingCopy2A:
		return 1
	case MutatingCopy2B:
		return 3
	default:
		return 0
	}
}
