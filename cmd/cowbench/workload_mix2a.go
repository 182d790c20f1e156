//go:build !wl_constcopy && !wl_append && !wl_operator && !wl_mix2b && !wl_intops

package main

import "github.com/pavanmanishd/cowbench/bench"

const (
	workload   = bench.MutatingCopy2A
	intOpsOnly = false
)
