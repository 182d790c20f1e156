//go:build wl_mix2b

package main

import "github.com/pavanmanishd/cowbench/bench"

const (
	workload   = bench.MutatingCopy2B
	intOpsOnly = false
)
