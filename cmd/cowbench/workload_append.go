//go:build wl_append

package main

import "github.com/pavanmanishd/cowbench/bench"

const (
	workload   = bench.Append
	intOpsOnly = false
)
