//go:build wl_intops

package main

import "github.com/pavanmanishd/cowbench/bench"

const (
	workload   = bench.ConstCopy
	intOpsOnly = true
)
