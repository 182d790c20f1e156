//go:build wl_operator

package main

import "github.com/pavanmanishd/cowbench/bench"

const (
	workload   = bench.Operator
	intOpsOnly = false
)
