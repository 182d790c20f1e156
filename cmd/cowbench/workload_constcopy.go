//go:build wl_constcopy

package main

import "github.com/pavanmanishd/cowbench/bench"

const (
	workload   = bench.ConstCopy
	intOpsOnly = false
)
