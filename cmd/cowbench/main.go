// Package main is the entry point for the cowbench string benchmark.
//
// Usage:
//
//	cowbench [flags] [runs [loops [length]]]
//
// The workload is fixed at build time; see workload_*.go for the tags.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/gops/agent"

	"github.com/pavanmanishd/cowbench/bench"
	"github.com/pavanmanishd/cowbench/internal/config"
	"github.com/pavanmanishd/cowbench/internal/report"
)

type options struct {
	configPath string
	parallel   int
	variants   string
	format     string
	verbose    bool
	gops       bool
	warmupMS   int
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cowbench", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.configPath, "config", "", "Path to TOML configuration file")
	fs.IntVar(&opts.parallel, "parallel", 1, "Goroutines sharing each source string")
	fs.StringVar(&opts.variants, "variants", "", "Comma-separated variants to run (default all)")
	fs.StringVar(&opts.format, "format", "table", "Output format: table, json or prom")
	fs.BoolVar(&opts.verbose, "v", false, "Log at debug level")
	fs.BoolVar(&opts.gops, "gops", false, "Start the gops diagnostics agent")
	fs.IntVar(&opts.warmupMS, "warmup", 1000, "Pause before the first timed run, in milliseconds")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: cowbench [options] [runs [loops [length]]]\n\n")
		fmt.Fprintf(stderr, "Workload: %s\n\nOptions:\n", workloadName())
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := resolve(fs, opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	level, _ := cfg.Level()
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if cfg.Gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			log.Warn("gops agent not started", "err", err)
		} else {
			defer agent.Close()
		}
	}

	variants, err := bench.Lookup(cfg.Variants)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	header := fmt.Sprintf("Running %d iterations with strings of length %d:", cfg.Loops, cfg.Length)
	if intOpsOnly {
		header = fmt.Sprintf("Running %d iterations for integer operations:", cfg.Loops)
	}
	sink, err := report.New(cfg.Format, stdout, header)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := bench.NewRunner(sink, variants, workload, cfg.Runs, bench.Params{
		Loops:   cfg.Loops,
		Length:  cfg.Length,
		Blocks:  cfg.Blocks(),
		Workers: cfg.Parallel,
	}, bench.WithLogger(log), bench.WithWarmup(cfg.Warmup()))

	if intOpsOnly {
		err = r.RunIntOps()
	} else {
		err = r.Run(ctx)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("interrupted")
			return 130
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// resolve layers the config file, explicitly set flags and positional
// arguments over the defaults.
func resolve(fs *flag.FlagSet, opts options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "parallel":
			cfg.Parallel = opts.parallel
		case "variants":
			cfg.Variants = config.SplitList(opts.variants)
		case "format":
			cfg.Format = opts.format
		case "v":
			if opts.verbose {
				cfg.LogLevel = "debug"
			}
		case "gops":
			cfg.Gops = opts.gops
		case "warmup":
			cfg.WarmupMS = opts.warmupMS
		}
	})
	if err := cfg.ApplyArgs(fs.Args()); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func workloadName() string {
	if intOpsOnly {
		return "intops"
	}
	return workload.String()
}
