// Package config resolves the benchmark settings. A TOML file overrides the
// defaults and positional [runs [loops [length]]] arguments override both.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

var (
	// ErrInvalid is wrapped by every Validate failure.
	ErrInvalid = errors.New("config: invalid setting")
	// ErrTooManyArgs is returned by ApplyArgs for more than three
	// positional arguments.
	ErrTooManyArgs = errors.New("config: too many arguments")
)

// Config holds every tunable of a benchmark session.
type Config struct {
	Runs     int `toml:"runs"`
	Loops    int `toml:"loops"`
	Length   int `toml:"length"`
	WarmupMS int `toml:"warmup_ms"`
	// Parallel above one shares each source string between that many
	// goroutines.
	Parallel int `toml:"parallel"`
	// ArenaBlocks is the block count of each fixed-block arena.
	ArenaBlocks int      `toml:"arena_blocks"`
	Variants    []string `toml:"variants"`
	Format      string   `toml:"format"`
	LogLevel    string   `toml:"log_level"`
	Gops        bool     `toml:"gops"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Runs:        2,
		Loops:       1000000,
		Length:      100,
		WarmupMS:    1000,
		Parallel:    1,
		ArenaBlocks: 100,
		Format:      "table",
		LogLevel:    "info",
	}
}

// Load reads the TOML file at path over the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes TOML data over the defaults. source names the data in
// errors. Unknown keys are rejected.
func Parse(source string, data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return cfg, perr
	}
	return cfg, nil
}

// ApplyArgs overrides Runs, Loops and Length from up to three positional
// arguments.
func (c *Config) ApplyArgs(args []string) error {
	if len(args) > 3 {
		return fmt.Errorf("%w: got %d, want at most 3", ErrTooManyArgs, len(args))
	}
	fields := []struct {
		name string
		dst  *int
	}{
		{"runs", &c.Runs},
		{"loops", &c.Loops},
		{"length", &c.Length},
	}
	for i, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, fields[i].name, err)
		}
		*fields[i].dst = n
	}
	return nil
}

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	switch {
	case c.Runs < 1:
		return fmt.Errorf("%w: runs must be at least 1, got %d", ErrInvalid, c.Runs)
	case c.Loops < 0:
		return fmt.Errorf("%w: loops must not be negative, got %d", ErrInvalid, c.Loops)
	case c.Length < 0:
		return fmt.Errorf("%w: length must not be negative, got %d", ErrInvalid, c.Length)
	case c.WarmupMS < 0:
		return fmt.Errorf("%w: warmup_ms must not be negative, got %d", ErrInvalid, c.WarmupMS)
	case c.Parallel < 1:
		return fmt.Errorf("%w: parallel must be at least 1, got %d", ErrInvalid, c.Parallel)
	case c.ArenaBlocks < 1:
		return fmt.Errorf("%w: arena_blocks must be at least 1, got %d", ErrInvalid, c.ArenaBlocks)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalid, err)
	}
	return nil
}

// Warmup returns WarmupMS as a duration.
func (c Config) Warmup() time.Duration {
	return time.Duration(c.WarmupMS) * time.Millisecond
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(c.LogLevel))
	return l, err
}

// Blocks returns ArenaBlocks raised to what Parallel workers need: each
// worker holds a source copy plus a working copy mid-growth.
func (c Config) Blocks() int {
	return max(c.ArenaBlocks, 4*c.Parallel+4)
}

// SplitList splits a comma-separated flag value, dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ParseError reports a malformed config file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
