// Package config holds xcapture's runtime configuration: the fields bound
// directly to CLI flags in cmd/xcapture, validated once at startup the
// same way the teacher's cmd/consumption validates its opts before
// run() begins (spec.md §6 "Control surface").
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tanelpoder/xcapture-go/internal/columns"
)

// Config is the full set of tunables xcapture accepts. Every field here
// corresponds to exactly one flag bound in cmd/xcapture/main.go.
type Config struct {
	// Sampling
	Interval time.Duration // --interval, how often the task iterator fires
	MaxTicks int           // --max-ticks, 0 = run until signaled (supplemented feature, SPEC_FULL.md §5)

	// Filter policy
	ShowAll             bool   // --all
	FilterTgid          int    // --pid, 0 = no filter
	DaemonPortThreshold uint32 // --daemon-port-threshold

	// Tracking modes (spec.md §4.7, §6 "tracking-modes list (syscall, iorq)")
	PassiveOnly   bool // --passive-only: sampler only, no syscall/iorq trackers attached
	TrackSyscalls bool // --track-syscalls: attach the syscall entry/exit tracker
	TrackIORQ     bool // --track-iorq: attach the block-I/O request tracker

	// Stack capture
	KernelStacks bool // --kernel-stacks
	UserStacks   bool // --user-stacks

	// Output
	OutputDir string // --output-dir, base directory for hourly CSV files
	Columns   string // --columns, narrow/normal/wide/all or a custom comma list (--human mode only)
	Append    string // --append-columns, extra columns added to Columns (--human mode only)
	Human     bool   // --human, print a selectable tabular row per sample to stdout alongside the CSV

	// Map pinning (spec.md §4.7 step 4: "optionally pin the maps under a well-known path")
	PinMaps bool   // --pin-maps
	PinDir  string // --pin-dir, base directory under /sys/fs/bpf

	// Diagnostics
	Verbose bool // --verbose, logs tick overruns and per-tick record counts
}

// Default returns the out-of-the-box configuration, matching the flag
// defaults declared in cmd/xcapture/main.go.
func Default() Config {
	return Config{
		Interval:            time.Second,
		MaxTicks:            0,
		ShowAll:             false,
		FilterTgid:          0,
		DaemonPortThreshold: 10000,
		PassiveOnly:         false,
		TrackSyscalls:       true,
		TrackIORQ:           true,
		KernelStacks:        true,
		UserStacks:          true,
		OutputDir:           "./xcapture_out",
		Columns:             "normal",
		Append:              "",
		Human:               false,
		PinMaps:             false,
		PinDir:              "/sys/fs/bpf/xcapture",
		Verbose:             false,
	}
}

// Validate rejects configurations that can never run correctly, the same
// up-front check the teacher's run() performs on interval/ema/alpha
// before doing any work. Every case here is a spec.md §7 "user-input
// error": refuse to start with a single-line message, rather than
// partially starting and failing mid-run.
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("config: interval must be > 0, got %s", c.Interval)
	}
	if c.MaxTicks < 0 {
		return fmt.Errorf("config: max-ticks must be >= 0, got %d", c.MaxTicks)
	}
	if c.FilterTgid < 0 {
		return fmt.Errorf("config: pid must be >= 0, got %d", c.FilterTgid)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("config: output-dir must not be empty")
	}
	if c.PassiveOnly && (c.TrackSyscalls || c.TrackIORQ) {
		return fmt.Errorf("config: passive-only conflicts with track-syscalls/track-iorq")
	}
	if err := validateColumnSpec("columns", c.Columns); err != nil {
		return err
	}
	if c.Append != "" {
		if err := validateColumnSpec("append-columns", c.Append); err != nil {
			return err
		}
	}
	if c.PinMaps && c.PinDir == "" {
		return fmt.Errorf("config: pin-dir must not be empty when pin-maps is set")
	}
	return nil
}

// validateColumnSpec accepts a named preset or a comma-separated list in
// which every entry names a known column (spec.md §4.6: "unknown column
// name" is a user-input error).
func validateColumnSpec(flag, spec string) error {
	switch strings.ToLower(spec) {
	case "narrow", "normal", "wide", "all":
		return nil
	}
	for _, part := range strings.Split(spec, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if _, ok := columns.Lookup(name); !ok {
			return fmt.Errorf("config: unknown column name %q in --%s", name, flag)
		}
	}
	return nil
}
