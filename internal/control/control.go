// Package control owns the process-wide lifecycle: loading and attaching
// the three BPF programs, wiring their maps into internal/correlator, and
// running until a signal arrives (spec.md §4 "Runtime architecture",
// §6 "Control surface").
//
// The signal-driven run loop is adapted from the teacher's cmd/consumption
// run() function — signal.NotifyContext plus a time.Ticker select loop —
// generalized from a fixed sample count to an always-on capture with an
// optional tick cap (config.Config.MaxTicks, a SPEC_FULL.md-supplemented
// feature useful for tests and bounded captures).
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"
	"github.com/cilium/ebpf/ringbuf"
	"github.com/cilium/ebpf/rlimit"

	"github.com/tanelpoder/xcapture-go/config"
	"github.com/tanelpoder/xcapture-go/internal/bpfobjs"
	"github.com/tanelpoder/xcapture-go/internal/correlator"
	"github.com/tanelpoder/xcapture-go/internal/types"
)

// ErrAlreadyRunning is returned by Run if called twice on the same Controller.
var ErrAlreadyRunning = errors.New("control: already running")

// Controller owns every kernel-side resource (loaded programs, attached
// links, ring buffer readers) for one xcapture process lifetime.
type Controller struct {
	cfg config.Config

	taskSampler bpfobjs.TaskSamplerObjects
	scTracker   bpfobjs.ScTrackerObjects
	iorqTracker bpfobjs.IorqTrackerObjects

	sysEnterLink link.Link
	sysExitLink  link.Link
	insertLink   link.Link
	issueLink    link.Link
	completeLink link.Link
	taskIterLink *link.Iter

	sampleReader   *ringbuf.Reader
	stackReader    *ringbuf.Reader
	scCompReader   *ringbuf.Reader
	iorqCompReader *ringbuf.Reader

	pinnedMaps []*ebpf.Map // maps pinned under cfg.PinDir, unpinned on Close

	loaded  bool
	running bool
}

// New validates cfg and returns an unstarted Controller.
func New(cfg config.Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Controller{cfg: cfg}, nil
}

// load raises the memlock limit (cilium/ebpf's standard first step on
// kernels older than 5.11), then loads the task_sampler program first and
// reuses its task_storage_map file descriptor when loading the syscall
// and I/O trackers, so all three programs and the userspace side observe
// the same per-task state (spec.md §4.7 step 4: "share the common maps by
// reusing file descriptors from the first-loaded program in the others").
// The syscall/iorq trackers are loaded only when their tracking mode is
// requested (spec.md §4.7 step 5: "attach the syscall and I/O trackers
// only if requested").
func (c *Controller) load() error {
	if err := rlimit.RemoveMemlock(); err != nil {
		return fmt.Errorf("control: remove memlock rlimit: %w", err)
	}

	samplerSpec, err := bpfobjs.LoadTaskSamplerSpec()
	if err != nil {
		return fmt.Errorf("control: load task_sampler spec: %w", err)
	}
	if v, ok := samplerSpec.Variables["daemon_port_threshold"]; ok {
		if err := v.Set(c.cfg.DaemonPortThreshold); err != nil {
			return fmt.Errorf("control: set daemon_port_threshold: %w", err)
		}
	}
	if v, ok := samplerSpec.Variables["show_all"]; ok {
		_ = v.Set(boolToU32(c.cfg.ShowAll))
	}
	if v, ok := samplerSpec.Variables["filter_tgid"]; ok {
		_ = v.Set(uint32(c.cfg.FilterTgid))
	}
	if v, ok := samplerSpec.Variables["self_tgid"]; ok {
		_ = v.Set(uint32(os.Getpid()))
	}
	if v, ok := samplerSpec.Variables["kstack_enabled"]; ok {
		_ = v.Set(boolToU32(c.cfg.KernelStacks))
	}
	if v, ok := samplerSpec.Variables["ustack_enabled"]; ok {
		_ = v.Set(boolToU32(c.cfg.UserStacks))
	}
	if err := samplerSpec.LoadAndAssign(&c.taskSampler, nil); err != nil {
		return fmt.Errorf("control: load task_sampler objects: %w", err)
	}

	shared := &ebpf.CollectionOptions{
		MapReplacements: map[string]*ebpf.Map{
			"task_storage_map": c.taskSampler.TaskStorageMap,
		},
	}

	if c.cfg.TrackSyscalls {
		if err := bpfobjs.LoadScTrackerObjects(&c.scTracker, shared); err != nil {
			return fmt.Errorf("control: load sc_tracker objects: %w", err)
		}
	}
	if c.cfg.TrackIORQ {
		if err := bpfobjs.LoadIorqTrackerObjects(&c.iorqTracker, shared); err != nil {
			return fmt.Errorf("control: load iorq_tracker objects: %w", err)
		}
	}
	c.loaded = true

	if c.cfg.PinMaps {
		if err := c.pinMaps(); err != nil {
			return fmt.Errorf("control: pin maps: %w", err)
		}
	}
	return nil
}

// pinMaps pins the maps shared across programs under cfg.PinDir, for
// external inspection with bpftool (spec.md §4.7 step 4, §6 "Input:
// filesystem: /sys/fs/bpf/<dir> for optional map pinning"). A pin failure
// is returned to load(), which then fails. An already-pinned map from a
// prior run is unpinned and re-pinned rather than erroring, since a crashed
// previous instance can leave stale pins.
func (c *Controller) pinMaps() error {
	named := map[string]*ebpf.Map{
		"task_storage_map": c.taskSampler.TaskStorageMap,
		"sample_events":    c.taskSampler.SampleEvents,
		"stack_events":     c.taskSampler.StackEvents,
		"emitted_stacks":   c.taskSampler.EmittedStacks,
	}
	for name, m := range named {
		if m == nil {
			continue
		}
		path := filepath.Join(c.cfg.PinDir, name)
		_ = os.Remove(path) // drop a stale pin left by a previous instance
		if err := m.Pin(path); err != nil {
			return fmt.Errorf("pin %s at %s: %w", name, path, err)
		}
		c.pinnedMaps = append(c.pinnedMaps, m)
	}
	return nil
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// attach unconditionally attaches the sampler's task iterator, then the
// syscall and I/O tracepoints only if their tracking mode was requested
// (spec.md §4.7 step 5: "attach: unconditionally attach the sampler;
// attach the syscall and I/O trackers only if requested").
func (c *Controller) attach() error {
	var err error

	c.taskIterLink, err = link.AttachIter(link.IterOptions{
		Program: c.taskSampler.TaskSampleIter,
	})
	if err != nil {
		return fmt.Errorf("control: attach task iterator: %w", err)
	}

	c.sampleReader, err = ringbuf.NewReader(c.taskSampler.SampleEvents)
	if err != nil {
		return fmt.Errorf("control: open sample ringbuf reader: %w", err)
	}
	c.stackReader, err = ringbuf.NewReader(c.taskSampler.StackEvents)
	if err != nil {
		return fmt.Errorf("control: open stack ringbuf reader: %w", err)
	}

	if c.cfg.TrackSyscalls {
		c.sysEnterLink, err = link.Tracepoint("raw_syscalls", "sys_enter", c.scTracker.XcaptureSysEnter, nil)
		if err != nil {
			return fmt.Errorf("control: attach sys_enter: %w", err)
		}
		c.sysExitLink, err = link.Tracepoint("raw_syscalls", "sys_exit", c.scTracker.XcaptureSysExit, nil)
		if err != nil {
			return fmt.Errorf("control: attach sys_exit: %w", err)
		}
		c.scCompReader, err = ringbuf.NewReader(c.scTracker.ScCompletionEvents)
		if err != nil {
			return fmt.Errorf("control: open sc completion ringbuf reader: %w", err)
		}
	}

	if c.cfg.TrackIORQ {
		c.insertLink, err = link.Tracepoint("block", "block_rq_insert", c.iorqTracker.XcaptureBlockRqInsert, nil)
		if err != nil {
			return fmt.Errorf("control: attach block_rq_insert: %w", err)
		}
		c.issueLink, err = link.Tracepoint("block", "block_rq_issue", c.iorqTracker.XcaptureBlockRqIssue, nil)
		if err != nil {
			return fmt.Errorf("control: attach block_rq_issue: %w", err)
		}
		c.completeLink, err = link.Tracepoint("block", "block_rq_complete", c.iorqTracker.XcaptureBlockRqComplete, nil)
		if err != nil {
			return fmt.Errorf("control: attach block_rq_complete: %w", err)
		}
		c.iorqCompReader, err = ringbuf.NewReader(c.iorqTracker.IorqCompletionEvents)
		if err != nil {
			return fmt.Errorf("control: open iorq completion ringbuf reader: %w", err)
		}
	}
	return nil
}

// Run loads and attaches every BPF program, then drives the tick loop
// until ctx is canceled, SIGINT/SIGTERM arrives, or MaxTicks is reached.
func (c *Controller) Run(ctx context.Context) error {
	if c.running {
		return ErrAlreadyRunning
	}
	c.running = true
	defer func() { c.running = false }()

	if err := c.load(); err != nil {
		return err
	}
	defer c.Close()

	if err := c.attach(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	corr, err := correlator.New(c.cfg, correlator.Sources{
		TaskIter:     c.taskIterLink,
		Samples:      c.sampleReader,
		StackTraces:  c.stackReader,
		SyscallComps: c.scCompReader,
		IORQComps:    c.iorqCompReader,
	})
	if err != nil {
		return fmt.Errorf("control: build correlator: %w", err)
	}
	defer corr.Close()

	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			slog.Info("xcapture: interrupted, shutting down")
			return nil
		case tickAt := <-ticker.C:
			start := time.Now()
			if err := corr.Tick(tickAt); err != nil {
				slog.Warn("xcapture: tick error", "err", err)
			}
			if elapsed := time.Since(start); c.cfg.Verbose {
				if elapsed > c.cfg.Interval {
					slog.Warn("xcapture: tick overran its interval",
						"interval", c.cfg.Interval, "elapsed", elapsed)
				}
				slog.Debug("xcapture: tick complete",
					"elapsed", elapsed, "ring_bytes_read", types.Bytes(corr.LastTickBytes()).Humanized())
			}
			ticks++
			if c.cfg.MaxTicks > 0 && ticks >= c.cfg.MaxTicks {
				slog.Info("xcapture: reached max-ticks, shutting down", "ticks", ticks)
				return nil
			}
		}
	}
}

// Close releases every kernel-side resource. Safe to call multiple times;
// every field is checked individually since a mix of interface
// (link.Link) and concrete pointer (*ringbuf.Reader, *link.Iter) types
// would otherwise make a generic nil check unreliable.
func (c *Controller) Close() error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if c.sampleReader != nil {
		record(c.sampleReader.Close())
	}
	if c.stackReader != nil {
		record(c.stackReader.Close())
	}
	if c.scCompReader != nil {
		record(c.scCompReader.Close())
	}
	if c.iorqCompReader != nil {
		record(c.iorqCompReader.Close())
	}
	if c.taskIterLink != nil {
		record(c.taskIterLink.Close())
	}
	if c.sysEnterLink != nil {
		record(c.sysEnterLink.Close())
	}
	if c.sysExitLink != nil {
		record(c.sysExitLink.Close())
	}
	if c.insertLink != nil {
		record(c.insertLink.Close())
	}
	if c.issueLink != nil {
		record(c.issueLink.Close())
	}
	if c.completeLink != nil {
		record(c.completeLink.Close())
	}

	for _, m := range c.pinnedMaps {
		_ = m.Unpin()
	}

	if c.loaded {
		_ = c.taskSampler.Close()
		if c.cfg.TrackSyscalls {
			_ = c.scTracker.Close()
		}
		if c.cfg.TrackIORQ {
			_ = c.iorqTracker.Close()
		}
	}
	return firstErr
}
