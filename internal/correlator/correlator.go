// Package correlator drives one xcapture tick: trigger the task iterator
// sweep, drain the ring buffers, decode and correlate the records, and
// hand finished rows to the output writers (spec.md §4.5 "Correlator +
// formatter (user side)").
package correlator

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cilium/ebpf/link"
	"github.com/cilium/ebpf/ringbuf"

	"github.com/tanelpoder/xcapture-go/config"
	"github.com/tanelpoder/xcapture-go/internal/cache"
	"github.com/tanelpoder/xcapture-go/internal/cgroupresolver"
	"github.com/tanelpoder/xcapture-go/internal/columns"
	"github.com/tanelpoder/xcapture-go/internal/filterpolicy"
	"github.com/tanelpoder/xcapture-go/internal/outputfile"
	"github.com/tanelpoder/xcapture-go/internal/procutil"
	"github.com/tanelpoder/xcapture-go/internal/record"
	"github.com/tanelpoder/xcapture-go/internal/stackdedup"
	"github.com/tanelpoder/xcapture-go/internal/syscallname"
	"github.com/tanelpoder/xcapture-go/internal/timebase"
)

// Sources bundles the kernel-facing handles a Correlator reads from each
// tick: the task iterator link (opening it triggers one sweep) and the
// ring-buffer readers it populates. SyscallComps and IORQComps are nil
// when their tracking mode wasn't attached (spec.md §4.7 "passive-only").
type Sources struct {
	TaskIter     *link.Iter
	Samples      *ringbuf.Reader
	StackTraces  *ringbuf.Reader
	SyscallComps *ringbuf.Reader
	IORQComps    *ringbuf.Reader
}

// Correlator owns the per-tick state: output rotators, caches, and the
// time base used to render wall-clock timestamps.
type Correlator struct {
	cfg config.Config
	src Sources

	base      timebase.Base
	users     *cache.Usernames
	cgroups   *cgroupresolver.Resolver
	ksyms     *cache.KernelSymbols
	kstackdup *stackdedup.Tracker
	ustackdup *stackdedup.Tracker
	cols      []columns.Column // human-mode column selection (cfg.Columns + cfg.Append); CSV always uses columns.All()

	cgroupWritten map[uint64]bool

	samplesOut  *outputfile.Rotator
	scOut       *outputfile.Rotator
	iorqOut     *outputfile.Rotator
	kstacksOut  *outputfile.Rotator
	ustacksOut  *outputfile.Rotator
	cgroupOut   *outputfile.Rotator
	humanWriter io.Writer

	lastTickBytes uint64 // raw ring-buffer bytes read during the most recent Tick, for verbose logging
}

// LastTickBytes reports how many raw ring-buffer bytes the most recent
// Tick call read across every ring buffer (spec.md §6 "--verbose": used
// to log per-tick throughput in human-readable form).
func (c *Correlator) LastTickBytes() uint64 { return c.lastTickBytes }

// New builds a Correlator. The output rotators are created lazily rooted
// at cfg.OutputDir/{samples,syscalls,blockio,kstacks,ustacks,cgroups}.
func New(cfg config.Config, src Sources) (*Correlator, error) {
	base, err := timebase.New()
	if err != nil {
		return nil, fmt.Errorf("correlator: init timebase: %w", err)
	}

	cgroups := cgroupresolver.New()
	slog.Info("correlator: detected cgroup hierarchy", "version", cgroups.Version())

	return &Correlator{
		cfg:           cfg,
		src:           src,
		base:          base,
		users:         cache.NewUsernames(),
		cgroups:       cgroups,
		ksyms:         cache.NewKernelSymbols(),
		kstackdup:     stackdedup.NewTracker(65536),
		ustackdup:     stackdedup.NewTracker(65536),
		cols:          columns.WithAppend(cfg.Columns, cfg.Append),
		cgroupWritten: make(map[uint64]bool),
		humanWriter:   os.Stdout,
		samplesOut: outputfile.New(cfg.OutputDir+"/samples", "samples",
			columns.Headers(columns.All())),
		scOut: outputfile.New(cfg.OutputDir+"/syscalls", "sc_completions",
			[]string{"TYPE", "TID", "TGID", "SYSCALL_NAME", "DURATION_NS", "SYSC_RET_VAL", "SYSC_SEQ_NUM", "SYSC_ENTER_TIME"}),
		iorqOut: outputfile.New(cfg.OutputDir+"/blockio", "iorq_completions",
			[]string{"TYPE", "INSERT_TID", "INSERT_TGID", "ISSUE_TID", "ISSUE_TGID", "COMPLETE_TID", "COMPLETE_TGID",
				"DEV_MAJ", "DEV_MIN", "SECTOR", "BYTES", "IORQ_FLAGS", "IORQ_SEQ_NUM", "DURATION_NS", "SERVICE_NS",
				"QUEUED_NS", "ISSUE_TIMESTAMP", "ERROR"}),
		kstacksOut: outputfile.New(cfg.OutputDir+"/kstacks", "kstacks", []string{"KSTACK_HASH", "KSTACK_SYMS"}),
		ustacksOut: outputfile.New(cfg.OutputDir+"/ustacks", "ustacks", []string{"USTACK_HASH", "USTACK_SYMS"}),
		cgroupOut:  outputfile.New(cfg.OutputDir+"/cgroups", "cgroups", []string{"CGROUP_ID", "CGROUP_PATH"}),
	}, nil
}

// columnHeader renders the display headers for cols, in order - used by
// internal/correlator's tests and, via columns.Headers, the output-file
// header rows.
func columnHeader(cols []columns.Column) []string { return columns.Headers(cols) }

// Tick triggers one sampling sweep and drains whatever the ring buffers
// produced as a result, in task-sample -> stack-trace -> completion-event
// order (spec.md §4.5 step 3). Draining stacks right after samples, before
// either completion ring, means a stack hash referenced by a sample this
// tick is written to its stack file no later than the same tick.
func (c *Correlator) Tick(at time.Time) error {
	c.lastTickBytes = 0

	// Take a fresh monotonic/wall-clock pair once per tick; every
	// timestamp rendered during this tick is converted against it.
	if err := c.base.Refresh(); err != nil {
		return fmt.Errorf("correlator: refresh timebase: %w", err)
	}

	if err := c.triggerSweep(); err != nil {
		return fmt.Errorf("correlator: trigger sweep: %w", err)
	}

	if err := c.drainSamples(at); err != nil {
		return fmt.Errorf("correlator: drain samples: %w", err)
	}
	if err := c.drainStackTraces(at); err != nil {
		return fmt.Errorf("correlator: drain stack traces: %w", err)
	}
	if err := c.drainSyscallCompletions(at); err != nil {
		return fmt.Errorf("correlator: drain syscall completions: %w", err)
	}
	if err := c.drainIORQCompletions(at); err != nil {
		return fmt.Errorf("correlator: drain iorq completions: %w", err)
	}
	return nil
}

// triggerSweep opens (and fully drains) the task iterator link. Opening a
// BPF_LINK_TYPE_ITER link's file descriptor and reading it to EOF is what
// causes the kernel to invoke the attached iter program once per task;
// the sampler never writes anything back through this fd (it emits
// records into the ring buffers instead), so the read is discarded.
func (c *Correlator) triggerSweep() error {
	if c.src.TaskIter == nil {
		return nil // allows tests to drive drain* directly without a kernel
	}
	rd, err := c.src.TaskIter.Open()
	if err != nil {
		return err
	}
	defer rd.Close()

	_, err = io.Copy(io.Discard, rd)
	return err
}

func (c *Correlator) drainSamples(at time.Time) error {
	if c.src.Samples == nil {
		return nil
	}
	// Ring buffer reads block waiting for new data by default; a tick
	// only wants whatever is already queued, so set an immediate
	// deadline and treat its expiry as "buffer empty, done for this tick".
	if err := c.src.Samples.SetDeadline(time.Now()); err != nil {
		return err
	}
	for {
		rec, err := c.src.Samples.Read()
		if err != nil {
			if isEndOfTick(err) {
				return nil
			}
			return err
		}

		c.lastTickBytes += uint64(len(rec.RawSample))
		sample, err := record.DecodeTaskSample(rec.RawSample)
		if err != nil {
			slog.Warn("correlator: bad sample record", "err", err)
			continue
		}
		c.emitSample(sample, at)
	}
}

func (c *Correlator) emitSample(sample record.TaskSample, at time.Time) {
	// Re-apply the filter policy at the userspace boundary (spec.md §4.1):
	// a backstop against a sampler revision that widens what the kernel
	// side considers a candidate, or a ring buffer replaying a stale
	// record under overload. In steady state this is always true, since
	// the kernel already applied the identical predicate before emitting.
	params := filterpolicy.Params{DaemonPortThreshold: c.cfg.DaemonPortThreshold, ShowAll: c.cfg.ShowAll}
	if !filterpolicy.Interesting(params, filterpolicy.SnapshotFromSample(sample)) {
		slog.Debug("correlator: dropping sample that failed the userspace filter re-check",
			"tid", sample.Tid, "state", sample.State)
		return
	}

	sample = c.resolveUserspaceFields(sample)

	when := c.base.ToWallClock(sample.SampleActualKtime)
	username := c.users.Lookup(sample.Euid)

	if sample.CgroupID != 0 {
		if path, ok := c.cgroups.Resolve(sample.CgroupID, int(sample.Tid)); ok {
			c.writeCgroupRow(sample.CgroupID, path, when)
		} else {
			slog.Debug("correlator: cgroup unresolved this sighting", "cgroup_id", sample.CgroupID)
		}
	}

	row := columns.Row{
		Sample:        sample,
		When:          when,
		SyscEnterTime: c.base.ToWallClock(sample.SyscallEnterKtime),
		Username:      username,
		WeightUS:      uint64(c.cfg.Interval / time.Microsecond),
	}

	// CSV mode always writes every column, ignoring --columns, so the
	// downstream SQL join surface never depends on how the process was
	// invoked (spec.md §4.6: "in CSV mode the column selection is
	// ignored - all columns always").
	allCols := columns.All()
	fields := make([]string, len(allCols))
	for i, col := range allCols {
		fields[i] = col.Format(row)
	}
	if err := c.samplesOut.WriteRow(when, fields); err != nil {
		slog.Warn("correlator: write sample row", "err", err)
	}

	if c.cfg.Human {
		c.writeHumanRow(row)
	}
}

// resolveUserspaceFields fills in sample fields the kernel side leaves
// unresolved or zeroed, via /proc/<pid> reads (spec.md §4.5): the real
// effective uid (bpf/task_sampler.bpf.c leaves ev->euid at 0 - reading
// task_cred from a sleepable iterator needs CO-RE plumbing this excerpt
// doesn't build, so euid is resolved here instead), the executable
// basename, and - only as a fallback when the kernel's own fd-table
// classification didn't produce a filename or connection for an
// fd-taking syscall - the /proc/<pid>/fd/<fd> target.
func (c *Correlator) resolveUserspaceFields(sample record.TaskSample) record.TaskSample {
	if euid, err := procutil.ReadEuid(int(sample.Tid)); err == nil {
		sample.Euid = uint32(euid)
	}
	if exe, err := procutil.ReadExeBasename(int(sample.Tid)); err == nil {
		setCString(sample.Exe[:], exe)
	}
	if sample.FilenameString() == "" && sample.ConnectionString() == "" &&
		syscallname.HasFDFirstArg(sample.SyscNr) {
		if target, err := procutil.ReadFdTarget(int(sample.Tgid), int(sample.Args[0])); err == nil {
			setCString(sample.Filename[:], target)
		}
	}
	return sample
}

// setCString copies s into dst as a NUL-padded fixed-size field, matching
// the layout record.TaskSample's *String() accessors expect.
func setCString(dst []byte, s string) {
	clear(dst)
	copy(dst, s)
}

// writeHumanRow prints one row, fields separated by two spaces, using the
// selected --columns (+ --append-columns) set to stdout, the human-readable counterpart to
// the always-fixed CSV row (spec.md §4.6 "a selectable human-readable
// row").
func (c *Correlator) writeHumanRow(row columns.Row) {
	fields := make([]string, len(c.cols))
	for i, col := range c.cols {
		fields[i] = col.Format(row)
	}
	fmt.Fprintln(c.humanWriter, strings.Join(fields, "  "))
}

func (c *Correlator) writeCgroupRow(cgroupID uint64, path string, when time.Time) {
	if c.cgroupWritten[cgroupID] {
		return
	}
	c.cgroupWritten[cgroupID] = true
	fields := []string{fmtU64(cgroupID), path}
	if err := c.cgroupOut.WriteRow(when, fields); err != nil {
		slog.Warn("correlator: write cgroup row", "err", err)
	}
}

// drainStackTraces reads newly-captured kernel/user stacks, symbolizing
// kernel frames via /proc/kallsyms and deduplicating by hash before
// writing (spec.md §4.2 "Stack hashing": "emit new ones once"). User
// frames are written as raw hex addresses: no userspace ELF/DWARF
// symbolizer exists anywhere in this project's dependency surface, and
// symbolizing addresses in arbitrary live processes is explicitly a
// spec.md §1 non-goal boundary case this project doesn't cross.
func (c *Correlator) drainStackTraces(at time.Time) error {
	if c.src.StackTraces == nil {
		return nil
	}
	if err := c.src.StackTraces.SetDeadline(time.Now()); err != nil {
		return err
	}
	for {
		rec, err := c.src.StackTraces.Read()
		if err != nil {
			if isEndOfTick(err) {
				return nil
			}
			return err
		}
		c.lastTickBytes += uint64(len(rec.RawSample))
		st, err := record.DecodeStackTrace(rec.RawSample)
		if err != nil {
			slog.Warn("correlator: bad stack trace record", "err", err)
			continue
		}
		c.emitStackTrace(st, at)
	}
}

func (c *Correlator) emitStackTrace(st record.StackTrace, at time.Time) {
	tracker, out, syms := c.ustackdup, c.ustacksOut, c.symbolizeUser
	if st.IsKernel != 0 {
		tracker, out, syms = c.kstackdup, c.kstacksOut, c.symbolizeKernel
	}

	// The kernel side already folded st.Addrs into st.Hash before emitting
	// this record; recompute it here with the same FNV-1a scheme as a
	// sanity check that the two sides still agree on the hashing rule
	// (stackdedup.HashAddrs exists for exactly this cross-check, not for
	// computing the dedup key itself - that stays st.Hash so a mismatch
	// doesn't change what gets deduplicated).
	depth := st.Depth
	if depth > uint32(len(st.Addrs)) {
		depth = uint32(len(st.Addrs))
	}
	if recomputed := stackdedup.HashAddrs(st.Addrs[:depth]); recomputed != st.Hash {
		slog.Debug("correlator: stack hash mismatch between kernel and userspace FNV-1a",
			"kernel_hash", st.Hash, "recomputed", recomputed)
	}

	if !tracker.ShouldEmit(st.Hash) {
		return
	}
	fields := []string{strconv.FormatUint(st.Hash, 16), syms(st)}
	if err := out.WriteRow(at, fields); err != nil {
		slog.Warn("correlator: write stack row", "err", err)
	}
}

func (c *Correlator) symbolizeKernel(st record.StackTrace) string {
	frames := make([]string, 0, st.Depth)
	for i := uint32(0); i < st.Depth && i < uint32(len(st.Addrs)); i++ {
		addr := st.Addrs[i]
		if name, off, ok := c.ksyms.Resolve(addr); ok {
			frames = append(frames, fmt.Sprintf("%s+0x%x", name, off))
		} else {
			frames = append(frames, fmt.Sprintf("0x%x", addr))
		}
	}
	return strings.Join(frames, ";")
}

func (c *Correlator) symbolizeUser(st record.StackTrace) string {
	frames := make([]string, 0, st.Depth)
	for i := uint32(0); i < st.Depth && i < uint32(len(st.Addrs)); i++ {
		frames = append(frames, fmt.Sprintf("0x%x", st.Addrs[i]))
	}
	return strings.Join(frames, ";")
}

func (c *Correlator) drainSyscallCompletions(at time.Time) error {
	if c.src.SyscallComps == nil {
		return nil
	}
	if err := c.src.SyscallComps.SetDeadline(time.Now()); err != nil {
		return err
	}
	for {
		rec, err := c.src.SyscallComps.Read()
		if err != nil {
			if isEndOfTick(err) {
				return nil
			}
			return err
		}
		c.lastTickBytes += uint64(len(rec.RawSample))
		comp, err := record.DecodeSyscallCompletion(rec.RawSample)
		if err != nil {
			slog.Warn("correlator: bad syscall completion record", "err", err)
			continue
		}
		enterTime := c.base.ToWallClock(comp.EnterKtime)
		fields := []string{
			"SYSC_COMPLETION",
			fmtU32(comp.Tid), fmtU32(comp.Tgid), syscallname.Name(comp.SyscNr),
			fmtU64(comp.DurationNs), fmtI64(comp.RetVal), fmtU64(comp.SyscSeqNum),
			enterTime.Format("2006-01-02T15:04:05.000000"),
		}
		if err := c.scOut.WriteRow(at, fields); err != nil {
			slog.Warn("correlator: write syscall completion row", "err", err)
		}
	}
}

func (c *Correlator) drainIORQCompletions(at time.Time) error {
	if c.src.IORQComps == nil {
		return nil
	}
	if err := c.src.IORQComps.SetDeadline(time.Now()); err != nil {
		return err
	}
	for {
		rec, err := c.src.IORQComps.Read()
		if err != nil {
			if isEndOfTick(err) {
				return nil
			}
			return err
		}
		c.lastTickBytes += uint64(len(rec.RawSample))
		comp, err := record.DecodeIORequestCompletion(rec.RawSample)
		if err != nil {
			slog.Warn("correlator: bad iorq completion record", "err", err)
			continue
		}
		issueTime := c.base.ToWallClock(comp.IssueKtime)
		serviceNs := comp.CompleteKtime - comp.IssueKtime
		queuedNs := comp.IssueKtime - comp.InsertKtime
		fields := []string{
			"IORQ_COMPLETION",
			fmtU32(comp.InsertTid), fmtU32(comp.InsertTgid),
			fmtU32(comp.IssueTid), fmtU32(comp.IssueTgid),
			fmtU32(comp.CompleteTid), fmtU32(comp.CompleteTgid),
			fmtU32(comp.DevMajor), fmtU32(comp.DevMinor), fmtU64(comp.Sector), fmtU32(comp.Bytes),
			comp.FlagsString(), fmtU64(comp.IorqSeqNum),
			fmtU64(comp.CompleteKtime - comp.InsertKtime), fmtU64(serviceNs), fmtU64(queuedNs),
			issueTime.Format("2006-01-02T15:04:05.000000"),
			fmtI32(comp.Error),
		}
		if err := c.iorqOut.WriteRow(at, fields); err != nil {
			slog.Warn("correlator: write iorq completion row", "err", err)
		}
	}
}

// Close flushes and closes every output rotator.
func (c *Correlator) Close() error {
	var firstErr error
	rotators := []*outputfile.Rotator{c.samplesOut, c.scOut, c.iorqOut, c.kstacksOut, c.ustacksOut, c.cgroupOut}
	for _, r := range rotators {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// isEndOfTick reports whether err is the "nothing left to read this tick"
// signal: either the deadline set at the start of drain* expired, or the
// reader was closed during shutdown.
func isEndOfTick(err error) bool {
	return errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, ringbuf.ErrClosed)
}

func fmtU32(v uint32) string { return strconv.FormatUint(uint64(v), 10) }
func fmtI32(v int32) string  { return strconv.FormatInt(int64(v), 10) }
func fmtU64(v uint64) string { return strconv.FormatUint(v, 10) }
func fmtI64(v int64) string  { return strconv.FormatInt(v, 10) }
