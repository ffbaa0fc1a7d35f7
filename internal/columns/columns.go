// Package columns defines the fixed table of sample output columns and
// the named subsets ("narrow", "normal", "wide", "all") selectable via
// the --columns flag (spec.md §4.6 "Column formatter").
//
// Two distinct consumers read this registry: the hourly CSV samples file
// always uses All(), in registry order, regardless of --columns ("in CSV
// mode the column selection is ignored - all columns always, for
// downstream-SQL stability", spec.md §4.6); the optional --human
// tabular view honors ByName(cfg.Columns) plus any --append-columns list.
package columns

import (
	"strconv"
	"strings"
	"time"

	"github.com/tanelpoder/xcapture-go/internal/record"
	"github.com/tanelpoder/xcapture-go/internal/syscallname"
)

// Row bundles everything a Format function might need: the decoded
// sample plus the pieces a column can't derive from the raw record alone
// (wall-clock times require internal/timebase; the username requires
// internal/cache; the tick weight is a run-wide constant).
type Row struct {
	Sample        record.TaskSample
	When          time.Time
	SyscEnterTime time.Time
	Username      string
	WeightUS      uint64
}

// Column is one entry in the output table: a stable lowercase Name (used
// by --columns and as the map key), a printed Header (the literal name
// spec.md §6 gives the CSV header), a suggested display Width for the
// --human tabular writer, and the Format function that renders it.
type Column struct {
	Name   string
	Header string
	Width  int
	Format func(Row) string
}

func u32(n uint32) string { return strconv.FormatUint(uint64(n), 10) }
func u64(n uint64) string { return strconv.FormatUint(n, 10) }
func i32(n int32) string  { return strconv.FormatInt(int64(n), 10) }
func hex64(n uint64) string {
	return strconv.FormatUint(n, 16)
}

// registry is the canonical column order: it is, field for field, the
// samples-file header in spec.md §6 ("TIMESTAMP, WEIGHT_US, TID, TGID,
// PIDNS, CGROUP_ID, STATE, USERNAME, EXE, COMM, SYSCALL, SYSCALL_ACTIVE,
// SYSC_ENTRY_TIME, SYSC_NS_SO_FAR, SYSC_SEQ_NUM, IORQ_SEQ_NUM,
// SYSC_ARG1..SYSC_ARG6, FILENAME, CONNECTION, CONN_STATE, EXTRA_INFO,
// KSTACK_HASH, USTACK_HASH").
var registry = []Column{
	{"timestamp", "TIMESTAMP", 26, func(r Row) string { return r.When.Format("2006-01-02T15:04:05.000000") }},
	{"weight_us", "WEIGHT_US", 10, func(r Row) string { return u64(r.WeightUS) }},
	{"tid", "TID", 8, func(r Row) string { return u32(r.Sample.Tid) }},
	{"tgid", "TGID", 8, func(r Row) string { return u32(r.Sample.Tgid) }},
	{"pidns", "PIDNS", 12, func(r Row) string { return u32(r.Sample.PidNs) }},
	{"cgroup_id", "CGROUP_ID", 20, func(r Row) string { return u64(r.Sample.CgroupID) }},
	{"state", "STATE", 8, func(r Row) string { return r.Sample.StateLetters() }},
	{"username", "USERNAME", 10, func(r Row) string { return r.Username }},
	{"exe", "EXE", 24, func(r Row) string { return r.Sample.ExeString() }},
	{"comm", "COMM", 16, func(r Row) string { return r.Sample.CommString() }},
	{"syscall", "SYSCALL", 14, func(r Row) string { return syscallname.Name(r.Sample.SyscNr) }},
	{"syscall_active", "SYSCALL_ACTIVE", 14, func(r Row) string { return syscallname.Name(r.Sample.SyscActiveNr) }},
	{"sysc_entry_time", "SYSC_ENTRY_TIME", 26, func(r Row) string {
		if r.Sample.SyscNr < 0 {
			return ""
		}
		return r.SyscEnterTime.Format("2006-01-02T15:04:05.000000")
	}},
	{"sysc_ns_so_far", "SYSC_NS_SO_FAR", 14, func(r Row) string { return u64(r.Sample.NsInSyscallSoFar) }},
	{"sysc_seq_num", "SYSC_SEQ_NUM", 12, func(r Row) string { return u64(r.Sample.SyscSeqNum) }},
	{"iorq_seq_num", "IORQ_SEQ_NUM", 12, func(r Row) string { return u64(r.Sample.IorqSeqNum) }},
	{"sysc_arg1", "SYSC_ARG1", 16, func(r Row) string { return hex64(r.Sample.Args[0]) }},
	{"sysc_arg2", "SYSC_ARG2", 16, func(r Row) string { return hex64(r.Sample.Args[1]) }},
	{"sysc_arg3", "SYSC_ARG3", 16, func(r Row) string { return hex64(r.Sample.Args[2]) }},
	{"sysc_arg4", "SYSC_ARG4", 16, func(r Row) string { return hex64(r.Sample.Args[3]) }},
	{"sysc_arg5", "SYSC_ARG5", 16, func(r Row) string { return hex64(r.Sample.Args[4]) }},
	{"sysc_arg6", "SYSC_ARG6", 16, func(r Row) string { return hex64(r.Sample.Args[5]) }},
	{"filename", "FILENAME", 32, func(r Row) string { return r.Sample.FilenameString() }},
	{"connection", "CONNECTION", 24, func(r Row) string { return r.Sample.ConnectionString() }},
	{"conn_state", "CONN_STATE", 12, func(r Row) string { return r.Sample.ConnStateString() }},
	{"extra_info", "EXTRA_INFO", 40, func(r Row) string { return r.Sample.ExtraInfoString() }},
	{"kstack_hash", "KSTACK_HASH", 18, func(r Row) string { return hex64(r.Sample.KstackHash) }},
	{"ustack_hash", "USTACK_HASH", 18, func(r Row) string { return hex64(r.Sample.UstackHash) }},
}

// byName indexes registry for ByName/Lookup/custom-list resolution.
// Case-insensitive matching (spec.md §4.6) means the key is always
// lowercase; callers normalize with strings.ToLower before looking up.
var byName = func() map[string]Column {
	m := make(map[string]Column, len(registry))
	for _, c := range registry {
		m[c.Name] = c
	}
	return m
}()

// Named column sets (spec.md §4.6 "narrow/normal/wide"). "all" always
// tracks the full registry so a new column added above is automatically
// included in it.
var (
	Narrow = set("timestamp", "tid", "comm", "state", "syscall")
	Normal = set("timestamp", "tid", "tgid", "username", "comm", "state", "syscall",
		"sysc_ns_so_far", "filename")
	Wide = set("timestamp", "tid", "tgid", "username", "comm", "state", "syscall",
		"sysc_ns_so_far", "filename", "connection", "conn_state", "exe", "kstack_hash", "ustack_hash")
)

func set(names ...string) []Column {
	cols := make([]Column, 0, len(names))
	for _, n := range names {
		if c, ok := byName[n]; ok {
			cols = append(cols, c)
		}
	}
	return cols
}

// All returns every known column, in the exact order of the spec.md §6
// CSV header. This is what the always-on samples file uses, independent
// of --columns.
func All() []Column {
	cols := make([]Column, len(registry))
	copy(cols, registry)
	return cols
}

// ByName resolves a named preset (narrow/normal/wide/all) or, for any
// other string, a comma-separated custom column list (spec.md §4.6: "a
// user-supplied comma list"). Duplicate names are dropped, keeping the
// first occurrence's position; unrecognized names are skipped rather than
// erroring, and an entirely-unrecognized custom list falls back to Normal
// so --human output is never silently empty.
func ByName(preset string) []Column {
	switch strings.ToLower(preset) {
	case "narrow":
		return Narrow
	case "wide":
		return Wide
	case "all":
		return All()
	case "normal", "":
		return Normal
	}
	if cols := parseList(preset); len(cols) > 0 {
		return cols
	}
	return Normal
}

// WithAppend resolves base (a preset name or custom list, as ByName
// would) and appends the columns named in appendList that base doesn't
// already contain, preserving appendList's order. Honored only in
// --human mode (spec.md §4.6: "an append columns form is honored only in
// human mode").
func WithAppend(base, appendList string) []Column {
	cols := ByName(base)
	if strings.TrimSpace(appendList) == "" {
		return cols
	}
	have := make(map[string]bool, len(cols))
	for _, c := range cols {
		have[c.Name] = true
	}
	for _, c := range parseList(appendList) {
		if !have[c.Name] {
			cols = append(cols, c)
			have[c.Name] = true
		}
	}
	return cols
}

// parseList turns a case-insensitive comma-separated column name list
// into Columns, skipping unknown names and de-duplicating.
func parseList(list string) []Column {
	var cols []Column
	seen := make(map[string]bool)
	for _, part := range strings.Split(list, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" || seen[name] {
			continue
		}
		if c, ok := byName[name]; ok {
			cols = append(cols, c)
			seen[name] = true
		}
	}
	return cols
}

// Lookup resolves a single column name, used by config to validate custom
// --columns=a,b,c and --append-columns lists.
func Lookup(name string) (Column, bool) {
	c, ok := byName[strings.ToLower(name)]
	return c, ok
}

// Headers returns the display header of each column, in order - used to
// write a CSV/tabular header row.
func Headers(cols []Column) []string {
	h := make([]string, len(cols))
	for i, c := range cols {
		h[i] = c.Header
	}
	return h
}
