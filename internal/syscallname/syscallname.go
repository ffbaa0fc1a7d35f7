// Package syscallname resolves a Linux syscall number to its conventional
// name, for the SYSCALL/SYSCALL_ACTIVE sample columns (spec.md §3 "Sample
// record": "current syscall name, active-syscall name"). The kernel side
// only ever has the bare integer (raw_syscalls' syscall_nr), so naming
// happens here in userspace.
//
// The table is built from golang.org/x/sys/unix's SYS_* constants -
// already a teacher-adjacent dependency (internal/timebase) - rather than
// a hand-maintained number, so the pack's one real syscall-numbering
// authority stays the source of truth instead of a second copy invented
// here. Syscall numbers differ per architecture, so the table itself is
// split into syscallname_amd64.go/syscallname_arm64.go (matching
// internal/bpfobjs's own "arm64 || amd64" build constraint); this file
// holds the arch-independent lookup logic only.
package syscallname

import "strconv"

// Name resolves nr to its conventional syscall name, or "-" if nr is
// negative (spec.md §3: -1 means "not currently in a syscall") or a
// numeric fallback ("sys_<nr>") for anything not in the per-architecture
// table.
func Name(nr int32) string {
	if nr < 0 {
		return "-"
	}
	if name, ok := table[nr]; ok {
		return name
	}
	return "sys_" + strconv.FormatInt(int64(nr), 10)
}

// fdFirstArg names the syscalls whose first argument is a file
// descriptor (spec.md §4.2 step 5: "has-fd-first-arg" syscalls). Matched
// by name rather than number so it applies identically on every
// architecture this table is split for.
var fdFirstArg = map[string]bool{
	"read": true, "pread64": true, "readv": true, "preadv": true,
	"write": true, "pwrite64": true, "writev": true, "pwritev": true,
	"recvfrom": true, "recvmsg": true, "sendto": true, "sendmsg": true,
	"epoll_wait": true, "epoll_pwait": true,
	"io_uring_enter": true,
	"fsync": true, "fdatasync": true, "close": true, "lseek": true,
	"accept": true, "accept4": true, "connect": true,
}

// HasFDFirstArg reports whether nr's first argument is a file descriptor.
// internal/correlator uses this to decide whether a userspace
// /proc/<pid>/fd fallback lookup applies when the kernel side's own
// fd-table classification didn't resolve a filename or connection.
func HasFDFirstArg(nr int32) bool {
	return fdFirstArg[Name(nr)]
}
