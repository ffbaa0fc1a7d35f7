//go:build arm64

package syscallname

import "golang.org/x/sys/unix"

// table mirrors syscallname_amd64.go's entries, minus the legacy syscalls
// arm64's generic syscall ABI never had: open (use openat), accept (use
// accept4), poll (use ppoll), select (use pselect6), epoll_wait (use
// epoll_pwait).
var table = map[int32]string{
	unix.SYS_READ:           "read",
	unix.SYS_WRITE:          "write",
	unix.SYS_PREAD64:        "pread64",
	unix.SYS_PWRITE64:       "pwrite64",
	unix.SYS_READV:          "readv",
	unix.SYS_WRITEV:         "writev",
	unix.SYS_PREADV:         "preadv",
	unix.SYS_PWRITEV:        "pwritev",
	unix.SYS_RECVFROM:       "recvfrom",
	unix.SYS_SENDTO:         "sendto",
	unix.SYS_RECVMSG:        "recvmsg",
	unix.SYS_SENDMSG:        "sendmsg",
	unix.SYS_ACCEPT4:        "accept4",
	unix.SYS_CONNECT:        "connect",
	unix.SYS_PPOLL:          "ppoll",
	unix.SYS_PSELECT6:       "pselect6",
	unix.SYS_EPOLL_PWAIT:    "epoll_pwait",
	unix.SYS_IO_GETEVENTS:   "io_getevents",
	unix.SYS_IO_SUBMIT:      "io_submit",
	unix.SYS_IO_URING_ENTER: "io_uring_enter",
	unix.SYS_IO_URING_SETUP: "io_uring_setup",
	unix.SYS_OPENAT:         "openat",
	unix.SYS_CLOSE:          "close",
	unix.SYS_FSYNC:          "fsync",
	unix.SYS_FDATASYNC:      "fdatasync",
	unix.SYS_FUTEX:          "futex",
	unix.SYS_NANOSLEEP:      "nanosleep",
	unix.SYS_WAIT4:          "wait4",
	unix.SYS_EXECVE:         "execve",
	unix.SYS_LSEEK:          "lseek",
}
