//go:build linux

// Package procutil provides the low-level /proc readers internal/correlator
// uses to fill in sample fields the kernel side leaves unresolved: the
// executable basename, the effective uid, fd-table fallback resolution,
// and the cgroup hierarchy line.
//
// The line-scanning idiom (bufio.Scanner over a fixed /proc/<pid>/<file>
// path, matched by field prefix) follows the teacher's
// pkg/system/proc/proc.go.
package procutil

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var (
	// ErrNoStat indicates /proc/<pid>/status was empty or malformed.
	ErrNoStat = fmt.Errorf("procutil: malformed or empty status")
	// ErrShortStat indicates a /proc/<pid>/status line had fewer fields than expected.
	ErrShortStat = fmt.Errorf("procutil: short status line")
)

// ClockTicks returns jiffies-per-second. Checked via CLK_TCK for tests,
// otherwise the common default of 100.
func ClockTicks() int {
	v, _ := strconv.Atoi(os.Getenv("CLK_TCK"))
	if v > 0 {
		return v
	}
	return 100
}

// ReadExeBasename resolves /proc/<pid>/exe and returns its basename. Kernel
// threads and zombies have no exe link; callers treat an error as "unknown".
func ReadExeBasename(pid int) (string, error) {
	target, err := os.Readlink(fmt.Sprintf("/proc/%d/exe", pid))
	if err != nil {
		return "", err
	}
	i := strings.LastIndexByte(target, '/')
	if i < 0 {
		return target, nil
	}
	return target[i+1:], nil
}

// ReadFdTarget resolves /proc/<pid>/fd/<fd> (the open file, socket, or
// io_uring/AIO control fd backing a syscall's first argument).
func ReadFdTarget(pid, fd int) (string, error) {
	return os.Readlink(fmt.Sprintf("/proc/%d/fd/%d", pid, fd))
}

// ReadCgroupLine reads /proc/<pid>/cgroup and returns the unified (v2)
// hierarchy path, i.e. the line beginning "0::". Used by cgroupresolver on
// first sighting of a cgroup id.
func ReadCgroupLine(pid int) (string, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/cgroup", pid))
	if err != nil {
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "0::") {
			return strings.TrimRight(strings.TrimPrefix(line, "0::"), "\n"), nil
		}
	}
	return "", sc.Err()
}

// ReadCgroupLineV1 reads /proc/<pid>/cgroup and returns the path from the
// first legacy (v1) hierarchy line, i.e. a line of the form
// "<hierarchy-id>:<controller-list>:<path>" that does not use the unified
// "0::" prefix. Used by cgroupresolver when the host was detected as
// running cgroup v1 only; on a v1/v2 hybrid mount it reads the "0::" line
// via ReadCgroupLine instead.
func ReadCgroupLineV1(pid int) (string, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/cgroup", pid))
	if err != nil {
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "0::") {
			continue
		}
		i := strings.LastIndexByte(line, ':')
		if i < 0 {
			continue
		}
		return line[i+1:], nil
	}
	return "", sc.Err()
}

// ReadEuid returns the effective uid from /proc/<pid>/status's "Uid:" line,
// for callers that want it without a separate stat syscall.
func ReadEuid(pid int) (int, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/status", pid))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "Uid:") {
			fields := strings.Fields(line)
			if len(fields) < 3 {
				return 0, ErrShortStat
			}
			euid, err := strconv.Atoi(fields[2])
			if err != nil {
				return 0, err
			}
			return euid, nil
		}
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return 0, ErrNoStat
}
