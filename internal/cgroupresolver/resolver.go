//go:build linux

package cgroupresolver

import (
	"sync"

	"github.com/tanelpoder/xcapture-go/internal/procutil"
)

// Resolver memoizes cgroup id -> path lookups. It is owned by the
// userspace process and accessed from a single goroutine (the correlator's
// main loop), so no internal locking would strictly be required; a mutex is
// kept anyway because Resolve and Len are also called directly from tests
// (spec.md §9 "Global mutable state": prefer an explicit context
// value, but a process-wide cache is exactly what the teacher's cgroup
// package already is).
//
// The hierarchy version is detected once at construction (Detect, adapted
// from the teacher's pkg/system/cgroup) and picks which /proc/<pid>/cgroup
// line format Resolve parses: the legacy "<id>:<controllers>:<path>" line on
// a v1-only host, and the unified "0::" line otherwise (v2, hybrid, or
// undetected), whose path is the one the kernel's default-hierarchy cgroup
// id refers to.
type Resolver struct {
	mu      sync.Mutex
	paths   map[uint64]string
	version Version
}

// New returns an empty resolver, detecting the host's cgroup hierarchy mode
// up front. Detection failure (e.g. /proc/self/mountinfo unreadable) falls
// back to Unsupported, which Resolve treats the same as V2.
func New() *Resolver {
	version, _, err := Detect()
	if err != nil {
		version = Unsupported
	}
	return &Resolver{paths: make(map[uint64]string), version: version}
}

// Version reports the cgroup hierarchy mode detected at construction, used
// for startup logging.
func (r *Resolver) Version() Version { return r.version }

// Resolve returns the path for cgroupID, resolving it from /proc/<pid>/cgroup
// on first sighting and caching the result. pid is any task currently known
// to carry cgroupID (the sampler passes the tid of the sample that surfaced
// it). If /proc/<pid>/cgroup can't be read (the task is already gone), the
// id is left unresolved so a later sighting with a live pid can retry, per
// spec.md §4.5 and §7 ("a transient read of /proc/<pid>/cgroup fails: leave
// unresolved, retry next sighting").
func (r *Resolver) Resolve(cgroupID uint64, pid int) (path string, ok bool) {
	if cgroupID == 0 {
		return "", false
	}

	r.mu.Lock()
	if p, found := r.paths[cgroupID]; found {
		r.mu.Unlock()
		return p, true
	}
	r.mu.Unlock()

	read := procutil.ReadCgroupLine
	if r.version == V1 {
		read = procutil.ReadCgroupLineV1
	}
	p, err := read(pid)
	if err != nil || p == "" {
		return "", false
	}

	r.mu.Lock()
	r.paths[cgroupID] = p
	r.mu.Unlock()
	return p, true
}

// Len reports the number of memoized entries, used by verbose logging.
func (r *Resolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}
