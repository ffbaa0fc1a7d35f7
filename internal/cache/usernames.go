// Package cache holds the small lookups internal/correlator needs on the
// hot path: uid-to-username resolution, memoized on first sighting in the
// same shape as internal/cgroupresolver (/etc/passwd instead of
// /proc/<pid>/cgroup), and kernel symbol resolution from /proc/kallsyms,
// loaded once on first use.
package cache

import (
	"os/user"
	"strconv"
	"sync"
)

// Usernames memoizes uid -> username lookups (spec.md §4.2 "User
// identification": the EUID column is resolved to a name for display).
type Usernames struct {
	mu    sync.Mutex
	names map[uint32]string
}

// NewUsernames creates an empty username cache.
func NewUsernames() *Usernames {
	return &Usernames{names: make(map[uint32]string)}
}

// Lookup returns the username for uid, falling back to the numeric uid
// (as a string) if the system has no matching passwd entry — a deleted
// user or a uid from a different namespace are both common in practice.
func (u *Usernames) Lookup(uid uint32) string {
	u.mu.Lock()
	if name, ok := u.names[uid]; ok {
		u.mu.Unlock()
		return name
	}
	u.mu.Unlock()

	name := strconv.FormatUint(uint64(uid), 10)
	if usr, err := user.LookupId(name); err == nil {
		name = usr.Username
	}

	u.mu.Lock()
	u.names[uid] = name
	u.mu.Unlock()
	return name
}

// Len reports how many distinct uids have been resolved so far.
func (u *Usernames) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.names)
}
