// Package stackdedup tracks which stack fingerprints have already been
// written to the stacks output file, so a stack shared by many samples is
// emitted once rather than once per sample (spec.md §4.2 "Stack hashing",
// §5 "Stack output").
//
// The kernel-side emitted_stacks LRU map (bpf/task_sampler.bpf.c) does the
// same bounded deduplication in-kernel; this package performs the
// equivalent bookkeeping on the userspace side for stack records before
// they're symbolized and written out, and HashAddrs recomputes the kernel's
// fingerprint from a stack record's addresses.
package stackdedup

import (
	"sync"
)

// Tracker remembers which stack hashes have already been emitted, bounded
// to maxEntries to mirror the kernel-side LRU map's fixed capacity.
type Tracker struct {
	mu      sync.Mutex
	seen    map[uint64]struct{}
	order   []uint64 // FIFO eviction order once the bound is hit
	maxSize int
}

// NewTracker creates a Tracker bounded to maxSize distinct hashes.
func NewTracker(maxSize int) *Tracker {
	if maxSize <= 0 {
		maxSize = 65536
	}
	return &Tracker{
		seen:    make(map[uint64]struct{}, maxSize),
		maxSize: maxSize,
	}
}

// HashAddrs computes the 64-bit fingerprint of a stack's return addresses
// with the same fold as the kernel-side hash_stack helper: FNV-1a over whole
// 64-bit addresses, with the frame count mixed in first. For the addresses
// carried by a stack record it reproduces that record's Hash.
func HashAddrs(addrs []uint64) uint64 {
	const prime = 1099511628211
	h := uint64(14695981039346656037)
	h ^= uint64(len(addrs))
	h *= prime
	for _, a := range addrs {
		h ^= a
		h *= prime
	}
	return h
}

// ShouldEmit reports whether hash has not been seen before, and records it
// as seen either way. Once the tracker holds maxSize hashes, the oldest is
// evicted to make room, matching the kernel LRU map's bounded-memory
// behavior (spec.md §9 "Design notes": dedup is best-effort, not exact,
// since the kernel map can evict independently).
func (t *Tracker) ShouldEmit(hash uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[hash]; ok {
		return false
	}

	if len(t.order) >= t.maxSize {
		oldest := t.order[0]
		t.order = t.order[1:]
		delete(t.seen, oldest)
	}

	t.seen[hash] = struct{}{}
	t.order = append(t.order, hash)
	return true
}

// Len reports how many distinct hashes are currently tracked.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}
