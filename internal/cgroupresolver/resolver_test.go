//go:build linux

package cgroupresolver

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolver_ResolveAndCache(t *testing.T) {
	r := New()
	pid := os.Getpid()

	// A fake cgroup id for self; real ids come from the BPF sampler, but
	// the resolver doesn't care what the id means, only that it's stable.
	const fakeID = uint64(12345)

	path, ok := r.Resolve(fakeID, pid)
	if !ok {
		t.Skip("no cgroup info available for self in this environment")
	}
	assert.NotEmpty(t, path)
	assert.Equal(t, 1, r.Len())

	// Second resolve for the same id must hit the cache (pid=0 would fail
	// the /proc read if it weren't cached).
	path2, ok2 := r.Resolve(fakeID, 0)
	assert.True(t, ok2)
	assert.Equal(t, path, path2)
}

func TestResolver_ZeroIDNeverResolves(t *testing.T) {
	r := New()
	_, ok := r.Resolve(0, os.Getpid())
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestResolver_UnreadablePidLeavesUnresolved(t *testing.T) {
	r := New()
	_, ok := r.Resolve(999, 1<<30)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}
