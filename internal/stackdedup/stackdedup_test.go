package stackdedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_ShouldEmit_FirstSightingOnly(t *testing.T) {
	tr := NewTracker(16)
	assert.True(t, tr.ShouldEmit(0xdeadbeef))
	assert.False(t, tr.ShouldEmit(0xdeadbeef))
	assert.Equal(t, 1, tr.Len())
}

func TestTracker_ShouldEmit_EvictsOldestWhenFull(t *testing.T) {
	tr := NewTracker(2)
	assert.True(t, tr.ShouldEmit(1))
	assert.True(t, tr.ShouldEmit(2))
	assert.True(t, tr.ShouldEmit(3)) // evicts hash 1
	assert.Equal(t, 2, tr.Len())
	assert.True(t, tr.ShouldEmit(1)) // 1 was evicted, counts as new again
}

func TestHashAddrs_DeterministicAndSensitiveToOrder(t *testing.T) {
	a := HashAddrs([]uint64{0x1000, 0x2000, 0x3000})
	b := HashAddrs([]uint64{0x1000, 0x2000, 0x3000})
	c := HashAddrs([]uint64{0x3000, 0x2000, 0x1000})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestHashAddrs_Empty(t *testing.T) {
	assert.NotPanics(t, func() { HashAddrs(nil) })
}
