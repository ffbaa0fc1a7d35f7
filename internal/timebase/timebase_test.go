package timebase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestBase_ToWallClock_RoundTrips(t *testing.T) {
	b, err := New()
	require.NoError(t, err)

	var ts unix.Timespec
	require.NoError(t, unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts))

	got := b.ToWallClock(uint64(ts.Nano()))
	assert.WithinDuration(t, time.Now(), got, 2*time.Second)
}

func TestBase_Refresh_UpdatesSnapshot(t *testing.T) {
	b, err := New()
	require.NoError(t, err)
	first := b.wallAtSnapshot

	time.Sleep(time.Millisecond)
	require.NoError(t, b.Refresh())
	assert.True(t, b.wallAtSnapshot.After(first) || b.wallAtSnapshot.Equal(first))
}
