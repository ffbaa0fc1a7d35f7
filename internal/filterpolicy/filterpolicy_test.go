package filterpolicy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tanelpoder/xcapture-go/internal/record"
)

func TestInteresting_Running(t *testing.T) {
	assert.True(t, Interesting(Params{}, Snapshot{State: record.StateRunning}))
}

func TestInteresting_UninterruptibleAlwaysIn(t *testing.T) {
	assert.True(t, Interesting(Params{}, Snapshot{State: record.StateDisk}))
}

func TestInteresting_IdleKthreadExcluded(t *testing.T) {
	assert.False(t, Interesting(Params{}, Snapshot{State: record.StateDisk | record.StateNoLoad}))
}

func TestInteresting_SleepingWithAIOIn(t *testing.T) {
	assert.True(t, Interesting(Params{}, Snapshot{State: record.StateSleep, AIOInflight: 1}))
}

func TestInteresting_SleepingWithURingIn(t *testing.T) {
	assert.True(t, Interesting(Params{}, Snapshot{State: record.StateSleep, URingCQ: 1}))
}

func TestInteresting_SleepingListeningSocketExcluded(t *testing.T) {
	snap := Snapshot{State: record.StateSleep, LocalPort: 8080, IsListen: true}
	assert.False(t, Interesting(Params{DaemonPortThreshold: 1024}, snap))
}

func TestInteresting_SleepingHighPortSocketIn(t *testing.T) {
	snap := Snapshot{State: record.StateSleep, LocalPort: 54321}
	assert.True(t, Interesting(Params{DaemonPortThreshold: 10000}, snap))
}

func TestInteresting_SleepingLowPortSocketOut(t *testing.T) {
	snap := Snapshot{State: record.StateSleep, LocalPort: 22}
	assert.False(t, Interesting(Params{DaemonPortThreshold: 10000}, snap))
}

func TestInteresting_PlainSleepNeedsShowAll(t *testing.T) {
	snap := Snapshot{State: record.StateSleep}
	assert.False(t, Interesting(Params{}, snap))
	assert.True(t, Interesting(Params{ShowAll: true}, snap))
}

func TestInteresting_StoppedExcluded(t *testing.T) {
	assert.False(t, Interesting(Params{}, Snapshot{State: record.StateStopped}))
}
