// Package timebase correlates the CLOCK_MONOTONIC nanosecond timestamps
// BPF programs stamp onto every record (bpf_ktime_get_ns) with wall-clock
// time, so CSV rows can show a human timestamp instead of a raw kernel
// tick count (spec.md §4.6 "Time correlation").
package timebase

import (
	"time"

	"golang.org/x/sys/unix"
)

// Base is a single monotonic/wall-clock correlation point. BPF ktimes are
// always CLOCK_MONOTONIC; Go's time.Now() is wall-clock, so one snapshot
// taken at startup — refreshed once per tick by internal/correlator to bound
// clock drift — is enough to convert any later ktime into a time.Time.
type Base struct {
	wallAtSnapshot time.Time
	monoAtSnapshot int64 // ns, CLOCK_MONOTONIC
}

// New captures a fresh correlation point.
func New() (Base, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return Base{}, err
	}
	return Base{
		wallAtSnapshot: time.Now(),
		monoAtSnapshot: ts.Nano(),
	}, nil
}

// ToWallClock converts a CLOCK_MONOTONIC ktime (as stamped by
// bpf_ktime_get_ns in the kernel programs) into wall-clock time.
func (b Base) ToWallClock(ktimeNs uint64) time.Time {
	delta := int64(ktimeNs) - b.monoAtSnapshot
	return b.wallAtSnapshot.Add(time.Duration(delta))
}

// Refresh re-takes the correlation point, bounding long-run clock drift
// between CLOCK_MONOTONIC and wall-clock adjustments (e.g. NTP slew).
func (b *Base) Refresh() error {
	fresh, err := New()
	if err != nil {
		return err
	}
	*b = fresh
	return nil
}
