// Package filterpolicy implements the "interesting task" predicate used to
// decide whether a sample is worth emitting (spec.md §4.1 "Filter
// policy"). The BPF task sampler applies the same predicate in-kernel to
// avoid producing a sample_events record at all for uninteresting tasks;
// internal/correlator applies the identical rule a second time at the
// userspace boundary, as a backstop against a sampler revision that widens
// what the kernel side considers a candidate (or an overload path where the
// ring buffer replays a stale/duplicated record).
package filterpolicy

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tanelpoder/xcapture-go/internal/record"
)

// Params holds the runtime-tunable thresholds the predicate consults
// (spec.md §6 "Control surface": --daemon-port-threshold, --all).
type Params struct {
	DaemonPortThreshold uint32
	ShowAll             bool
}

// Snapshot captures the fields the predicate needs from a decoded sample,
// independent of the wire layout.
type Snapshot struct {
	State       uint32
	AIOInflight uint32
	URingSQ     uint32
	URingCQ     uint32
	LocalPort   uint32
	IsListen    bool
}

// extraInfo is the subset of the sample's EXTRA_INFO JSON blob (spec.md §3:
// "an auxiliary JSON blob of extension fields") the predicate consults.
type extraInfo struct {
	AIOInflight    uint32 `json:"aio_inflight"`
	URingSQPending uint32 `json:"uring_sq_pending"`
	URingCQPending uint32 `json:"uring_cq_pending"`
}

// SnapshotFromSample extracts a Snapshot from a decoded record.TaskSample:
// state bits come straight off the record, AIO/io_uring occupancy is
// decoded from the ExtraInfo JSON blob, and the local port is parsed from
// the CONNECTION field ("local_addr:port->remote_addr:port", the format
// bpf/task_sampler.bpf.c's socket classification writes). A malformed or
// absent ExtraInfo/CONNECTION simply yields zero-value occupancy/port,
// which Interesting treats as "no socket/AIO/uring signal".
func SnapshotFromSample(s record.TaskSample) Snapshot {
	var info extraInfo
	if raw := s.ExtraInfoString(); raw != "" {
		_ = json.Unmarshal([]byte(raw), &info)
	}
	return Snapshot{
		State:       s.State,
		AIOInflight: info.AIOInflight,
		URingSQ:     info.URingSQPending,
		URingCQ:     info.URingCQPending,
		LocalPort:   localPort(s.ConnectionString()),
		IsListen:    s.ConnStateString() == "LISTEN",
	}
}

// localPort pulls the port out of the local side of a "local->remote"
// connection string, or 0 if conn doesn't look like one.
func localPort(conn string) uint32 {
	local := conn
	if i := strings.Index(conn, "->"); i >= 0 {
		local = conn[:i]
	}
	i := strings.LastIndex(local, ":")
	if i < 0 {
		return 0
	}
	port, err := strconv.ParseUint(local[i+1:], 10, 32)
	if err != nil {
		return 0
	}
	return uint32(port)
}

// Interesting reports whether a task matching snap should be reported,
// mirroring bpf/task_sampler.bpf.c's is_interesting() exactly (spec.md
// §4.1): always-running tasks, anything uninterruptibly blocked, and
// interruptibly-sleeping tasks with pending AIO/io_uring work or a
// non-daemon listening-adjacent socket.
func Interesting(p Params, snap Snapshot) bool {
	base := snap.State &^ (record.FlagOnRunqueue | record.FlagMigrationReq)

	if base == record.StateRunning {
		return true
	}
	if base&record.StateNoLoad != 0 && base&record.StateDisk != 0 {
		return false
	}
	if base&record.StateDisk != 0 {
		return true
	}
	if base&record.StateSleep != 0 {
		if snap.AIOInflight > 0 {
			return true
		}
		if snap.URingSQ > 0 || snap.URingCQ > 0 {
			return true
		}
		if snap.LocalPort > 0 {
			if snap.IsListen {
				return false
			}
			return snap.LocalPort > p.DaemonPortThreshold
		}
		return p.ShowAll
	}
	return false
}
