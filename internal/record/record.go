// Package record defines the fixed-layout wire records the three BPF
// programs (bpf/task_sampler.bpf.c, bpf/sc_tracker.bpf.c,
// bpf/iorq_tracker.bpf.c) push into their ring buffers, and the decoders
// that turn a cilium/ebpf ringbuf.Record's raw bytes back into Go values.
//
// Every record is a fixed-size, pointer-free C struct (matching the layout
// in bpf/common.bpf.h) so it can be read with a single encoding/binary.Read
// — the same idiom every cilium/ebpf ringbuf consumer uses, rather than a
// variable-length or self-describing wire format.
package record

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Fixed-size field widths shared with bpf/common.bpf.h. Keep these in sync
// with the C struct definitions; a mismatch only shows up at runtime as
// garbled decodes (there's no automatic tag linking the two sides).
const (
	CommLen       = 16
	FilenameLen   = 128
	ConnectionLen = 64
	ConnStateLen  = 12
	ExtraInfoLen  = 256
	StackDepth    = 64
)

// State bit values, matching TASK_RUNNING et al. and the sampler's own
// on-runqueue/migration-pending flags (spec.md §4.2 "State labeling").
const (
	StateRunning     uint32 = 0x0000
	StateSleep       uint32 = 0x0001 // TASK_INTERRUPTIBLE
	StateDisk        uint32 = 0x0002 // TASK_UNINTERRUPTIBLE
	StateStopped     uint32 = 0x0004
	StateTraceStop   uint32 = 0x0008
	StateDead        uint32 = 0x0010
	StateWaking      uint32 = 0x0200
	StateParked      uint32 = 0x0040
	StateNoLoad      uint32 = 0x0400
	StateNew         uint32 = 0x0800
	FlagOnRunqueue   uint32 = 1 << 30
	FlagMigrationReq uint32 = 1 << 31
)

// TaskSample mirrors struct task_sample_event in bpf/common.bpf.h. One is
// emitted per selected task per tick (spec.md §3 "Sample record").
type TaskSample struct {
	SampleStartKtime  uint64
	SampleActualKtime uint64
	SyscallEnterKtime uint64
	NsInSyscallSoFar  uint64
	SyscSeqNum        uint64
	IorqSeqNum        uint64
	CgroupID          uint64
	KstackHash        uint64
	UstackHash        uint64

	Args [6]uint64

	Tid          uint32
	Tgid         uint32
	PidNs        uint32
	Euid         uint32
	State        uint32 // state bits | FlagOnRunqueue | FlagMigrationReq
	SyscNr       int32  // -1 if not in a syscall
	SyscActiveNr int32  // may differ from SyscNr; see spec.md §3

	Comm       [CommLen]byte
	Exe        [FilenameLen]byte
	Filename   [FilenameLen]byte
	Connection [ConnectionLen]byte
	ConnState  [ConnStateLen]byte
	ExtraInfo  [ExtraInfoLen]byte
}

// SyscallCompletion mirrors struct sc_completion_event. Emitted from
// bpf/sc_tracker.bpf.c's exit hook only when the matching entry was marked
// sampled (spec.md §4.3, §3 "Syscall-completion record").
type SyscallCompletion struct {
	EnterKtime uint64
	DurationNs uint64
	SyscSeqNum uint64
	RetVal     int64
	Tid        uint32
	Tgid       uint32
	SyscNr     int32
	_          int32 // alignment padding, matches the C struct
}

// IORequestCompletion mirrors struct iorq_completion_event. Emitted from
// bpf/iorq_tracker.bpf.c's complete hook (spec.md §4.4, §3 "Block-I/O
// completion record").
type IORequestCompletion struct {
	InsertKtime   uint64
	IssueKtime    uint64
	CompleteKtime uint64
	Sector        uint64
	IorqSeqNum    uint64

	InsertTid    uint32
	InsertTgid   uint32
	IssueTid     uint32
	IssueTgid    uint32
	CompleteTid  uint32
	CompleteTgid uint32

	DevMajor uint32
	DevMinor uint32
	Bytes    uint32
	Flags    uint32
	Error    int32
	_        int32

	FlagsStr [32]byte
}

// StackTrace mirrors struct stack_event. IsKernel distinguishes the kernel
// and user stack files (spec.md §3 "Stack record").
type StackTrace struct {
	Hash     uint64
	Tid      uint32
	Tgid     uint32
	IsKernel uint32
	Depth    uint32
	Addrs    [StackDepth]uint64
}

// DecodeTaskSample decodes one ring-buffer record into a TaskSample.
func DecodeTaskSample(raw []byte) (TaskSample, error) {
	var ev TaskSample
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &ev); err != nil {
		return TaskSample{}, fmt.Errorf("record: decode task sample: %w", err)
	}
	return ev, nil
}

// DecodeSyscallCompletion decodes one ring-buffer record into a SyscallCompletion.
func DecodeSyscallCompletion(raw []byte) (SyscallCompletion, error) {
	var ev SyscallCompletion
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &ev); err != nil {
		return SyscallCompletion{}, fmt.Errorf("record: decode syscall completion: %w", err)
	}
	return ev, nil
}

// DecodeIORequestCompletion decodes one ring-buffer record into an IORequestCompletion.
func DecodeIORequestCompletion(raw []byte) (IORequestCompletion, error) {
	var ev IORequestCompletion
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &ev); err != nil {
		return IORequestCompletion{}, fmt.Errorf("record: decode io completion: %w", err)
	}
	return ev, nil
}

// DecodeStackTrace decodes one ring-buffer record into a StackTrace.
func DecodeStackTrace(raw []byte) (StackTrace, error) {
	var ev StackTrace
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &ev); err != nil {
		return StackTrace{}, fmt.Errorf("record: decode stack trace: %w", err)
	}
	return ev, nil
}

// cString trims a fixed-size, NUL-padded byte array down to its string
// content — the standard way to read a BPF-populated char[] field.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

func (t TaskSample) CommString() string       { return cString(t.Comm[:]) }
func (t TaskSample) ExeString() string        { return cString(t.Exe[:]) }
func (t TaskSample) FilenameString() string   { return cString(t.Filename[:]) }
func (t TaskSample) ConnectionString() string { return cString(t.Connection[:]) }
func (t TaskSample) ConnStateString() string  { return cString(t.ConnState[:]) }
func (t TaskSample) ExtraInfoString() string  { return cString(t.ExtraInfo[:]) }

func (i IORequestCompletion) FlagsString() string { return cString(i.FlagsStr[:]) }

// StateLetters renders the state bits to the short mnemonic used in the
// STATE column (spec.md §4.2 "State labeling"): RUN, SLEEP, DISK, STOPPED,
// WAKING, NOLOAD, IDLE, NEW, with Q/M suffixes. This is the only place
// these strings are produced, per spec.
func (t TaskSample) StateLetters() string {
	base := t.State &^ (FlagOnRunqueue | FlagMigrationReq)
	var s string
	switch {
	case base == StateRunning:
		s = "RUN"
	case base&StateNoLoad != 0 && base&StateDisk != 0:
		s = "IDLE"
	case base&StateNoLoad != 0:
		s = "NOLOAD"
	case base&StateDisk != 0:
		s = "DISK"
	case base&StateSleep != 0:
		s = "SLEEP"
	case base&StateStopped != 0:
		s = "STOPPED"
	case base&StateWaking != 0:
		s = "WAKING"
	case base&StateNew != 0:
		s = "NEW"
	default:
		s = "SLEEP"
	}
	if t.State&FlagOnRunqueue != 0 {
		s += "Q"
	}
	if t.State&FlagMigrationReq != 0 {
		s += "M"
	}
	return s
}
