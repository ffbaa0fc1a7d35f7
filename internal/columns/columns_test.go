package columns

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tanelpoder/xcapture-go/internal/record"
)

func sampleRow() Row {
	var s record.TaskSample
	s.Tid = 42
	s.Tgid = 42
	s.SyscNr = -1
	copy(s.Comm[:], "bash")
	return Row{Sample: s, When: time.Unix(0, 0).UTC(), Username: "root"}
}

func TestByName_KnownPresets(t *testing.T) {
	assert.NotEmpty(t, ByName("narrow"))
	assert.NotEmpty(t, ByName("normal"))
	assert.NotEmpty(t, ByName("wide"))
	assert.Len(t, ByName("all"), len(All()))
}

func TestByName_UnknownFallsBackToNormal(t *testing.T) {
	assert.Equal(t, ByName("normal"), ByName("nonsense"))
}

func TestColumn_FormatRendersRow(t *testing.T) {
	c, ok := Lookup("tid")
	assert.True(t, ok)
	assert.Equal(t, "42", c.Format(sampleRow()))
}

func TestColumn_SyscallDashWhenNotInSyscall(t *testing.T) {
	c, ok := Lookup("syscall")
	assert.True(t, ok)
	assert.Equal(t, "-", c.Format(sampleRow()))
}

func TestLookup_UnknownColumn(t *testing.T) {
	_, ok := Lookup("does_not_exist")
	assert.False(t, ok)
}

func TestByName_CustomListIsCaseInsensitive(t *testing.T) {
	got := ByName("TID,Comm")
	assert.Len(t, got, 2)
	assert.Equal(t, "tid", got[0].Name)
	assert.Equal(t, "comm", got[1].Name)
}

func TestWithAppend_AddsNewColumnsOnly(t *testing.T) {
	got := WithAppend("narrow", "comm,exe")
	names := make([]string, len(got))
	for i, c := range got {
		names[i] = c.Name
	}
	assert.Contains(t, names, "exe")
	// comm is already in narrow; WithAppend must not duplicate it.
	count := 0
	for _, n := range names {
		if n == "comm" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestWithAppend_EmptyAppendIsANoop(t *testing.T) {
	assert.Equal(t, ByName("wide"), WithAppend("wide", ""))
}

func TestHeaders_MatchesColumnOrder(t *testing.T) {
	cols := Narrow
	headers := Headers(cols)
	for i, c := range cols {
		assert.Equal(t, c.Header, headers[i])
	}
}

func TestAll_MatchesSampleCSVHeaderOrder(t *testing.T) {
	all := All()
	assert.Equal(t, "timestamp", all[0].Name)
	assert.Equal(t, "ustack_hash", all[len(all)-1].Name)
}
