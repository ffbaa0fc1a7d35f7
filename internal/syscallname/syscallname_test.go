package syscallname

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestName_KnownSyscalls(t *testing.T) {
	assert.Equal(t, "read", Name(unix.SYS_READ))
	assert.Equal(t, "io_uring_enter", Name(unix.SYS_IO_URING_ENTER))
}

func TestName_NotInSyscall(t *testing.T) {
	assert.Equal(t, "-", Name(-1))
}

func TestName_UnknownFallsBackToNumeric(t *testing.T) {
	assert.Equal(t, "sys_999999", Name(999999))
}

func TestHasFDFirstArg(t *testing.T) {
	assert.True(t, HasFDFirstArg(unix.SYS_READ))
	assert.True(t, HasFDFirstArg(unix.SYS_ACCEPT4))
	assert.False(t, HasFDFirstArg(unix.SYS_NANOSLEEP))
	assert.False(t, HasFDFirstArg(-1))
}
