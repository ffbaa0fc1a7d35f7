//go:build linux

package procutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadExeBasename_Self(t *testing.T) {
	exe, err := ReadExeBasename(os.Getpid())
	require.NoError(t, err)
	assert.NotEmpty(t, exe)
}

func TestReadFdTarget_Stdin(t *testing.T) {
	target, err := ReadFdTarget(os.Getpid(), 0)
	require.NoError(t, err)
	assert.NotEmpty(t, target)
}

func TestReadEuid_Self(t *testing.T) {
	euid, err := ReadEuid(os.Getpid())
	require.NoError(t, err)
	assert.Equal(t, os.Geteuid(), euid)
}

func TestClockTicks_EnvOverride(t *testing.T) {
	t.Setenv("CLK_TCK", "250")
	assert.Equal(t, 250, ClockTicks())
}

func TestClockTicks_Default(t *testing.T) {
	t.Setenv("CLK_TCK", "")
	assert.Equal(t, 100, ClockTicks())
}
