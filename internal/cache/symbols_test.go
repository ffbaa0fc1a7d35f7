package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSscanKallsymsLine(t *testing.T) {
	var addr uint64
	var kind, name string
	n, err := sscanKallsymsLine("ffffffff81000000 T startup_64", &addr, &kind, &name)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, uint64(0xffffffff81000000), addr)
	assert.Equal(t, "T", kind)
	assert.Equal(t, "startup_64", name)
}

func TestSscanKallsymsLine_Short(t *testing.T) {
	var addr uint64
	var kind, name string
	_, err := sscanKallsymsLine("ffffffff81000000 T", &addr, &kind, &name)
	assert.Error(t, err)
}

func TestKernelSymbols_ResolveWithoutKallsymsAccessIsSafe(t *testing.T) {
	k := NewKernelSymbols()
	_, _, ok := k.Resolve(0x1234)
	// On most CI/container environments /proc/kallsyms is either
	// unreadable (permission) or all-zero addresses; either way Resolve
	// must not panic, and either outcome (ok true or false) is valid.
	_ = ok
}
