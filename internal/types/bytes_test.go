package types

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytes_Humanized_Boundaries(t *testing.T) {
	cases := []struct {
		in   Bytes
		want string
	}{
		{Bytes(0), "0 B"},
		{Bytes(1), "1 B"},
		{Bytes(1023), "1023 B"},
		{Bytes(1024), "1.00 KB"},
		{Bytes(1024 * 1024), "1.00 MB"},
		{Bytes(1024 * 1024 * 1024), "1.00 GB"},
		{Bytes(1 << 40), "1.00 TB"},
	}
	for i, tc := range cases {
		t.Run(fmt.Sprintf("case_%d_%d", i, uint64(tc.in)), func(t *testing.T) {
			got := tc.in.Humanized()
			require.Equal(t, tc.want, got)
		})
	}
}

func TestBytes_UnitAccessors(t *testing.T) {
	assert.InDelta(t, 1.0, Bytes(1024).KB(), 1e-12)
	assert.InDelta(t, 1.0, Bytes(1<<20).MB(), 1e-12)
	assert.InDelta(t, 1.0, Bytes(1<<30).GB(), 1e-12)
	assert.InDelta(t, 1.5, Bytes(1536).KB(), 1e-12)
}
