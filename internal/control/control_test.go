package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanelpoder/xcapture-go/config"
)

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Interval = 0
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNew_AcceptsDefaultConfig(t *testing.T) {
	c, err := New(config.Default())
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.False(t, c.running)
}

func TestClose_IsSafeOnUnstartedController(t *testing.T) {
	c, err := New(config.Default())
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}
