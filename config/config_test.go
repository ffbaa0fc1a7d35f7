package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidate_RejectsNonPositiveInterval(t *testing.T) {
	c := Default()
	c.Interval = 0
	assert.Error(t, c.Validate())
}

func TestValidate_RejectsNegativeMaxTicks(t *testing.T) {
	c := Default()
	c.MaxTicks = -1
	assert.Error(t, c.Validate())
}

func TestValidate_RejectsNegativePid(t *testing.T) {
	c := Default()
	c.FilterTgid = -5
	assert.Error(t, c.Validate())
}

func TestValidate_RejectsEmptyOutputDir(t *testing.T) {
	c := Default()
	c.OutputDir = ""
	assert.Error(t, c.Validate())
}

func TestValidate_RejectsUnknownColumnsPreset(t *testing.T) {
	c := Default()
	c.Columns = "bogus"
	assert.Error(t, c.Validate())
}

func TestValidate_AcceptsAllColumnPresets(t *testing.T) {
	for _, preset := range []string{"narrow", "normal", "wide", "all"} {
		c := Default()
		c.Columns = preset
		assert.NoError(t, c.Validate(), preset)
	}
}

func TestDefault_IntervalIsOneSecond(t *testing.T) {
	assert.Equal(t, time.Second, Default().Interval)
}

func TestValidate_AcceptsCustomColumnList(t *testing.T) {
	c := Default()
	c.Columns = "tid,comm,state"
	assert.NoError(t, c.Validate())
}

func TestValidate_RejectsUnknownColumnInCustomList(t *testing.T) {
	c := Default()
	c.Columns = "tid,not_a_column"
	assert.Error(t, c.Validate())
}

func TestValidate_RejectsPassiveOnlyWithTracking(t *testing.T) {
	c := Default()
	c.PassiveOnly = true
	assert.Error(t, c.Validate())
}

func TestValidate_AcceptsPassiveOnlyWithoutTracking(t *testing.T) {
	c := Default()
	c.PassiveOnly = true
	c.TrackSyscalls = false
	c.TrackIORQ = false
	assert.NoError(t, c.Validate())
}

func TestValidate_RejectsUnknownAppendColumns(t *testing.T) {
	c := Default()
	c.Append = "bogus_column"
	assert.Error(t, c.Validate())
}
