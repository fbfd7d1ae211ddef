package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLimits(t *testing.T) {
	limits, err := ParseLimits("testdata/limits")
	require.NoError(t, err)

	assert.Equal(t, LimitRow{Soft: 1048576, Hard: 1048576, Unit: "files"}, limits["Max open files"])
	assert.Equal(t, LimitRow{Soft: -1, Hard: -1, Unit: "seconds"}, limits["Max cpu time"])
	assert.Equal(t, LimitRow{Soft: 8388608, Hard: -1, Unit: "bytes"}, limits["Max stack size"])
}

func TestParseLimits_MissingFile(t *testing.T) {
	_, err := ParseLimits("testdata/does-not-exist")
	assert.Error(t, err)
}

func TestMaxOpenFilesSoft(t *testing.T) {
	max, err := MaxOpenFilesSoft("testdata/limits")
	require.NoError(t, err)
	assert.Equal(t, 1048576.0, max)
}

func TestMaxOpenFilesSoft_NoSuchRow(t *testing.T) {
	_, err := MaxOpenFilesSoft("testdata/uptime")
	assert.Error(t, err)
}

func TestRLimitNoFileSoft(t *testing.T) {
	max, err := RLimitNoFileSoft()
	require.NoError(t, err)
	assert.True(t, max > 0 || max == -1)
}
