package process

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remerge/go-prom/prom"
)

func newTestCollector(t *testing.T) (*prom.Registry, *Collector) {
	t.Helper()

	r, err := prom.NewRegistry("test")
	require.NoError(t, err)

	c, err := newWithPaths("testdata/limits", "testdata/stat", "testdata", "testdata/uptime")
	require.NoError(t, err)
	require.NoError(t, r.RegisterCollector(c.Collector))

	return r, c
}

func TestCollector_Bridge(t *testing.T) {
	r, _ := newTestCollector(t)

	out, err := r.Bridge()
	require.NoError(t, err)

	assert.Contains(t, out, "process_max_fds 1048576\n")
	assert.Contains(t, out, "process_minor_pagefaults_total 100\n")
	assert.Contains(t, out, "process_minor_pagefaults_children_total 10\n")
	assert.Contains(t, out, "process_major_pagefaults_total 5\n")
	assert.Contains(t, out, "process_major_pagefaults_children_total 1\n")
	assert.Contains(t, out, "process_cpu_seconds_user_total 2.5\n")
	assert.Contains(t, out, "process_cpu_seconds_system_total 1.5\n")
	assert.Contains(t, out, "process_cpu_seconds_total 4\n")
	assert.Contains(t, out, "process_num_threads 8\n")
	assert.Contains(t, out, "process_virtual_memory_bytes 123456789\n")
	assert.Contains(t, out, "process_delayacct_blkio_ticks 42\n")
}

// TestCollector_OpenFds counts testdata's own entries, since fdDirPath is
// pointed at it instead of the real /proc/self/fd.
func TestCollector_OpenFds(t *testing.T) {
	r, _ := newTestCollector(t)

	out, err := r.Bridge()
	require.NoError(t, err)
	assert.Contains(t, out, "process_open_fds 4\n")
}

func TestCollector_StartTimeSecondsIsMemoized(t *testing.T) {
	_, c := newTestCollector(t)

	now := float64(time.Now().Unix())
	first, err := c.startTimeSeconds(98765)
	require.NoError(t, err)

	want := now - 543210.50 + 987.65
	assert.InDelta(t, want, first, 2)

	second, err := c.startTimeSeconds(98765)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCollector_ScrapeSurvivesMissingStat(t *testing.T) {
	c, err := newWithPaths("testdata/limits", "testdata/does-not-exist", "testdata", "testdata/uptime")
	require.NoError(t, err)

	// collect absorbs the stat-read failure rather than panicking or
	// propagating it to the caller; process_max_fds still comes through.
	metrics := c.collect()
	assert.NotEmpty(t, metrics)
}
