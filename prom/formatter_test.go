package prom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_RendersHelpTypeAndSamples(t *testing.T) {
	r, err := NewRegistry("test")
	require.NoError(t, err)

	c, err := NewCounter("http_requests_total", "Total HTTP requests.", "method", "code")
	require.NoError(t, err)
	require.NoError(t, c.Inc("GET", "200"))
	require.NoError(t, c.Add(2, "GET", "200"))
	require.NoError(t, c.Inc("POST", "500"))
	require.NoError(t, r.RegisterMetric(c))

	g, err := NewGauge("queue_depth", "Current queue depth.")
	require.NoError(t, err)
	require.NoError(t, g.Set(7))
	require.NoError(t, r.RegisterMetric(g))

	h, err := NewHistogram("request_duration_seconds", "Request duration in seconds.", []float64{5, 10})
	require.NoError(t, err)
	require.NoError(t, h.Observe(3))
	require.NoError(t, h.Observe(8))
	require.NoError(t, r.RegisterMetric(h))

	out, err := r.Bridge()
	require.NoError(t, err)

	assert.Equal(t, `# HELP http_requests_total Total HTTP requests.
# TYPE http_requests_total counter
http_requests_total{method="GET",code="200"} 3
http_requests_total{method="POST",code="500"} 1

# HELP queue_depth Current queue depth.
# TYPE queue_depth gauge
queue_depth 7

# HELP request_duration_seconds Request duration in seconds.
# TYPE request_duration_seconds histogram
request_duration_seconds_bucket{le="5.0"} 1
request_duration_seconds_bucket{le="10.0"} 2
request_duration_seconds_bucket{le="+Inf"} 2
request_duration_seconds_sum 11
request_duration_seconds_count 2

`, out)
}

func TestFormat_PrefixIsAppliedToEveryLine(t *testing.T) {
	r, err := NewRegistry("test")
	require.NoError(t, err)
	require.NoError(t, r.enableFeatures(FeatureCompact, "myapp_"))

	g, err := NewGauge("up", "")
	require.NoError(t, err)
	require.NoError(t, g.Set(1))
	require.NoError(t, r.RegisterMetric(g))

	out, err := r.Bridge()
	require.NoError(t, err)
	assert.Equal(t, "myapp_up 1\n\n", out)
}

func TestFormat_EmptyRegistryRendersEmptyString(t *testing.T) {
	r, err := NewRegistry("test")
	require.NoError(t, err)
	out, err := r.Bridge()
	require.NoError(t, err)
	assert.Equal(t, "", out)
}
