package prom

import (
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter_IncAndAdd(t *testing.T) {
	c, err := NewCounter("requests_total", "Total requests.", "method")
	require.NoError(t, err)

	require.NoError(t, c.Inc("GET"))
	require.NoError(t, c.Add(4, "GET"))
	require.NoError(t, c.Inc("POST"))

	s, err := c.sampleFor([]string{"GET"})
	require.NoError(t, err)
	assert.Equal(t, 5.0, s.value())
}

func TestCounter_RejectsNegativeDelta(t *testing.T) {
	c, err := NewCounter("requests_total", "Total requests.")
	require.NoError(t, err)
	err = c.Add(-1)
	require.Error(t, err)

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindInvalidInput, pe.Kind)
}

func TestCounter_LabelArityMismatch(t *testing.T) {
	c, err := NewCounter("requests_total", "Total requests.", "method")
	require.NoError(t, err)
	assert.Error(t, c.Inc())
	assert.Error(t, c.Inc("GET", "extra"))
}

func TestCounter_EmptyLabelValueRejected(t *testing.T) {
	c, err := NewCounter("requests_total", "Total requests.", "method")
	require.NoError(t, err)
	assert.Error(t, c.Inc(""))
}

func TestCounter_Reset(t *testing.T) {
	c, err := NewCounter("blkio_ticks", "Delay-accounted block I/O ticks.")
	require.NoError(t, err)
	require.NoError(t, c.Reset(42))
	s, err := c.sampleFor(nil)
	require.NoError(t, err)
	assert.Equal(t, 42.0, s.value())

	require.NoError(t, c.Reset(10))
	assert.Equal(t, 10.0, s.value())
}

func TestGauge_SetIncDecAddSub(t *testing.T) {
	g, err := NewGauge("queue_depth", "Queue depth.")
	require.NoError(t, err)

	require.NoError(t, g.Set(10))
	require.NoError(t, g.Inc())
	require.NoError(t, g.Dec())
	require.NoError(t, g.Add(5))
	require.NoError(t, g.Sub(2))

	s, err := g.sampleFor(nil)
	require.NoError(t, err)
	assert.Equal(t, 13.0, s.value())
}

func TestFamily_ZeroLabelFamilyHasEagerSample(t *testing.T) {
	g, err := NewGauge("up", "Whether the target is up.")
	require.NoError(t, err)
	assert.Len(t, g.snapshot(), 1)
}

func TestFamily_DuplicateLabelTupleReusesSample(t *testing.T) {
	c, err := NewCounter("requests_total", "Total requests.", "method")
	require.NoError(t, err)

	require.NoError(t, c.Inc("GET"))
	require.NoError(t, c.Inc("GET"))
	assert.Len(t, c.snapshot(), 1)
}

func TestFamily_PreservesLabelTupleInsertionOrder(t *testing.T) {
	c, err := NewCounter("requests_total", "Total requests.", "method")
	require.NoError(t, err)

	require.NoError(t, c.Inc("POST"))
	require.NoError(t, c.Inc("GET"))
	require.NoError(t, c.Inc("DELETE"))

	snap := c.snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, `requests_total{method="POST"}`, snap[0].lvalue)
	assert.Equal(t, `requests_total{method="GET"}`, snap[1].lvalue)
	assert.Equal(t, `requests_total{method="DELETE"}`, snap[2].lvalue)
}

// concurrent{Goroutines,PerGoroutine} mirror promtest_counter.c,
// promtest_gauge.c and promtest_histogram.c's stress pattern: 10 threads
// each hammering the same sample 1,000,000 times.
const (
	concurrentGoroutines   = 10
	concurrentPerGoroutine = 1000000
)

func TestCounter_ConcurrentIncrements(t *testing.T) {
	c, err := NewCounter("hot_path_total", "Hot path invocations.")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < concurrentGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < concurrentPerGoroutine; j++ {
				_ = c.Inc()
			}
		}()
	}
	wg.Wait()

	s, err := c.sampleFor(nil)
	require.NoError(t, err)
	assert.Equal(t, float64(concurrentGoroutines*concurrentPerGoroutine), s.value())
}

func TestGauge_ConcurrentIncrements(t *testing.T) {
	g, err := NewGauge("hot_path_depth", "Hot path concurrent depth.")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < concurrentGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < concurrentPerGoroutine; j++ {
				_ = g.Inc()
			}
		}()
	}
	wg.Wait()

	s, err := g.sampleFor(nil)
	require.NoError(t, err)
	assert.Equal(t, float64(concurrentGoroutines*concurrentPerGoroutine), s.value())
}

func TestHistogram_ConcurrentObservations(t *testing.T) {
	h, err := NewHistogram("hot_path_latency", "Hot path latency.", []float64{1})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < concurrentGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < concurrentPerGoroutine; j++ {
				_ = h.Observe(1)
			}
		}()
	}
	wg.Wait()

	hs, err := h.sampleFor(nil)
	require.NoError(t, err)

	const total = concurrentGoroutines * concurrentPerGoroutine
	assert.Equal(t, uint64(total), atomic.LoadUint64(&hs.count))
	assert.Equal(t, uint64(total), atomic.LoadUint64(&hs.bucketCounts[0]))
	assert.Equal(t, uint64(0), atomic.LoadUint64(&hs.infCount))
	assert.Equal(t, float64(total), math.Float64frombits(atomic.LoadUint64(&hs.sumBits)))
}

func TestBuildLValue_EscapesLabelValues(t *testing.T) {
	lv := buildLValue("m", []string{"k"}, []string{"a\"b\\c\nd"})
	assert.Equal(t, `m{k="a\"b\\c\nd"}`, lv)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "42", formatValue(42))
	assert.Equal(t, "nan", formatValue(math.NaN()))
	assert.Equal(t, "+Inf", formatValue(math.Inf(1)))
	assert.Equal(t, "-Inf", formatValue(math.Inf(-1)))
}
