package prom

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
)

// histogramSample is a composite of per-bucket counters, a cumulative sum
// and an observation count, all independently atomic. Bucket counts store
// exact per-bucket increments (not cumulative) and are rendered cumulative
// at format time, per the design decision in the spec.
type histogramSample struct {
	bucketCounts []uint64 // atomic, one per explicit bound
	infCount     uint64   // atomic, the implicit +Inf bucket
	sumBits      uint64   // atomic, math.Float64bits of the running sum
	count        uint64   // atomic

	bucketLValues []string // len(bounds)+1, last entry is the +Inf line
	sumLValue     string
	countLValue   string
}

func newHistogramSample(name string, labelKeys, labelValues []string, bounds []float64) *histogramSample {
	hs := &histogramSample{
		bucketCounts:  make([]uint64, len(bounds)),
		bucketLValues: make([]string, len(bounds)+1),
	}
	bucketKeys := make([]string, len(labelKeys)+1)
	copy(bucketKeys, labelKeys)
	bucketKeys[len(labelKeys)] = "le"

	bucketName := name + "_bucket"
	for i, bound := range bounds {
		bucketValues := make([]string, len(labelValues)+1)
		copy(bucketValues, labelValues)
		bucketValues[len(labelValues)] = formatBucketBound(bound)
		hs.bucketLValues[i] = buildLValue(bucketName, bucketKeys, bucketValues)
	}
	infValues := make([]string, len(labelValues)+1)
	copy(infValues, labelValues)
	infValues[len(labelValues)] = "+Inf"
	hs.bucketLValues[len(bounds)] = buildLValue(bucketName, bucketKeys, infValues)
	hs.sumLValue = buildLValue(name+"_sum", labelKeys, labelValues)
	hs.countLValue = buildLValue(name+"_count", labelKeys, labelValues)
	return hs
}

func (hs *histogramSample) observe(bounds []float64, v float64) {
	i := sort.SearchFloat64s(bounds, v)
	if i < len(bounds) {
		atomic.AddUint64(&hs.bucketCounts[i], 1)
	} else {
		atomic.AddUint64(&hs.infCount, 1)
	}

	for {
		old := atomic.LoadUint64(&hs.sumBits)
		next := math.Float64bits(math.Float64frombits(old) + v)
		if atomic.CompareAndSwapUint64(&hs.sumBits, old, next) {
			break
		}
	}
	atomic.AddUint64(&hs.count, 1)
}

// Histogram is an append-only observation sink rendered as cumulative
// buckets, a sum line and a count line.
type Histogram struct {
	name      string
	help      string
	labelKeys []string
	bounds    []float64

	mu      sync.RWMutex
	samples map[string]*histogramSample
	order   []*histogramSample
}

// NewHistogram validates name and bounds and constructs an empty histogram
// family. For zero labels it eagerly creates the single sample.
func NewHistogram(name, help string, bounds []float64, labelKeys ...string) (*Histogram, error) {
	if err := ValidateMetricName(name); err != nil {
		return nil, err
	}
	for _, k := range labelKeys {
		if err := ValidateLabelKey(k); err != nil {
			return nil, err
		}
	}
	if len(bounds) < 1 {
		return nil, errInvalidInput("histogram %q: need at least one bucket bound", name)
	}
	if err := requireAscending(bounds); err != nil {
		return nil, err
	}

	h := &Histogram{
		name:      name,
		help:      help,
		labelKeys: append([]string(nil), labelKeys...),
		bounds:    append([]float64(nil), bounds...),
		samples:   make(map[string]*histogramSample),
	}

	if len(labelKeys) == 0 {
		_, _ = h.sampleFor(nil)
	}

	return h, nil
}

func (h *Histogram) Name() string        { return h.name }
func (h *Histogram) Help() string        { return h.help }
func (h *Histogram) Type() Type          { return TypeHistogram }
func (h *Histogram) LabelKeys() []string { return h.labelKeys }
func (h *Histogram) Bounds() []float64   { return append([]float64(nil), h.bounds...) }

func (h *Histogram) sampleFor(labelValues []string) (*histogramSample, error) {
	if len(labelValues) != len(h.labelKeys) {
		return nil, errInvalidInput(
			"histogram %q expects %d label values, got %d", h.name, len(h.labelKeys), len(labelValues))
	}
	for _, v := range labelValues {
		if v == "" {
			return nil, errInvalidInput("histogram %q: empty label value", h.name)
		}
	}

	key := buildLValue(h.name, h.labelKeys, labelValues)

	h.mu.RLock()
	hs, ok := h.samples[key]
	h.mu.RUnlock()
	if ok {
		return hs, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if hs, ok = h.samples[key]; ok {
		return hs, nil
	}
	hs = newHistogramSample(h.name, h.labelKeys, labelValues, h.bounds)
	h.samples[key] = hs
	h.order = append(h.order, hs)
	return hs, nil
}

// Observe finds the lowest bound >= v and atomically increments its bucket
// (or the implicit +Inf bucket), adds v to the running sum and increments
// the observation count.
func (h *Histogram) Observe(v float64, labelValues ...string) error {
	hs, err := h.sampleFor(labelValues)
	if err != nil {
		return err
	}
	hs.observe(h.bounds, v)
	return nil
}

func (h *Histogram) snapshot() []*histogramSample {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*histogramSample, len(h.order))
	copy(out, h.order)
	return out
}

func (h *Histogram) writeTo(b *renderBuffer, prefix string, compact bool) {
	if !compact {
		b.help(prefix, h.name, h.help)
		b.typeLine(prefix, h.name, TypeHistogram)
	}
	for _, hs := range h.snapshot() {
		var cumulative uint64
		for i, lvalue := range hs.bucketLValues {
			if i < len(hs.bucketCounts) {
				cumulative += atomic.LoadUint64(&hs.bucketCounts[i])
			} else {
				cumulative += atomic.LoadUint64(&hs.infCount)
			}
			b.sampleLine(prefix, lvalue, float64(cumulative))
		}
		sum := math.Float64frombits(atomic.LoadUint64(&hs.sumBits))
		b.sampleLine(prefix, hs.sumLValue, sum)
		b.sampleLine(prefix, hs.countLValue, float64(atomic.LoadUint64(&hs.count)))
	}
	b.blank()
}
