package prom

import (
	"regexp"
	"sync"
)

var labelKeyRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidateLabelKey is the testable seam named in the spec's label key
// validator: it is exercised on every family construction and is exported
// so callers can pre-validate dynamic label sets before building a family.
func ValidateLabelKey(key string) error {
	if !labelKeyRe.MatchString(key) {
		return errInvalidInput("label key %q does not match %s", key, labelKeyRe.String())
	}
	return nil
}

// floatFamily is the shared implementation behind Counter and Gauge: both
// are a named, typed collection of atomically-updatable float64 samples
// keyed by label-value tuple.
type floatFamily struct {
	name      string
	help      string
	typ       Type
	labelKeys []string

	mu      sync.RWMutex
	samples map[string]*sample
	order   []*sample
}

func newFloatFamily(typ Type, name, help string, labelKeys []string) (*floatFamily, error) {
	if err := ValidateMetricName(name); err != nil {
		return nil, err
	}
	for _, k := range labelKeys {
		if err := ValidateLabelKey(k); err != nil {
			return nil, err
		}
	}

	f := &floatFamily{
		name:      name,
		help:      help,
		typ:       typ,
		labelKeys: append([]string(nil), labelKeys...),
		samples:   make(map[string]*sample),
	}

	if len(labelKeys) == 0 {
		// eagerly create the single zero-label sample
		_, _ = f.sampleFor(nil)
	}

	return f, nil
}

func (f *floatFamily) Name() string        { return f.name }
func (f *floatFamily) Help() string        { return f.help }
func (f *floatFamily) Type() Type          { return f.typ }
func (f *floatFamily) LabelKeys() []string { return f.labelKeys }

// sampleFor looks up the sample for labelValues, creating it atomically on
// first miss. The fast path (existing tuple) only takes the read lock.
func (f *floatFamily) sampleFor(labelValues []string) (*sample, error) {
	if len(labelValues) != len(f.labelKeys) {
		return nil, errInvalidInput(
			"family %q expects %d label values, got %d", f.name, len(f.labelKeys), len(labelValues))
	}
	for _, v := range labelValues {
		if v == "" {
			return nil, errInvalidInput("family %q: empty label value", f.name)
		}
	}

	lvalue := buildLValue(f.name, f.labelKeys, labelValues)

	f.mu.RLock()
	s, ok := f.samples[lvalue]
	f.mu.RUnlock()
	if ok {
		return s, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok = f.samples[lvalue]; ok {
		return s, nil
	}
	s = newSample(lvalue, 0)
	f.samples[lvalue] = s
	f.order = append(f.order, s)
	return s, nil
}

// snapshot returns a fresh copy of the samples slice, in insertion order.
func (f *floatFamily) snapshot() []*sample {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*sample, len(f.order))
	copy(out, f.order)
	return out
}

func (f *floatFamily) writeTo(b *renderBuffer, prefix string, compact bool) {
	if !compact {
		b.help(prefix, f.name, f.help)
		b.typeLine(prefix, f.name, f.typ)
	}
	for _, s := range f.snapshot() {
		b.sampleLine(prefix, s.lvalue, s.value())
	}
	b.blank()
}

// Counter is a monotonically non-decreasing metric family.
type Counter struct{ *floatFamily }

// NewCounter validates name and constructs an empty counter family.
func NewCounter(name, help string, labelKeys ...string) (*Counter, error) {
	f, err := newFloatFamily(TypeCounter, name, help, labelKeys)
	if err != nil {
		return nil, err
	}
	return &Counter{f}, nil
}

// Inc increments the sample for labelValues by 1.
func (c *Counter) Inc(labelValues ...string) error {
	return c.Add(1, labelValues...)
}

// Add adds a non-negative delta to the sample for labelValues.
func (c *Counter) Add(delta float64, labelValues ...string) error {
	if delta < 0 {
		return errInvalidInput("counter %q: negative delta %v", c.name, delta)
	}
	s, err := c.sampleFor(labelValues)
	if err != nil {
		return err
	}
	s.add(delta)
	return nil
}

// Reset sets the sample for labelValues to v directly, bypassing the
// monotonicity contract. It exists only for the process collector, whose
// "counters" are periodic snapshots of an external monotone kernel
// counter, not accumulated in-process; see DESIGN.md.
func (c *Counter) Reset(v float64, labelValues ...string) error {
	if v < 0 {
		return errInvalidInput("counter %q: negative reset value %v", c.name, v)
	}
	s, err := c.sampleFor(labelValues)
	if err != nil {
		return err
	}
	s.set(v)
	return nil
}

// Gauge is a freely mutable metric family.
type Gauge struct{ *floatFamily }

// NewGauge validates name and constructs an empty gauge family.
func NewGauge(name, help string, labelKeys ...string) (*Gauge, error) {
	f, err := newFloatFamily(TypeGauge, name, help, labelKeys)
	if err != nil {
		return nil, err
	}
	return &Gauge{f}, nil
}

func (g *Gauge) Set(v float64, labelValues ...string) error {
	s, err := g.sampleFor(labelValues)
	if err != nil {
		return err
	}
	s.set(v)
	return nil
}

func (g *Gauge) Inc(labelValues ...string) error { return g.Add(1, labelValues...) }
func (g *Gauge) Dec(labelValues ...string) error { return g.Sub(1, labelValues...) }

func (g *Gauge) Add(delta float64, labelValues ...string) error {
	s, err := g.sampleFor(labelValues)
	if err != nil {
		return err
	}
	s.add(delta)
	return nil
}

func (g *Gauge) Sub(delta float64, labelValues ...string) error {
	return g.Add(-delta, labelValues...)
}
