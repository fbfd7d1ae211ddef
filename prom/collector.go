package prom

import (
	"runtime"
	"sync"
)

// Collector is a named group of metric families with a pluggable collect
// callback, invoked on every scrape, that returns the (possibly refreshed)
// ordered set of families to render.
type Collector struct {
	name string

	mu       sync.RWMutex
	metrics  map[string]Metric
	order    []string
	collectFn func() []Metric

	// data is opaque per-collector storage set through SetData; the
	// collectors in this module (including the process collector, which
	// keeps its state in its own fields) do not use it.
	data interface{}
}

// NewCollector constructs an empty collector. name must not be one of the
// reserved names ("default", "process"); those are created exclusively by
// NewRegistry and process.New.
func NewCollector(name string) (*Collector, error) {
	if isReservedCollectorName(name) {
		return nil, errInvalidName("collector name %q is reserved", name)
	}
	return newCollector(name), nil
}

// newCollector bypasses the reserved-name check for internal constructors
// (the registry's default collector, the process collector).
func newCollector(name string) *Collector {
	return &Collector{
		name:    name,
		metrics: make(map[string]Metric),
	}
}

// NewProcessCollector constructs the reserved "process" collector. It is
// exported solely for prom/process, the only caller allowed to use the
// reserved name; everyone else goes through NewCollector.
func NewProcessCollector() *Collector {
	return newCollector(ProcessCollectorName)
}

func (c *Collector) Name() string { return c.name }

// AddMetric registers a family under the collector. DUPLICATE if a family
// with the same name is already present.
func (c *Collector) AddMetric(m Metric) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, found := c.metrics[m.Name()]; found {
		return errDuplicate("collector %q already has a metric named %q", c.name, m.Name())
	}
	c.metrics[m.Name()] = m
	c.order = append(c.order, m.Name())
	return nil
}

// SetCollectFunc overrides the callback invoked on every scrape. The
// callback may mutate families in place (e.g. resample procfs) before
// returning the ordered set to render.
func (c *Collector) SetCollectFunc(fn func() []Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collectFn = fn
}

// Data returns the collector's opaque per-collector payload.
func (c *Collector) Data() interface{} { return c.data }

// SetData stores an opaque per-collector payload, analogous to libprom's
// void* collector data.
func (c *Collector) SetData(v interface{}) { c.data = v }

// Collect returns the families to render for this scrape, in
// metric-insertion order by default, or as produced by the collect
// callback when one is set.
func (c *Collector) Collect() []Metric {
	c.mu.RLock()
	fn := c.collectFn
	c.mu.RUnlock()

	if fn != nil {
		return c.safeCollect(fn)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Metric, len(c.order))
	for i, name := range c.order {
		out[i] = c.metrics[name]
	}
	return out
}

// safeCollect recovers a panic out of the collect callback at the scrape
// boundary, classifying a runtime.Error (the shape an out-of-memory
// allocation failure surfaces as) as KindOutOfMemory and anything else as
// KindInternal, and returns no families for this scrape rather than taking
// the whole registry bridge down with it.
func (c *Collector) safeCollect(fn func() []Metric) (out []Metric) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var err *Error
		if _, ok := r.(runtime.Error); ok {
			err = errOutOfMemory("collector %q collect callback panicked: %v", c.name, r)
		} else {
			err = errInternal("collector %q collect callback panicked: %v", c.name, r)
		}
		log.Error(err, "collect callback recovered")
		out = nil
	}()
	return fn()
}

// Destroy releases the collector's families. Per the ownership model,
// families are exclusively owned by their collector, so nothing else needs
// releasing here.
func (c *Collector) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = make(map[string]Metric)
	c.order = nil
}
