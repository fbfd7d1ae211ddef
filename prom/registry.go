package prom

import "sync"

// Features is a bitmask of optional default-registry behaviors.
type Features uint

const (
	FeatureNone Features = 0
	// FeatureProcess makes process.Init attach a process collector to the
	// default registry. prom.Init itself only records the flag.
	FeatureProcess Features = 1 << 0
	// FeatureScrapeTime attaches a scrape_duration self-gauge, timed once
	// for the whole scrape (label collector="libprom").
	FeatureScrapeTime Features = 1 << 1
	// FeatureScrapeTimeAll attaches the same self-gauge but times each
	// collector individually (label collector=<collector name>); the
	// whole-scrape "libprom" value is then not recorded.
	FeatureScrapeTimeAll Features = 1 << 2
	// FeatureCompact suppresses "# HELP"/"# TYPE" lines at format time.
	FeatureCompact Features = 1 << 3
)

// Registry is a named mapping of collectors. It owns scrape orchestration
// and the scrape-duration self-metric.
type Registry struct {
	name string

	mu         sync.RWMutex
	collectors map[string]*Collector
	order      []string

	features       Features
	prefix         string
	scrapeDuration *Gauge
}

// NewRegistry creates a registry containing exactly one empty collector
// named "default".
func NewRegistry(name string) (*Registry, error) {
	r := &Registry{
		name:       name,
		collectors: make(map[string]*Collector),
	}
	r.collectors[DefaultCollectorName] = newCollector(DefaultCollectorName)
	r.order = append(r.order, DefaultCollectorName)
	return r, nil
}

// RegisterCollector inserts c under its name. DUPLICATE if the name
// collides with an already-registered collector.
func (r *Registry) RegisterCollector(c *Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, found := r.collectors[c.name]; found {
		return errDuplicate("registry %q already has a collector named %q", r.name, c.name)
	}
	r.collectors[c.name] = c
	r.order = append(r.order, c.name)
	return nil
}

// RegisterMetric is shorthand for adding m to the registry's "default"
// collector.
func (r *Registry) RegisterMetric(m Metric) error {
	r.mu.RLock()
	def := r.collectors[DefaultCollectorName]
	r.mu.RUnlock()
	return def.AddMetric(m)
}

// MustRegisterMetric is RegisterMetric, promoted to a panic on failure.
// Intended for startup wiring, where a misconfigured metric is not
// recoverable.
func (r *Registry) MustRegisterMetric(m Metric) {
	if err := r.RegisterMetric(m); err != nil {
		log.Error(err, "must_register_metric failed")
		panic(err)
	}
}

// Get looks up a collector by name.
func (r *Registry) Get(name string) (*Collector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, found := r.collectors[name]
	if !found {
		return nil, errNotFound("no collector named %q in registry %q", name, r.name)
	}
	return c, nil
}

// Bridge renders a point-in-time snapshot of the registry in Prometheus
// text exposition format.
func (r *Registry) Bridge() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return format(r), nil
}

// Destroy releases all collectors, families and samples owned by r.
func (r *Registry) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.collectors {
		c.Destroy()
	}
	r.collectors = make(map[string]*Collector)
	r.order = nil
	r.scrapeDuration = nil
}

// enableFeatures applies init-time options: attaching the scrape-duration
// self-gauge when FeatureScrapeTime(All) is set. FeatureProcess is handled
// by process.Init, not here or in Init, since wiring the process collector
// would otherwise make this package depend on prom/process.
func (r *Registry) enableFeatures(features Features, prefix string) error {
	r.mu.Lock()
	r.features = features
	r.prefix = prefix
	r.mu.Unlock()

	if features&FeatureScrapeTime == 0 && features&FeatureScrapeTimeAll == 0 {
		return nil
	}

	g, err := NewGauge("scrape_duration_seconds", "Time taken to collect and render a scrape, in seconds.", "collector")
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.scrapeDuration = g
	r.mu.Unlock()
	return nil
}

var (
	defaultRegistryMu sync.Mutex
	defaultRegistry   *Registry
)

// Init is the idempotent initializer for the process-wide default registry
// singleton. It fails if already initialized.
func Init(features Features, prefix string) error {
	defaultRegistryMu.Lock()
	defer defaultRegistryMu.Unlock()

	if defaultRegistry != nil {
		return errDuplicate("default registry already initialized")
	}

	r, err := NewRegistry(DefaultRegistryName)
	if err != nil {
		return err
	}
	if err := r.enableFeatures(features, prefix); err != nil {
		return err
	}

	defaultRegistry = r
	return nil
}

// Default returns the process-wide default registry, initializing it with
// FeatureNone on first access if Init was never called.
func Default() *Registry {
	defaultRegistryMu.Lock()
	defer defaultRegistryMu.Unlock()

	if defaultRegistry == nil {
		r, _ := NewRegistry(DefaultRegistryName)
		defaultRegistry = r
	}
	return defaultRegistry
}

// DestroyDefault releases the default registry so a later Init can succeed
// again. Callers must ensure no scrape is in flight.
func DestroyDefault() {
	defaultRegistryMu.Lock()
	defer defaultRegistryMu.Unlock()

	if defaultRegistry != nil {
		defaultRegistry.Destroy()
		defaultRegistry = nil
	}
}
