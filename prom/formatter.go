package prom

import (
	"fmt"
	"strings"
	"time"
)

// renderBuffer accumulates exposition text. It is a thin wrapper over
// strings.Builder so the per-family write methods stay free of formatting
// detail duplication.
type renderBuffer struct {
	strings.Builder
}

func (b *renderBuffer) help(prefix, name, help string) {
	fmt.Fprintf(b, "# HELP %s%s %s\n", prefix, name, help)
}

func (b *renderBuffer) typeLine(prefix, name string, t Type) {
	fmt.Fprintf(b, "# TYPE %s%s %s\n", prefix, name, t)
}

func (b *renderBuffer) sampleLine(prefix, lvalue string, v float64) {
	fmt.Fprintf(b, "%s%s %s\n", prefix, lvalue, formatValue(v))
}

func (b *renderBuffer) blank() {
	b.WriteByte('\n')
}

// format renders a full registry snapshot: collector-insertion-order, then
// metric-insertion-order within a collector, then label-tuple-insertion
// order within a family (all preserved by Collector/Family bookkeeping).
// Callers must hold r.mu for reading.
func format(r *Registry) string {
	var b renderBuffer

	compact := r.features&FeatureCompact != 0
	scrapeTimeAll := r.features&FeatureScrapeTimeAll != 0
	scrapeTime := scrapeTimeAll || r.features&FeatureScrapeTime != 0

	names := append([]string(nil), r.order...)
	collectors := make([]*Collector, len(names))
	for i, name := range names {
		collectors[i] = r.collectors[name]
	}

	scrapeStart := time.Now()

	for i, c := range collectors {
		collectorStart := time.Now()

		for _, m := range c.Collect() {
			m.writeTo(&b, r.prefix, compact)
		}

		if scrapeTimeAll && r.scrapeDuration != nil {
			elapsed := time.Since(collectorStart).Seconds()
			_ = r.scrapeDuration.Set(elapsed, names[i])
		}
	}

	if scrapeTime && !scrapeTimeAll && r.scrapeDuration != nil {
		elapsed := time.Since(scrapeStart).Seconds()
		_ = r.scrapeDuration.Set(elapsed, "libprom")
	}

	if r.scrapeDuration != nil && scrapeTime {
		r.scrapeDuration.writeTo(&b, r.prefix, compact)
	}

	return b.String()
}
