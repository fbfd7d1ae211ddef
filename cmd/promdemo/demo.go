package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/common/expfmt"
	"github.com/remerge/cue"
	"github.com/tylerb/graceful"
	"gopkg.in/yaml.v2"

	"github.com/remerge/go-prom/prom"
	"github.com/remerge/go-prom/prom/process"
	"github.com/remerge/go-prom/promhttp"
)

var log = cue.NewLogger("promdemo")

// demo mirrors libprom's own example program (foo.c/main.c): a counter and
// a gauge updated across a label set, plus a small histogram, registered
// on the default registry alongside the process collector.
type demo struct {
	fooCounter *prom.Counter
	fooGauge   *prom.Gauge
	histogram  *prom.Histogram
}

func newDemo(r *prom.Registry) (*demo, error) {
	d := &demo{}
	var err error

	if d.fooCounter, err = prom.NewCounter("foo_counter", "counter for foo"); err != nil {
		return nil, err
	}
	if d.fooGauge, err = prom.NewGauge("foo_gauge", "gauge for foo", "label"); err != nil {
		return nil, err
	}

	bounds, err := prom.LinearBuckets(5.0, 5.0, 2)
	if err != nil {
		return nil, err
	}
	if d.histogram, err = prom.NewHistogram("test_histogram", "histogram under test", bounds); err != nil {
		return nil, err
	}

	for _, m := range []prom.Metric{d.fooCounter, d.fooGauge, d.histogram} {
		if err := r.RegisterMetric(m); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// step reproduces the original example's drive loop: 100 iterations toggling
// between two histogram values while fanning foo-updates out across five
// labels.
func (d *demo) step() error {
	labels := []string{"one", "two", "three", "four", "five"}
	for i := 1; i <= 100; i++ {
		histValue := 7.0
		if i%2 == 0 {
			histValue = 3.0
		}
		if err := d.histogram.Observe(histValue); err != nil {
			return err
		}
		for x, label := range labels {
			if err := d.fooCounter.Inc(); err != nil {
				return err
			}
			if err := d.fooGauge.Add(float64(i+x), label); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildInfoFromLabelsFile loads an optional YAML map of static labels and
// registers a one-sample gauge carrying them, alongside a generated
// instance id, so a scrape can identify which process instance it hit.
func buildInfoFromLabelsFile(r *prom.Registry, path string) error {
	labelValues := map[string]string{
		"instance_id": uuid.NewString(),
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read labels file: %w", err)
		}
		var fileLabels map[string]string
		if err := yaml.Unmarshal(data, &fileLabels); err != nil {
			return fmt.Errorf("parse labels file: %w", err)
		}
		for k, v := range fileLabels {
			labelValues[k] = v
		}
	}

	keys := make([]string, 0, len(labelValues))
	for k := range labelValues {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	g, err := prom.NewGauge("promdemo_build_info", "Static build/instance metadata for this process.", keys...)
	if err != nil {
		return err
	}

	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = labelValues[k]
	}
	if err := g.Set(1, values...); err != nil {
		return err
	}

	return r.RegisterMetric(g)
}

func run(listenAddr, labelsFile string, verifyOnly bool) error {
	if err := process.Init(prom.FeatureProcess|prom.FeatureScrapeTime, ""); err != nil {
		return fmt.Errorf("init registry: %w", err)
	}
	r := prom.Default()

	d, err := newDemo(r)
	if err != nil {
		return fmt.Errorf("register demo metrics: %w", err)
	}
	if err := d.step(); err != nil {
		return fmt.Errorf("drive demo metrics: %w", err)
	}
	if err := buildInfoFromLabelsFile(r, labelsFile); err != nil {
		return err
	}

	if verifyOnly {
		return verifyScrape(r)
	}

	promhttp.SetActiveRegistry(r)

	srv := &graceful.Server{
		Timeout:          10 * time.Second,
		NoSignalHandling: true,
		Server: &http.Server{
			Addr:    listenAddr,
			Handler: promhttp.DefaultHandler(),
		},
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("shutting down")
		srv.Stop(10 * time.Second)
	}()

	log.WithFields(cue.Fields{"listen": listenAddr}).Info("serving /metrics")
	if err := srv.ListenAndServe(); err != nil {
		return err
	}
	return nil
}

// verifyScrape renders one scrape and round-trips it through
// prometheus/common/expfmt's parser, confirming the hand-rolled formatter
// in prom produces exposition text the canonical Prometheus client
// actually accepts.
func verifyScrape(r *prom.Registry) error {
	body, err := r.Bridge()
	if err != nil {
		return err
	}

	parser := expfmt.TextParser{}
	families, err := parser.TextToMetricFamilies(strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("expfmt rejected our own exposition text: %w", err)
	}

	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)
	log.WithFields(cue.Fields{"families": names}).Info("scrape verified")
	return nil
}
