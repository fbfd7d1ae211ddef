// Package process provides an optional prom.Collector that scrapes the
// running process's own resource usage out of procfs.
package process

import (
	"os"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/remerge/go-prom/prom"
)

// Collector wraps a prom.Collector named "process", exposing the kernel's
// view of this process: open file descriptors, page faults, CPU time,
// thread count, start time, and memory footprint.
//
// It reads four procfs paths, each independently overridable (tests use
// fixture files in place of the real /proc):
//
//	limitsPath - soft/hard rlimits, default /proc/self/limits
//	statPath   - CPU/memory/fault counters, default /proc/self/stat
//	fdDirPath  - open file descriptor count, default /proc/self/fd
//	uptimePath - system uptime for the start time, default /proc/uptime
type Collector struct {
	*prom.Collector

	limitsPath string
	statPath   string
	fdDirPath  string
	uptimePath string

	metrics []prom.Metric

	maxFds  *prom.Gauge
	openFds *prom.Gauge

	minFlt  *prom.Counter
	cMinFlt *prom.Counter
	majFlt  *prom.Counter
	cMajFlt *prom.Counter

	cpuUser    *prom.Counter
	cpuSystem  *prom.Counter
	cpuTotal   *prom.Counter
	cpuUserC   *prom.Counter
	cpuSystemC *prom.Counter
	cpuTotalC  *prom.Counter

	numThreads *prom.Gauge
	startTime  *prom.Gauge
	vsize      *prom.Gauge
	rss        *prom.Gauge
	blkioTicks *prom.Counter

	mu            sync.Mutex
	haveStartTime bool
	lastStartTick uint64
	cachedStart   float64
}

// New constructs the process collector with the real procfs default paths.
// It does not register itself on a registry; most callers want Init or
// Register instead.
func New() (*Collector, error) {
	return newWithPaths(DefaultLimitsPath, DefaultStatPath, "/proc/self/fd", DefaultUptimePath)
}

// Register builds a process collector and attaches it to r. prom.Registry
// can't do this itself (prom.FeatureProcess is a plain flag, not wired to
// this package) without creating an import cycle, so it's a package-level
// step applications take explicitly when they want the process collector.
func Register(r *prom.Registry) (*Collector, error) {
	c, err := New()
	if err != nil {
		return nil, err
	}
	if err := r.RegisterCollector(c.Collector); err != nil {
		return nil, err
	}
	return c, nil
}

// Init is prom.Init followed by Register against the resulting default
// registry when features includes prom.FeatureProcess. It is the one-shot
// equivalent applications reach for at startup.
func Init(features prom.Features, prefix string) error {
	if err := prom.Init(features, prefix); err != nil {
		return err
	}
	if features&prom.FeatureProcess == 0 {
		return nil
	}
	_, err := Register(prom.Default())
	return err
}

// newWithPaths is the seam tests use to point the collector at fixture
// files instead of the real procfs.
func newWithPaths(limitsPath, statPath, fdDirPath, uptimePath string) (*Collector, error) {
	c := &Collector{
		Collector:  prom.NewProcessCollector(),
		limitsPath: limitsPath,
		statPath:   statPath,
		fdDirPath:  fdDirPath,
		uptimePath: uptimePath,
	}

	var err error
	if c.maxFds, err = prom.NewGauge("process_max_fds", "Maximum number of open file descriptors."); err != nil {
		return nil, err
	}
	if c.openFds, err = prom.NewGauge("process_open_fds", "Number of open file descriptors."); err != nil {
		return nil, err
	}
	if c.minFlt, err = prom.NewCounter("process_minor_pagefaults_total", "Minor page faults."); err != nil {
		return nil, err
	}
	if c.cMinFlt, err = prom.NewCounter("process_minor_pagefaults_children_total", "Minor page faults of waited-for children."); err != nil {
		return nil, err
	}
	if c.majFlt, err = prom.NewCounter("process_major_pagefaults_total", "Major page faults."); err != nil {
		return nil, err
	}
	if c.cMajFlt, err = prom.NewCounter("process_major_pagefaults_children_total", "Major page faults of waited-for children."); err != nil {
		return nil, err
	}
	if c.cpuUser, err = prom.NewCounter("process_cpu_seconds_user_total", "User CPU time spent in seconds."); err != nil {
		return nil, err
	}
	if c.cpuSystem, err = prom.NewCounter("process_cpu_seconds_system_total", "System CPU time spent in seconds."); err != nil {
		return nil, err
	}
	if c.cpuTotal, err = prom.NewCounter("process_cpu_seconds_total", "Total user and system CPU time spent in seconds."); err != nil {
		return nil, err
	}
	if c.cpuUserC, err = prom.NewCounter("process_cpu_seconds_user_children_total", "User CPU time of waited-for children, in seconds."); err != nil {
		return nil, err
	}
	if c.cpuSystemC, err = prom.NewCounter("process_cpu_seconds_system_children_total", "System CPU time of waited-for children, in seconds."); err != nil {
		return nil, err
	}
	if c.cpuTotalC, err = prom.NewCounter("process_cpu_seconds_children_total", "Total CPU time of waited-for children, in seconds."); err != nil {
		return nil, err
	}
	if c.numThreads, err = prom.NewGauge("process_num_threads", "Number of OS threads in the process."); err != nil {
		return nil, err
	}
	if c.startTime, err = prom.NewGauge("process_start_time_seconds", "Start time of the process since unix epoch, in seconds."); err != nil {
		return nil, err
	}
	if c.vsize, err = prom.NewGauge("process_virtual_memory_bytes", "Virtual memory size in bytes."); err != nil {
		return nil, err
	}
	if c.rss, err = prom.NewGauge("process_resident_memory_bytes", "Resident memory size in bytes."); err != nil {
		return nil, err
	}
	if c.blkioTicks, err = prom.NewCounter("process_delayacct_blkio_ticks", "Aggregated block I/O delays, in clock ticks."); err != nil {
		return nil, err
	}

	c.metrics = []prom.Metric{
		c.maxFds, c.openFds,
		c.minFlt, c.cMinFlt, c.majFlt, c.cMajFlt,
		c.cpuUser, c.cpuSystem, c.cpuTotal, c.cpuUserC, c.cpuSystemC, c.cpuTotalC,
		c.numThreads, c.startTime, c.vsize, c.rss, c.blkioTicks,
	}
	for _, m := range c.metrics {
		if err := c.Collector.AddMetric(m); err != nil {
			return nil, err
		}
	}

	c.Collector.SetCollectFunc(c.collect)
	return c, nil
}

// collect refreshes all families from procfs. Each of the three procfs
// reads is attempted independently; a failure in one (e.g. a transient
// ENOENT racing a container teardown) degrades that family's values to
// whatever was last observed rather than failing the whole scrape, per the
// project's scrape-path error-absorption convention.
func (c *Collector) collect() []prom.Metric {
	var errs *multierror.Error

	if err := c.updateLimits(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := c.updateOpenFds(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := c.updateStat(); err != nil {
		errs = multierror.Append(errs, err)
	}

	if errs != nil {
		log.Warnf("process collector scrape had partial failures: %v", errs)
	}

	return c.metrics
}

func (c *Collector) updateLimits() error {
	var max float64
	var err error
	if c.limitsPath != "" {
		max, err = MaxOpenFilesSoft(c.limitsPath)
	} else {
		max, err = RLimitNoFileSoft()
	}
	if err != nil {
		return err
	}
	return c.maxFds.Set(max)
}

func (c *Collector) updateOpenFds() error {
	entries, err := os.ReadDir(c.fdDirPath)
	if err != nil {
		return err
	}
	return c.openFds.Set(float64(len(entries)))
}

func (c *Collector) updateStat() error {
	st, err := ParseStat(c.statPath)
	if err != nil {
		return err
	}

	if err := c.minFlt.Reset(float64(st.MinFlt)); err != nil {
		return err
	}
	if err := c.cMinFlt.Reset(float64(st.CMinFlt)); err != nil {
		return err
	}
	if err := c.majFlt.Reset(float64(st.MajFlt)); err != nil {
		return err
	}
	if err := c.cMajFlt.Reset(float64(st.CMajFlt)); err != nil {
		return err
	}

	user := float64(st.UTimeTicks) / ClockTicksPerSecond
	system := float64(st.STimeTicks) / ClockTicksPerSecond
	userC := float64(st.CUTimeTicks) / ClockTicksPerSecond
	systemC := float64(st.CSTimeTicks) / ClockTicksPerSecond

	if err := c.cpuUser.Reset(user); err != nil {
		return err
	}
	if err := c.cpuSystem.Reset(system); err != nil {
		return err
	}
	if err := c.cpuTotal.Reset(user + system); err != nil {
		return err
	}
	if err := c.cpuUserC.Reset(userC); err != nil {
		return err
	}
	if err := c.cpuSystemC.Reset(systemC); err != nil {
		return err
	}
	if err := c.cpuTotalC.Reset(userC + systemC); err != nil {
		return err
	}

	if err := c.numThreads.Set(float64(st.NumThreads)); err != nil {
		return err
	}
	if err := c.vsize.Set(float64(st.VSize)); err != nil {
		return err
	}
	if err := c.rss.Set(float64(st.RSSPages) * float64(os.Getpagesize())); err != nil {
		return err
	}
	if err := c.blkioTicks.Reset(float64(st.DelayacctBlkioTicks)); err != nil {
		return err
	}

	start, err := c.startTimeSeconds(st.StartTimeTicks)
	if err != nil {
		return err
	}
	return c.startTime.Set(start)
}

// startTimeSeconds resolves boot-relative starttime ticks into a Unix
// timestamp, memoized on the tick value since it only changes across a
// process restart (PID reuse), not across scrapes of the same process.
func (c *Collector) startTimeSeconds(startTick uint64) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.haveStartTime && c.lastStartTick == startTick {
		return c.cachedStart, nil
	}

	uptime, err := Uptime(c.uptimePath)
	if err != nil {
		return 0, err
	}

	now := float64(time.Now().Unix())
	boot := now - uptime
	start := boot + float64(startTick)/ClockTicksPerSecond

	c.lastStartTick = startTick
	c.cachedStart = start
	c.haveStartTime = true
	return start, nil
}
