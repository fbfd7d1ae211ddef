package main

import (
	"time"

	"github.com/remerge/cue"
	"github.com/remerge/cue/collector"
	"github.com/remerge/cue/format"

	"github.com/remerge/go-prom/prom"
)

// initLogging attaches a colorized terminal collector so every cue log call
// made throughout prom, prom/process and promhttp actually reaches stderr,
// and sets its level from PROM_LOG_LEVEL via prom.LogLevelFromEnv. Mirrors
// a remerge-go-service's initLogCollector/setLogLevelFrom pairing, minus the
// production/non-production formatter switch this single demo binary has no
// use for.
func initLogging() {
	formatter := format.Colorize(format.Formatf(
		"%v %v [%v:%v] %v",
		format.Time(time.RFC3339),
		format.Level,
		format.ContextName,
		format.SourceWithLine,
		format.HumanMessage,
	))

	term := collector.Terminal{Formatter: formatter}.New()
	cue.Collect(prom.LogLevelFromEnv(), term)
}
