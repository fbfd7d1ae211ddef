package prom

// promLogger is the narrow slice of github.com/remerge/cue's Logger
// interface this package needs. Keeping it local lets the noprom_log build
// tag compile logging out entirely without the cue dependency leaking into
// every file that logs.
type promLogger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Error(err error, message string) error
}

var log promLogger
