//go:build !noprom_log

package prom

import (
	"os"
	"strconv"
	"strings"

	"github.com/remerge/cue"
)

func init() {
	log = cue.NewLogger("prom")
}

// LogLevelFromEnv reads PROM_LOG_LEVEL and returns the matching cue.Level.
// Recognized values are DEBUG, INFO, WARN, ERROR, FATAL (case-insensitive)
// or the integers 1-5 in that order. Anything else, including an unset
// variable, falls back to cue.INFO.
func LogLevelFromEnv() cue.Level {
	v := strings.TrimSpace(os.Getenv("PROM_LOG_LEVEL"))
	if v == "" {
		return cue.INFO
	}

	if n, err := strconv.Atoi(v); err == nil {
		switch n {
		case 1:
			return cue.DEBUG
		case 2:
			return cue.INFO
		case 3:
			return cue.WARN
		case 4:
			return cue.ERROR
		case 5:
			return cue.FATAL
		default:
			return cue.INFO
		}
	}

	switch strings.ToUpper(v) {
	case "DEBUG":
		return cue.DEBUG
	case "INFO":
		return cue.INFO
	case "WARN":
		return cue.WARN
	case "ERROR":
		return cue.ERROR
	case "FATAL":
		return cue.FATAL
	default:
		return cue.INFO
	}
}
