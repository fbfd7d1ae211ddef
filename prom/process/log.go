package process

type processLogger interface {
	Warnf(format string, args ...interface{})
}

var log processLogger
