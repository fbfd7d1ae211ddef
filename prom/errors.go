package prom

import "fmt"

// Kind classifies the errors this package returns, mirroring the error
// kinds libprom communicates to callers (prom_metric_errors.h upstream).
type Kind int

const (
	// KindInvalidName means a name failed the metric-name regex, or a
	// reserved name was used where that is prohibited.
	KindInvalidName Kind = iota + 1
	// KindInvalidInput means bad label arity, a negative counter delta,
	// non-ascending histogram bounds, or an empty label value.
	KindInvalidInput
	// KindDuplicate means a name collided within a collector or registry.
	KindDuplicate
	// KindNotFound means a lookup by name missed.
	KindNotFound
	// KindOutOfMemory means a collect callback panicked on an allocation
	// failure (or another runtime.Error indistinguishable from one) and
	// was recovered at the scrape boundary.
	KindOutOfMemory
	// KindIO means a procfs read failed.
	KindIO
	// KindInternal means a lock or system-call level failure.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidName:
		return "INVALID_NAME"
	case KindInvalidInput:
		return "INVALID_INPUT"
	case KindDuplicate:
		return "DUPLICATE"
	case KindNotFound:
		return "NOT_FOUND"
	case KindOutOfMemory:
		return "OUT_OF_MEMORY"
	case KindIO:
		return "IO"
	case KindInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// Error is the error type returned by every fallible operation in this
// package. Callers that care about the failure category should use
// errors.As to recover it and inspect Kind.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func errInvalidName(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidName, Message: fmt.Sprintf(format, args...)}
}

func errInvalidInput(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func errDuplicate(format string, args ...interface{}) *Error {
	return &Error{Kind: KindDuplicate, Message: fmt.Sprintf(format, args...)}
}

func errNotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func errOutOfMemory(format string, args ...interface{}) *Error {
	return &Error{Kind: KindOutOfMemory, Message: fmt.Sprintf(format, args...)}
}

func errInternal(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...)}
}
