package prom

import "regexp"

var metricNameRe = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)

// ValidateMetricName reports whether name is a legal Prometheus metric or
// collector name.
func ValidateMetricName(name string) error {
	if !metricNameRe.MatchString(name) {
		return errInvalidName("%q does not match %s", name, metricNameRe.String())
	}
	return nil
}

// reserved collector/registry names, created only by their dedicated
// constructors.
const (
	DefaultCollectorName = "default"
	ProcessCollectorName = "process"
	DefaultRegistryName  = "default"
)

func isReservedCollectorName(name string) bool {
	return name == DefaultCollectorName || name == ProcessCollectorName
}
