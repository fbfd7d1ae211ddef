//go:build noprom_log

package process

type noopLogger struct{}

func (noopLogger) Warnf(string, ...interface{}) {}

func init() {
	log = noopLogger{}
}
