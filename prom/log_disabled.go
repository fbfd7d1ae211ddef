//go:build noprom_log

package prom

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Warnf(string, ...interface{})  {}
func (noopLogger) Error(err error, string) error { return err }

func init() {
	log = noopLogger{}
}
