package process

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ClockTicksPerSecond is the kernel's USER_HZ, used to convert the tick
// counts in /proc/self/stat into seconds. Go has no portable equivalent of
// sysconf(_SC_CLK_TCK); 100 is the value on every Linux platform this
// collector has been run on, and is hardcoded the same way as in the
// original C implementation's assumption.
const ClockTicksPerSecond = 100.0

// DefaultUptimePath is the procfs file used to resolve starttime ticks
// (which are relative to boot) into a process_start_time_seconds
// Unix timestamp.
const DefaultUptimePath = "/proc/uptime"

// Uptime reads the system uptime, in seconds, from path.
func Uptime(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	fields := strings.Fields(string(data))
	if len(fields) < 1 {
		return 0, fmt.Errorf("process: empty %s", path)
	}
	up, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("process: parse %s: %w", path, err)
	}
	return up, nil
}
