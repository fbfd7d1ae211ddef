package process

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/remerge/go-prom/prom"
)

// DefaultLimitsPath is the procfs file the process collector reads soft
// file-descriptor limits from when no override path is given.
const DefaultLimitsPath = "/proc/self/limits"

// LimitRow is one parsed row of /proc/self/limits: a soft and a hard value
// (in whatever unit the kernel reports), or -1 for "unlimited".
type LimitRow struct {
	Soft float64
	Hard float64
	Unit string
}

// Limits maps a limit's display name (e.g. "Max open files") to its row.
type Limits map[string]LimitRow

// ParseLimits is the original's generic recursive-descent limits parser,
// exposed publicly because it is independently useful beyond the scrape
// path, which only ever looks up the "Max open files" row.
func ParseLimits(path string) (Limits, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &prom.Error{Kind: prom.KindIO, Message: fmt.Sprintf("open %s: %v", path, err)}
	}
	defer f.Close()

	out := make(Limits)
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			// header row: "Limit  Soft Limit  Hard Limit  Units"
			first = false
			continue
		}
		name, row, ok := parseLimitsLine(line)
		if !ok {
			continue
		}
		out[name] = row
	}
	if err := scanner.Err(); err != nil {
		return nil, &prom.Error{Kind: prom.KindIO, Message: fmt.Sprintf("read %s: %v", path, err)}
	}
	return out, nil
}

// parseLimitsLine splits a single /proc/self/limits data row. The limit
// name is everything up to the first run of two-or-more spaces; the
// remainder splits on whitespace into soft, hard and optionally a unit.
func parseLimitsLine(line string) (name string, row LimitRow, ok bool) {
	idx := strings.Index(line, "  ")
	if idx < 0 {
		return "", LimitRow{}, false
	}
	name = strings.TrimRight(line[:idx], " ")
	fields := strings.Fields(line[idx:])
	if len(fields) < 2 {
		return "", LimitRow{}, false
	}
	row.Soft = parseLimitValue(fields[0])
	row.Hard = parseLimitValue(fields[1])
	if len(fields) >= 3 {
		row.Unit = fields[2]
	}
	return name, row, true
}

func parseLimitValue(tok string) float64 {
	if tok == "unlimited" {
		return -1
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return -1
	}
	return v
}

// MaxOpenFilesSoft returns the soft "Max open files" limit from path. This
// is the only row the process collector's scrape path needs.
func MaxOpenFilesSoft(path string) (float64, error) {
	limits, err := ParseLimits(path)
	if err != nil {
		return 0, err
	}
	row, found := limits["Max open files"]
	if !found {
		return 0, fmt.Errorf("no \"Max open files\" row in %s", path)
	}
	return row.Soft, nil
}

// RLimitNoFileSoft returns the process's RLIMIT_NOFILE soft limit, used
// when the process collector is constructed with no limits path override.
func RLimitNoFileSoft() (float64, error) {
	var rlim syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rlim); err != nil {
		return 0, &prom.Error{Kind: prom.KindInternal, Message: fmt.Sprintf("getrlimit RLIMIT_NOFILE: %v", err)}
	}
	if int64(rlim.Cur) == syscall.RLIM_INFINITY {
		return -1, nil
	}
	return float64(rlim.Cur), nil
}
