package process

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/remerge/go-prom/prom"
)

// ErrIncomplete is returned (wrapped) when a /proc/self/stat line has
// fewer than the fields this collector depends on. Callers should treat
// this as "keep the last good values" rather than a scrape failure.
var ErrIncomplete = errors.New("process: incomplete stat line")

// DefaultStatPath is the procfs file the process collector reads CPU,
// memory and fault counters from when no override path is given.
const DefaultStatPath = "/proc/self/stat"

// minStatFields is the number of fields man-proc documents for
// /proc/[pid]/stat (1-indexed) that must be present for a line to be
// usable; field 42 is delayacct_blkio_ticks, the last field this collector
// reads.
const minStatFields = 42

// Stat holds the subset of man-proc's 52 /proc/[pid]/stat fields this
// collector projects into metrics.
type Stat struct {
	MinFlt              uint64 // field 10
	CMinFlt             uint64 // field 11
	MajFlt              uint64 // field 12
	CMajFlt             uint64 // field 13
	UTimeTicks          uint64 // field 14
	STimeTicks          uint64 // field 15
	CUTimeTicks         int64  // field 16
	CSTimeTicks         int64  // field 17
	NumThreads          int64  // field 20
	StartTimeTicks      uint64 // field 22
	VSize               uint64 // field 23
	RSSPages            int64  // field 24
	DelayacctBlkioTicks uint64 // field 42
}

// ParseStat reads path and parses it into a Stat. It returns an error
// (wrapping ErrIncomplete) if fewer than minStatFields fields are present;
// callers should keep any previously observed values in that case.
func ParseStat(path string) (Stat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Stat{}, &prom.Error{Kind: prom.KindIO, Message: fmt.Sprintf("open %s: %v", path, err)}
	}
	return parseStatLine(string(data))
}

// parseStatLine implements the positional parse the original's scanf
// pattern does, but finds the comm field by its closing paren instead of
// stopping at the first space, so process names containing spaces don't
// desync every field after them.
func parseStatLine(line string) (Stat, error) {
	line = strings.TrimRight(line, "\n")
	open := strings.IndexByte(line, '(')
	close := strings.LastIndexByte(line, ')')
	if open < 0 || close < 0 || close < open {
		return Stat{}, fmt.Errorf("%w: no comm field", ErrIncomplete)
	}

	rest := strings.Fields(line[close+1:])
	// rest[0] is field 3 (state); field N is rest[N-3].
	if len(rest) < minStatFields-2 {
		return Stat{}, fmt.Errorf("%w: got %d fields after comm, need %d", ErrIncomplete, len(rest), minStatFields-2)
	}

	field := func(n int) string { return rest[n-3] }

	var s Stat
	var err error
	if s.MinFlt, err = parseUint(field(10)); err != nil {
		return Stat{}, err
	}
	if s.CMinFlt, err = parseUint(field(11)); err != nil {
		return Stat{}, err
	}
	if s.MajFlt, err = parseUint(field(12)); err != nil {
		return Stat{}, err
	}
	if s.CMajFlt, err = parseUint(field(13)); err != nil {
		return Stat{}, err
	}
	if s.UTimeTicks, err = parseUint(field(14)); err != nil {
		return Stat{}, err
	}
	if s.STimeTicks, err = parseUint(field(15)); err != nil {
		return Stat{}, err
	}
	if s.CUTimeTicks, err = parseInt(field(16)); err != nil {
		return Stat{}, err
	}
	if s.CSTimeTicks, err = parseInt(field(17)); err != nil {
		return Stat{}, err
	}
	if s.NumThreads, err = parseInt(field(20)); err != nil {
		return Stat{}, err
	}
	if s.StartTimeTicks, err = parseUint(field(22)); err != nil {
		return Stat{}, err
	}
	if s.VSize, err = parseUint(field(23)); err != nil {
		return Stat{}, err
	}
	if s.RSSPages, err = parseInt(field(24)); err != nil {
		return Stat{}, err
	}
	if s.DelayacctBlkioTicks, err = parseUint(field(42)); err != nil {
		return Stat{}, err
	}
	return s, nil
}

func parseUint(s string) (uint64, error) { return strconv.ParseUint(s, 10, 64) }
func parseInt(s string) (int64, error)   { return strconv.ParseInt(s, 10, 64) }
