//go:build !noprom_log

package process

import "github.com/remerge/cue"

func init() {
	log = cue.NewLogger("prom/process")
}
