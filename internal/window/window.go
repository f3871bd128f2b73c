// Package window maps wall-clock time onto the rotating 15-minute
// up/down market window.
package window

import (
	"fmt"
	"strings"
	"time"
)

// Interval is the fixed market window length in seconds.
const Interval int64 = 900

// Window is one instance of the rotating market period.
// Start is always a multiple of Interval and End = Start + Interval.
type Window struct {
	Start int64
	End   int64
}

// At returns the window containing now.
func At(now time.Time) Window {
	start := now.Unix() / Interval * Interval
	return Window{Start: start, End: start + Interval}
}

// Slug builds the canonical market key for an asset and window start,
// e.g. "btc-updown-15m-1700000000".
func Slug(asset string, start int64) string {
	return fmt.Sprintf("%s-updown-15m-%d", strings.ToLower(asset), start)
}

func (w Window) Slug(asset string) string {
	return Slug(asset, w.Start)
}
