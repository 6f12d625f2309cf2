// Package timefmt renders durations as human-readable text for notices.
package timefmt

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Duration renders d as approximate human text ("2 hours", "3 days").
// Sub-second durations render as "now", matching humanize's smallest
// magnitude.
func Duration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	base := time.Unix(0, 0).UTC()
	return strings.TrimSpace(humanize.RelTime(base, base.Add(d), "", ""))
}
