// Package labels decodes the pricing and priority values carried on issue
// labels.
//
// Recognized forms:
//   - "Price: 100" or "Price: 100 USD"
//   - "Priority: 2"
package labels

import (
	"regexp"
	"strconv"
)

var (
	priceRe    = regexp.MustCompile(`(?i)^price:\s*([0-9]+(?:\.[0-9]+)?)`)
	priorityRe = regexp.MustCompile(`(?i)^priority:\s*([0-9]+(?:\.[0-9]+)?)`)
)

// ParsePrice returns the value of the first price label, if any. An issue
// without a recognizable price label is out of scope for the watchdog.
func ParsePrice(labelNames []string) (float64, bool) {
	return parseFirst(priceRe, labelNames)
}

// ParsePriority returns the value of the first priority label, or 0 when
// none is present. Callers clamp before using the value as a divisor.
func ParsePriority(labelNames []string) float64 {
	v, _ := parseFirst(priorityRe, labelNames)
	return v
}

func parseFirst(re *regexp.Regexp, labelNames []string) (float64, bool) {
	for _, name := range labelNames {
		m := re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		return v, true
	}
	return 0, false
}
