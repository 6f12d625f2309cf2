package application

import "time"

// scaleDeadlines divides both base intervals by the issue's priority, so
// higher-priority tasks get shorter grace periods. Priority is floor-clamped
// to 1 before use as a divisor.
func scaleDeadlines(priority float64, warning, disqualify time.Duration) (time.Duration, time.Duration) {
	if priority < 1 {
		priority = 1
	}
	return time.Duration(float64(warning) / priority), time.Duration(float64(disqualify) / priority)
}
