// Package battery models kickboard battery depletion during a rental.
// Drain is a pure function of elapsed time; movement distance is
// deliberately ignored.
package battery

import "time"

const (
	// DrainPerMinute is the fixed depletion rate: 1% per 5 seconds.
	DrainPerMinute = 12.0

	// MinSampleGap and MaxSampleGap bound the telemetry interval a drain
	// may be computed from. Gaps outside this window point at clock skew
	// or missed samples and are skipped rather than applied.
	MinSampleGap = 5 * time.Second
	MaxSampleGap = 10 * time.Minute
)

// Drain converts elapsed time into a battery percentage to subtract.
func Drain(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return elapsed.Minutes() * DrainPerMinute
}

// Apply subtracts drain from the current level, clamped at zero. The core
// has no charging operation, so the level never goes up.
func Apply(level, drain float64) float64 {
	if drain <= 0 {
		return level
	}
	next := level - drain
	if next < 0 {
		return 0
	}
	return next
}

// PlausibleGap reports whether a telemetry interval is usable for drain
// accounting.
func PlausibleGap(gap time.Duration) bool {
	return gap >= MinSampleGap && gap <= MaxSampleGap
}
