package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
// Production code uses the real clock; tests inject a fake for deterministic
// defaults.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// DefaultReportDate returns the most recent complete convective day: the UTC
// date of yesterday. SPC report CSVs for a day are complete once its 12Z–12Z
// window closes.
func DefaultReportDate() time.Time {
	y := clock.Now().UTC().AddDate(0, 0, -1)
	return time.Date(y.Year(), y.Month(), y.Day(), 0, 0, 0, 0, time.UTC)
}

// ModelWindow returns a forecast query window starting at the current UTC
// hour and extending the given number of hours.
func ModelWindow(hours int) (start, end time.Time) {
	start = clock.Now().UTC().Truncate(time.Hour)
	return start, start.Add(time.Duration(hours) * time.Hour)
}
