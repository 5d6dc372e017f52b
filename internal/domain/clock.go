package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is the time source for "now"-relative views like UpcomingHours.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// UpcomingHours returns up to n hourly points from the current hour on, with
// "now" taken in the forecast location's own UTC offset.
func UpcomingHours(p ForecastPayload, n int) []HourForecast {
	loc := time.FixedZone(p.TimezoneAbbreviation, p.UTCOffsetSeconds)
	return HourlyFrom(p, clock.Now().In(loc), n)
}
