// Package workhours computes elapsed working time under the support desk
// schedule: 08:00-12:00 and 13:00-17:00, Monday through Friday, in the
// Fortaleza civil timezone.
package workhours

import "time"

// Business window boundaries, in hours of the civil day.
const (
	morningStartHour   = 8
	morningEndHour     = 12
	afternoonStartHour = 13
	afternoonEndHour   = 17
)

// location is the fixed civil timezone for all desk timestamps (UTC-3,
// Fortaleza has no daylight saving).
var location = time.FixedZone("America/Fortaleza", -3*60*60)

// Location returns the desk's civil timezone.
func Location() *time.Location {
	return location
}

// Clock supplies the current instant. Services take a Clock so tests can
// pin "now" to deterministic values.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in the desk timezone.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now().In(location)
}

// Elapsed returns the working time between start and end. Time outside the
// business windows, the lunch gap and weekends contribute nothing. A start
// at or after end yields zero, never a negative duration.
func Elapsed(start, end time.Time) time.Duration {
	if !start.Before(end) {
		return 0
	}

	var total time.Duration
	current := start

	for current.Before(end) {
		wd := current.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			current = nextDay(current)
			continue
		}

		morningStart := atHour(current, morningStartHour)
		morningEnd := atHour(current, morningEndHour)
		afternoonStart := atHour(current, afternoonStartHour)
		afternoonEnd := atHour(current, afternoonEndHour)

		total += intersect(current, end, morningStart, morningEnd)
		total += intersect(current, end, afternoonStart, afternoonEnd)

		current = nextDay(current)
	}

	return total
}

// intersect measures the overlap of [cursor, end] with a business window.
func intersect(cursor, end, windowStart, windowEnd time.Time) time.Duration {
	from := cursor
	if windowStart.After(from) {
		from = windowStart
	}
	to := end
	if windowEnd.Before(to) {
		to = windowEnd
	}
	if to.After(from) {
		return to.Sub(from)
	}
	return 0
}

// atHour returns the instant at hour:00:00 on t's calendar day.
func atHour(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}

// nextDay returns midnight at the start of the day after t.
func nextDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}
