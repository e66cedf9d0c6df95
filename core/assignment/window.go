package assignment

import "time"

// skewBuffer absorbs clock/timezone skew between client and server: the final
// window is expanded by this much on both ends before hitting the store.
const skewBuffer = 2 * time.Hour

// rolloverGrace is how long yesterday's board remains visible after the end
// of that calendar day.
const rolloverGrace = 24 * time.Hour

// TimeRange is a half-open instant range [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Window computes the valid query range for "what should be visible today"
// for a board targeted at targetDate, implementing the 24-hour rollover rule:
//
//   - targetDate two or more calendar days before now: nothing is shown.
//   - targetDate exactly yesterday: shown only while now is within 24h of the
//     end of that day, and then only the trailing slice [now-24h, endOfDay).
//   - targetDate today or later: the full calendar day.
//
// Calendar days are evaluated in loc, the configured server timezone, and
// the returned range carries the ±2h skew buffer. ok is false when nothing
// from targetDate may be shown.
func Window(targetDate, now time.Time, loc *time.Location) (TimeRange, bool) {
	dayStart := startOfDay(targetDate, loc)
	dayEnd := dayStart.Add(24 * time.Hour)
	todayStart := startOfDay(now, loc)

	switch {
	case dayStart.Before(todayStart.Add(-24 * time.Hour)):
		// two or more calendar days in the past
		return TimeRange{}, false

	case dayStart.Before(todayStart):
		// exactly yesterday
		if now.Sub(dayEnd) > rolloverGrace {
			return TimeRange{}, false
		}
		start := dayStart
		if floor := now.Add(-rolloverGrace); floor.After(start) {
			start = floor
		}
		return buffered(start, dayEnd), true

	default:
		// today or later: the full calendar day
		return buffered(dayStart, dayEnd), true
	}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func buffered(start, end time.Time) TimeRange {
	return TimeRange{Start: start.Add(-skewBuffer), End: end.Add(skewBuffer)}
}

// DayString formats t as the YYYY-MM-DD board date in loc; it is the value
// stored in Content.TaskDate.
func DayString(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
