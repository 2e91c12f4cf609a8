/*
daterange.go - Named and explicit date-range filtering

PURPOSE:
  The leaderboard views filter records through a named range (Today, ThisWeek,
  Last30Days, ...) evaluated against "now" at filter time, midnight-aligned.
  The drilldown views filter through explicit start/end ISO-date bounds.

SEMANTICS:
  - ThisWeek starts on Sunday (weekday 0)
  - Last7Days / Last30Days include today and the boundary N-1 days back
  - ThisMonth is a calendar-month match (future days of the month included)
  - A record without a date fails every named range except All
  - Under explicit bounds, a record without a date passes only when no bound
    is set

The evaluation clock is a parameter so tests pin "now"; callers pass
time.Now() in production.
*/
package record

import "time"

// =============================================================================
// NAMED RANGES
// =============================================================================

type DateRange string

const (
	RangeAll        DateRange = "All"
	RangeToday      DateRange = "Today"
	RangeYesterday  DateRange = "Yesterday"
	RangeLast7Days  DateRange = "Last7Days"
	RangeThisWeek   DateRange = "ThisWeek"
	RangeThisMonth  DateRange = "ThisMonth"
	RangeLast30Days DateRange = "Last30Days"
)

// NamedRanges lists every supported range in display order.
var NamedRanges = []DateRange{
	RangeAll, RangeToday, RangeYesterday, RangeLast7Days,
	RangeThisWeek, RangeThisMonth, RangeLast30Days,
}

func stripTime(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Contains reports whether the midnight-aligned day of t falls inside the
// range, evaluated relative to now.
func (dr DateRange) Contains(t, now time.Time) bool {
	today := stripTime(now)
	day := stripTime(t)

	switch dr {
	case RangeAll, "":
		return true
	case RangeToday:
		return day.Equal(today)
	case RangeYesterday:
		return day.Equal(today.AddDate(0, 0, -1))
	case RangeLast7Days:
		start := today.AddDate(0, 0, -6)
		return !day.Before(start) && !day.After(today)
	case RangeThisWeek:
		start := today.AddDate(0, 0, -int(today.Weekday()))
		return !day.Before(start) && !day.After(today)
	case RangeThisMonth:
		return day.Year() == today.Year() && day.Month() == today.Month()
	case RangeLast30Days:
		start := today.AddDate(0, 0, -29)
		return !day.Before(start) && !day.After(today)
	default:
		return true
	}
}

// ContainsISO applies Contains to a "YYYY-MM-DD" string. A record without a
// resolvable date only passes the All range.
func (dr DateRange) ContainsISO(iso string, now time.Time) bool {
	if dr == RangeAll || dr == "" {
		return true
	}
	if iso == "" {
		return false
	}
	day, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return false
	}
	return dr.Contains(day, now)
}

// FilterByRange keeps the records whose resolved date falls inside the named
// range. The input slice is never mutated.
func FilterByRange(records []NormalizedRecord, dr DateRange, now time.Time) []NormalizedRecord {
	if dr == RangeAll || dr == "" {
		out := make([]NormalizedRecord, len(records))
		copy(out, records)
		return out
	}
	var out []NormalizedRecord
	for _, r := range records {
		if dr.ContainsISO(r.ISODate, now) {
			out = append(out, r)
		}
	}
	return out
}

// =============================================================================
// EXPLICIT BOUNDS
// =============================================================================

// InBounds applies explicit "YYYY-MM-DD" start/end bounds (either may be
// empty). ISO date strings compare lexically, which matches chronological
// order for this shape. A record without a date passes only when neither
// bound is set.
func InBounds(iso, start, end string) bool {
	if iso == "" {
		return start == "" && end == ""
	}
	if start != "" && iso < start {
		return false
	}
	if end != "" && iso > end {
		return false
	}
	return true
}

// FilterByBounds keeps the records passing InBounds.
func FilterByBounds(records []NormalizedRecord, start, end string) []NormalizedRecord {
	if start == "" && end == "" {
		out := make([]NormalizedRecord, len(records))
		copy(out, records)
		return out
	}
	var out []NormalizedRecord
	for _, r := range records {
		if InBounds(r.ISODate, start, end) {
			out = append(out, r)
		}
	}
	return out
}
