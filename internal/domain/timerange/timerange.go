// Package timerange implements half-open calendar date intervals and the
// window arithmetic the calculation pipeline is built on.
package timerange

import (
	"fmt"
	"time"
)

// metricPeriodMonths holds the trailing reporting window sizes, largest
// first. The one-month window is represented by an event's own calendar
// month rather than by this list.
var metricPeriodMonths = []int{36, 12, 6, 3}

// YearMonth identifies one calendar month.
type YearMonth struct {
	Year  int
	Month int
}

// TimeRange is a half-open interval [Lower, Upper) over calendar dates.
// A range with Upper <= Lower is logically empty; queries on it return
// empty results rather than errors.
type TimeRange struct {
	Lower time.Time // inclusive
	Upper time.Time // exclusive
}

// New builds a TimeRange from an inclusive lower and exclusive upper date.
func New(lower, upper time.Time) TimeRange {
	return TimeRange{Lower: midnight(lower), Upper: midnight(upper)}
}

// ForMonth returns the range covering one calendar month.
func ForMonth(year, month int) TimeRange {
	return TimeRange{
		Lower: date(year, month, 1),
		Upper: date(year, month+1, 1),
	}
}

// ForYear returns the range covering one calendar year.
func ForYear(year int) TimeRange {
	return TimeRange{
		Lower: date(year, 1, 1),
		Upper: date(year+1, 1, 1),
	}
}

// IsEmpty reports whether the range contains no days.
func (r TimeRange) IsEmpty() bool {
	return !r.Upper.After(r.Lower)
}

// Contains reports whether d falls inside the range.
func (r TimeRange) Contains(d time.Time) bool {
	d = midnight(d)
	return !d.Before(r.Lower) && d.Before(r.Upper)
}

// MonthsTouched returns every (year, month) pair the range intersects at
// all, in chronological order. Empty ranges touch no months.
func (r TimeRange) MonthsTouched() []YearMonth {
	if r.IsEmpty() {
		return nil
	}
	var months []YearMonth
	cur := date(r.Lower.Year(), int(r.Lower.Month()), 1)
	for cur.Before(r.Upper) {
		months = append(months, YearMonth{Year: cur.Year(), Month: int(cur.Month())})
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}

// IntersectWithMonth confines the range to one calendar month. The second
// return value is false when the range and the month are disjoint.
func (r TimeRange) IntersectWithMonth(year, month int) (TimeRange, bool) {
	return r.intersect(ForMonth(year, month))
}

func (r TimeRange) intersect(other TimeRange) (TimeRange, bool) {
	overlap := TimeRange{
		Lower: maxDate(r.Lower, other.Lower),
		Upper: minDate(r.Upper, other.Upper),
	}
	if overlap.IsEmpty() {
		return TimeRange{}, false
	}
	return overlap, true
}

// RangeDiff describes how two ranges overlap. NonOverlappingA holds the
// portions of A not covered by B in chronological order (0, 1, or 2
// entries), and symmetrically for NonOverlappingB. The overlap plus a
// range's non-overlapping parts reconstruct that range exactly.
type RangeDiff struct {
	Overlap         TimeRange
	Overlaps        bool
	NonOverlappingA []TimeRange
	NonOverlappingB []TimeRange
}

// Diff computes the overlap and set-difference between two ranges.
func Diff(a, b TimeRange) RangeDiff {
	overlap, ok := a.intersect(b)
	return RangeDiff{
		Overlap:         overlap,
		Overlaps:        ok,
		NonOverlappingA: subtract(a, b),
		NonOverlappingB: subtract(b, a),
	}
}

// subtract returns the portions of r not covered by other.
func subtract(r, other TimeRange) []TimeRange {
	if r.IsEmpty() {
		return nil
	}
	var parts []TimeRange
	before := TimeRange{Lower: r.Lower, Upper: minDate(r.Upper, other.Lower)}
	if !before.IsEmpty() {
		parts = append(parts, before)
	}
	after := TimeRange{Lower: maxDate(r.Lower, other.Upper), Upper: r.Upper}
	if !after.IsEmpty() {
		parts = append(parts, after)
	}
	if len(parts) == 2 && parts[0] == parts[1] {
		// other is empty or fully disjoint on one side; keep a single part
		parts = parts[:1]
	}
	return parts
}

// RelevantMetricPeriods returns the trailing window sizes, largest first,
// whose window contains eventDate. Every window ends on the last day of
// (endYear, endMonth); a window of n months starts on the first day of the
// month n-1 months earlier. The start day itself is included.
func RelevantMetricPeriods(eventDate time.Time, endYear, endMonth int) []int {
	eventDate = midnight(eventDate)
	endOfWindows := date(endYear, endMonth+1, 1)
	if !eventDate.Before(endOfWindows) {
		return nil
	}
	var relevant []int
	for _, months := range metricPeriodMonths {
		start := date(endYear, endMonth-(months-1), 1)
		if !eventDate.Before(start) {
			relevant = append(relevant, months)
		}
	}
	return relevant
}

// MonthUpperBound parses a "YYYY-MM" value and returns the last day of that
// month, used as the inclusive calculation upper bound.
func MonthUpperBound(value string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01", value, time.UTC)
	if err != nil || t.Year() < 1000 {
		return time.Time{}, fmt.Errorf("invalid value for calculation_end_month: %s", value)
	}
	return date(t.Year(), int(t.Month())+1, 1).AddDate(0, 0, -1), nil
}

// date builds a UTC midnight date, normalizing out-of-range months.
func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// midnight truncates a timestamp to its UTC calendar date.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func minDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
