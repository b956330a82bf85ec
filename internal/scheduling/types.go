package scheduling

import (
	"fmt"
	"time"
)

// Interval is a half-open time range [Start, End) in UTC.
// Adjacent intervals with equal boundaries tile without overlapping.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals share any instant.
// An interval ending exactly where another starts does not overlap it.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Duration returns the length of the interval.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// IsValid reports whether the interval is well-formed (End after Start).
func (iv Interval) IsValid() bool {
	return iv.End.After(iv.Start)
}

// BusyInterval is an existing calendar commitment that blocks candidate slots.
// Busy intervals come from an external provider and may arrive unsorted,
// overlapping, or malformed; the engine treats them as a read-only snapshot.
type BusyInterval struct {
	Interval
}

// Slot is a duration-sized candidate booking window within business hours.
type Slot struct {
	Interval
	Available bool
}

// Date is a calendar date without a time component. Business-hour boundaries
// are anchored to dates in the policy timezone, not to instants.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the Date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf returns the Date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Next returns the following calendar date.
func (d Date) Next() Date {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return DateOf(t)
}

// After reports whether d is after other.
func (d Date) After(other Date) bool {
	if d.Year != other.Year {
		return d.Year > other.Year
	}
	if d.Month != other.Month {
		return d.Month > other.Month
	}
	return d.Day > other.Day
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// DateRange is an inclusive range of calendar dates interpreted in the
// policy timezone. Start == End means exactly one day.
type DateRange struct {
	Start Date
	End   Date
}

// Policy is the request configuration for one slot computation.
type Policy struct {
	DateRange       DateRange
	DurationMinutes int

	// Timezone is the IANA identifier used to anchor business-hour
	// boundaries to local wall-clock time.
	Timezone string

	// Local hour-of-day bounds (0-23); slots are only offered inside
	// [BusinessHourStart, BusinessHourEnd) on each day.
	BusinessHourStart int
	BusinessHourEnd   int
}

// Duration returns the slot length as a time.Duration.
func (p Policy) Duration() time.Duration {
	return time.Duration(p.DurationMinutes) * time.Minute
}
