package scheduling

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPolicy is the sentinel for malformed scheduling policies.
// Policy errors are deterministic and must never be retried.
var ErrInvalidPolicy = errors.New("invalid scheduling policy")

func invalidPolicy(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidPolicy, fmt.Sprintf(format, args...))
}

// Validate checks the policy and returns an ErrInvalidPolicy-classed error
// if it is malformed. ComputeSlots validates again, so callers only need
// this for early feedback.
func (p Policy) Validate() error {
	if p.DurationMinutes <= 0 {
		return invalidPolicy("duration must be positive, got %d minutes", p.DurationMinutes)
	}
	if p.BusinessHourStart < 0 || p.BusinessHourStart > 23 {
		return invalidPolicy("business hour start %d out of range [0,23]", p.BusinessHourStart)
	}
	if p.BusinessHourEnd < 0 || p.BusinessHourEnd > 23 {
		return invalidPolicy("business hour end %d out of range [0,23]", p.BusinessHourEnd)
	}
	if p.BusinessHourEnd <= p.BusinessHourStart {
		return invalidPolicy("business hours inverted: end %d must be after start %d", p.BusinessHourEnd, p.BusinessHourStart)
	}
	if p.DateRange.Start.After(p.DateRange.End) {
		return invalidPolicy("date range inverted: %s is after %s", p.DateRange.Start, p.DateRange.End)
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return invalidPolicy("unknown timezone %q", p.Timezone)
	}
	return nil
}

// ComputeSlots converts a snapshot of busy intervals plus a policy into the
// ordered list of available slots.
//
// Each calendar day in the inclusive date range is tiled with consecutive
// duration-sized windows between the localized business-hour bounds; the
// trailing window that would extend past the end of business hours is
// dropped. A window overlapping any busy interval (half-open semantics) is
// excluded from the output; window boundaries are computed independently of
// availability so that filtering never shifts later windows.
//
// Busy entries with End <= Start are ignored rather than rejected: providers
// return such entries for all-day events, which carry no timed boundaries
// and are out of scope for conflict checking.
//
// Local wall-clock bounds are resolved with time.Date in the policy zone,
// which selects the zone's canonical mapping for ambiguous or skipped local
// times around DST transitions; every interval comparison afterwards happens
// in UTC. The computation is pure and deterministic: identical inputs yield
// identical, identically-ordered output.
func ComputeSlots(busy []BusyInterval, policy Policy) ([]Slot, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(policy.Timezone)
	if err != nil {
		// Validate already resolved the zone; this is unreachable in practice.
		return nil, invalidPolicy("unknown timezone %q", policy.Timezone)
	}

	// Input is a read-only snapshot; filter malformed entries without
	// touching the caller's slice.
	conflicts := make([]Interval, 0, len(busy))
	for _, b := range busy {
		if b.IsValid() {
			conflicts = append(conflicts, b.Interval)
		}
	}

	duration := policy.Duration()
	var slots []Slot

	for day := policy.DateRange.Start; !day.After(policy.DateRange.End); day = day.Next() {
		dayStart := time.Date(day.Year, day.Month, day.Day, policy.BusinessHourStart, 0, 0, 0, loc).UTC()
		dayEnd := time.Date(day.Year, day.Month, day.Day, policy.BusinessHourEnd, 0, 0, 0, loc).UTC()

		for winStart := dayStart; !winStart.Add(duration).After(dayEnd); winStart = winStart.Add(duration) {
			window := Interval{Start: winStart, End: winStart.Add(duration)}

			available := true
			for _, c := range conflicts {
				if window.Overlaps(c) {
					available = false
					break
				}
			}
			if available {
				slots = append(slots, Slot{Interval: window, Available: true})
			}
		}
	}

	return slots, nil
}
