// Package scheduling implements the availability-slot computation engine.
//
// Given a snapshot of busy intervals on a calendar and a scheduling policy
// (date range, slot duration, timezone, business hours), the engine produces
// the ordered list of bookable slots that do not overlap any busy interval.
//
// The engine is a pure computation: it performs no I/O, holds no state, and
// may be called concurrently. Fetching busy intervals from a calendar
// provider is the caller's concern (see the calendar package).
//
// Example usage:
//
//	policy := scheduling.Policy{
//	    DateRange:         scheduling.DateRange{Start: scheduling.NewDate(2025, time.March, 3), End: scheduling.NewDate(2025, time.March, 5)},
//	    DurationMinutes:   30,
//	    Timezone:          "Europe/Berlin",
//	    BusinessHourStart: 9,
//	    BusinessHourEnd:   18,
//	}
//	slots, err := scheduling.ComputeSlots(busy, policy)
package scheduling
