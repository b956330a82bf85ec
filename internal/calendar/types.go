package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/slotwise/slotwise/internal/scheduling"
)

// EventInput represents the input for creating or updating a calendar event
type EventInput struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Attendees   []string

	// AllDay events carry dates instead of instants and never count as busy.
	AllDay bool

	// SendNotifications controls whether attendees are notified.
	SendNotifications bool
}

// EventSummary represents a simplified calendar event for listing
type EventSummary struct {
	ID          string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Creator     string
	Organizer   string
	Status      string
	Attendees   []AttendeeInfo
	HTMLLink    string
}

// AttendeeInfo represents information about an event attendee
type AttendeeInfo struct {
	Email          string
	DisplayName    string
	ResponseStatus string // "needsAction", "declined", "tentative", "accepted"
	Optional       bool
	Organizer      bool
}

// CalendarInfo represents information about a calendar
type CalendarInfo struct {
	ID          string
	Summary     string
	Description string
	TimeZone    string
	Primary     bool
	AccessRole  string // "owner", "writer", "reader", "freeBusyReader"
}

// FreeBusyInfo represents availability information for a calendar
type FreeBusyInfo struct {
	Calendar string
	Busy     []scheduling.Interval
	Errors   []string
}

// toEventSummary converts a Google Calendar event to an EventSummary
func toEventSummary(event *calendar.Event) EventSummary {
	if event == nil {
		return EventSummary{}
	}

	summary := EventSummary{
		ID:          event.Id,
		Summary:     event.Summary,
		Description: event.Description,
		Location:    event.Location,
		Status:      event.Status,
		HTMLLink:    event.HtmlLink,
	}

	if event.Start != nil {
		if event.Start.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, event.Start.DateTime); err == nil {
				summary.Start = t
			}
		} else if event.Start.Date != "" {
			summary.AllDay = true
			if t, err := time.Parse("2006-01-02", event.Start.Date); err == nil {
				summary.Start = t
			}
		}
	}

	if event.End != nil {
		if event.End.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, event.End.DateTime); err == nil {
				summary.End = t
			}
		} else if event.End.Date != "" {
			summary.AllDay = true
			if t, err := time.Parse("2006-01-02", event.End.Date); err == nil {
				summary.End = t
			}
		}
	}

	if event.Creator != nil {
		summary.Creator = event.Creator.Email
	}
	if event.Organizer != nil {
		summary.Organizer = event.Organizer.Email
	}

	for _, att := range event.Attendees {
		summary.Attendees = append(summary.Attendees, AttendeeInfo{
			Email:          att.Email,
			DisplayName:    att.DisplayName,
			ResponseStatus: att.ResponseStatus,
			Optional:       att.Optional,
			Organizer:      att.Organizer,
		})
	}

	return summary
}

// toCalendarInfo converts a Google Calendar list entry to CalendarInfo
func toCalendarInfo(entry *calendar.CalendarListEntry) CalendarInfo {
	if entry == nil {
		return CalendarInfo{}
	}
	return CalendarInfo{
		ID:          entry.Id,
		Summary:     entry.Summary,
		Description: entry.Description,
		TimeZone:    entry.TimeZone,
		Primary:     entry.Primary,
		AccessRole:  entry.AccessRole,
	}
}

// eventBusyInterval derives the busy interval of an event, if it has one.
// Events without timed boundaries on both ends (all-day entries, malformed
// data) are not busy: they are out of scope for conflict checking.
func eventBusyInterval(event *calendar.Event) (scheduling.BusyInterval, bool) {
	if event == nil || event.Start == nil || event.End == nil {
		return scheduling.BusyInterval{}, false
	}
	if event.Start.DateTime == "" || event.End.DateTime == "" {
		return scheduling.BusyInterval{}, false
	}

	start, err := time.Parse(time.RFC3339, event.Start.DateTime)
	if err != nil {
		return scheduling.BusyInterval{}, false
	}
	end, err := time.Parse(time.RFC3339, event.End.DateTime)
	if err != nil {
		return scheduling.BusyInterval{}, false
	}

	busy := scheduling.BusyInterval{
		Interval: scheduling.Interval{Start: start.UTC(), End: end.UTC()},
	}
	if !busy.IsValid() {
		return scheduling.BusyInterval{}, false
	}
	return busy, true
}
