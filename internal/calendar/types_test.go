package calendar

import (
	"errors"
	"testing"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

func TestToEventSummary_Nil(t *testing.T) {
	summary := toEventSummary(nil)
	if summary.ID != "" {
		t.Errorf("Expected empty ID for nil event, got %s", summary.ID)
	}
}

func TestToEventSummary_TimedEvent(t *testing.T) {
	event := &calendar.Event{
		Id:      "evt1",
		Summary: "Planning",
		Status:  "confirmed",
		Start:   &calendar.EventDateTime{DateTime: "2024-01-02T09:30:00Z"},
		End:     &calendar.EventDateTime{DateTime: "2024-01-02T10:00:00Z"},
		Creator: &calendar.EventCreator{Email: "alice@example.com"},
		Attendees: []*calendar.EventAttendee{
			{Email: "bob@example.com", ResponseStatus: "accepted"},
		},
	}

	summary := toEventSummary(event)
	if summary.ID != "evt1" || summary.Summary != "Planning" {
		t.Errorf("unexpected summary %+v", summary)
	}
	if summary.AllDay {
		t.Error("timed event must not be all-day")
	}
	if !summary.Start.Equal(time.Date(2024, time.January, 2, 9, 30, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %v", summary.Start)
	}
	if len(summary.Attendees) != 1 || summary.Attendees[0].Email != "bob@example.com" {
		t.Errorf("unexpected attendees %+v", summary.Attendees)
	}
}

func TestToEventSummary_AllDayEvent(t *testing.T) {
	event := &calendar.Event{
		Id:    "evt2",
		Start: &calendar.EventDateTime{Date: "2024-01-02"},
		End:   &calendar.EventDateTime{Date: "2024-01-03"},
	}

	summary := toEventSummary(event)
	if !summary.AllDay {
		t.Error("expected all-day event")
	}
}

func TestToCalendarInfo_Nil(t *testing.T) {
	info := toCalendarInfo(nil)
	if info.ID != "" {
		t.Errorf("Expected empty ID for nil entry, got %s", info.ID)
	}
}

func TestEventBusyInterval(t *testing.T) {
	tests := []struct {
		name  string
		event *calendar.Event
		want  bool
	}{
		{
			name: "timed event is busy",
			event: &calendar.Event{
				Start: &calendar.EventDateTime{DateTime: "2024-01-02T09:30:00Z"},
				End:   &calendar.EventDateTime{DateTime: "2024-01-02T10:00:00Z"},
			},
			want: true,
		},
		{
			name: "all-day event is not busy",
			event: &calendar.Event{
				Start: &calendar.EventDateTime{Date: "2024-01-02"},
				End:   &calendar.EventDateTime{Date: "2024-01-03"},
			},
			want: false,
		},
		{
			name: "missing end is not busy",
			event: &calendar.Event{
				Start: &calendar.EventDateTime{DateTime: "2024-01-02T09:30:00Z"},
			},
			want: false,
		},
		{
			name: "garbled timestamp is not busy",
			event: &calendar.Event{
				Start: &calendar.EventDateTime{DateTime: "yesterday-ish"},
				End:   &calendar.EventDateTime{DateTime: "2024-01-02T10:00:00Z"},
			},
			want: false,
		},
		{
			name: "zero-length event is not busy",
			event: &calendar.Event{
				Start: &calendar.EventDateTime{DateTime: "2024-01-02T10:00:00Z"},
				End:   &calendar.EventDateTime{DateTime: "2024-01-02T10:00:00Z"},
			},
			want: false,
		},
		{
			name:  "nil event is not busy",
			event: nil,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interval, ok := eventBusyInterval(tt.event)
			if ok != tt.want {
				t.Errorf("eventBusyInterval() ok = %v, want %v", ok, tt.want)
			}
			if ok && !interval.IsValid() {
				t.Errorf("busy interval must be well-formed, got %+v", interval)
			}
		})
	}
}

func TestEventBusyInterval_NormalizesToUTC(t *testing.T) {
	event := &calendar.Event{
		Start: &calendar.EventDateTime{DateTime: "2024-01-02T10:30:00+01:00"},
		End:   &calendar.EventDateTime{DateTime: "2024-01-02T11:00:00+01:00"},
	}

	interval, ok := eventBusyInterval(event)
	if !ok {
		t.Fatal("expected busy interval")
	}
	want := time.Date(2024, time.January, 2, 9, 30, 0, 0, time.UTC)
	if !interval.Start.Equal(want) {
		t.Errorf("start = %v, want %v", interval.Start, want)
	}
	if interval.Start.Location() != time.UTC {
		t.Error("busy intervals must be normalized to UTC")
	}
}

func TestProviderError_Unwrap(t *testing.T) {
	cause := errors.New("rate limited")
	err := providerErr("list events", cause)

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatal("expected *ProviderError")
	}
	if !errors.Is(err, cause) {
		t.Error("provider error must propagate its cause unchanged")
	}
	if provErr.Op != "list events" {
		t.Errorf("unexpected op %q", provErr.Op)
	}
}

func TestHasTokenForAccount_Empty(t *testing.T) {
	if HasTokenForAccount("") {
		t.Error("Expected false for empty account name")
	}
}
