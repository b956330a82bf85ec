package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotwise/slotwise/internal/calendar"
	"github.com/slotwise/slotwise/internal/scheduling"
)

type fakeCalendar struct {
	slots      []scheduling.Slot
	slotsErr   error
	lastPolicy scheduling.Policy
	lastCalID  string

	created   *calendar.EventSummary
	createErr error
	lastInput calendar.EventInput
}

func (f *fakeCalendar) AvailableSlots(ctx context.Context, calendarID string, policy scheduling.Policy) ([]scheduling.Slot, error) {
	f.lastCalID = calendarID
	f.lastPolicy = policy
	return f.slots, f.slotsErr
}

func (f *fakeCalendar) CreateEvent(calendarID string, input calendar.EventInput) (*calendar.EventSummary, error) {
	f.lastCalID = calendarID
	f.lastInput = input
	return f.created, f.createErr
}

func TestSystemPrompt(t *testing.T) {
	today := time.Date(2025, time.January, 13, 10, 0, 0, 0, time.UTC)

	linked := systemPrompt(true, today)
	assert.Contains(t, linked, "check_calendar_availability")
	assert.Contains(t, linked, "create_calendar_appointment")
	assert.Contains(t, linked, "Today's date is 2025-01-13")

	notLinked := systemPrompt(false, today)
	assert.Contains(t, notLinked, "not currently linked")
	assert.NotContains(t, notLinked, "check_calendar_availability")
}

func TestParseCheckAvailabilityArgs(t *testing.T) {
	args := map[string]any{
		"start_date":          "2025-01-13",
		"end_date":            "2025-01-15",
		"duration_minutes":    float64(45),
		"user_timezone":       "Europe/Berlin",
		"business_hour_start": float64(8),
		"business_hour_end":   float64(16),
		"calendar_id":         "team@example.com",
	}

	parsed, err := parseCheckAvailabilityArgs(args)
	require.NoError(t, err)

	assert.Equal(t, scheduling.NewDate(2025, time.January, 13), parsed.Policy.DateRange.Start)
	assert.Equal(t, scheduling.NewDate(2025, time.January, 15), parsed.Policy.DateRange.End)
	assert.Equal(t, 45, parsed.Policy.DurationMinutes)
	assert.Equal(t, "Europe/Berlin", parsed.Policy.Timezone)
	assert.Equal(t, 8, parsed.Policy.BusinessHourStart)
	assert.Equal(t, 16, parsed.Policy.BusinessHourEnd)
	assert.Equal(t, "team@example.com", parsed.CalendarID)
}

func TestParseCheckAvailabilityArgs_Defaults(t *testing.T) {
	parsed, err := parseCheckAvailabilityArgs(map[string]any{
		"start_date": "2025-01-13",
		"end_date":   "2025-01-13",
	})
	require.NoError(t, err)

	assert.Equal(t, 30, parsed.Policy.DurationMinutes)
	assert.Equal(t, "UTC", parsed.Policy.Timezone)
	assert.Equal(t, 9, parsed.Policy.BusinessHourStart)
	assert.Equal(t, 18, parsed.Policy.BusinessHourEnd)
	assert.Equal(t, "primary", parsed.CalendarID)
}

func TestParseCheckAvailabilityArgs_Errors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing start_date", map[string]any{"end_date": "2025-01-13"}},
		{"missing end_date", map[string]any{"start_date": "2025-01-13"}},
		{"malformed start_date", map[string]any{"start_date": "13/01/2025", "end_date": "2025-01-15"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCheckAvailabilityArgs(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestParseCreateAppointmentArgs(t *testing.T) {
	args := map[string]any{
		"title":              "Design review",
		"start_time":         "2025-01-15 14:00:00",
		"end_time":           "2025-01-15 15:00:00",
		"description":        "Quarterly review",
		"attendees":          []any{"a@example.com", "b@example.com"},
		"location":           "Room 4",
		"send_notifications": false,
	}

	parsed, err := parseCreateAppointmentArgs(args)
	require.NoError(t, err)

	assert.Equal(t, "Design review", parsed.Input.Summary)
	assert.Equal(t, time.Date(2025, time.January, 15, 14, 0, 0, 0, time.UTC), parsed.Input.Start)
	assert.Equal(t, time.Date(2025, time.January, 15, 15, 0, 0, 0, time.UTC), parsed.Input.End)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, parsed.Input.Attendees)
	assert.Equal(t, "Room 4", parsed.Input.Location)
	assert.False(t, parsed.Input.SendNotifications)
	assert.Equal(t, "primary", parsed.CalendarID)
}

func TestParseCreateAppointmentArgs_RFC3339Fallback(t *testing.T) {
	parsed, err := parseCreateAppointmentArgs(map[string]any{
		"title":      "Sync",
		"start_time": "2025-01-15T14:00:00Z",
		"end_time":   "2025-01-15T14:30:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.January, 15, 14, 0, 0, 0, time.UTC), parsed.Input.Start)
	assert.True(t, parsed.Input.SendNotifications, "notifications default on")
}

func TestParseCreateAppointmentArgs_Errors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing title", map[string]any{"start_time": "2025-01-15 14:00:00", "end_time": "2025-01-15 15:00:00"}},
		{"missing start", map[string]any{"title": "x", "end_time": "2025-01-15 15:00:00"}},
		{"garbage time", map[string]any{"title": "x", "start_time": "tomorrow", "end_time": "2025-01-15 15:00:00"}},
		{"inverted times", map[string]any{"title": "x", "start_time": "2025-01-15 15:00:00", "end_time": "2025-01-15 14:00:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCreateAppointmentArgs(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestDispatchToolCall_CheckAvailability(t *testing.T) {
	fake := &fakeCalendar{
		slots: []scheduling.Slot{
			{
				Interval: scheduling.Interval{
					Start: time.Date(2025, time.January, 13, 9, 0, 0, 0, time.UTC),
					End:   time.Date(2025, time.January, 13, 9, 30, 0, 0, time.UTC),
				},
				Available: true,
			},
		},
	}
	a := &Agent{calendar: fake}

	response := a.dispatchToolCall(context.Background(), genai.FunctionCall{
		Name: toolCheckAvailability,
		Args: map[string]any{
			"start_date": "2025-01-13",
			"end_date":   "2025-01-13",
		},
	})

	assert.Equal(t, 1, response["count"])
	assert.Equal(t, "primary", fake.lastCalID)
	assert.NotContains(t, response, "error")
}

func TestDispatchToolCall_CheckAvailability_NoSlots(t *testing.T) {
	a := &Agent{calendar: &fakeCalendar{}}

	response := a.dispatchToolCall(context.Background(), genai.FunctionCall{
		Name: toolCheckAvailability,
		Args: map[string]any{
			"start_date": "2025-01-13",
			"end_date":   "2025-01-13",
		},
	})

	message, ok := response["message"].(string)
	require.True(t, ok)
	assert.Contains(t, message, "No available slots")
}

func TestDispatchToolCall_ProviderErrorRenderedAsString(t *testing.T) {
	a := &Agent{calendar: &fakeCalendar{slotsErr: errors.New("freebusy quota exceeded")}}

	response := a.dispatchToolCall(context.Background(), genai.FunctionCall{
		Name: toolCheckAvailability,
		Args: map[string]any{
			"start_date": "2025-01-13",
			"end_date":   "2025-01-13",
		},
	})

	errMsg, ok := response["error"].(string)
	require.True(t, ok)
	assert.True(t, strings.Contains(errMsg, "freebusy quota exceeded"))
}

func TestDispatchToolCall_CreateAppointment(t *testing.T) {
	fake := &fakeCalendar{
		created: &calendar.EventSummary{
			ID:       "evt-1",
			Summary:  "Design review",
			HTMLLink: "https://calendar.google.com/event?eid=evt-1",
		},
	}
	a := &Agent{calendar: fake}

	response := a.dispatchToolCall(context.Background(), genai.FunctionCall{
		Name: toolCreateAppointment,
		Args: map[string]any{
			"title":      "Design review",
			"start_time": "2025-01-15 14:00:00",
			"end_time":   "2025-01-15 15:00:00",
		},
	})

	assert.Equal(t, "success", response["status"])
	assert.Equal(t, "evt-1", response["event_id"])
	assert.Equal(t, "Design review", fake.lastInput.Summary)
}

func TestDispatchToolCall_UnknownTool(t *testing.T) {
	a := &Agent{calendar: &fakeCalendar{}}

	response := a.dispatchToolCall(context.Background(), genai.FunctionCall{Name: "delete_everything"})

	errMsg, ok := response["error"].(string)
	require.True(t, ok)
	assert.Contains(t, errMsg, "unknown tool")
}

func TestCalendarTools_Declarations(t *testing.T) {
	tools := calendarTools()
	require.Len(t, tools, 1)
	require.Len(t, tools[0].FunctionDeclarations, 2)

	names := []string{
		tools[0].FunctionDeclarations[0].Name,
		tools[0].FunctionDeclarations[1].Name,
	}
	assert.Contains(t, names, toolCheckAvailability)
	assert.Contains(t, names, toolCreateAppointment)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}
