package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"

	"github.com/slotwise/slotwise/internal/calendar"
	"github.com/slotwise/slotwise/internal/scheduling"
)

const (
	toolCheckAvailability = "check_calendar_availability"
	toolCreateAppointment = "create_calendar_appointment"

	// appointmentTimeLayout is the UTC wall-clock format the model is
	// instructed to use for appointment boundaries.
	appointmentTimeLayout = "2006-01-02 15:04:05"
)

// CalendarService is the calendar surface the agent tools need.
// *calendar.Client satisfies it.
type CalendarService interface {
	AvailableSlots(ctx context.Context, calendarID string, policy scheduling.Policy) ([]scheduling.Slot, error)
	CreateEvent(calendarID string, input calendar.EventInput) (*calendar.EventSummary, error)
}

// calendarTools returns the Gemini function declarations for the scheduling tools.
func calendarTools() []*genai.Tool {
	return []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        toolCheckAvailability,
					Description: "Find available appointment slots within business hours for a date range.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"start_date": {
								Type:        genai.TypeString,
								Description: "The start date for checking availability, in YYYY-MM-DD format. Infer from conversation.",
							},
							"end_date": {
								Type:        genai.TypeString,
								Description: "The end date for checking availability, in YYYY-MM-DD format. Often 2-3 days from start_date if not specified by user.",
							},
							"duration_minutes": {
								Type:        genai.TypeInteger,
								Description: "The duration of the meeting in minutes. Defaults to 30 minutes.",
							},
							"user_timezone": {
								Type:        genai.TypeString,
								Description: "The user's timezone to correctly interpret dates and define business hours (e.g., 'America/New_York'). Defaults to UTC.",
							},
							"business_hour_start": {
								Type:        genai.TypeInteger,
								Description: "Business day start hour (e.g., 9 for 9 AM in user_timezone).",
							},
							"business_hour_end": {
								Type:        genai.TypeInteger,
								Description: "Business day end hour (e.g., 18 for 6 PM in user_timezone).",
							},
							"calendar_id": {
								Type:        genai.TypeString,
								Description: "Calendar ID to check. Defaults to 'primary'.",
							},
						},
						Required: []string{"start_date", "end_date"},
					},
				},
				{
					Name:        toolCreateAppointment,
					Description: "Book an appointment after the user has confirmed a slot and all details.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"title": {
								Type:        genai.TypeString,
								Description: "The title of the appointment.",
							},
							"start_time": {
								Type:        genai.TypeString,
								Description: "The start date and time of the appointment in 'YYYY-MM-DD HH:MM:SS' format. This MUST be in UTC.",
							},
							"end_time": {
								Type:        genai.TypeString,
								Description: "The end date and time of the appointment in 'YYYY-MM-DD HH:MM:SS' format. This MUST be in UTC.",
							},
							"description": {
								Type:        genai.TypeString,
								Description: "A description for the appointment.",
							},
							"attendees": {
								Type:        genai.TypeArray,
								Description: "A list of attendee email addresses.",
								Items:       &genai.Schema{Type: genai.TypeString},
							},
							"location": {
								Type:        genai.TypeString,
								Description: "The location of the appointment.",
							},
							"calendar_id": {
								Type:        genai.TypeString,
								Description: "Calendar ID to create the event in. Defaults to 'primary'.",
							},
							"send_notifications": {
								Type:        genai.TypeBoolean,
								Description: "Whether to send notifications to attendees. Defaults to true.",
							},
						},
						Required: []string{"title", "start_time", "end_time"},
					},
				},
			},
		},
	}
}

// checkAvailabilityArgs carries the parsed arguments of check_calendar_availability.
type checkAvailabilityArgs struct {
	Policy     scheduling.Policy
	CalendarID string
}

func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// intArg accepts float64 and int encodings since function-call arguments
// arrive as decoded JSON numbers.
func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return fallback
	}
}

func parseCheckAvailabilityArgs(args map[string]any) (checkAvailabilityArgs, error) {
	startStr, ok := args["start_date"].(string)
	if !ok || startStr == "" {
		return checkAvailabilityArgs{}, fmt.Errorf("start_date is required")
	}
	start, err := scheduling.ParseDate(startStr)
	if err != nil {
		return checkAvailabilityArgs{}, err
	}

	endStr, ok := args["end_date"].(string)
	if !ok || endStr == "" {
		return checkAvailabilityArgs{}, fmt.Errorf("end_date is required")
	}
	end, err := scheduling.ParseDate(endStr)
	if err != nil {
		return checkAvailabilityArgs{}, err
	}

	return checkAvailabilityArgs{
		Policy: scheduling.Policy{
			DateRange:         scheduling.DateRange{Start: start, End: end},
			DurationMinutes:   intArg(args, "duration_minutes", 30),
			Timezone:          stringArg(args, "user_timezone", "UTC"),
			BusinessHourStart: intArg(args, "business_hour_start", 9),
			BusinessHourEnd:   intArg(args, "business_hour_end", 18),
		},
		CalendarID: stringArg(args, "calendar_id", "primary"),
	}, nil
}

// createAppointmentArgs carries the parsed arguments of create_calendar_appointment.
type createAppointmentArgs struct {
	CalendarID string
	Input      calendar.EventInput
}

func parseAppointmentTime(value string) (time.Time, error) {
	if t, err := time.Parse(appointmentTimeLayout, value); err == nil {
		return t.UTC(), nil
	}
	// Models occasionally emit RFC3339 despite the instructions.
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: expected UTC 'YYYY-MM-DD HH:MM:SS'", value)
	}
	return t.UTC(), nil
}

func parseCreateAppointmentArgs(args map[string]any) (createAppointmentArgs, error) {
	title, ok := args["title"].(string)
	if !ok || title == "" {
		return createAppointmentArgs{}, fmt.Errorf("title is required")
	}

	startStr, ok := args["start_time"].(string)
	if !ok || startStr == "" {
		return createAppointmentArgs{}, fmt.Errorf("start_time is required")
	}
	start, err := parseAppointmentTime(startStr)
	if err != nil {
		return createAppointmentArgs{}, err
	}

	endStr, ok := args["end_time"].(string)
	if !ok || endStr == "" {
		return createAppointmentArgs{}, fmt.Errorf("end_time is required")
	}
	end, err := parseAppointmentTime(endStr)
	if err != nil {
		return createAppointmentArgs{}, err
	}

	if !start.Before(end) {
		return createAppointmentArgs{}, fmt.Errorf("start_time must be before end_time")
	}

	input := calendar.EventInput{
		Summary:           title,
		Start:             start,
		End:               end,
		TimeZone:          "UTC",
		SendNotifications: true,
	}

	if desc, ok := args["description"].(string); ok {
		input.Description = desc
	}
	if loc, ok := args["location"].(string); ok {
		input.Location = loc
	}
	if send, ok := args["send_notifications"].(bool); ok {
		input.SendNotifications = send
	}

	switch attendees := args["attendees"].(type) {
	case []any:
		for _, a := range attendees {
			if email, ok := a.(string); ok && email != "" {
				input.Attendees = append(input.Attendees, strings.TrimSpace(email))
			}
		}
	case []string:
		input.Attendees = attendees
	case string:
		if attendees != "" {
			for _, email := range strings.Split(attendees, ",") {
				input.Attendees = append(input.Attendees, strings.TrimSpace(email))
			}
		}
	}

	return createAppointmentArgs{
		CalendarID: stringArg(args, "calendar_id", "primary"),
		Input:      input,
	}, nil
}

// dispatchToolCall executes one function call against the calendar service.
// Failures are rendered into the response map so the model can explain them
// to the user; they are never retried here.
func (a *Agent) dispatchToolCall(ctx context.Context, call genai.FunctionCall) map[string]any {
	switch call.Name {
	case toolCheckAvailability:
		return a.checkAvailability(ctx, call.Args)
	case toolCreateAppointment:
		return a.createAppointment(ctx, call.Args)
	default:
		return map[string]any{"error": fmt.Sprintf("unknown tool %q", call.Name)}
	}
}

func (a *Agent) checkAvailability(ctx context.Context, args map[string]any) map[string]any {
	parsed, err := parseCheckAvailabilityArgs(args)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("An error occurred while checking calendar availability: %v. Please inform the user.", err)}
	}

	slots, err := a.calendar.AvailableSlots(ctx, parsed.CalendarID, parsed.Policy)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("An error occurred while checking calendar availability: %v. Please inform the user.", err)}
	}

	if len(slots) == 0 {
		return map[string]any{
			"message": "No available slots found for the specified criteria. You might want to suggest trying different dates or a wider range.",
		}
	}

	rendered := make([]map[string]any, 0, len(slots))
	for _, slot := range slots {
		rendered = append(rendered, map[string]any{
			"start": slot.Start.Format(time.RFC3339),
			"end":   slot.End.Format(time.RFC3339),
		})
	}

	return map[string]any{
		"slots":    rendered,
		"count":    len(slots),
		"timezone": parsed.Policy.Timezone,
	}
}

func (a *Agent) createAppointment(ctx context.Context, args map[string]any) map[string]any {
	parsed, err := parseCreateAppointmentArgs(args)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("An error occurred while creating the appointment: %v. Please inform the user and perhaps suggest they try again after checking their inputs.", err)}
	}

	event, err := a.calendar.CreateEvent(parsed.CalendarID, parsed.Input)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("An error occurred while creating the appointment: %v. Please inform the user and perhaps suggest they try again after checking their inputs.", err)}
	}

	result := map[string]any{
		"status":        "success",
		"event_summary": event.Summary,
		"event_id":      event.ID,
	}
	if event.HTMLLink != "" {
		result["html_link"] = event.HTMLLink
	}
	return result
}
