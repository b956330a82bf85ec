package calendar_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/slotwise/slotwise/internal/instrumentation"
	"github.com/slotwise/slotwise/internal/scheduling"
	"github.com/slotwise/slotwise/internal/server"
	"github.com/slotwise/slotwise/internal/tools/common"
)

// RegisterSchedulingTools registers scheduling and availability tools with the MCP server
func RegisterSchedulingTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Query free/busy tool
	queryFreeBusyTool := mcp.NewTool("calendar_query_freebusy",
		mcp.WithDescription("Check availability for one or more calendars/attendees in a time range"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("timeMin",
			mcp.Required(),
			mcp.Description("Start time for the range (RFC3339 format, e.g., '2025-01-01T00:00:00Z')"),
		),
		mcp.WithString("timeMax",
			mcp.Required(),
			mcp.Description("End time for the range (RFC3339 format, e.g., '2025-01-31T23:59:59Z')"),
		),
		mcp.WithString("calendars",
			mcp.Required(),
			mcp.Description("Comma-separated list of calendar IDs or email addresses to check"),
		),
	)

	s.AddTool(queryFreeBusyTool, common.InstrumentedToolHandlerWithService(
		"calendar_query_freebusy", "calendar", "freebusy", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleQueryFreeBusy(ctx, request, sc)
		}))

	// Find slots tool
	findSlotsTool := mcp.NewTool("calendar_find_slots",
		mcp.WithDescription("Compute available booking slots within business hours for a date range"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (use 'primary' for primary calendar)"),
		),
		mcp.WithString("dateStart",
			mcp.Required(),
			mcp.Description("First day of the search range (YYYY-MM-DD, e.g., '2025-01-13')"),
		),
		mcp.WithString("dateEnd",
			mcp.Required(),
			mcp.Description("Last day of the search range, inclusive (YYYY-MM-DD)"),
		),
		mcp.WithNumber("durationMinutes",
			mcp.Required(),
			mcp.Description("Appointment duration in minutes"),
		),
		mcp.WithString("timezone",
			mcp.Description("IANA timezone anchoring business hours (default: 'UTC', e.g., 'Europe/Berlin')"),
		),
		mcp.WithNumber("businessHourStart",
			mcp.Description("Business hours start, local hour 0-23 (default: 9)"),
		),
		mcp.WithNumber("businessHourEnd",
			mcp.Description("Business hours end, local hour 0-23, exclusive (default: 17)"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of available slots to return (default: 10)"),
		),
	)

	s.AddTool(findSlotsTool, common.InstrumentedToolHandlerWithService(
		"calendar_find_slots", "scheduling", "compute_slots", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindSlots(ctx, request, sc)
		}))

	return nil
}

func handleQueryFreeBusy(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	timeMinStr, ok := args["timeMin"].(string)
	if !ok || timeMinStr == "" {
		return mcp.NewToolResultError("timeMin is required"), nil
	}
	timeMin, err := time.Parse(time.RFC3339, timeMinStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid timeMin format: %v", err)), nil
	}

	timeMaxStr, ok := args["timeMax"].(string)
	if !ok || timeMaxStr == "" {
		return mcp.NewToolResultError("timeMax is required"), nil
	}
	timeMax, err := time.Parse(time.RFC3339, timeMaxStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid timeMax format: %v", err)), nil
	}

	calendarsStr, ok := args["calendars"].(string)
	if !ok || calendarsStr == "" {
		return mcp.NewToolResultError("calendars is required"), nil
	}

	calendars := strings.Split(calendarsStr, ",")
	for i := range calendars {
		calendars[i] = strings.TrimSpace(calendars[i])
	}

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	freeBusyInfos, err := client.QueryFreeBusy(timeMin, timeMax, calendars)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to query free/busy: %v", err)), nil
	}

	result := fmt.Sprintf("Free/Busy information for %d calendar(s):\n\n", len(freeBusyInfos))
	for _, info := range freeBusyInfos {
		result += fmt.Sprintf("Calendar: %s\n", info.Calendar)

		if len(info.Errors) > 0 {
			result += fmt.Sprintf("  Errors: %s\n", strings.Join(info.Errors, ", "))
		}

		if len(info.Busy) == 0 {
			result += "  Status: FREE for entire range\n"
		} else {
			result += fmt.Sprintf("  Busy periods: %d\n", len(info.Busy))
			for i, busy := range info.Busy {
				result += fmt.Sprintf("  %d. %s to %s\n",
					i+1,
					busy.Start.Format("2006-01-02 15:04"),
					busy.End.Format("2006-01-02 15:04"))
			}
		}
		result += "\n"
	}

	return mcp.NewToolResultText(result), nil
}

// policyFromArgs builds a slot computation policy from tool arguments.
// Returns a user-facing error message when an argument is missing or malformed.
func policyFromArgs(args map[string]interface{}) (scheduling.Policy, string) {
	dateStartStr, ok := args["dateStart"].(string)
	if !ok || dateStartStr == "" {
		return scheduling.Policy{}, "dateStart is required"
	}
	dateStart, err := scheduling.ParseDate(dateStartStr)
	if err != nil {
		return scheduling.Policy{}, fmt.Sprintf("Invalid dateStart: %v", err)
	}

	dateEndStr, ok := args["dateEnd"].(string)
	if !ok || dateEndStr == "" {
		return scheduling.Policy{}, "dateEnd is required"
	}
	dateEnd, err := scheduling.ParseDate(dateEndStr)
	if err != nil {
		return scheduling.Policy{}, fmt.Sprintf("Invalid dateEnd: %v", err)
	}

	durationMinutes, ok := args["durationMinutes"].(float64)
	if !ok || durationMinutes <= 0 {
		return scheduling.Policy{}, "durationMinutes is required and must be positive"
	}

	policy := scheduling.Policy{
		DateRange:         scheduling.DateRange{Start: dateStart, End: dateEnd},
		DurationMinutes:   int(durationMinutes),
		Timezone:          "UTC",
		BusinessHourStart: 9,
		BusinessHourEnd:   17,
	}

	if tz, ok := args["timezone"].(string); ok && tz != "" {
		policy.Timezone = tz
	}
	if startHour, ok := args["businessHourStart"].(float64); ok {
		policy.BusinessHourStart = int(startHour)
	}
	if endHour, ok := args["businessHourEnd"].(float64); ok {
		policy.BusinessHourEnd = int(endHour)
	}

	return policy, ""
}

func handleFindSlots(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	calendarID := "primary"
	if calIDVal, ok := args["calendarId"].(string); ok && calIDVal != "" {
		calendarID = calIDVal
	}

	policy, errMsg := policyFromArgs(args)
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}

	maxResults := 10
	if maxResultsVal, ok := args["maxResults"].(float64); ok && maxResultsVal > 0 {
		maxResults = int(maxResultsVal)
	}

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	start := time.Now()
	slots, err := client.AvailableSlots(ctx, calendarID, policy)
	elapsed := time.Since(start)

	if metrics := sc.Metrics(); metrics != nil {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
		}
		metrics.RecordSlotComputation(ctx, status, len(slots), elapsed)
	}

	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to compute slots: %v", err)), nil
	}

	if len(slots) == 0 {
		return mcp.NewToolResultText("No available slots found for the specified criteria"), nil
	}

	total := len(slots)
	if total > maxResults {
		slots = slots[:maxResults]
	}

	loc, err := time.LoadLocation(policy.Timezone)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load timezone: %v", err)), nil
	}

	result := fmt.Sprintf("Found %d available slot(s) for a %d minute appointment (showing %d, times in %s):\n\n",
		total, policy.DurationMinutes, len(slots), policy.Timezone)

	for i, slot := range slots {
		localStart := slot.Start.In(loc)
		localEnd := slot.End.In(loc)
		result += fmt.Sprintf("%d. %s to %s\n",
			i+1,
			localStart.Format("Mon, Jan 2 2006 15:04"),
			localEnd.Format("15:04"))
	}

	return mcp.NewToolResultText(result), nil
}
