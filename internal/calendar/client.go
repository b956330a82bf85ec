package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/slotwise/slotwise/internal/google"
	"github.com/slotwise/slotwise/internal/scheduling"
)

// Client wraps the Google Calendar service
type Client struct {
	svc           *calendar.Service
	account       string // The account this client is associated with
	tokenProvider google.TokenProvider
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// HasTokenForAccountWithProvider checks if a valid OAuth token exists for the specified account
func HasTokenForAccountWithProvider(account string, provider google.TokenProvider) bool {
	if provider == nil {
		return false
	}
	return provider.HasTokenForAccount(account)
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account
func HasTokenForAccount(account string) bool {
	provider := google.NewFileTokenProvider()
	return HasTokenForAccountWithProvider(account, provider)
}

// HasToken checks if a valid OAuth token exists for the default account
func HasToken() bool {
	return HasTokenForAccount("default")
}

// GetAuthURLForAccount returns the OAuth authorization URL for an account
func GetAuthURLForAccount(account string) string {
	return google.GetAuthURLForAccount(account)
}

// NewClientForAccountWithProvider creates a new Calendar client with OAuth2 authentication for a specific account
// The OAuth token is retrieved from the provided token provider
func NewClientForAccountWithProvider(ctx context.Context, account string, tokenProvider google.TokenProvider) (*Client, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	token, err := tokenProvider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	conf := google.GetOAuthConfig()
	tokenSource := conf.TokenSource(ctx, token)

	client := oauth2.NewClient(ctx, tokenSource)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		svc:           svc,
		account:       account,
		tokenProvider: tokenProvider,
	}, nil
}

// NewClientForAccount creates a new Calendar client with OAuth2 authentication for a specific account
// Uses the default file-based token provider
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	provider := google.NewFileTokenProvider()
	return NewClientForAccountWithProvider(ctx, account, provider)
}

// NewClient creates a new Calendar client with OAuth2 authentication for the default account
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, "default")
}

// NewClientWithProvider creates a new Calendar client for the default account
// using the provided token provider
func NewClientWithProvider(ctx context.Context, provider google.TokenProvider) (*Client, error) {
	return NewClientForAccountWithProvider(ctx, "default", provider)
}

// ListEvents lists events in a calendar within a time range
func (c *Client) ListEvents(calendarID string, timeMin, timeMax time.Time, query string) ([]EventSummary, error) {
	call := c.svc.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")

	if query != "" {
		call = call.Q(query)
	}

	events, err := call.Do()
	if err != nil {
		return nil, providerErr("list events", err)
	}

	var summaries []EventSummary
	for _, event := range events.Items {
		summaries = append(summaries, toEventSummary(event))
	}

	return summaries, nil
}

// GetEvent retrieves a specific event by ID
func (c *Client) GetEvent(calendarID, eventID string) (*EventSummary, error) {
	event, err := c.svc.Events.Get(calendarID, eventID).Do()
	if err != nil {
		return nil, providerErr("get event", err)
	}

	summary := toEventSummary(event)
	return &summary, nil
}

// CreateEvent creates a new calendar event
func (c *Client) CreateEvent(calendarID string, input EventInput) (*EventSummary, error) {
	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
	}

	// All-day events carry dates instead of instants
	if input.AllDay {
		event.Start = &calendar.EventDateTime{
			Date: input.Start.Format("2006-01-02"),
		}
		event.End = &calendar.EventDateTime{
			Date: input.End.Format("2006-01-02"),
		}
	} else {
		if input.TimeZone == "" {
			input.TimeZone = "UTC"
		}
		event.Start = &calendar.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		}
		event.End = &calendar.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		}
	}

	if len(input.Attendees) > 0 {
		var attendees []*calendar.EventAttendee
		for _, email := range input.Attendees {
			attendees = append(attendees, &calendar.EventAttendee{
				Email: email,
			})
		}
		event.Attendees = attendees
	}

	call := c.svc.Events.Insert(calendarID, event)
	if input.SendNotifications {
		call = call.SendUpdates("all")
	}

	created, err := call.Do()
	if err != nil {
		return nil, providerErr("create event", err)
	}

	summary := toEventSummary(created)
	return &summary, nil
}

// UpdateEvent updates an existing calendar event
func (c *Client) UpdateEvent(calendarID, eventID string, input EventInput) (*EventSummary, error) {
	existing, err := c.svc.Events.Get(calendarID, eventID).Do()
	if err != nil {
		return nil, providerErr("get existing event", err)
	}

	if input.Summary != "" {
		existing.Summary = input.Summary
	}
	if input.Description != "" {
		existing.Description = input.Description
	}
	if input.Location != "" {
		existing.Location = input.Location
	}

	if input.TimeZone == "" {
		input.TimeZone = "UTC"
	}
	if !input.Start.IsZero() {
		existing.Start = &calendar.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		}
	}
	if !input.End.IsZero() {
		existing.End = &calendar.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		}
	}

	if len(input.Attendees) > 0 {
		var attendees []*calendar.EventAttendee
		for _, email := range input.Attendees {
			attendees = append(attendees, &calendar.EventAttendee{
				Email: email,
			})
		}
		existing.Attendees = attendees
	}

	call := c.svc.Events.Update(calendarID, eventID, existing)
	if input.SendNotifications {
		call = call.SendUpdates("all")
	}

	updated, err := call.Do()
	if err != nil {
		return nil, providerErr("update event", err)
	}

	summary := toEventSummary(updated)
	return &summary, nil
}

// DeleteEvent deletes a calendar event
func (c *Client) DeleteEvent(calendarID, eventID string) error {
	if err := c.svc.Events.Delete(calendarID, eventID).Do(); err != nil {
		return providerErr("delete event", err)
	}
	return nil
}

// ListCalendars lists all calendars accessible to the user
func (c *Client) ListCalendars() ([]CalendarInfo, error) {
	list, err := c.svc.CalendarList.List().Do()
	if err != nil {
		return nil, providerErr("list calendars", err)
	}

	var calendars []CalendarInfo
	for _, entry := range list.Items {
		calendars = append(calendars, toCalendarInfo(entry))
	}

	return calendars, nil
}

// GetCalendar retrieves information about a specific calendar
func (c *Client) GetCalendar(calendarID string) (*CalendarInfo, error) {
	entry, err := c.svc.CalendarList.Get(calendarID).Do()
	if err != nil {
		return nil, providerErr("get calendar", err)
	}

	info := toCalendarInfo(entry)
	return &info, nil
}

// GetPrimaryCalendar retrieves information about the primary calendar
func (c *Client) GetPrimaryCalendar() (*CalendarInfo, error) {
	return c.GetCalendar("primary")
}

// QueryFreeBusy checks availability for calendars in a time range
func (c *Client) QueryFreeBusy(timeMin, timeMax time.Time, calendarIDs []string) ([]FreeBusyInfo, error) {
	items := make([]*calendar.FreeBusyRequestItem, len(calendarIDs))
	for i, id := range calendarIDs {
		items[i] = &calendar.FreeBusyRequestItem{Id: id}
	}

	query := &calendar.FreeBusyRequest{
		TimeMin: timeMin.Format(time.RFC3339),
		TimeMax: timeMax.Format(time.RFC3339),
		Items:   items,
	}

	result, err := c.svc.Freebusy.Query(query).Do()
	if err != nil {
		return nil, providerErr("query freebusy", err)
	}

	var infos []FreeBusyInfo
	for calID, cal := range result.Calendars {
		info := FreeBusyInfo{
			Calendar: calID,
		}

		for _, busy := range cal.Busy {
			start, err := time.Parse(time.RFC3339, busy.Start)
			if err != nil {
				continue
			}
			end, err := time.Parse(time.RFC3339, busy.End)
			if err != nil {
				continue
			}
			info.Busy = append(info.Busy, scheduling.Interval{Start: start.UTC(), End: end.UTC()})
		}

		for _, calErr := range cal.Errors {
			info.Errors = append(info.Errors, calErr.Reason)
		}

		infos = append(infos, info)
	}

	return infos, nil
}

// BusyIntervals fetches the events of a calendar in [timeMin, timeMax) and
// derives their busy intervals. Events without timed boundaries (all-day
// entries) are filtered out silently.
func (c *Client) BusyIntervals(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]scheduling.BusyInterval, error) {
	call := c.svc.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)

	events, err := call.Do()
	if err != nil {
		return nil, providerErr("fetch busy intervals", err)
	}

	var busy []scheduling.BusyInterval
	for _, event := range events.Items {
		if interval, ok := eventBusyInterval(event); ok {
			busy = append(busy, interval)
		}
	}

	return busy, nil
}

// AvailableSlots fetches the busy intervals of a calendar for the policy's
// date range and computes the available slots. Provider failures propagate
// unchanged as *ProviderError; an invalid policy fails before any fetch.
func (c *Client) AvailableSlots(ctx context.Context, calendarID string, policy scheduling.Policy) ([]scheduling.Slot, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(policy.Timezone)
	if err != nil {
		return nil, err
	}

	// Fetch one whole local day on each side of the business-hour bounds
	// so that events straddling midnight still count as busy.
	start := policy.DateRange.Start
	end := policy.DateRange.End
	timeMin := time.Date(start.Year, start.Month, start.Day, 0, 0, 0, 0, loc).UTC()
	timeMax := time.Date(end.Year, end.Month, end.Day, 0, 0, 0, 0, loc).AddDate(0, 0, 1).UTC()

	busy, err := c.BusyIntervals(ctx, calendarID, timeMin, timeMax)
	if err != nil {
		return nil, err
	}

	return scheduling.ComputeSlots(busy, policy)
}
