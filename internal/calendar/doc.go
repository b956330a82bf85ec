// Package calendar provides a client for interacting with the Google Calendar API.
//
// This package offers event management (create, read, update, delete),
// calendar listing, free/busy queries, and the bridge between provider
// events and the scheduling engine: events with timed boundaries become
// busy intervals, and AvailableSlots feeds them into scheduling.ComputeSlots.
//
// The client supports multi-account authentication using the Google OAuth2
// flow. Provider failures are wrapped in *ProviderError and propagated
// unchanged; the client never retries on behalf of the caller.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := calendar.NewClient(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	slots, err := client.AvailableSlots(ctx, "primary", policy)
package calendar
