package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/slotwise/slotwise/internal/calendar"
	"github.com/slotwise/slotwise/internal/google"
	"github.com/slotwise/slotwise/internal/scheduling"
)

func newSlotsCmd() *cobra.Command {
	var (
		account       string
		calendarID    string
		dateStart     string
		dateEnd       string
		duration      int
		timezone      string
		businessStart int
		businessEnd   int
	)

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Print available appointment slots for a date range",
		Long: `Compute free appointment slots from the busy intervals of a Google
calendar. Slots are tiled within business hours in the given timezone and
filtered against existing events.

Example:
  slotwise slots --from 2026-09-01 --to 2026-09-05 --duration 30 \
    --timezone Europe/Berlin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := scheduling.ParseDate(dateStart)
			if err != nil {
				return fmt.Errorf("invalid --from date: %w", err)
			}
			end, err := scheduling.ParseDate(dateEnd)
			if err != nil {
				return fmt.Errorf("invalid --to date: %w", err)
			}

			policy := scheduling.Policy{
				DateRange:         scheduling.DateRange{Start: start, End: end},
				DurationMinutes:   duration,
				Timezone:          timezone,
				BusinessHourStart: businessStart,
				BusinessHourEnd:   businessEnd,
			}
			if err := policy.Validate(); err != nil {
				return err
			}

			if !google.HasTokenForAccount(account) {
				return fmt.Errorf("no Google token for account %q; run 'slotwise auth' first", account)
			}

			client, err := calendar.NewClientForAccount(cmd.Context(), account)
			if err != nil {
				return fmt.Errorf("failed to create Calendar client: %w", err)
			}

			slots, err := client.AvailableSlots(cmd.Context(), calendarID, policy)
			if err != nil {
				return fmt.Errorf("failed to compute slots: %w", err)
			}

			return printSlots(cmd, slots, policy)
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account to use")
	cmd.Flags().StringVar(&calendarID, "calendar", "primary", "Calendar ID to query")
	cmd.Flags().StringVar(&dateStart, "from", "", "First day of the search range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dateEnd, "to", "", "Last day of the search range (YYYY-MM-DD)")
	cmd.Flags().IntVar(&duration, "duration", 30, "Appointment duration in minutes")
	cmd.Flags().StringVar(&timezone, "timezone", "UTC", "IANA timezone for business hours")
	cmd.Flags().IntVar(&businessStart, "business-start", 9, "First business hour (0-23)")
	cmd.Flags().IntVar(&businessEnd, "business-end", 17, "Hour business ends (1-24)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

// printSlots writes slots grouped by day in the policy timezone.
func printSlots(cmd *cobra.Command, slots []scheduling.Slot, policy scheduling.Policy) error {
	if len(slots) == 0 {
		cmd.Println("No available slots in the given range.")
		return nil
	}

	loc, err := time.LoadLocation(policy.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %s: %w", policy.Timezone, err)
	}

	cmd.Printf("%d available slots (%d min, %s):\n", len(slots), policy.DurationMinutes, policy.Timezone)
	var day string
	for _, slot := range slots {
		start := slot.Start.In(loc)
		end := slot.End.In(loc)
		if d := start.Format("Mon, Jan 2 2006"); d != day {
			day = d
			cmd.Printf("\n%s\n", day)
		}
		cmd.Printf("  %s - %s\n", start.Format("15:04"), end.Format("15:04"))
	}
	return nil
}
