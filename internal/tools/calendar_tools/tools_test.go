package calendar_tools

import (
	"testing"
	"time"

	"github.com/slotwise/slotwise/internal/scheduling"
)

func TestGetAccountFromArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]interface{}
		expected string
	}{
		{
			name:     "no account provided",
			args:     map[string]interface{}{},
			expected: "default",
		},
		{
			name: "account provided",
			args: map[string]interface{}{
				"account": "test-account",
			},
			expected: "test-account",
		},
		{
			name: "empty account string",
			args: map[string]interface{}{
				"account": "",
			},
			expected: "default",
		},
		{
			name: "account with other args",
			args: map[string]interface{}{
				"account":    "work-account",
				"calendarId": "primary",
			},
			expected: "work-account",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := getAccountFromArgs(tt.args)
			if result != tt.expected {
				t.Errorf("getAccountFromArgs() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestGetAccountFromArgs_NonStringType(t *testing.T) {
	// Test with non-string account value
	args := map[string]interface{}{
		"account": 123, // wrong type
	}

	result := getAccountFromArgs(args)
	if result != "default" {
		t.Errorf("Expected 'default' for non-string account, got %s", result)
	}
}

func TestPolicyFromArgs(t *testing.T) {
	args := map[string]interface{}{
		"dateStart":         "2025-01-13",
		"dateEnd":           "2025-01-17",
		"durationMinutes":   float64(30),
		"timezone":          "Europe/Berlin",
		"businessHourStart": float64(8),
		"businessHourEnd":   float64(16),
	}

	policy, errMsg := policyFromArgs(args)
	if errMsg != "" {
		t.Fatalf("unexpected error: %s", errMsg)
	}

	if policy.DateRange.Start != scheduling.NewDate(2025, time.January, 13) {
		t.Errorf("unexpected start date: %+v", policy.DateRange.Start)
	}
	if policy.DateRange.End != scheduling.NewDate(2025, time.January, 17) {
		t.Errorf("unexpected end date: %+v", policy.DateRange.End)
	}
	if policy.DurationMinutes != 30 {
		t.Errorf("expected 30 minute duration, got %d", policy.DurationMinutes)
	}
	if policy.Timezone != "Europe/Berlin" {
		t.Errorf("expected Europe/Berlin, got %s", policy.Timezone)
	}
	if policy.BusinessHourStart != 8 || policy.BusinessHourEnd != 16 {
		t.Errorf("unexpected business hours: %d-%d", policy.BusinessHourStart, policy.BusinessHourEnd)
	}
}

func TestPolicyFromArgs_Defaults(t *testing.T) {
	args := map[string]interface{}{
		"dateStart":       "2025-01-13",
		"dateEnd":         "2025-01-13",
		"durationMinutes": float64(60),
	}

	policy, errMsg := policyFromArgs(args)
	if errMsg != "" {
		t.Fatalf("unexpected error: %s", errMsg)
	}

	if policy.Timezone != "UTC" {
		t.Errorf("expected default timezone UTC, got %s", policy.Timezone)
	}
	if policy.BusinessHourStart != 9 || policy.BusinessHourEnd != 17 {
		t.Errorf("expected default business hours 9-17, got %d-%d", policy.BusinessHourStart, policy.BusinessHourEnd)
	}
	if err := policy.Validate(); err != nil {
		t.Errorf("default policy should validate, got %v", err)
	}
}

func TestPolicyFromArgs_Errors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{
			name: "missing dateStart",
			args: map[string]interface{}{
				"dateEnd":         "2025-01-13",
				"durationMinutes": float64(30),
			},
		},
		{
			name: "malformed dateStart",
			args: map[string]interface{}{
				"dateStart":       "13.01.2025",
				"dateEnd":         "2025-01-17",
				"durationMinutes": float64(30),
			},
		},
		{
			name: "missing dateEnd",
			args: map[string]interface{}{
				"dateStart":       "2025-01-13",
				"durationMinutes": float64(30),
			},
		},
		{
			name: "missing duration",
			args: map[string]interface{}{
				"dateStart": "2025-01-13",
				"dateEnd":   "2025-01-17",
			},
		},
		{
			name: "zero duration",
			args: map[string]interface{}{
				"dateStart":       "2025-01-13",
				"dateEnd":         "2025-01-17",
				"durationMinutes": float64(0),
			},
		},
		{
			name: "duration wrong type",
			args: map[string]interface{}{
				"dateStart":       "2025-01-13",
				"dateEnd":         "2025-01-17",
				"durationMinutes": "30",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errMsg := policyFromArgs(tt.args)
			if errMsg == "" {
				t.Error("expected an error message, got none")
			}
		})
	}
}
