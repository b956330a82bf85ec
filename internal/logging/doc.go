// Package logging provides structured logging helpers built on log/slog.
//
// It defines the canonical attribute keys used across the codebase so
// that log entries from the MCP tools, the calendar client, and the
// scheduling assistant can be correlated, plus helpers for logging
// sensitive values safely (hashed emails, masked tokens).
package logging
