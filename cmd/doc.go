// Package cmd implements the command-line interface for slotwise.
//
// This package provides the following commands:
//   - serve: Start the MCP server exposing calendar and scheduling tools
//   - slots: Print available appointment slots for a date range
//   - chat: Talk to the scheduling assistant from the terminal
//   - auth: Authorize a Google account or save an authorization code
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
package cmd
