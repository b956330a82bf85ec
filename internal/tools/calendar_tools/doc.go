// Package calendar_tools provides MCP (Model Context Protocol) tools for Google Calendar operations.
//
// This package exposes Google Calendar functionality through a standardized MCP interface,
// allowing AI assistants to manage calendars, events, and scheduling on behalf of users.
//
// The tools support multi-account authentication and provide calendar management,
// free/busy queries, and business-hour availability computation for meeting scheduling.
package calendar_tools
