// Package agent implements the Gemini-driven scheduling assistant.
//
// The agent holds a conversation with a user about booking appointments,
// calling back into the calendar client for availability checks and event
// creation through Gemini function calling. Conversation history is
// persisted through the store so sessions survive restarts.
package agent
