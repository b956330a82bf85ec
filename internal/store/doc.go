// Package store provides SQLite-backed persistence for calendar
// credentials and assistant conversations.
//
// The database is opened with WAL journaling and foreign keys enabled,
// and the schema is migrated automatically on Open. Use ":memory:" as
// the path for an in-memory database in tests.
//
// Three tables are managed:
//
//   - calendar_credentials: per-user OAuth credentials for calendar
//     providers, stored as JSON
//   - conversations: assistant chat sessions
//   - messages: ordered messages within a conversation
//
// The store implements google.CredentialSource so it can back a
// google.StoreTokenProvider for Google API clients.
package store
