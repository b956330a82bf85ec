// Package google handles OAuth2 authentication for Google Calendar access.
//
// Tokens are cached on disk per account under the user cache directory
// (e.g. ~/.cache/slotwise/google-<account>.token on Linux). The package
// exposes a TokenProvider abstraction so callers can obtain tokens from
// disk files (STDIO transport) or from an OAuth token store (HTTP
// transport with session-based authentication).
//
// Typical flow:
//
//	url := google.GetAuthURLForAccount("work")
//	// user visits url, grants access, copies the authorization code
//	err := google.SaveTokenForAccount(ctx, "work", authCode)
//	ts, err := google.GetTokenSourceForAccount(ctx, "work")
package google
