package google

// DefaultOAuthScopes are the Google OAuth scopes required for scheduling.
// These scopes are used consistently across the application for OAuth
// configurations, both for the local file-based flow and for OAuth
// providers configured on the HTTP transport.
//
// The scopes provide access to:
//   - Google Calendar: full access (read events and free/busy, create
//     and update appointments)
//   - OpenID Connect: user identity (required to resolve the account's
//     email address when authenticating HTTP sessions)
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Google Calendar scope
	"https://www.googleapis.com/auth/calendar",
}
