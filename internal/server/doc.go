// Package server provides the MCP server context, session management,
// and OAuth-protected HTTP transport for the slotwise application.
//
// # Key Components
//
// ServerContext manages Google Calendar clients with lazy initialization
// and caching. It supports multiple accounts and can use different token
// providers:
//   - FileTokenProvider: for STDIO transport, reads tokens from disk
//   - StoreTokenProvider: for HTTP transports, reads tokens captured by
//     the OAuth middleware from the credential store
//
// OAuthHTTPServer wraps an MCP server with Google-backed bearer
// authentication:
//   - Protected Resource Metadata (RFC 9728) so MCP clients can discover
//     Google as the authorization server
//   - Bearer token validation against Google's userinfo endpoint
//   - OAuth callback handling, including silent-auth failure detection
//   - Capture of SSO-forwarded access tokens from upstream aggregators
//
// SessionIDManager handles multi-account session tracking for HTTP
// transport. It maps Bearer tokens to Google accounts, enabling multiple
// users to share a single server instance.
//
// # Security Features
//
//   - HTTPS required for production (localhost exempt for development)
//   - Rate limiting per client IP
//   - Validated tokens are persisted per account, never logged verbatim
//   - Audit logging for authentication events
package server
