package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/slotwise/slotwise/internal/logging"
)

const (
	// SSOAccessTokenHeader is the HTTP header name for forwarded Google access
	// tokens. When SSO token forwarding is enabled, an upstream aggregator
	// forwards the user's Google access token in this header alongside the
	// ID token in the Authorization header.
	SSOAccessTokenHeader = "X-Google-Access-Token"

	// SSORefreshTokenHeader is the optional HTTP header name for forwarded
	// Google refresh tokens. If provided, enables automatic token refresh
	// for long-running sessions.
	SSORefreshTokenHeader = "X-Google-Refresh-Token"

	// SSOTokenExpiryHeader is the optional HTTP header name for the access
	// token expiry time, in RFC3339 format. If not provided, a default
	// expiry of 1 hour is assumed.
	SSOTokenExpiryHeader = "X-Google-Token-Expiry"

	// defaultAccessTokenExpiry matches the typical lifetime of Google
	// access tokens.
	defaultAccessTokenExpiry = 1 * time.Hour

	// tokenStoreTimeout bounds token persistence during request handling.
	tokenStoreTimeout = 5 * time.Second
)

// SSOAccessTokenMiddleware creates middleware that extracts and stores
// forwarded Google access tokens. It must wrap handlers that are already
// protected by token validation, since it relies on the authenticated
// user info in the request context.
//
// The token is processed when the user was authenticated and the
// X-Google-Access-Token header is present and non-empty.
func SSOAccessTokenMiddleware(tokens TokenStore, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			userInfo, ok := GetUserFromContext(ctx)
			if !ok || userInfo == nil || userInfo.Email == "" {
				// Not authenticated. The validation middleware already
				// returned 401 if auth was required.
				next.ServeHTTP(w, r)
				return
			}

			accessToken := r.Header.Get(SSOAccessTokenHeader)
			if accessToken == "" {
				// No forwarded token, the user authenticated directly.
				next.ServeHTTP(w, r)
				return
			}

			refreshToken := r.Header.Get(SSORefreshTokenHeader)
			expiry := parseTokenExpiry(r.Header.Get(SSOTokenExpiryHeader))

			token := &oauth2.Token{
				AccessToken:  accessToken,
				RefreshToken: refreshToken,
				TokenType:    "Bearer",
				Expiry:       expiry,
			}

			storeCtx, cancel := context.WithTimeout(ctx, tokenStoreTimeout)
			err := tokens.SaveToken(storeCtx, userInfo.Email, token)
			cancel()

			if err != nil {
				logger.Error("failed to store forwarded access token",
					logging.Account(logging.AnonymizeEmail(userInfo.Email)),
					logging.Err(err),
				)
			} else {
				logger.Info("stored forwarded access token",
					logging.Account(logging.AnonymizeEmail(userInfo.Email)),
					"has_refresh_token", refreshToken != "",
					"expires_in", time.Until(expiry).Round(time.Second).String(),
				)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// parseTokenExpiry parses the token expiry header value.
// Returns a default expiry of 1 hour from now if the value is empty or invalid.
func parseTokenExpiry(expiryStr string) time.Time {
	if expiryStr == "" {
		return time.Now().Add(defaultAccessTokenExpiry)
	}

	expiry, err := time.Parse(time.RFC3339, expiryStr)
	if err != nil {
		return time.Now().Add(defaultAccessTokenExpiry)
	}

	return expiry
}
