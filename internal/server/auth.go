package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/slotwise/slotwise/internal/instrumentation"
	"github.com/slotwise/slotwise/internal/logging"
)

// googleUserinfoURL is Google's userinfo endpoint used for token validation.
const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// contextKey is the type for context keys
type contextKey string

const (
	// userContextKey is the key for storing the user info in the request context
	userContextKey contextKey = "oauth_user"

	// tokenContextKey is the key for storing the Google token in the request context
	tokenContextKey contextKey = "google_token"
)

// GoogleUserInfo holds the identity returned by Google's userinfo endpoint.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// ErrorResponse is the OAuth error body returned on rejected requests.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// Authenticator validates Google OAuth bearer tokens on incoming requests.
// Validated tokens are persisted in the token store keyed by the user's
// email, so Calendar clients can be created for that account later.
type Authenticator struct {
	// Resource is the canonical base URL of this server (RFC 9728 resource).
	Resource string

	// Tokens receives validated access tokens, keyed by account email.
	// Optional.
	Tokens TokenStore

	// Sessions records the account behind each bearer token. Optional.
	Sessions *SessionIDManager

	// Metrics records authentication outcomes. Optional.
	Metrics *instrumentation.Metrics

	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger

	// userinfoURL overrides the Google userinfo endpoint in tests.
	userinfoURL string
}

func (a *Authenticator) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

func (a *Authenticator) endpoint() string {
	if a.userinfoURL != "" {
		return a.userinfoURL
	}
	return googleUserinfoURL
}

// ValidateGoogleToken is middleware that validates Google OAuth tokens.
// It validates the token against Google's userinfo endpoint and stores
// the resolved user info in the request context.
func (a *Authenticator) ValidateGoogleToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			// Point the client at the resource metadata so it can discover
			// the authorization server.
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(
				`Bearer realm="%s", resource_metadata="/.well-known/oauth-protected-resource"`,
				a.Resource,
			))
			a.recordAuth(r.Context(), instrumentation.OAuthResultFailure)
			writeUnauthorizedError(w, "missing_token", "Missing Authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(
				`Bearer realm="%s", resource_metadata="/.well-known/oauth-protected-resource", error="invalid_token", error_description="Invalid Authorization header format"`,
				a.Resource,
			))
			a.recordAuth(r.Context(), instrumentation.OAuthResultFailure)
			writeUnauthorizedError(w, "invalid_token", "Invalid Authorization header format")
			return
		}

		token := &oauth2.Token{
			AccessToken: parts[1],
			TokenType:   "Bearer",
		}

		userInfo, err := a.fetchUserInfo(r.Context(), token)
		if err != nil {
			errorDesc := actionableAuthError(err)
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(
				`Bearer realm="%s", resource_metadata="/.well-known/oauth-protected-resource", error="invalid_token", error_description="%s"`,
				a.Resource,
				errorDesc,
			))
			a.recordAuth(r.Context(), instrumentation.OAuthResultFailure)
			writeUnauthorizedError(w, "invalid_token", errorDesc)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, userInfo)
		ctx = context.WithValue(ctx, tokenContextKey, token)

		// Persist the token for this user so Calendar clients can be
		// created for the account. Email is the account identifier.
		if a.Tokens != nil {
			if err := a.Tokens.SaveToken(ctx, userInfo.Email, token); err != nil {
				a.logger().Warn("failed to save validated token",
					logging.Account(logging.AnonymizeEmail(userInfo.Email)),
					logging.Err(err),
				)
			}
		}

		if a.Sessions != nil {
			sessionID, err := a.Sessions.ResolveSessionID(r)
			if err == nil {
				a.Sessions.SetAccountForSession(sessionID, userInfo.Email)
			}
		}

		a.recordAuth(ctx, instrumentation.OAuthResultSuccess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) recordAuth(ctx context.Context, result string) {
	if a.Metrics != nil {
		a.Metrics.RecordOAuthAuth(ctx, result)
	}
}

// fetchUserInfo validates a token by calling Google's userinfo endpoint
func (a *Authenticator) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get(a.endpoint())
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}

	var userInfo GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if userInfo.Email == "" {
		return nil, fmt.Errorf("userinfo response contained no email")
	}

	return &userInfo, nil
}

// ContextWithUser returns a copy of ctx carrying the given Google user info.
// Exposed so non-HTTP callers, such as tests, can simulate an authenticated
// request context.
func ContextWithUser(ctx context.Context, userInfo *GoogleUserInfo) context.Context {
	return context.WithValue(ctx, userContextKey, userInfo)
}

// GetUserFromContext retrieves the Google user info from the request context
func GetUserFromContext(ctx context.Context) (*GoogleUserInfo, bool) {
	userInfo, ok := ctx.Value(userContextKey).(*GoogleUserInfo)
	return userInfo, ok
}

// GetGoogleTokenFromContext retrieves the Google token from the request context
func GetGoogleTokenFromContext(ctx context.Context) (*oauth2.Token, bool) {
	token, ok := ctx.Value(tokenContextKey).(*oauth2.Token)
	return token, ok
}

// writeUnauthorizedError writes an OAuth error response with 401 status
func writeUnauthorizedError(w http.ResponseWriter, errorCode, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:            errorCode,
		ErrorDescription: description,
	})
}

// actionableAuthError converts technical errors into actionable messages
func actionableAuthError(err error) string {
	errStr := err.Error()

	if strings.Contains(errStr, "401") || strings.Contains(errStr, "Unauthorized") {
		return "Google token is invalid or expired. Please re-authenticate through your MCP client to continue."
	}

	if strings.Contains(errStr, "403") || strings.Contains(errStr, "Forbidden") {
		return "Access denied by Google. Please ensure your token has the required scopes and re-authenticate through your MCP client."
	}

	if strings.Contains(errStr, "network") || strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "timeout") || strings.Contains(errStr, "dial") {
		return "Unable to verify token with Google due to network issues. Please try again in a moment."
	}

	if strings.Contains(errStr, "429") || strings.Contains(errStr, "rate limit") {
		return "Google API rate limit exceeded. Please wait a moment and try again."
	}

	if strings.Contains(errStr, "500") || strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") || strings.Contains(errStr, "504") {
		return "Google authentication service is temporarily unavailable. Please try again in a few minutes."
	}

	return fmt.Sprintf("Token validation failed: %v. Please re-authenticate through your MCP client.", err)
}
