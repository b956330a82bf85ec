package google

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const oobRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

// normalizeAccount maps an account name to a safe token file identifier.
// An empty account name resolves to "default".
func normalizeAccount(account string) string {
	account = strings.TrimSpace(account)
	if account == "" {
		return "default"
	}

	var b strings.Builder
	for _, r := range account {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.' || r == '@':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// tokenFileForAccount returns the cache file path for the account's token
func tokenFileForAccount(account string) string {
	cacheDir := filepath.Join(userCacheDir(), "slotwise")
	return filepath.Join(cacheDir, "google-"+normalizeAccount(account)+".token")
}

// HasToken checks if a valid OAuth token exists for the default account
func HasToken() bool {
	return HasTokenForAccount("default")
}

// HasTokenForAccount checks if a cached OAuth token exists for the account
func HasTokenForAccount(account string) bool {
	_, err := os.ReadFile(tokenFileForAccount(account))
	return err == nil
}

// GetAuthURL returns the OAuth URL for user authorization of the default account
func GetAuthURL() string {
	return GetAuthURLForAccount("default")
}

// GetAuthURLForAccount returns the OAuth URL for user authorization.
// The account name is carried in the state parameter so that callback
// handlers can route the authorization code to the right token file.
func GetAuthURLForAccount(account string) string {
	conf := GetOAuthConfig()
	return conf.AuthCodeURL(normalizeAccount(account), oauth2.AccessTypeOffline)
}

// SaveToken exchanges an authorization code and saves tokens for the default account
func SaveToken(ctx context.Context, authCode string) error {
	return SaveTokenForAccount(ctx, "default", authCode)
}

// SaveTokenForAccount exchanges an authorization code for tokens and saves
// them to the account's token file
func SaveTokenForAccount(ctx context.Context, account, authCode string) error {
	conf := GetOAuthConfig()

	t, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	tokenFile := tokenFileForAccount(account)
	if err := os.MkdirAll(filepath.Dir(tokenFile), 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tokenData := t.AccessToken + " " + t.RefreshToken
	if err := os.WriteFile(tokenFile, []byte(tokenData), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// GetOAuthConfig returns the OAuth2 configuration for Google Calendar.
// Client credentials come from the environment so that deployments can
// bring their own OAuth application.
func GetOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL(),
		Scopes:       DefaultOAuthScopes,
	}
}

func redirectURL() string {
	if v := os.Getenv("GOOGLE_REDIRECT_URL"); v != "" {
		return v
	}
	return oobRedirectURL
}

// GetAuthenticationErrorMessage returns a user-facing message explaining
// how to authorize the given account, including the OAuth URL
func GetAuthenticationErrorMessage(account string) string {
	return fmt.Sprintf("Not authenticated with Google for account %q. Please authorize via OAuth by visiting:\n\n%s\n\nThen save the authorization code with the google_auth_save_token tool or 'slotwise auth'.",
		normalizeAccount(account), GetAuthURLForAccount(account))
}

// GetTokenSourceForAccount returns an OAuth2 token source backed by the
// account's cached token. Returns an error if no valid token exists.
func GetTokenSourceForAccount(ctx context.Context, account string) (oauth2.TokenSource, error) {
	conf := GetOAuthConfig()

	slurp, err := os.ReadFile(tokenFileForAccount(account))
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %q", normalizeAccount(account))
	}

	f := strings.Fields(strings.TrimSpace(string(slurp)))
	if len(f) != 2 {
		return nil, fmt.Errorf("invalid token format")
	}

	ts := conf.TokenSource(ctx, &oauth2.Token{
		AccessToken:  f[0],
		TokenType:    "Bearer",
		RefreshToken: f[1],
		Expiry:       time.Unix(1, 0),
	})

	// Validate the token
	if _, err := ts.Token(); err != nil {
		log.Printf("Cached token invalid: %v", err)
		return nil, fmt.Errorf("cached token is invalid: %w", err)
	}

	return ts, nil
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		panic("No Windows TEMP or TMP environment variables found")
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
