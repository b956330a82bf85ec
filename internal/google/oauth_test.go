package google

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeAccount(t *testing.T) {
	tests := []struct {
		name    string
		account string
		want    string
	}{
		{"default stays default", "default", "default"},
		{"empty maps to default", "", "default"},
		{"whitespace maps to default", "   ", "default"},
		{"plain name", "work", "work"},
		{"hyphen kept", "work-email", "work-email"},
		{"underscore kept", "personal_email", "personal_email"},
		{"email kept", "alice@example.com", "alice@example.com"},
		{"spaces replaced", "my account", "my_account"},
		{"slash replaced", "work/personal", "work_personal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeAccount(tt.account); got != tt.want {
				t.Errorf("normalizeAccount(%q) = %q, want %q", tt.account, got, tt.want)
			}
		})
	}
}

func TestTokenFileForAccount(t *testing.T) {
	tests := []struct {
		name    string
		account string
		want    string
	}{
		{"default account", "default", "google-default.token"},
		{"work account", "work", "google-work.token"},
		{"empty account", "", "google-default.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenFileForAccount(tt.account)
			if filepath.Base(got) != tt.want {
				t.Errorf("tokenFileForAccount() = %v, want base %v", got, tt.want)
			}
		})
	}
}

func TestTokenFileForAccount_NoPathTraversal(t *testing.T) {
	got := tokenFileForAccount("../../etc/passwd")
	if strings.Contains(filepath.Base(got), "/") {
		t.Errorf("token file base must not contain path separators, got %q", got)
	}
	if filepath.Dir(got) != filepath.Join(userCacheDir(), "slotwise") {
		t.Errorf("token file must live in the cache directory, got %q", got)
	}
}

func TestHasTokenForAccount(t *testing.T) {
	if HasTokenForAccount("no-such-account-ever") {
		t.Error("HasTokenForAccount() should return false when no token file exists")
	}
}

func TestDefaultAccountFunctions(t *testing.T) {
	// Legacy single-account functions must delegate to the default account
	defaultResult := HasTokenForAccount("default")
	legacyResult := HasToken()
	if defaultResult != legacyResult {
		t.Error("HasToken() should return same result as HasTokenForAccount('default')")
	}
}

func TestGetOAuthConfig(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "test-client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "test-client-secret")
	t.Setenv("GOOGLE_REDIRECT_URL", "")

	conf := GetOAuthConfig()
	if conf.ClientID != "test-client-id" {
		t.Errorf("ClientID = %q, want test-client-id", conf.ClientID)
	}
	if conf.ClientSecret != "test-client-secret" {
		t.Errorf("ClientSecret = %q, want test-client-secret", conf.ClientSecret)
	}
	if conf.RedirectURL != oobRedirectURL {
		t.Errorf("RedirectURL = %q, want the out-of-band default", conf.RedirectURL)
	}
	if len(conf.Scopes) == 0 {
		t.Error("config should carry the default scopes")
	}

	t.Setenv("GOOGLE_REDIRECT_URL", "https://example.com/oauth/callback")
	if got := GetOAuthConfig().RedirectURL; got != "https://example.com/oauth/callback" {
		t.Errorf("RedirectURL = %q, want the env override", got)
	}
}

func TestGetAuthURLForAccount(t *testing.T) {
	url := GetAuthURLForAccount("work")
	if url == "" {
		t.Fatal("GetAuthURLForAccount() should return a non-empty URL")
	}
	if !strings.Contains(url, "state=work") {
		t.Errorf("auth URL should carry the account in the state parameter, got %q", url)
	}
	if !strings.Contains(url, "calendar") {
		t.Errorf("auth URL should request the calendar scope, got %q", url)
	}
}

func TestGetAuthenticationErrorMessage(t *testing.T) {
	tests := []struct {
		name    string
		account string
	}{
		{"default account", "default"},
		{"work account", "work"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := GetAuthenticationErrorMessage(tt.account)
			if msg == "" {
				t.Error("GetAuthenticationErrorMessage() should return non-empty message")
			}
			if !strings.Contains(msg, tt.account) {
				t.Errorf("GetAuthenticationErrorMessage() should mention account %s", tt.account)
			}
			if !strings.Contains(msg, "OAuth") {
				t.Error("GetAuthenticationErrorMessage() should mention OAuth")
			}
		})
	}
}
