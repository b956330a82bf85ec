package calendar

import (
	"context"
	"testing"

	"golang.org/x/oauth2"
)

// staticTokenProvider hands out a fixed token for every account.
type staticTokenProvider struct {
	token *oauth2.Token
}

func (p staticTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	return p.token, nil
}

func (p staticTokenProvider) HasTokenForAccount(account string) bool {
	return p.token != nil
}

func TestNewClientForAccountWithProvider(t *testing.T) {
	provider := staticTokenProvider{token: &oauth2.Token{
		AccessToken:  "test-access",
		RefreshToken: "test-refresh",
		TokenType:    "Bearer",
	}}

	client, err := NewClientForAccountWithProvider(context.Background(), "work", provider)
	if err != nil {
		t.Fatalf("NewClientForAccountWithProvider() error: %v", err)
	}
	if client == nil {
		t.Fatal("expected a client")
	}
	if client.Account() != "work" {
		t.Errorf("Account() = %q, want work", client.Account())
	}
}

func TestNewClientForAccountWithProvider_NilProvider(t *testing.T) {
	client, err := NewClientForAccountWithProvider(context.Background(), "work", nil)
	if err == nil {
		t.Fatal("expected an error for a nil token provider")
	}
	if client != nil {
		t.Error("expected no client on error")
	}
}
