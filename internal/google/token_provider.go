package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// TokenProvider is an interface for providing OAuth tokens for Google APIs
// This abstraction allows different token sources (file-based, credential store, etc.)
type TokenProvider interface {
	// GetTokenForAccount retrieves an OAuth token for the specified account
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)

	// HasTokenForAccount checks if a token exists for the specified account
	HasTokenForAccount(account string) bool
}

// FileTokenProvider provides tokens from disk files (for STDIO transport)
type FileTokenProvider struct{}

// NewFileTokenProvider creates a new file-based token provider
func NewFileTokenProvider() *FileTokenProvider {
	return &FileTokenProvider{}
}

// GetTokenForAccount retrieves a token from disk for the specified account
func (p *FileTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	ts, err := GetTokenSourceForAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	token, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to get token from file: %w", err)
	}

	return token, nil
}

// HasTokenForAccount checks if a token file exists for the specified account
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	return HasTokenForAccount(account)
}

// CredentialSource supplies persisted Google tokens by account name.
// The sqlite credential store implements this interface.
type CredentialSource interface {
	GoogleToken(ctx context.Context, account string) (*oauth2.Token, error)
	HasGoogleToken(ctx context.Context, account string) bool
}

// StoreTokenProvider provides tokens from a credential store (for HTTP
// transport, where tokens are captured during session authentication)
type StoreTokenProvider struct {
	source CredentialSource
}

// NewStoreTokenProvider creates a token provider backed by a credential store
func NewStoreTokenProvider(source CredentialSource) *StoreTokenProvider {
	return &StoreTokenProvider{source: source}
}

// GetTokenForAccount retrieves a Google OAuth token from the credential store
func (p *StoreTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	token, err := p.source.GoogleToken(ctx, normalizeAccount(account))
	if err != nil {
		return nil, fmt.Errorf("no Google OAuth token found for account %s. Please authenticate with Google first", account)
	}
	return token, nil
}

// HasTokenForAccount checks if a token exists in the store for the specified account
func (p *StoreTokenProvider) HasTokenForAccount(account string) bool {
	return p.source.HasGoogleToken(context.Background(), normalizeAccount(account))
}
