package server

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/slotwise/slotwise/internal/store"
)

// TokenStore persists Google OAuth tokens keyed by account email.
// The method set matches the token storage used by mcp-oauth, so any
// storage.TokenStore from that library satisfies this interface too.
type TokenStore interface {
	GetToken(ctx context.Context, userID string) (*oauth2.Token, error)
	SaveToken(ctx context.Context, userID string, token *oauth2.Token) error
}

// StoreTokens adapts the SQLite credential store to the TokenStore interface.
type StoreTokens struct {
	db *store.Store
}

// NewStoreTokens creates a TokenStore backed by the given credential store.
func NewStoreTokens(db *store.Store) *StoreTokens {
	return &StoreTokens{db: db}
}

// GetToken retrieves the Google OAuth token for the given account.
func (s *StoreTokens) GetToken(ctx context.Context, userID string) (*oauth2.Token, error) {
	return s.db.GoogleToken(ctx, userID)
}

// SaveToken persists the Google OAuth token for the given account.
func (s *StoreTokens) SaveToken(ctx context.Context, userID string, token *oauth2.Token) error {
	return s.db.SaveGoogleToken(ctx, userID, token)
}
