package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// ProviderGoogle identifies Google Calendar credentials.
const ProviderGoogle = "google"

// Credential is a stored calendar provider credential. The Credential
// field holds the provider-specific token material as JSON.
type Credential struct {
	ID         string
	UserID     string
	Provider   string
	Name       string
	Credential string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SaveCredential inserts or updates the credential for a user+provider
// pair. A missing ID is filled in with a new UUID.
func (s *Store) SaveCredential(ctx context.Context, c Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	query := `
		INSERT INTO calendar_credentials (id, user_id, provider, name, credential, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, provider) DO UPDATE SET
			name = excluded.name,
			credential = excluded.credential,
			updated_at = excluded.updated_at
	`

	now := formatTime(time.Now())
	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.UserID, c.Provider, c.Name, c.Credential, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

// GetCredential retrieves the credential for a user+provider pair.
// Returns nil if none is stored.
func (s *Store) GetCredential(ctx context.Context, userID, provider string) (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c Credential
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, provider, name, credential, created_at, updated_at FROM calendar_credentials WHERE user_id = ? AND provider = ?",
		userID, provider,
	).Scan(&c.ID, &c.UserID, &c.Provider, &c.Name, &c.Credential, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

// ListCredentials returns all credentials for a user.
func (s *Store) ListCredentials(ctx context.Context, userID string) ([]Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, provider, name, credential, created_at, updated_at FROM calendar_credentials WHERE user_id = ? ORDER BY provider",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer rows.Close()

	var creds []Credential
	for rows.Next() {
		var c Credential
		var createdAt, updatedAt string
		if err := rows.Scan(&c.ID, &c.UserID, &c.Provider, &c.Name, &c.Credential, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		c.CreatedAt = parseTime(createdAt)
		c.UpdatedAt = parseTime(updatedAt)
		creds = append(creds, c)
	}
	return creds, rows.Err()
}

// DeleteCredential removes the credential for a user+provider pair.
func (s *Store) DeleteCredential(ctx context.Context, userID, provider string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM calendar_credentials WHERE user_id = ? AND provider = ?",
		userID, provider,
	)
	return err
}

// SaveGoogleToken persists an OAuth2 token as the user's Google credential.
func (s *Store) SaveGoogleToken(ctx context.Context, userID string, token *oauth2.Token) error {
	raw, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return s.SaveCredential(ctx, Credential{
		UserID:     userID,
		Provider:   ProviderGoogle,
		Name:       "Google Calendar",
		Credential: string(raw),
	})
}

// GoogleToken returns the user's stored Google OAuth2 token.
// Implements google.CredentialSource.
func (s *Store) GoogleToken(ctx context.Context, userID string) (*oauth2.Token, error) {
	cred, err := s.GetCredential(ctx, userID, ProviderGoogle)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, fmt.Errorf("no Google credential stored for user %q", userID)
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(cred.Credential), &token); err != nil {
		return nil, fmt.Errorf("failed to decode stored token: %w", err)
	}
	return &token, nil
}

// HasGoogleToken reports whether a Google credential exists for the user.
// Implements google.CredentialSource.
func (s *Store) HasGoogleToken(ctx context.Context, userID string) bool {
	cred, err := s.GetCredential(ctx, userID, ProviderGoogle)
	return err == nil && cred != nil
}
