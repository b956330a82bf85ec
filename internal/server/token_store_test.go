package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/slotwise/slotwise/internal/store"
)

func TestStoreTokens_RoundTrip(t *testing.T) {
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tokens := NewStoreTokens(db)
	ctx := context.Background()

	_, err = tokens.GetToken(ctx, "user@example.com")
	assert.Error(t, err, "missing token should return an error")

	want := &oauth2.Token{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
	require.NoError(t, tokens.SaveToken(ctx, "user@example.com", want))

	got, err := tokens.GetToken(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, want.AccessToken, got.AccessToken)
	assert.Equal(t, want.RefreshToken, got.RefreshToken)
	assert.True(t, want.Expiry.Equal(got.Expiry))
}

func TestStoreTokens_Overwrite(t *testing.T) {
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tokens := NewStoreTokens(db)
	ctx := context.Background()

	require.NoError(t, tokens.SaveToken(ctx, "user@example.com", &oauth2.Token{AccessToken: "first"}))
	require.NoError(t, tokens.SaveToken(ctx, "user@example.com", &oauth2.Token{AccessToken: "second"}))

	got, err := tokens.GetToken(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "second", got.AccessToken)
}
