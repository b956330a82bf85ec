package server

import (
	"context"
	"testing"

	"golang.org/x/oauth2"

	"github.com/slotwise/slotwise/internal/store"
)

// emptyTokenProvider reports no tokens for any account.
type emptyTokenProvider struct{}

func (emptyTokenProvider) GetTokenForAccount(_ context.Context, account string) (*oauth2.Token, error) {
	return nil, &tokenNotFoundError{}
}

func (emptyTokenProvider) HasTokenForAccount(string) bool { return false }

func TestServerContext_Shutdown(t *testing.T) {
	sc := newTestServerContext(t)

	if sc.IsShutdown() {
		t.Error("fresh context should not be shut down")
	}

	if err := sc.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !sc.IsShutdown() {
		t.Error("context should report shut down")
	}

	// Second shutdown is a no-op
	if err := sc.Shutdown(); err != nil {
		t.Fatalf("repeated Shutdown() error = %v", err)
	}

	select {
	case <-sc.Context().Done():
	default:
		t.Error("context should be cancelled after shutdown")
	}
}

func TestServerContext_Dependencies(t *testing.T) {
	sc := newTestServerContext(t)

	if sc.Store() != nil {
		t.Error("store should be nil until set")
	}

	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	sc.SetStore(db)
	if sc.Store() != db {
		t.Error("Store() should return the configured store")
	}

	provider := emptyTokenProvider{}
	sc.SetTokenProvider(provider)
	if sc.TokenProvider() == nil {
		t.Error("TokenProvider() should return the configured provider")
	}
}

func TestCalendarClientForAccount_NoToken(t *testing.T) {
	sc := newTestServerContext(t)
	sc.SetTokenProvider(emptyTokenProvider{})

	if client := sc.CalendarClientForAccount("nobody"); client != nil {
		t.Error("expected nil client for account without a token")
	}
}

func TestSetCalendarClient(t *testing.T) {
	sc := newTestServerContext(t)
	sc.SetTokenProvider(emptyTokenProvider{})

	// A nil entry is still cached and returned as stored
	sc.SetCalendarClient(nil)
	if client := sc.CalendarClient(); client != nil {
		t.Error("expected the cached nil client for the default account")
	}
}
