package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/slotwise/slotwise/internal/calendar"
	"github.com/slotwise/slotwise/internal/google"
	"github.com/slotwise/slotwise/internal/instrumentation"
	"github.com/slotwise/slotwise/internal/store"
)

// ServerContext holds the shared state for the MCP server
type ServerContext struct {
	ctx             context.Context
	cancel          context.CancelFunc
	calendarClients map[string]*calendar.Client // Maps account name to Calendar client
	tokenProvider   google.TokenProvider
	db              *store.Store
	metrics         *instrumentation.Metrics
	audit           *instrumentation.AuditLogger
	mu              sync.RWMutex
	shutdown        bool
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	clients := make(map[string]*calendar.Client)

	// Try to create the default Calendar client, but don't fail if the token
	// is missing. Clients are lazily initialized when first needed.
	if calendar.HasToken() {
		client, err := calendar.NewClient(shutdownCtx)
		if err != nil {
			slog.Warn("failed to create Calendar client for default account", "error", err)
		} else {
			clients["default"] = client
		}
	}

	return &ServerContext{
		ctx:             shutdownCtx,
		cancel:          cancel,
		calendarClients: clients,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// SetTokenProvider sets the token provider used when lazily creating
// Calendar clients. When unset, clients fall back to token files on disk.
func (sc *ServerContext) SetTokenProvider(provider google.TokenProvider) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.tokenProvider = provider
}

// TokenProvider returns the configured token provider, or nil
func (sc *ServerContext) TokenProvider() google.TokenProvider {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.tokenProvider
}

// SetStore sets the credential and conversation store
func (sc *ServerContext) SetStore(db *store.Store) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.db = db
}

// Store returns the credential and conversation store, or nil
func (sc *ServerContext) Store() *store.Store {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.db
}

// SetMetrics sets the metrics recorder used by tool handlers
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the metrics recorder, or nil when instrumentation is disabled
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger for tool invocations
func (sc *ServerContext) SetAuditLogger(a *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.audit = a
}

// AuditLogger returns the audit logger, or nil
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.audit
}

// CalendarClientForAccount returns the Calendar client for a specific account.
// Creates and caches the client if it doesn't exist yet.
// Returns nil if the account has no token.
func (sc *ServerContext) CalendarClientForAccount(account string) *calendar.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.calendarClients[account]; ok {
		return client
	}

	if sc.tokenProvider != nil {
		if !sc.tokenProvider.HasTokenForAccount(account) {
			return nil
		}
		client, err := calendar.NewClientForAccountWithProvider(sc.ctx, account, sc.tokenProvider)
		if err != nil {
			slog.Warn("failed to create Calendar client", "account", account, "error", err)
			return nil
		}
		sc.calendarClients[account] = client
		return client
	}

	if !calendar.HasTokenForAccount(account) {
		return nil
	}

	client, err := calendar.NewClientForAccount(sc.ctx, account)
	if err != nil {
		slog.Warn("failed to create Calendar client", "account", account, "error", err)
		return nil
	}

	sc.calendarClients[account] = client
	return client
}

// CalendarClient returns the Calendar client for the default account
func (sc *ServerContext) CalendarClient() *calendar.Client {
	return sc.CalendarClientForAccount("default")
}

// SetCalendarClientForAccount sets the Calendar client for a specific account
func (sc *ServerContext) SetCalendarClientForAccount(account string, client *calendar.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.calendarClients[account] = client
}

// SetCalendarClient sets the Calendar client for the default account
func (sc *ServerContext) SetCalendarClient(client *calendar.Client) {
	sc.SetCalendarClientForAccount("default", client)
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
