package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	mcpoauth "github.com/giantswarm/mcp-oauth"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/slotwise/slotwise/internal/google"
	"github.com/slotwise/slotwise/internal/instrumentation"
	"github.com/slotwise/slotwise/internal/logging"
)

// googleAuthorizationServer is the issuer MCP clients are pointed at for
// authorization (RFC 9728 authorization_servers entry).
const googleAuthorizationServer = "https://accounts.google.com"

// OAuthHTTPServerConfig holds configuration for the OAuth-protected
// HTTP transport.
type OAuthHTTPServerConfig struct {
	// BaseURL is the external base URL of this server, used as the
	// protected resource identifier. HTTPS is required outside localhost.
	BaseURL string

	// ServerType selects the MCP transport: "sse" or "streamable-http".
	ServerType string

	// Tokens receives validated and forwarded Google tokens. Optional;
	// when nil, tokens are not persisted across requests.
	Tokens TokenStore

	// Sessions maps bearer tokens to accounts. Optional.
	Sessions *SessionIDManager

	// Metrics records HTTP and authentication metrics. Optional.
	Metrics *instrumentation.Metrics

	// DisableStreaming turns off streaming responses for clients that
	// cannot consume them (streamable-http only).
	DisableStreaming bool

	// RateLimitRate is the per-IP request rate (requests per second).
	// Defaults to 10 when zero.
	RateLimitRate int

	// RateLimitBurst is the per-IP burst allowance. Defaults to 20 when zero.
	RateLimitBurst int

	// Health, when set, registers liveness and readiness endpoints on
	// the main listener so Kubernetes probes do not need a second port.
	Health *HealthChecker

	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger
}

// ProtectedResourceMetadata is the RFC 9728 document served at
// /.well-known/oauth-protected-resource. It tells MCP clients where to
// find the authorization server (Google) and which scopes this resource
// expects.
type ProtectedResourceMetadata struct {
	Resource               string   `json:"resource"`
	AuthorizationServers   []string `json:"authorization_servers"`
	ScopesSupported        []string `json:"scopes_supported"`
	BearerMethodsSupported []string `json:"bearer_methods_supported"`
}

// OAuthHTTPServer wraps an MCP server with Google-backed OAuth
// authentication for HTTP transports.
type OAuthHTTPServer struct {
	mcpServer   *mcpserver.MCPServer
	httpServer  *http.Server
	config      OAuthHTTPServerConfig
	auth        *Authenticator
	rateLimiter *RateLimiter
	logger      *slog.Logger
}

// NewOAuthHTTPServer creates a new OAuth-protected HTTP server for MCP.
func NewOAuthHTTPServer(mcpServer *mcpserver.MCPServer, config OAuthHTTPServerConfig) (*OAuthHTTPServer, error) {
	if err := validateHTTPSRequirement(config.BaseURL); err != nil {
		return nil, err
	}

	switch config.ServerType {
	case "sse", "streamable-http":
	default:
		return nil, fmt.Errorf("unsupported server type: %s", config.ServerType)
	}

	if config.RateLimitRate <= 0 {
		config.RateLimitRate = 10
	}
	if config.RateLimitBurst <= 0 {
		config.RateLimitBurst = 20
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	auth := &Authenticator{
		Resource: config.BaseURL,
		Tokens:   config.Tokens,
		Sessions: config.Sessions,
		Metrics:  config.Metrics,
		Logger:   logger,
	}

	return &OAuthHTTPServer{
		mcpServer:   mcpServer,
		config:      config,
		auth:        auth,
		rateLimiter: NewRateLimiter(config.RateLimitRate, config.RateLimitBurst, false),
		logger:      logger,
	}, nil
}

// Authenticator returns the bearer token authenticator, for tests or
// direct access.
func (s *OAuthHTTPServer) Authenticator() *Authenticator {
	return s.auth
}

// Start starts the OAuth-protected HTTP server on addr.
func (s *OAuthHTTPServer) Start(addr string) error {
	mux := http.NewServeMux()

	// Protected Resource Metadata endpoint (RFC 9728). This tells MCP
	// clients where to find the authorization server (Google).
	mux.Handle("/.well-known/oauth-protected-resource",
		s.rateLimiter.Middleware(http.HandlerFunc(s.serveProtectedResourceMetadata)))

	// Authorization callback from Google.
	mux.Handle("/oauth/callback",
		s.rateLimiter.Middleware(http.HandlerFunc(s.serveCallback)))

	if s.config.Health != nil {
		s.config.Health.RegisterHealthEndpoints(mux)
	}

	protect := func(h http.Handler) http.Handler {
		h = SSOAccessTokenMiddleware(s.config.Tokens, s.logger)(h)
		h = s.auth.ValidateGoogleToken(h)
		h = s.rateLimiter.Middleware(h)
		return s.instrumentationMiddleware(h)
	}

	switch s.config.ServerType {
	case "sse":
		sseServer := mcpserver.NewSSEServer(s.mcpServer,
			mcpserver.WithSSEEndpoint("/sse"),
			mcpserver.WithMessageEndpoint("/message"),
		)
		mux.Handle("/sse", protect(sseServer))
		mux.Handle("/message", protect(sseServer))

	case "streamable-http":
		opts := []mcpserver.StreamableHTTPOption{
			mcpserver.WithEndpointPath("/mcp"),
		}
		if s.config.DisableStreaming {
			opts = append(opts, mcpserver.WithDisableStreaming(true))
		}
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcpServer, opts...)
		mux.Handle("/mcp", protect(httpServer))

	default:
		return fmt.Errorf("unsupported server type: %s", s.config.ServerType)
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("starting OAuth HTTP server",
		"addr", addr,
		"transport", s.config.ServerType,
		"resource", s.config.BaseURL,
	)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *OAuthHTTPServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// serveProtectedResourceMetadata serves the RFC 9728 discovery document.
func (s *OAuthHTTPServer) serveProtectedResourceMetadata(w http.ResponseWriter, _ *http.Request) {
	metadata := ProtectedResourceMetadata{
		Resource:               s.config.BaseURL,
		AuthorizationServers:   []string{googleAuthorizationServer},
		ScopesSupported:        google.DefaultOAuthScopes,
		BearerMethodsSupported: []string{"header"},
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(metadata)
}

// serveCallback completes the authorization code flow. The state
// parameter carries the account name the flow was started for.
func (s *OAuthHTTPServer) serveCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result := mcpoauth.ParseCallbackQuery(
		q.Get("code"),
		q.Get("state"),
		q.Get("error"),
		q.Get("error_description"),
		q.Get("error_uri"),
	)

	if err := result.Err(); err != nil {
		if mcpoauth.IsSilentAuthError(err) {
			// The IdP needs user interaction. The client should retry
			// with an interactive authorization request.
			s.writeCallbackError(w, http.StatusUnauthorized, "interaction_required", err)
			return
		}
		s.writeCallbackError(w, http.StatusBadRequest, "authorization_failed", err)
		return
	}

	account := q.Get("state")
	if account == "" {
		account = "default"
	}

	if err := google.SaveTokenForAccount(r.Context(), account, q.Get("code")); err != nil {
		s.logger.Error("failed to exchange authorization code",
			logging.Account(logging.AnonymizeEmail(account)),
			logging.Err(err),
		)
		s.writeCallbackError(w, http.StatusBadGateway, "token_exchange_failed", err)
		return
	}

	s.logger.Info("authorization completed",
		logging.Account(logging.AnonymizeEmail(account)),
	)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "Authorization complete. You can close this window and return to your client.")
}

func (s *OAuthHTTPServer) writeCallbackError(w http.ResponseWriter, status int, code string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:            code,
		ErrorDescription: err.Error(),
	})
}

// responseWriter captures the status code written to the client so the
// instrumentation middleware can record it.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// instrumentationMiddleware records request counts and latencies.
// Passes through unchanged when no metrics recorder is configured.
func (s *OAuthHTTPServer) instrumentationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.Metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)
		s.config.Metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}

// validateHTTPSRequirement ensures OAuth 2.1 HTTPS compliance.
// Allows HTTP only for loopback addresses (localhost, 127.0.0.1, ::1).
func validateHTTPSRequirement(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	if u.Scheme == "http" {
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("OAuth 2.1 requires HTTPS for production (got: %s). Use HTTPS or localhost for development", baseURL)
		}
	} else if u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s. Must be http (localhost only) or https", u.Scheme)
	}

	return nil
}
