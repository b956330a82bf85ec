package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/slotwise/slotwise/internal/google"
	"github.com/slotwise/slotwise/internal/instrumentation"
	"github.com/slotwise/slotwise/internal/logging"
	"github.com/slotwise/slotwise/internal/server"
	"github.com/slotwise/slotwise/internal/store"
	"github.com/slotwise/slotwise/internal/tools/calendar_tools"
	"github.com/slotwise/slotwise/internal/tools/google_tools"
)

// serveOptions holds the flag values for the serve command.
type serveOptions struct {
	Transport        string
	HTTPAddr         string
	BaseURL          string
	ReadOnly         bool
	DisableStreaming bool
	MetricsEnabled   bool
	MetricsAddr      string
	DatabasePath     string
	Debug            bool
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server for AI assistants",
		Long: `Start a Model Context Protocol server that exposes Google Calendar,
scheduling and OAuth tools.

Transports:
  stdio            JSON-RPC over stdin/stdout (default, for local assistants)
  sse              HTTP with Server-Sent Events, protected by Google OAuth
  streamable-http  HTTP with streamable responses, protected by Google OAuth

The HTTP transports require a base URL that MCP clients can reach; HTTPS is
enforced outside localhost. Prometheus metrics are served on a dedicated
port so they are never exposed on the public listener.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Transport, "transport", "stdio", "Transport to use: stdio, sse, or streamable-http")
	cmd.Flags().StringVar(&opts.HTTPAddr, "http-addr", ":8080", "Listen address for the HTTP transports")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "http://localhost:8080", "External base URL of this server (HTTP transports)")
	cmd.Flags().BoolVar(&opts.ReadOnly, "read-only", false, "Register only tools that cannot modify calendars")
	cmd.Flags().BoolVar(&opts.DisableStreaming, "disable-streaming", false, "Disable streaming responses (streamable-http only)")
	cmd.Flags().BoolVar(&opts.MetricsEnabled, "metrics-enabled", true, "Serve Prometheus metrics on a dedicated port")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Listen address for the metrics server")
	cmd.Flags().StringVar(&opts.DatabasePath, "db", "", "Path to the SQLite database (default: per-user config dir)")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "Enable debug logging")

	return cmd
}

func runServe(opts serveOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(opts.Debug)
	slog.SetDefault(logger)

	switch opts.Transport {
	case "stdio", "sse", "streamable-http":
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio, sse, or streamable-http)", opts.Transport)
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	if err := instrConfig.Validate(); err != nil {
		return fmt.Errorf("invalid instrumentation config: %w", err)
	}

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize instrumentation: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	sc, err := server.NewServerContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := sc.Shutdown(); err != nil {
			logger.Warn("server context shutdown failed", logging.Err(err))
		}
	}()

	db, err := openStore(opts.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()
	sc.SetStore(db)

	// The stdio transport runs on a trusted workstation and reads tokens
	// from disk. The HTTP transports only see tokens captured during
	// session authentication, persisted in the credential store.
	if opts.Transport == "stdio" {
		sc.SetTokenProvider(google.NewFileTokenProvider())
	} else {
		sc.SetTokenProvider(google.NewStoreTokenProvider(db))
	}

	if provider.Enabled() {
		sc.SetMetrics(provider.Metrics())
	}
	if instrConfig.AuditLogging.Enabled {
		sc.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging))
	}

	mcpSrv := mcpserver.NewMCPServer(
		"slotwise",
		version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := registerAllTools(mcpSrv, sc, opts.ReadOnly); err != nil {
		return err
	}

	var metricsSrv *server.MetricsServer
	if opts.MetricsEnabled && opts.Transport != "stdio" && provider.Enabled() {
		metricsSrv, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    opts.MetricsAddr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", logging.Err(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	if opts.Transport == "stdio" {
		return runStdioServer(ctx, mcpSrv, logger)
	}
	return runHTTPServer(ctx, mcpSrv, sc, db, opts, logger)
}

// registerAllTools registers every tool family on the MCP server.
func registerAllTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	registrations := []struct {
		name     string
		register func() error
	}{
		{"Calendar", func() error { return calendar_tools.RegisterCalendarTools(s, sc, readOnly) }},
		{"Google OAuth", func() error { return google_tools.RegisterGoogleTools(s, sc) }},
	}

	for _, r := range registrations {
		if err := r.register(); err != nil {
			return fmt.Errorf("failed to register %s tools: %w", r.name, err)
		}
	}
	return nil
}

// runStdioServer serves MCP over stdin/stdout until the context is done.
func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, logger *slog.Logger) error {
	logger.Info("starting MCP server", "transport", "stdio", "version", version)

	errCh := make(chan error, 1)
	go func() {
		errCh <- mcpserver.ServeStdio(mcpSrv)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down MCP server")
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("stdio server error: %w", err)
		}
		return nil
	}
}

// runHTTPServer serves MCP over an OAuth-protected HTTP transport until
// the context is done.
func runHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, db *store.Store, opts serveOptions, logger *slog.Logger) error {
	health := server.NewHealthChecker(sc)

	httpSrv, err := server.NewOAuthHTTPServer(mcpSrv, server.OAuthHTTPServerConfig{
		BaseURL:          opts.BaseURL,
		ServerType:       opts.Transport,
		Tokens:           server.NewStoreTokens(db),
		Sessions:         server.NewSessionIDManager(),
		Metrics:          sc.Metrics(),
		DisableStreaming: opts.DisableStreaming,
		Health:           health,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	logger.Info("starting MCP server",
		"transport", opts.Transport,
		"addr", opts.HTTPAddr,
		"base_url", opts.BaseURL,
		"version", version,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Start(opts.HTTPAddr)
	}()
	health.SetReady(true)

	select {
	case <-ctx.Done():
		health.SetReady(false)
		logger.Info("shutting down MCP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	}
}

// newLogger builds the process logger. Logs go to stderr so the stdio
// transport keeps stdout clean for JSON-RPC.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openStore opens the SQLite database, creating parent directories as
// needed. An empty path selects the per-user default location.
func openStore(path string) (*store.Store, error) {
	if path == "" {
		path = defaultDatabasePath()
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return db, nil
}

// defaultDatabasePath returns the database location used when the --db
// flag is not set. SLOTWISE_DB overrides it.
func defaultDatabasePath() string {
	if v := os.Getenv("SLOTWISE_DB"); v != "" {
		return v
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "slotwise.db"
	}
	return filepath.Join(dir, "slotwise", "slotwise.db")
}
