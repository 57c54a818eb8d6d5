// Package api provides HTTP handlers and the main API server logic for wellnessd.
//
// It exposes RESTful endpoints for wellness plan generation, saved plan management,
// mood logging, and supportive chat. The API integrates with the plan pipeline,
// GenAI client, and store modules.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/damii-health/wellnessd/internal/genai"
	"github.com/damii-health/wellnessd/internal/plan"
	"github.com/damii-health/wellnessd/internal/store"
)

// Server configuration constants
const (
	// DefaultAddr is the address the API server listens on when none is configured
	DefaultAddr = ":8080"
	// DefaultReadHeaderTimeout bounds header parsing to mitigate slowloris
	DefaultReadHeaderTimeout = 10 * time.Second
	// DefaultShutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM
	DefaultShutdownTimeout = 15 * time.Second
)

// Opts holds configuration for the API server.
type Opts struct {
	Addr string
}

// Option configures the API server.
type Option func(*Opts)

// WithAddr sets the listen address (overrides $API_ADDR).
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server wires the plan pipeline, GenAI client, and store behind HTTP handlers.
type Server struct {
	pipeline *plan.Pipeline
	gaClient genai.ClientInterface
	st       store.Store
	addr     string
}

// NewServer creates an API server. The GenAI client may be nil; plan generation then
// degrades to the fallback tier and chat is unavailable.
func NewServer(pipeline *plan.Pipeline, gaClient genai.ClientInterface, st store.Store, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	return &Server{pipeline: pipeline, gaClient: gaClient, st: st, addr: addr}
}

// Handler builds the route table for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("POST /v1/wellness/plan", s.generatePlanHandler)
	mux.HandleFunc("POST /v1/users/{id}/plans", s.savePlanHandler)
	mux.HandleFunc("GET /v1/users/{id}/plans", s.listPlansHandler)
	mux.HandleFunc("DELETE /v1/users/{id}/plans/{planID}", s.deletePlanHandler)
	mux.HandleFunc("PATCH /v1/users/{id}/plans/{planID}", s.renamePlanHandler)
	mux.HandleFunc("POST /v1/users/{id}/mood", s.addMoodHandler)
	mux.HandleFunc("GET /v1/users/{id}/mood", s.listMoodHandler)
	mux.HandleFunc("POST /v1/users/{id}/chat", s.chatHandler)
	return mux
}

// Serve runs the HTTP server until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}

// Run constructs all modules from their options and serves until interrupted.
// This is the single composition point called from main.
func Run(storeOpts []store.Option, genaiOpts []genai.Option, apiOpts []Option) error {
	st, err := buildStore(storeOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			slog.Warn("Failed to close store", "error", cerr)
		}
	}()

	var gaClient genai.ClientInterface
	client, err := genai.NewClient(genaiOpts...)
	switch {
	case err == nil:
		gaClient = client
	case errors.Is(err, genai.ErrAPIKeyNotSet):
		// Run degraded: the pipeline falls through to deterministic synthesis.
		slog.Warn("GenAI client not configured, plan generation will use fallback synthesis only")
	default:
		return fmt.Errorf("failed to initialize GenAI client: %w", err)
	}

	pipeline := plan.NewPipeline(gaClient)
	server := NewServer(pipeline, gaClient, st, apiOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Serve(ctx)
}

// buildStore selects a backend from the configured DSN: Postgres for PostgreSQL
// DSNs, SQLite for file paths, in-memory when no DSN is set.
func buildStore(opts []store.Option) (store.Store, error) {
	var cfg store.Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Info("No database DSN configured, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(cfg.DSN) == "postgres" {
		slog.Info("Using PostgreSQL store")
		return store.NewPostgresStore(opts...)
	}
	slog.Info("Using SQLite store", "path", cfg.DSN)
	return store.NewSQLiteStore(opts...)
}
