// Package web provides the HTTP server for the browser UI.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/codecanvas/codecanvas/internal/artifact"
	"github.com/codecanvas/codecanvas/internal/chat"
	"github.com/codecanvas/codecanvas/internal/web/handlers"
	"github.com/codecanvas/codecanvas/internal/web/static"
)

const (
	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout prevents Slowloris-style connection exhaustion.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// IdleTimeout is the keep-alive wait for the next request. There is
	// no WriteTimeout: SSE responses stay open for the whole turn.
	IdleTimeout = 120 * time.Second
)

// ServerConfig contains configuration for creating the server.
type ServerConfig struct {
	Logger    *slog.Logger
	Manager   *chat.Manager   // required
	Artifacts *artifact.Store // required

	RateLimit  float64 // tokens per second per IP (0 = default 5)
	RateBurst  int     // bucket size per IP (0 = default 20)
	TrustProxy bool    // trust X-Real-IP/X-Forwarded-For
}

// Server is the HTTP server serving the UI and its JSON API.
type Server struct {
	handler http.Handler
	logger  *slog.Logger
}

// NewServer creates a server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Manager == nil {
		return nil, errors.New("manager is required")
	}
	if cfg.Artifacts == nil {
		return nil, errors.New("artifact store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	handlers.NewChat(handlers.ChatConfig{
		Manager:   cfg.Manager,
		Artifacts: cfg.Artifacts,
		Logger:    logger,
	}).RegisterRoutes(mux)
	handlers.NewSessions(handlers.SessionsConfig{
		Manager: cfg.Manager,
		Logger:  logger,
	}).RegisterRoutes(mux)
	handlers.NewCanvas(handlers.CanvasConfig{
		Artifacts: cfg.Artifacts,
		Manager:   cfg.Manager,
		Logger:    logger,
	}).RegisterRoutes(mux)
	handlers.NewSettings(handlers.SettingsConfig{
		Manager: cfg.Manager,
		Logger:  logger,
	}).RegisterRoutes(mux)

	// UI assets
	mux.Handle("GET /static/", http.StripPrefix("/static/", static.Handler()))
	mux.Handle("GET /{$}", static.Handler())

	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 5
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 20
	}
	rl := newRateLimiter(limit, burst)

	// Middleware stack (outermost first):
	//   Recovery → Logging → RateLimit → Routes
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w)
		handler.ServeHTTP(w, r)
	})

	// Health probes bypass the middleware stack.
	topMux := http.NewServeMux()
	handlers.NewHealth(cfg.Manager, logger).RegisterRoutes(topMux)
	topMux.Handle("/", final)

	return &Server{handler: topMux, logger: logger}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
