// Package server provides the HTTP REST API for the résumé formatter.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/cv-formatter/internal/export"
	"github.com/jonathan/cv-formatter/internal/pipeline"
)

// DefaultRenderTimeout bounds formatting and PDF rendering for one request
const DefaultRenderTimeout = 30 * time.Second

// requestIDHeader carries the request ID in both directions
const requestIDHeader = "X-Request-ID"

type ctxKey struct{}

// Options configure a Server
type Options struct {
	Port            int
	RenderTimeout   time.Duration
	LargeFontPoints float64
	Orchestrator    *pipeline.Orchestrator
	Renderer        export.Renderer
	Logger          *slog.Logger
}

// Server is the HTTP API server
type Server struct {
	orchestrator    atomic.Pointer[pipeline.Orchestrator]
	renderer        export.Renderer
	validate        *validator.Validate
	logger          *slog.Logger
	renderTimeout   time.Duration
	largeFontPoints float64
	handler         http.Handler
	httpServer      *http.Server
}

// New creates a new server
func New(opts Options) (*Server, error) {
	if opts.Orchestrator == nil {
		return nil, errors.New("server requires an orchestrator")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RenderTimeout <= 0 {
		opts.RenderTimeout = DefaultRenderTimeout
	}

	s := &Server{
		renderer:        opts.Renderer,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
		logger:          opts.Logger,
		renderTimeout:   opts.RenderTimeout,
		largeFontPoints: opts.LargeFontPoints,
	}
	s.orchestrator.Store(opts.Orchestrator)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /format", s.handleFormat)
	mux.HandleFunc("POST /format/pdf", s.handleFormatPDF)
	mux.HandleFunc("POST /parse", s.handleParse)

	s.handler = s.withLogging(s.withCORS(mux))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: opts.RenderTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped request handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// SetOrchestrator swaps the orchestrator used by new requests. Requests in
// flight finish with the one they started with.
func (s *Server) SetOrchestrator(o *pipeline.Orchestrator) {
	if o != nil {
		s.orchestrator.Store(o)
	}
}

// Start listens until ctx is done or the process receives SIGINT or SIGTERM,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)
		w.Header().Set("Access-Control-Expose-Headers", requestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging assigns a request ID and logs each request
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, id))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"request_id", id,
			"duration", time.Since(start))
	})
}

// requestID returns the ID assigned by withLogging
func requestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"strategies": s.orchestrator.Load().Strategies(),
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.jsonResponse(w, status, ErrorResponse{Error: message, RequestID: requestID(r.Context())})
}
