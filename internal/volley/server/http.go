package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/msto63/rallyscore/internal/volley/service"
	"github.com/msto63/rallyscore/pkg/core/apperror"
	"github.com/msto63/rallyscore/pkg/core/health"
	"github.com/msto63/rallyscore/pkg/core/logging"
)

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultHTTPConfig returns default HTTP server configuration
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Host:         "0.0.0.0",
		Port:         9380,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// HTTPServer serves the JSON API, the WebSocket endpoint and health
type HTTPServer struct {
	httpServer *http.Server
	sessions   Sessions
	health     *health.Registry
	logger     *logging.Logger
	config     HTTPConfig
}

// NewHTTPServer creates the HTTP server. registry may be nil.
func NewHTTPServer(cfg HTTPConfig, sessions Sessions, registry *health.Registry, logger *logging.Logger) *HTTPServer {
	if logger == nil {
		logger = logging.New("rallyscore-http")
	}

	s := &HTTPServer{
		sessions: sessions,
		health:   registry,
		logger:   logger,
		config:   cfg,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      loggingMiddleware(logger, s.Routes()),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Routes returns the request multiplexer
func (s *HTTPServer) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /ws", NewWebSocketHandler(s.sessions, s.logger.WithName("websocket")))
	if s.health != nil {
		mux.Handle("GET /healthz", s.health.Handler(5*time.Second))
	}

	mux.HandleFunc("POST /api/v1/resolve", s.handleResolve)
	mux.HandleFunc("POST /api/v1/matches", s.handleNewMatch)
	mux.HandleFunc("GET /api/v1/matches/{id}", s.handleGetMatch)
	mux.HandleFunc("GET /api/v1/matches/{id}/rallies", s.handleHistory)
	mux.HandleFunc("POST /api/v1/matches/{id}/rallies", s.handleApply)
	mux.HandleFunc("DELETE /api/v1/matches/{id}/rallies/last", s.handleUndo)

	return mux
}

func (s *HTTPServer) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperror.Wrap(err, "invalid request body").WithCode(apperror.CodeInvalidInput))
		return
	}
	writeJSON(w, http.StatusOK, resolve(s.sessions.Notation(), req))
}

func (s *HTTPServer) handleNewMatch(w http.ResponseWriter, r *http.Request) {
	var req service.NewMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, apperror.Wrap(err, "invalid request body").WithCode(apperror.CodeInvalidInput))
		return
	}
	m, err := s.sessions.NewMatch(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *HTTPServer) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	m, err := s.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *HTTPServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	rallies, err := s.sessions.History(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rallies)
}

func (s *HTTPServer) handleApply(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperror.Wrap(err, "invalid request body").WithCode(apperror.CodeInvalidInput))
		return
	}
	req.MatchID = r.PathValue("id")

	resp, err := apply(r.Context(), s.sessions, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	status := http.StatusCreated
	if resp.Fail != nil {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

func (s *HTTPServer) handleUndo(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Undo(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *HTTPServer) writeError(w http.ResponseWriter, err error) {
	code := errorCode(err)
	if code == apperror.CodeInternal || code == apperror.CodeDatabaseError {
		s.logger.LogError(err)
	}
	writeJSON(w, code.HTTPStatus(), WSErrorPayload{Code: string(code), Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", time.Since(start),
		)
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrader take over the connection
func (w *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.statusCode = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Handler returns the root handler including request logging
func (s *HTTPServer) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the server and blocks
func (s *HTTPServer) Start() error {
	s.logger.Info("Starting HTTP server", "address", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Serve serves on an existing listener
func (s *HTTPServer) Serve(lis net.Listener) error {
	s.logger.Info("Starting HTTP server", "address", lis.Addr().String())
	return s.httpServer.Serve(lis)
}

// StartAsync starts the server asynchronously
func (s *HTTPServer) StartAsync() {
	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()
}

// Stop gracefully stops the server
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Address returns the configured listen address
func (s *HTTPServer) Address() string {
	return s.httpServer.Addr
}
