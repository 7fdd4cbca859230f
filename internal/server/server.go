package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/brandbot/internal/briefs"
	"github.com/jonathan/brandbot/internal/db"
	"github.com/jonathan/brandbot/internal/gate"
	"github.com/jonathan/brandbot/internal/generation"
	"github.com/jonathan/brandbot/internal/server/middleware"
	"github.com/jonathan/brandbot/internal/server/ratelimit"
)

// RunStore records generation runs. *db.DB satisfies it.
type RunStore interface {
	CreateRun(ctx context.Context, input db.RunInput) (*db.Run, error)
	FinishRun(ctx context.Context, id uuid.UUID, status, errorMessage string, logs any) error
	ListRuns(ctx context.Context, filters db.RunFilters) ([]db.Run, error)
}

// Config holds server configuration
type Config struct {
	Port           int
	AllowedOrigins []string
	StageTimeout   time.Duration
	NavigateDelay  time.Duration
}

// Deps are the backends the server is built on. Runs and RateLimit are optional.
type Deps struct {
	Briefs    briefs.Store
	Runs      RunStore
	Gate      gate.Gate
	Generator generation.Service
	JWT       *JWTService
	RateLimit *ratelimit.Config
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	briefs      briefs.Store
	runs        RunStore
	gate        gate.Gate
	generator   generation.Service
	jwt         *JWTService
	rateLimiter *ratelimit.Limiter
	origins     map[string]bool

	stageTimeout  time.Duration
	navigateDelay time.Duration

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	closed   bool
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	switch {
	case deps.Briefs == nil:
		return nil, fmt.Errorf("brief store is required")
	case deps.Gate == nil:
		return nil, fmt.Errorf("concurrency gate is required")
	case deps.Generator == nil:
		return nil, fmt.Errorf("generation service is required")
	case deps.JWT == nil:
		return nil, fmt.Errorf("JWT service is required")
	}

	s := &Server{
		briefs:        deps.Briefs,
		runs:          deps.Runs,
		gate:          deps.Gate,
		generator:     deps.Generator,
		jwt:           deps.JWT,
		rateLimiter:   ratelimit.NewLimiter(deps.RateLimit),
		origins:       make(map[string]bool),
		stageTimeout:  cfg.StageTimeout,
		navigateDelay: cfg.NavigateDelay,
		sessions:      make(map[uuid.UUID]*session),
	}
	for _, o := range cfg.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			s.origins[o] = true
		}
	}

	auth := middleware.AuthMiddleware(s.jwt.AsTokenValidator())
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.Handle("POST /briefs", protected(s.handleCreateBrief))
	mux.Handle("GET /briefs/{id}", protected(s.handleGetBrief))
	mux.Handle("PATCH /briefs/{id}/{section}", protected(s.handleUpdateBriefSection))
	mux.Handle("DELETE /briefs/{id}", protected(s.handleDeleteBrief))
	mux.Handle("POST /briefs/{id}/reset", protected(s.handleResetBrief))

	mux.Handle("POST /briefs/{id}/generation", protected(s.handleStartGeneration))
	mux.Handle("GET /briefs/{id}/generation", protected(s.handleGetGeneration))
	mux.Handle("GET /briefs/{id}/generation/events", protected(s.handleGenerationEvents))
	mux.Handle("POST /briefs/{id}/generation/{action}", protected(s.handleGenerationAction))

	mux.Handle("GET /runs", protected(s.handleListRuns))

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // event streams stay open
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		s.Close()
		return fmt.Errorf("server error: %w", err)
	}
	log.Println("[server] shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.Close()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("[server] stopped")
	return nil
}

// Close cancels every active run so its gate slot is released, and stops
// background work. The HTTP listener is not touched.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		if sess.orch.Status().Active() {
			if err := sess.orch.Cancel(); err != nil {
				log.Printf("[server] failed to cancel run for brief %s: %v", sess.briefID, err)
			}
		}
		sess.close()
	}
	s.rateLimiter.Stop()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case len(s.origins) == 0:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case s.origins[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response code and keeps streaming working.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[%s] %s %d in %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[server] error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status code. Internal errors are logged and hidden.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[server] internal error: %v", err)
		s.errorResponse(w, status, "internal server error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// extractClientID uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Round(time.Second).Seconds())
		response["retry_after"] = secs
		w.Header().Set("Retry-After", fmt.Sprintf("%d", secs))
	}

	log.Printf("[rate-limit] limit exceeded: limit=%d remaining=%d reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
