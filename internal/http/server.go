// Package http exposes the childminding records as a JSON REST API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"minder/internal/cache"
	"minder/internal/core"
	applog "minder/internal/log"
	"minder/internal/services"
	"minder/internal/views"
)

// Service interfaces consumed by the handlers. The services package
// provides the production implementations.
type (
	ParentService interface {
		List(ctx context.Context) ([]core.Parent, error)
		Create(ctx context.Context, p core.Parent) (core.Parent, error)
		Update(ctx context.Context, id string, patch services.ParentPatch) (core.Parent, error)
		Delete(ctx context.Context, id string) error
	}

	ChildService interface {
		List(ctx context.Context) ([]views.Child, error)
		Create(ctx context.Context, c core.Child) (views.Child, error)
		Update(ctx context.Context, id string, patch services.ChildPatch) (views.Child, error)
		Delete(ctx context.Context, id string) error
	}

	SessionService interface {
		List(ctx context.Context) ([]views.Session, error)
		Create(ctx context.Context, s core.Session) (views.Session, error)
		Update(ctx context.Context, id string, patch services.SessionPatch) (views.Session, error)
		Delete(ctx context.Context, id string) error
	}
)

// Options tunes the server. Zero values fall back to defaults.
type Options struct {
	WriteRateLimit int           // mutating requests per client per minute
	ListCacheSize  int           // max cached list responses per entity
	ListCacheTTL   time.Duration // list cache entry lifetime
	Logger         *applog.Logger
}

func (o *Options) withDefaults() {
	if o.WriteRateLimit <= 0 {
		o.WriteRateLimit = 30
	}
	if o.ListCacheSize <= 0 {
		o.ListCacheSize = 16
	}
	if o.ListCacheTTL <= 0 {
		o.ListCacheTTL = time.Minute
	}
	if o.Logger == nil {
		o.Logger = applog.New(applog.DefaultConfig())
	}
}

type Server struct {
	http.Server

	parents  ParentService
	children ChildService
	sessions SessionService

	rateLimiter *rateLimiter

	// List responses are cached per entity and invalidated on writes.
	parentList  *cache.LRUCache[[]parentResponse]
	childList   *cache.LRUCache[[]childResponse]
	sessionList *cache.LRUCache[[]sessionResponse]
	cacheMgr    *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
func NewServer(addr string, parents ParentService, children ChildService, sessions SessionService, opts Options) *Server {
	opts.withDefaults()

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		parents:     parents,
		children:    children,
		sessions:    sessions,
		rateLimiter: newRateLimiter(opts.WriteRateLimit),
		parentList:  cache.NewLRUCache[[]parentResponse](opts.ListCacheSize, opts.ListCacheTTL),
		childList:   cache.NewLRUCache[[]childResponse](opts.ListCacheSize, opts.ListCacheTTL),
		sessionList: cache.NewLRUCache[[]sessionResponse](opts.ListCacheSize, opts.ListCacheTTL),
		cacheMgr:    cache.NewManager(),
	}

	s.cacheMgr.Register(s.parentList)
	s.cacheMgr.Register(s.childList)
	s.cacheMgr.Register(s.sessionList)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /{$}", s.withMiddleware(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /parents", s.withMiddleware(s.handleListParents))
	mux.HandleFunc("POST /parents", s.withMiddleware(s.handleCreateParent))
	mux.HandleFunc("PUT /parents/{id}", s.withMiddleware(s.handleUpdateParent))
	mux.HandleFunc("DELETE /parents/{id}", s.withMiddleware(s.handleDeleteParent))

	mux.HandleFunc("GET /children", s.withMiddleware(s.handleListChildren))
	mux.HandleFunc("POST /children", s.withMiddleware(s.handleCreateChild))
	mux.HandleFunc("PUT /children/{id}", s.withMiddleware(s.handleUpdateChild))
	mux.HandleFunc("DELETE /children/{id}", s.withMiddleware(s.handleDeleteChild))

	mux.HandleFunc("GET /sessions", s.withMiddleware(s.handleListSessions))
	mux.HandleFunc("POST /sessions", s.withMiddleware(s.handleCreateSession))
	mux.HandleFunc("PUT /sessions/{id}", s.withMiddleware(s.handleUpdateSession))
	mux.HandleFunc("DELETE /sessions/{id}", s.withMiddleware(s.handleDeleteSession))

	// Every request carries a request-scoped logger stamped with its id.
	logChain := applog.Middleware(opts.Logger.WithComponent("http"))
	idChain := applog.RequestIDMiddleware(requestIDFrom)
	s.Server.Handler = logChain(idChain(mux))

	return s
}

// requestIDFrom honours an upstream X-Request-ID, minting one otherwise.
func requestIDFrom(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return generateRequestID()
}

// Shutdown stops the HTTP server and the background cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware adds request logging, rate limiting on writes, and
// baseline response headers.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ip := clientIP(r)
		ctx := r.Context()
		logger := applog.FromContext(ctx)

		logger.InfoContext(ctx, "Request started",
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", ip)

		if isWrite(r.Method) && !s.rateLimiter.allow(ip) {
			logger.WarnContext(ctx, "Rate limit exceeded", "client_ip", ip, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			errorResponse(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		logger.InfoContext(ctx, "Request completed",
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", ip)
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// clientIP extracts the client address, honouring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, envelope{"service": "minder", "status": "ok"}, nil)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	// TODO: check SQLite connectivity once a readiness probe consumer shows up.
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Write handlers call these to drop stale list responses. A parent write
// can change every composed view, a child write the child and session
// views, a session write only the session view.
func (s *Server) invalidateParents() {
	s.parentList.Delete(listKey)
	s.childList.Delete(listKey)
	s.sessionList.Delete(listKey)
}

func (s *Server) invalidateChildren() {
	s.childList.Delete(listKey)
	s.sessionList.Delete(listKey)
}

func (s *Server) invalidateSessions() {
	s.sessionList.Delete(listKey)
}

const listKey = "all"
