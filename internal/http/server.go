// Package http exposes the ledger over a JSON API. Read endpoints are
// served through per-owner LRU caches that mutations invalidate, so a
// client always observes balances consistent with its own writes.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Shreenandbhattad/personal-finance-tracker/internal/amqp"
	"github.com/Shreenandbhattad/personal-finance-tracker/internal/cache"
	"github.com/Shreenandbhattad/personal-finance-tracker/internal/core"
	"github.com/Shreenandbhattad/personal-finance-tracker/internal/ledger"
)

// Options tunes server-side caching. Zero values fall back to defaults.
type Options struct {
	CacheMaxEntries int
	CacheTTL        time.Duration
}

type Server struct {
	http.Server
	store       ledger.Store
	events      *amqp.Client
	rateLimiter *rateLimiter
	metrics     *securityMetrics

	summaryCache *cache.LRUCache[core.Summary]
	listCache    *cache.LRUCache[[]core.Transaction]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
// The events client may be nil; publishing is then skipped entirely.
func NewServer(addr string, store ledger.Store, events *amqp.Client, opts Options) *Server {
	if opts.CacheMaxEntries <= 0 {
		opts.CacheMaxEntries = 100
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:        store,
		events:       events,
		rateLimiter:  newRateLimiter(60),
		metrics:      &securityMetrics{},
		summaryCache: cache.NewLRUCache[core.Summary](opts.CacheMaxEntries, opts.CacheTTL),
		listCache:    cache.NewLRUCache[[]core.Transaction](opts.CacheMaxEntries, opts.CacheTTL),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.listCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/user", s.withMiddleware(s.handleCreateUser))
	mux.HandleFunc("GET /api/user", s.withMiddleware(s.handleCurrentUser))
	mux.HandleFunc("POST /api/transactions", s.withMiddleware(s.handleAddTransaction))
	mux.HandleFunc("GET /api/transactions", s.withMiddleware(s.handleListTransactions))
	mux.HandleFunc("DELETE /api/transactions", s.withMiddleware(s.handleClearTransactions))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withMiddleware(s.handleDeleteTransaction))
	mux.HandleFunc("GET /api/summary", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("GET /api/reports", s.withMiddleware(s.handleReports))

	return s
}

// Shutdown stops the HTTP server and the background cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds request tracing, rate limiting and security headers.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP, s.metrics) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
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

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// invalidateOwner drops the cached summary and transaction list for an owner.
// Called after every successful mutation.
func (s *Server) invalidateOwner(ownerID string) {
	s.summaryCache.Delete(ownerID)
	s.listCache.Delete(ownerID)
}

func (s *Server) cachedSummary(ctx context.Context, ownerID string) (*core.Summary, error) {
	if data, found := s.summaryCache.Get(ownerID); found {
		slog.DebugContext(ctx, "Summary cache hit", "owner_id", ownerID)
		return &data, nil
	}

	summary, err := s.store.Summary(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, core.ErrNoUser
	}

	s.summaryCache.Set(ownerID, *summary)
	return summary, nil
}

func (s *Server) cachedTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	if items, found := s.listCache.Get(ownerID); found {
		slog.DebugContext(ctx, "Transaction list cache hit", "owner_id", ownerID, "count", len(items))
		// Copy so callers cannot mutate the cached slice.
		result := make([]core.Transaction, len(items))
		copy(result, items)
		return result, nil
	}

	items, err := s.store.ListTransactions(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	s.listCache.Set(ownerID, items)
	return items, nil
}
