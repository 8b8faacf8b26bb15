package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"moneytracker/internal/cache"
	applog "moneytracker/internal/log"
	"moneytracker/internal/middleware/ratelimit"
	"moneytracker/internal/middleware/security"
	"moneytracker/internal/middleware/trace"
	"moneytracker/internal/services"
)

const (
	requestTimeout       = 7 * time.Second
	cacheCleanupInterval = 10 * time.Minute
)

// Server is the JSON API of the transactions backend.
type Server struct {
	http.Server
	service     *services.TransactionService
	ping        func(context.Context) error
	cacheMgr    *cache.Manager
	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware
	logger      *applog.Logger
	startedAt   time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server. ping backs /readyz; cacheMgr, when set, gets its periodic cleanup
// started here and stopped by Shutdown.
func NewServer(addr string, svc *services.TransactionService, ping func(context.Context) error, cacheMgr *cache.Manager, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.Discard()
	}

	s := &Server{
		service:     svc,
		ping:        ping,
		cacheMgr:    cacheMgr,
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:    security.NewDetector(logger),
		logger:      logger.WithComponent(applog.ComponentHTTP),
		startedAt:   time.Now(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger)
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if cacheMgr != nil {
		cacheMgr.StartCleanup(cacheCleanupInterval)
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(s.tracer.Middleware)
	r.Use(applog.Middleware(s.logger, trace.RequestIDFromRequest))
	r.Use(s.detector.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		NotFoundError("not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		MethodNotAllowedError().Write(w)
	})

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	limit := s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit)

	r.Route("/api/transactions", func(r chi.Router) {
		r.Get("/", s.handleListTransactions)
		r.With(limit).Post("/", s.handleCreateTransaction)
		r.Get("/monthly_stats/", s.handleMonthlyStats)
		r.Get("/current_month_summary/", s.handleCurrentMonthSummary)
		r.Get("/{id}/", s.handleGetTransaction)
		r.With(limit).Put("/{id}/", s.handleUpdateTransaction)
		r.With(limit).Delete("/{id}/", s.handleDeleteTransaction)
	})

	return r
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	TooManyRequestsError().Write(w)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.cacheMgr != nil {
			s.cacheMgr.Stop()
		}
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err.Error())
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Metrics is the body of GET /metrics.
type Metrics struct {
	UptimeSeconds      int64 `json:"uptime_seconds"`
	RequestsTotal      int64 `json:"http_requests_total"`
	LastResponseMicros int64 `json:"http_last_response_time_microseconds"`
	RateLimitHitsTotal int64 `json:"rate_limit_hits_total"`
	RateLimitClients   int64 `json:"rate_limit_active_clients"`
	SuspiciousRequests int64 `json:"security_suspicious_requests_total"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	traceMetrics := s.tracer.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()

	NewJSONResponse().Body(Metrics{
		UptimeSeconds:      int64(time.Since(s.startedAt).Seconds()),
		RequestsTotal:      traceMetrics.TotalRequests,
		LastResponseMicros: traceMetrics.LastResponseTime,
		RateLimitHitsTotal: rateLimitMetrics.TotalHits,
		RateLimitClients:   rateLimitMetrics.ClientCount,
		SuspiciousRequests: securityMetrics.SuspiciousRequests,
	}).Write(w)
}
