package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"accountant/internal/aggregate"
	"accountant/internal/core"
	"accountant/internal/log"
	"accountant/internal/middleware/ratelimit"
	"accountant/internal/middleware/security"
	"accountant/internal/middleware/trace"
)

// DashboardAPI is what the handlers need from the dashboard service.
type DashboardAPI interface {
	Today() core.Date
	Dashboard(ctx context.Context, asOf core.Date) (core.Dashboard, error)
	Overview(ctx context.Context, period core.Period, asOf core.Date) (core.FinancialOverview, error)
	MonthlyRevenue(ctx context.Context, monthCount int, asOf core.Date) ([]core.MonthlyRevenue, error)
	ExpenseBreakdown(ctx context.Context, period core.Period) ([]core.ExpenseBreakdown, error)
	UpcomingSubscriptions(ctx context.Context, horizonDays int, asOf core.Date) ([]core.UpcomingSubscription, error)
	OverduePayments(ctx context.Context, asOf core.Date) ([]core.OverduePayment, error)
	ClientSummaries(ctx context.Context) ([]core.ClientFinancialSummary, error)
	Integrity(ctx context.Context, asOf core.Date) ([]aggregate.Issue, error)
}

// Options configures a Server. Zero values select defaults.
type Options struct {
	Addr           string
	Logger         *log.Logger
	RateLimit      ratelimit.Config
	Headers        *security.HeadersConfig
	TrustedProxies []string
	// ReadyCheck reports whether the data backend is reachable.
	ReadyCheck func(context.Context) error
}

type appMetrics struct {
	uptime          time.Time
	dataUnavailable int64
	badRequests     int64
}

type Server struct {
	http.Server
	dashboard        DashboardAPI
	logger           *log.Logger
	structured       *log.StructuredLogger
	securityDetector *security.Detector
	rateLimiter      *ratelimit.Limiter
	traceMiddleware  *trace.Middleware
	readyCheck       func(context.Context) error
	appMetrics       appMetrics
	shutdownOnce     sync.Once
}

// NewServer wires the JSON API routes and the middleware chain.
func NewServer(dashboard DashboardAPI, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err.Error())
		}
	}
	headers := security.DefaultHeadersConfig()
	if opts.Headers != nil {
		headers = *opts.Headers
	}

	s := &Server{
		dashboard:        dashboard,
		logger:           logger,
		structured:       log.NewStructuredLogger(logger),
		securityDetector: detector,
		rateLimiter:      ratelimit.NewLimiter(opts.RateLimit),
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP, logger),
		readyCheck:       opts.ReadyCheck,
		appMetrics:       appMetrics{uptime: time.Now()},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.Handle("GET /api/dashboard", s.api(s.handleDashboard))
	mux.Handle("GET /api/overview", s.api(s.handleOverview))
	mux.Handle("GET /api/monthly-revenue", s.api(s.handleMonthlyRevenue))
	mux.Handle("GET /api/expense-breakdown", s.api(s.handleExpenseBreakdown))
	mux.Handle("GET /api/subscriptions/upcoming", s.api(s.handleUpcomingSubscriptions))
	mux.Handle("GET /api/invoices/overdue", s.api(s.handleOverduePayments))
	mux.Handle("GET /api/clients/summary", s.api(s.handleClientSummaries))
	mux.Handle("GET /api/integrity", s.api(s.handleIntegrity))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		NotFoundError().Write(w)
	})

	var handler http.Handler = mux
	handler = security.NoStoreMiddleware(handler)
	handler = security.NewHeadersMiddleware(headers).Middleware(handler)
	handler = detector.Middleware()(handler)
	handler = log.RequestIDMiddleware(trace.RequestID)(handler)
	handler = log.Middleware(logger)(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// api applies per-client rate limiting to an API handler and tags its
// request logger with the dashboard component.
func (s *Server) api(h http.HandlerFunc) http.Handler {
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(),
			"Rate limit exceeded",
			log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
			log.FieldPath, r.URL.Path)
		TooManyRequestsError(s.rateLimiter.RetryAfter()).Write(w)
	}
	limited := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, onLimit)(h)
	return log.ComponentMiddleware(log.ComponentDashboard)(limited)
}

// Shutdown stops background goroutines and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
