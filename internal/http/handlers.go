package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"accountant/internal/core"
	"accountant/internal/log"
	"accountant/internal/ports"
	"accountant/internal/services"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Raw(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	}).Write(w)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	switch {
	case s.readyCheck == nil:
		checks["backend"] = "not_checked"
	default:
		if err := s.readyCheck(ctx); err != nil {
			checks["backend"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["backend"] = "ok"
		}
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	NewJSONResponse().Status(httpStatus).Raw(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
		fmt.Fprintf(w, "%s %v\n\n", name, value)
	}

	metric("http_requests_total", "counter", "Total HTTP requests", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "counter", "HTTP responses with a 5xx status", traceMetrics.ServerErrors)
	metric("http_response_time_avg_microseconds", "gauge", "Average response time", traceMetrics.AverageResponseTime)
	metric("dashboard_data_unavailable_total", "counter", "Requests that failed with data unavailable",
		atomic.LoadInt64(&s.appMetrics.dataUnavailable))
	metric("dashboard_bad_requests_total", "counter", "Requests rejected for invalid parameters",
		atomic.LoadInt64(&s.appMetrics.badRequests))
	metric("suspicious_requests_total", "counter", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)
	metric("invalid_ip_attempts_total", "counter", "Requests with an unparseable peer address", securityMetrics.InvalidIPAttempts)
	metric("rate_limit_hits_total", "counter", "Requests rejected by the rate limiter", rateLimitMetrics.TotalHits)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	metric("uptime_seconds", "gauge", "Application uptime in seconds",
		fmt.Sprintf("%.0f", time.Since(s.appMetrics.uptime).Seconds()))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	pc := ParsePresentation(r)
	asOf, err := ParseAsOf(r.URL.Query(), s.dashboard.Today())
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	d, err := s.dashboard.Dashboard(r.Context(), asOf)
	if err != nil {
		s.fail(w, r, "dashboard", asOf, err)
		return
	}
	NewJSONResponse().Data(presentDashboard(pc.Locale, d), &pc).Write(w)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	pc := ParsePresentation(r)
	query := r.URL.Query()
	asOf, err := ParseAsOf(query, s.dashboard.Today())
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	period, err := ParsePeriod(query, asOf)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	o, err := s.dashboard.Overview(r.Context(), period, asOf)
	if err != nil {
		s.fail(w, r, "overview", asOf, err)
		return
	}
	NewJSONResponse().Data(o, &pc).Write(w)
}

func (s *Server) handleMonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	pc := ParsePresentation(r)
	query := r.URL.Query()
	asOf, err := ParseAsOf(query, s.dashboard.Today())
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	// Omitted months leave the row count to the service.
	months, err := ParseCount(query, paramMonths, 0, 1, maxMonths)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	rows, err := s.dashboard.MonthlyRevenue(r.Context(), months, asOf)
	if err != nil {
		s.fail(w, r, "monthly_revenue", asOf, err)
		return
	}
	NewJSONResponse().Data(presentMonthlyRevenue(pc.Locale, rows), &pc).Write(w)
}

func (s *Server) handleExpenseBreakdown(w http.ResponseWriter, r *http.Request) {
	pc := ParsePresentation(r)
	query := r.URL.Query()
	asOf, err := ParseAsOf(query, s.dashboard.Today())
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	period, err := ParsePeriod(query, asOf)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	rows, err := s.dashboard.ExpenseBreakdown(r.Context(), period)
	if err != nil {
		s.fail(w, r, "expense_breakdown", asOf, err)
		return
	}
	NewJSONResponse().Data(presentExpenseBreakdown(pc.Locale, rows), &pc).Write(w)
}

func (s *Server) handleUpcomingSubscriptions(w http.ResponseWriter, r *http.Request) {
	pc := ParsePresentation(r)
	query := r.URL.Query()
	asOf, err := ParseAsOf(query, s.dashboard.Today())
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	// A negative horizon asks the service for its configured default, which
	// may itself be zero.
	days, err := ParseCount(query, paramDays, -1, 0, maxHorizonDays)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	rows, err := s.dashboard.UpcomingSubscriptions(r.Context(), days, asOf)
	if err != nil {
		s.fail(w, r, "upcoming_subscriptions", asOf, err)
		return
	}
	NewJSONResponse().Data(presentUpcoming(pc.Locale, rows), &pc).Write(w)
}

func (s *Server) handleOverduePayments(w http.ResponseWriter, r *http.Request) {
	pc := ParsePresentation(r)
	asOf, err := ParseAsOf(r.URL.Query(), s.dashboard.Today())
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	rows, err := s.dashboard.OverduePayments(r.Context(), asOf)
	if err != nil {
		s.fail(w, r, "overdue_payments", asOf, err)
		return
	}
	NewJSONResponse().Data(nonNil(rows), &pc).Write(w)
}

func (s *Server) handleClientSummaries(w http.ResponseWriter, r *http.Request) {
	pc := ParsePresentation(r)

	rows, err := s.dashboard.ClientSummaries(r.Context())
	if err != nil {
		s.fail(w, r, "client_summaries", core.Date{}, err)
		return
	}
	NewJSONResponse().Data(nonNil(rows), &pc).Write(w)
}

func (s *Server) handleIntegrity(w http.ResponseWriter, r *http.Request) {
	pc := ParsePresentation(r)
	asOf, err := ParseAsOf(r.URL.Query(), s.dashboard.Today())
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	issues, err := s.dashboard.Integrity(r.Context(), asOf)
	if err != nil {
		s.fail(w, r, "integrity", asOf, err)
		return
	}
	NewJSONResponse().Data(map[string]any{
		"as_of":  asOf,
		"count":  len(issues),
		"issues": nonNil(issues),
	}, &pc).Write(w)
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	atomic.AddInt64(&s.appMetrics.badRequests, 1)
	log.FromContext(r.Context()).DebugContext(r.Context(), "Rejected request parameters",
		log.FieldPath, r.URL.Path,
		log.FieldError, err.Error())
	BadRequestError(err).Write(w)
}

// fail maps a service error to its response. A cancelled request gets no
// response body and is not counted as a data failure, even when the
// cancellation surfaced through a data source. Data-unavailable failures are
// logged with their cause and reported as 503 without details.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, view string, asOf core.Date, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, context.Canceled):
		log.FromContext(ctx).DebugContext(ctx, "Request cancelled", log.FieldView, view)
	case errors.Is(err, ports.ErrDataUnavailable):
		atomic.AddInt64(&s.appMetrics.dataUnavailable, 1)
		s.structured.LogViewFailure(ctx, view, asOf.String(), err, log.ErrorTypeDataUnavailable)
		DataUnavailableError().Write(w)
	case errors.Is(err, core.ErrInvalidPeriod):
		s.badRequest(w, r, err)
	case errors.Is(err, services.ErrIntegrityUnsupported):
		ErrorResponse(http.StatusNotImplemented, CodeNotImplemented, err.Error()).Write(w)
	default:
		s.structured.LogViewFailure(ctx, view, asOf.String(), err, log.ErrorTypeInternal)
		InternalServerError().Write(w)
	}
}
