package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"accountant/internal/aggregate"
	"accountant/internal/cache"
	"accountant/internal/core"
	"accountant/internal/ports"
)

// DefaultTimezone is the business timezone used to decide what "today" is.
const DefaultTimezone = "Asia/Dubai"

// DashboardServiceConfig holds configuration for the dashboard service
type DashboardServiceConfig struct {
	// Timeout bounds every fetch (default: 10s)
	Timeout time.Duration

	// MonthCount is the number of monthly revenue rows (default: 12)
	MonthCount int

	// HorizonDays is the upcoming-subscription window (default: 30)
	HorizonDays int

	// Location decides the current business day (default: Asia/Dubai)
	Location *time.Location
}

// DefaultDashboardServiceConfig returns sensible defaults
func DefaultDashboardServiceConfig() DashboardServiceConfig {
	return DashboardServiceConfig{
		Timeout:     10 * time.Second,
		MonthCount:  12,
		HorizonDays: 30,
		Location:    BusinessLocation(DefaultTimezone),
	}
}

// BusinessLocation loads name, falling back to a fixed UTC+4 zone when the
// tz database is unavailable.
func BusinessLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("GST", 4*60*60)
	}
	return loc
}

// DashboardService serves the aggregation views to the presentation layer.
type DashboardService struct {
	reader    ports.DashboardReader
	integrity ports.IntegrityChecker
	cache     cache.Cache[core.Dashboard]
	config    DashboardServiceConfig
	logger    *slog.Logger
	now       func() time.Time
}

// NewDashboardService creates a dashboard service. integrity and dashCache
// may be nil.
func NewDashboardService(
	reader ports.DashboardReader,
	integrity ports.IntegrityChecker,
	dashCache cache.Cache[core.Dashboard],
	config DashboardServiceConfig,
	logger *slog.Logger,
) *DashboardService {
	defaults := DefaultDashboardServiceConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MonthCount <= 0 {
		config.MonthCount = defaults.MonthCount
	}
	if config.HorizonDays < 0 {
		config.HorizonDays = defaults.HorizonDays
	}
	if config.Location == nil {
		config.Location = defaults.Location
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		reader:    reader,
		integrity: integrity,
		cache:     dashCache,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// Today returns the current business day.
func (s *DashboardService) Today() core.Date {
	return core.DateOf(s.now().In(s.config.Location))
}

// Config returns the effective configuration.
func (s *DashboardService) Config() DashboardServiceConfig {
	return s.config
}

func (s *DashboardService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.config.Timeout)
}

func dashboardKey(asOf core.Date, monthCount, horizonDays int) string {
	return fmt.Sprintf("dashboard:%s:%d:%d", asOf, monthCount, horizonDays)
}

// Dashboard fetches every view the main page renders. The parts are fetched
// concurrently; the first failure cancels the rest and is returned wrapped
// as ports.ErrDataUnavailable.
func (s *DashboardService) Dashboard(ctx context.Context, asOf core.Date) (core.Dashboard, error) {
	key := dashboardKey(asOf, s.config.MonthCount, s.config.HorizonDays)
	if s.cache != nil {
		if d, ok := s.cache.Get(ctx, key); ok {
			s.logger.DebugContext(ctx, "Dashboard served from cache", "as_of", asOf.String())
			return d, nil
		}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	d := core.Dashboard{AsOf: asOf}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		d.MonthToDate, err = s.reader.FetchOverview(gctx, core.MonthToDate(asOf), asOf)
		return err
	})
	g.Go(func() (err error) {
		d.YearToDate, err = s.reader.FetchOverview(gctx, core.YearToDate(asOf), asOf)
		return err
	})
	g.Go(func() (err error) {
		d.MonthlyRevenue, err = s.reader.FetchMonthlyRevenue(gctx, s.config.MonthCount, asOf)
		return err
	})
	g.Go(func() (err error) {
		d.ExpenseBreakdown, err = s.reader.FetchExpenseBreakdown(gctx, core.MonthToDate(asOf))
		return err
	})
	g.Go(func() (err error) {
		d.UpcomingSubscriptions, err = s.reader.FetchUpcomingSubscriptions(gctx, s.config.HorizonDays, asOf)
		return err
	})
	g.Go(func() (err error) {
		d.OverduePayments, err = s.reader.FetchOverduePayments(gctx, asOf)
		return err
	})
	g.Go(func() (err error) {
		d.ClientSummaries, err = s.reader.FetchClientSummaries(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to fetch dashboard",
			"as_of", asOf.String(),
			"error", err)
		return core.Dashboard{}, ports.Unavailable("dashboard", err)
	}

	s.logFlagged(ctx, d.ClientSummaries)

	if s.cache != nil {
		s.cache.Set(ctx, key, d)
	}

	s.logger.InfoContext(ctx, "Dashboard computed",
		"as_of", asOf.String(),
		"duration_ms", time.Since(start).Milliseconds())

	return d, nil
}

// Overview returns the overview of period as of asOf.
func (s *DashboardService) Overview(ctx context.Context, period core.Period, asOf core.Date) (core.FinancialOverview, error) {
	if err := period.Validate(); err != nil {
		return core.FinancialOverview{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	o, err := s.reader.FetchOverview(ctx, period, asOf)
	if err != nil {
		return core.FinancialOverview{}, ports.Unavailable("overview", err)
	}
	return o, nil
}

// MonthlyRevenue returns monthCount months ending at asOf's month. A
// non-positive monthCount uses the configured default.
func (s *DashboardService) MonthlyRevenue(ctx context.Context, monthCount int, asOf core.Date) ([]core.MonthlyRevenue, error) {
	if monthCount <= 0 {
		monthCount = s.config.MonthCount
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	rows, err := s.reader.FetchMonthlyRevenue(ctx, monthCount, asOf)
	if err != nil {
		return nil, ports.Unavailable("monthly revenue", err)
	}
	return rows, nil
}

func (s *DashboardService) ExpenseBreakdown(ctx context.Context, period core.Period) ([]core.ExpenseBreakdown, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	rows, err := s.reader.FetchExpenseBreakdown(ctx, period)
	if err != nil {
		return nil, ports.Unavailable("expense breakdown", err)
	}
	return rows, nil
}

// UpcomingSubscriptions lists subscriptions billing within horizonDays of
// asOf. A negative horizon uses the configured default.
func (s *DashboardService) UpcomingSubscriptions(ctx context.Context, horizonDays int, asOf core.Date) ([]core.UpcomingSubscription, error) {
	if horizonDays < 0 {
		horizonDays = s.config.HorizonDays
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	rows, err := s.reader.FetchUpcomingSubscriptions(ctx, horizonDays, asOf)
	if err != nil {
		return nil, ports.Unavailable("upcoming subscriptions", err)
	}
	return rows, nil
}

func (s *DashboardService) OverduePayments(ctx context.Context, asOf core.Date) ([]core.OverduePayment, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	rows, err := s.reader.FetchOverduePayments(ctx, asOf)
	if err != nil {
		return nil, ports.Unavailable("overdue payments", err)
	}
	return rows, nil
}

func (s *DashboardService) ClientSummaries(ctx context.Context) ([]core.ClientFinancialSummary, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	rows, err := s.reader.FetchClientSummaries(ctx)
	if err != nil {
		return nil, ports.Unavailable("client summaries", err)
	}
	s.logFlagged(ctx, rows)
	return rows, nil
}

// ErrIntegrityUnsupported is returned when no integrity checker is wired.
var ErrIntegrityUnsupported = errors.New("integrity check not supported by this backend")

// Integrity runs the integrity checker and logs every issue at WARN.
func (s *DashboardService) Integrity(ctx context.Context, asOf core.Date) ([]aggregate.Issue, error) {
	if s.integrity == nil {
		return nil, ErrIntegrityUnsupported
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	issues, err := s.integrity.CheckIntegrity(ctx, asOf)
	if err != nil {
		return nil, ports.Unavailable("integrity", err)
	}
	for _, issue := range issues {
		s.logger.WarnContext(ctx, "Integrity violation",
			"kind", string(issue.Kind),
			"entity", string(issue.Entity),
			"id", issue.ID,
			"detail", issue.Detail)
	}
	return issues, nil
}

// InvalidateCache drops every cached dashboard.
func (s *DashboardService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.Purge(ctx)
	s.logger.DebugContext(ctx, "Dashboard cache purged")
}

func (s *DashboardService) logFlagged(ctx context.Context, rows []core.ClientFinancialSummary) {
	for _, r := range rows {
		if r.Flagged {
			s.logger.WarnContext(ctx, "Client over-paid",
				"client_id", r.ClientID,
				"overpayment", r.Overpayment.String())
		}
	}
}
