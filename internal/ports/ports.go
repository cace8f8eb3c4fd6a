package ports

import (
	"context"
	"errors"
	"fmt"

	"accountant/internal/aggregate"
	"accountant/internal/core"
)

// ErrDataUnavailable wraps every failure to fetch records or views. Callers
// surface it instead of substituting defaults.
var ErrDataUnavailable = errors.New("data unavailable")

// Unavailable wraps err as ErrDataUnavailable while keeping the cause.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDataUnavailable) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrDataUnavailable, err)
}

// Filter selects which record kinds a load returns. An empty Kinds loads all.
type Filter struct {
	Kinds []core.EntityKind
}

// Includes reports whether kind is selected by the filter.
func (f Filter) Includes(kind core.EntityKind) bool {
	if len(f.Kinds) == 0 {
		return true
	}
	for _, k := range f.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Ports for outbound adapters.
type (
	// RecordReader loads domain records into a snapshot.
	RecordReader interface {
		LoadSnapshot(ctx context.Context, f Filter) (*core.Snapshot, error)
	}

	// DashboardReader serves aggregation views. Implementations either run
	// the engine over raw records or read precomputed views from a store;
	// both return identical rows for the same data.
	DashboardReader interface {
		FetchOverview(ctx context.Context, period core.Period, asOf core.Date) (core.FinancialOverview, error)
		FetchMonthlyRevenue(ctx context.Context, monthCount int, asOf core.Date) ([]core.MonthlyRevenue, error)
		FetchExpenseBreakdown(ctx context.Context, period core.Period) ([]core.ExpenseBreakdown, error)
		FetchUpcomingSubscriptions(ctx context.Context, horizonDays int, asOf core.Date) ([]core.UpcomingSubscription, error)
		FetchOverduePayments(ctx context.Context, asOf core.Date) ([]core.OverduePayment, error)
		FetchClientSummaries(ctx context.Context) ([]core.ClientFinancialSummary, error)
	}

	// IntegrityChecker reports invariant violations of the stored records.
	IntegrityChecker interface {
		CheckIntegrity(ctx context.Context, asOf core.Date) ([]aggregate.Issue, error)
	}

	// SubscriptionStore lists and updates subscriptions for renewal.
	SubscriptionStore interface {
		ListSubscriptions(ctx context.Context) ([]core.Subscription, error)
		UpdateNextBillingDate(ctx context.Context, id string, next core.Date) error
	}

	// EventPublisher announces that stored records changed.
	EventPublisher interface {
		PublishRecordsChanged(ctx context.Context, kinds []core.EntityKind, source string) error
	}
)
