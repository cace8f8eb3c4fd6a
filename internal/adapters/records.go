package adapters

import (
	"context"

	"accountant/internal/aggregate"
	"accountant/internal/core"
	"accountant/internal/ports"
)

// Records adapts any ports.RecordReader to ports.DashboardReader by loading
// the records each view needs and running the aggregation engine in process.
type Records struct {
	reader ports.RecordReader
}

func NewRecords(reader ports.RecordReader) *Records {
	return &Records{reader: reader}
}

func (a *Records) load(ctx context.Context, op string, kinds ...core.EntityKind) (*core.Snapshot, error) {
	s, err := a.reader.LoadSnapshot(ctx, ports.Filter{Kinds: kinds})
	if err != nil {
		return nil, ports.Unavailable(op, err)
	}
	return s, nil
}

// FetchOverview implements ports.DashboardReader
func (a *Records) FetchOverview(ctx context.Context, period core.Period, asOf core.Date) (core.FinancialOverview, error) {
	s, err := a.load(ctx, "overview",
		core.KindClients, core.KindInvoices, core.KindPayments, core.KindExpenses,
		core.KindSubscriptions, core.KindContracts)
	if err != nil {
		return core.FinancialOverview{}, err
	}
	return aggregate.Overview(s, period, asOf), nil
}

// FetchMonthlyRevenue implements ports.DashboardReader
func (a *Records) FetchMonthlyRevenue(ctx context.Context, monthCount int, asOf core.Date) ([]core.MonthlyRevenue, error) {
	s, err := a.load(ctx, "monthly revenue", core.KindInvoices, core.KindPayments, core.KindExpenses)
	if err != nil {
		return nil, err
	}
	return aggregate.MonthlyRevenue(s, monthCount, asOf), nil
}

// FetchExpenseBreakdown implements ports.DashboardReader
func (a *Records) FetchExpenseBreakdown(ctx context.Context, period core.Period) ([]core.ExpenseBreakdown, error) {
	s, err := a.load(ctx, "expense breakdown", core.KindExpenseCategories, core.KindExpenses)
	if err != nil {
		return nil, err
	}
	return aggregate.ExpenseBreakdown(s, period), nil
}

// FetchUpcomingSubscriptions implements ports.DashboardReader
func (a *Records) FetchUpcomingSubscriptions(ctx context.Context, horizonDays int, asOf core.Date) ([]core.UpcomingSubscription, error) {
	s, err := a.load(ctx, "upcoming subscriptions", core.KindSubscriptions)
	if err != nil {
		return nil, err
	}
	return aggregate.UpcomingSubscriptions(s, horizonDays, asOf), nil
}

// FetchOverduePayments implements ports.DashboardReader
func (a *Records) FetchOverduePayments(ctx context.Context, asOf core.Date) ([]core.OverduePayment, error) {
	s, err := a.load(ctx, "overdue payments", core.KindClients, core.KindInvoices, core.KindPayments)
	if err != nil {
		return nil, err
	}
	return aggregate.OverduePayments(s, asOf), nil
}

// FetchClientSummaries implements ports.DashboardReader
func (a *Records) FetchClientSummaries(ctx context.Context) ([]core.ClientFinancialSummary, error) {
	s, err := a.load(ctx, "client summaries", core.KindClients, core.KindInvoices, core.KindPayments)
	if err != nil {
		return nil, err
	}
	return aggregate.ClientSummaries(s), nil
}

// CheckIntegrity implements ports.IntegrityChecker
func (a *Records) CheckIntegrity(ctx context.Context, asOf core.Date) ([]aggregate.Issue, error) {
	s, err := a.load(ctx, "integrity")
	if err != nil {
		return nil, err
	}
	return aggregate.CheckIntegrity(s, asOf), nil
}
