package http

import (
	"time"

	"accountant/internal/core"
	"accountant/internal/locale"
)

// monthlyRevenueRow adds the localized month label to a revenue row.
type monthlyRevenueRow struct {
	core.MonthlyRevenue
	Label string `json:"label"`
}

// expenseBreakdownRow adds the category name in the request locale.
type expenseBreakdownRow struct {
	core.ExpenseBreakdown
	DisplayName string `json:"display_name"`
}

type upcomingRow struct {
	core.UpcomingSubscription
	DisplayName string `json:"display_name"`
}

// dashboardView replaces the localizable lists of a dashboard.
type dashboardView struct {
	core.Dashboard
	MonthlyRevenue        []monthlyRevenueRow           `json:"monthly_revenue"`
	ExpenseBreakdown      []expenseBreakdownRow         `json:"expense_breakdown"`
	UpcomingSubscriptions []upcomingRow                 `json:"upcoming_subscriptions"`
	OverduePayments       []core.OverduePayment         `json:"overdue_payments"`
	ClientSummaries       []core.ClientFinancialSummary `json:"client_summaries"`
}

func presentDashboard(l locale.Locale, d core.Dashboard) dashboardView {
	return dashboardView{
		Dashboard:             d,
		MonthlyRevenue:        presentMonthlyRevenue(l, d.MonthlyRevenue),
		ExpenseBreakdown:      presentExpenseBreakdown(l, d.ExpenseBreakdown),
		UpcomingSubscriptions: presentUpcoming(l, d.UpcomingSubscriptions),
		OverduePayments:       nonNil(d.OverduePayments),
		ClientSummaries:       nonNil(d.ClientSummaries),
	}
}

func presentMonthlyRevenue(l locale.Locale, rows []core.MonthlyRevenue) []monthlyRevenueRow {
	out := make([]monthlyRevenueRow, len(rows))
	for i, r := range rows {
		out[i] = monthlyRevenueRow{MonthlyRevenue: r, Label: l.MonthLabel(r.Year, time.Month(r.Month))}
	}
	return out
}

func presentExpenseBreakdown(l locale.Locale, rows []core.ExpenseBreakdown) []expenseBreakdownRow {
	out := make([]expenseBreakdownRow, len(rows))
	for i, r := range rows {
		out[i] = expenseBreakdownRow{ExpenseBreakdown: r, DisplayName: l.Pick(r.CategoryName, r.CategoryNameAr)}
	}
	return out
}

func presentUpcoming(l locale.Locale, rows []core.UpcomingSubscription) []upcomingRow {
	out := make([]upcomingRow, len(rows))
	for i, r := range rows {
		out[i] = upcomingRow{UpcomingSubscription: r, DisplayName: l.Pick(r.Name, r.NameAr)}
	}
	return out
}

// nonNil makes empty views encode as [] rather than null.
func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
