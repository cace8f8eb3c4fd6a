package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"accountant/internal/aggregate"
	"accountant/internal/core"
	"accountant/internal/ports"
)

// The Fetch* methods implement ports.DashboardReader over the SQL views.
// SQLite does the summing in minor units; ordering, percentages and
// clamping go through the same aggregate helpers the in-process engine uses.

func (r *SQLiteRepository) FetchOverview(ctx context.Context, period core.Period, asOf core.Date) (core.FinancialOverview, error) {
	out := core.ZeroOverview(period)
	var revenue, expenses, outstanding, overdue int64
	err := r.db.QueryRowContext(ctx, `SELECT
		(SELECT COALESCE(SUM(amount_minor), 0) FROM payments WHERE payment_date BETWEEN ?1 AND ?2),
		(SELECT COALESCE(SUM(amount_minor), 0) FROM expenses WHERE expense_date BETWEEN ?1 AND ?2),
		(SELECT COALESCE(SUM(MAX(due_minor, 0)), 0) FROM v_invoice_balances WHERE status != 'cancelled'),
		(SELECT COALESCE(SUM(due_minor), 0) FROM v_invoice_balances
			WHERE status != 'cancelled' AND due_date < ?3 AND due_minor > 0),
		(SELECT COUNT(*) FROM clients WHERE is_active = 1),
		(SELECT COUNT(*) FROM contracts WHERE status = 'active'),
		(SELECT COUNT(*) FROM subscriptions WHERE status = 'active')`,
		period.Start.String(), period.End.String(), asOf.String(),
	).Scan(&revenue, &expenses, &outstanding, &overdue, &out.TotalClients, &out.ActiveContracts, &out.ActiveSubscriptions)
	if err != nil {
		return core.FinancialOverview{}, ports.Unavailable("overview", err)
	}
	out.TotalRevenue = core.FromMinor(revenue)
	out.TotalExpenses = core.FromMinor(expenses)
	out.NetProfit = out.TotalRevenue.Sub(out.TotalExpenses)
	out.OutstandingAmount = core.FromMinor(outstanding)
	out.OverdueAmount = core.FromMinor(overdue)
	return out, nil
}

func (r *SQLiteRepository) FetchMonthlyRevenue(ctx context.Context, monthCount int, asOf core.Date) ([]core.MonthlyRevenue, error) {
	rows := aggregate.MonthFrame(asOf, monthCount)
	frame, ok := aggregate.FramePeriod(rows)
	if !ok {
		return rows, nil
	}
	idx := aggregate.FrameIndex(rows)
	start, end := frame.Start.String(), frame.End.String()

	type monthly struct {
		stmt string
		fill func(i int, amount int64, count int)
	}
	parts := []monthly{
		{
			`SELECT substr(issue_date, 1, 7), SUM(total_minor), COUNT(*) FROM invoices
			 WHERE status != 'cancelled' AND issue_date BETWEEN ? AND ? GROUP BY 1`,
			func(i int, amount int64, count int) {
				rows[i].Invoiced = core.FromMinor(amount)
				rows[i].InvoiceCount = count
			},
		},
		{
			`SELECT substr(payment_date, 1, 7), SUM(amount_minor), COUNT(*) FROM payments
			 WHERE payment_date BETWEEN ? AND ? GROUP BY 1`,
			func(i int, amount int64, _ int) { rows[i].Revenue = core.FromMinor(amount) },
		},
		{
			`SELECT substr(expense_date, 1, 7), SUM(amount_minor), COUNT(*) FROM expenses
			 WHERE expense_date BETWEEN ? AND ? GROUP BY 1`,
			func(i int, amount int64, _ int) { rows[i].Expenses = core.FromMinor(amount) },
		},
	}
	for _, p := range parts {
		err := query(ctx, r.db, p.stmt, func(s rowScanner) error {
			var (
				month  string
				amount int64
				count  int
			)
			if err := s.Scan(&month, &amount, &count); err != nil {
				return err
			}
			t, err := time.Parse("2006-01", month)
			if err != nil {
				return fmt.Errorf("parse month %q: %w", month, err)
			}
			if i, ok := idx[aggregate.MonthKey{Year: t.Year(), Month: t.Month()}]; ok {
				p.fill(i, amount, count)
			}
			return nil
		}, start, end)
		if err != nil {
			return nil, ports.Unavailable("monthly revenue", err)
		}
	}
	aggregate.FinishMonths(rows)
	return rows, nil
}

func (r *SQLiteRepository) FetchExpenseBreakdown(ctx context.Context, period core.Period) ([]core.ExpenseBreakdown, error) {
	var totals []aggregate.CategoryTotal
	err := query(ctx, r.db, `SELECT e.category_id, COALESCE(c.name, e.category_id), COALESCE(c.name_ar, ''),
			SUM(e.amount_minor), COUNT(*)
		FROM expenses e
		LEFT JOIN expense_categories c ON c.id = e.category_id
		WHERE e.expense_date BETWEEN ? AND ?
		GROUP BY e.category_id`, func(s rowScanner) error {
		var (
			ct     aggregate.CategoryTotal
			amount int64
		)
		if err := s.Scan(&ct.CategoryID, &ct.CategoryName, &ct.CategoryNameAr, &amount, &ct.Count); err != nil {
			return err
		}
		ct.Amount = core.FromMinor(amount)
		totals = append(totals, ct)
		return nil
	}, period.Start.String(), period.End.String())
	if err != nil {
		return nil, ports.Unavailable("expense breakdown", err)
	}
	return aggregate.FinishBreakdown(totals), nil
}

// FetchUpcomingSubscriptions projects billing dates in Go: cycle arithmetic
// with month-end clamping has no portable SQL form.
func (r *SQLiteRepository) FetchUpcomingSubscriptions(ctx context.Context, horizonDays int, asOf core.Date) ([]core.UpcomingSubscription, error) {
	subs, err := loadActiveSubscriptions(ctx, r.db)
	if err != nil {
		return nil, ports.Unavailable("upcoming subscriptions", err)
	}
	return aggregate.SelectUpcoming(subs, horizonDays, asOf), nil
}

func loadActiveSubscriptions(ctx context.Context, q DBTX) ([]core.Subscription, error) {
	all, err := loadSubscriptions(ctx, q)
	if err != nil {
		return nil, err
	}
	active := all[:0]
	for _, s := range all {
		if s.Status == core.SubscriptionActive {
			active = append(active, s)
		}
	}
	return active, nil
}

func (r *SQLiteRepository) FetchOverduePayments(ctx context.Context, asOf core.Date) ([]core.OverduePayment, error) {
	out := []core.OverduePayment{}
	err := query(ctx, r.db, `SELECT b.id, b.invoice_number, b.client_id, COALESCE(c.name, ''),
			b.total_minor, b.paid_minor, b.due_date
		FROM v_invoice_balances b
		LEFT JOIN clients c ON c.id = b.client_id
		WHERE b.status != 'cancelled' AND b.due_date < ? AND b.due_minor > 0`, func(s rowScanner) error {
		var (
			inv         core.Invoice
			clientName  string
			total, paid int64
			due         sql.NullString
			err         error
		)
		if err := s.Scan(&inv.ID, &inv.InvoiceNumber, &inv.ClientID, &clientName, &total, &paid, &due); err != nil {
			return err
		}
		if inv.DueDate, err = parseDate(due); err != nil {
			return err
		}
		inv.Total = core.FromMinor(total)
		out = append(out, aggregate.OverdueRow(inv, clientName, core.FromMinor(paid), asOf))
		return nil
	}, asOf.String())
	if err != nil {
		return nil, ports.Unavailable("overdue payments", err)
	}
	aggregate.SortOverdue(out)
	return out, nil
}

func (r *SQLiteRepository) FetchClientSummaries(ctx context.Context) ([]core.ClientFinancialSummary, error) {
	var totals []aggregate.ClientTotals
	err := query(ctx, r.db, `SELECT client_id, client_name, invoiced_minor, paid_minor, overpaid_minor, invoice_count, last_payment_date
		FROM v_client_financial_summary`, func(s rowScanner) error {
		var (
			ct                       aggregate.ClientTotals
			invoiced, paid, overpaid int64
			last                     sql.NullString
			err                      error
		)
		if err := s.Scan(&ct.ClientID, &ct.ClientName, &invoiced, &paid, &overpaid, &ct.InvoiceCount, &last); err != nil {
			return err
		}
		if ct.LastPaymentDate, err = parseDate(last); err != nil {
			return err
		}
		ct.Invoiced, ct.Paid, ct.Overpaid = core.FromMinor(invoiced), core.FromMinor(paid), core.FromMinor(overpaid)
		totals = append(totals, ct)
		return nil
	})
	if err != nil {
		return nil, ports.Unavailable("client summaries", err)
	}
	return aggregate.FinishClientSummaries(totals), nil
}
