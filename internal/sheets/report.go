package sheets

import (
	"time"

	"accountant/internal/core"
	"accountant/internal/locale"
)

// TableKind names one exported table.
type TableKind string

const (
	TableMonthlyRevenue   TableKind = "monthly_revenue"
	TableExpenseBreakdown TableKind = "expense_breakdown"
	TableOverduePayments  TableKind = "overdue_payments"
)

// Report is the set of views exported together.
type Report struct {
	AsOf             core.Date
	Locale           locale.Locale
	MonthlyRevenue   []core.MonthlyRevenue
	ExpenseBreakdown []core.ExpenseBreakdown
	OverduePayments  []core.OverduePayment
}

// Table is a header row followed by data rows, ready for a values API.
type Table struct {
	Kind TableKind
	Rows [][]any
}

// Tables renders the report in export order.
func (r Report) Tables() []Table {
	l := r.Locale
	if l == "" {
		l = locale.Default
	}
	return []Table{
		{Kind: TableMonthlyRevenue, Rows: MonthlyRevenueRows(l, r.MonthlyRevenue)},
		{Kind: TableExpenseBreakdown, Rows: ExpenseBreakdownRows(l, r.ExpenseBreakdown)},
		{Kind: TableOverduePayments, Rows: OverduePaymentRows(l, r.OverduePayments)},
	}
}

func header(l locale.Locale, keys ...string) []any {
	out := make([]any, len(keys))
	for i, v := range l.Labels(keys...) {
		out[i] = v
	}
	return out
}

// MonthlyRevenueRows renders one row per month. Amounts are fixed
// two-place strings so the sheet parses them without float rounding.
func MonthlyRevenueRows(l locale.Locale, rows []core.MonthlyRevenue) [][]any {
	out := [][]any{header(l,
		locale.LabelMonth, locale.LabelInvoiced, locale.LabelRevenue,
		locale.LabelExpenses, locale.LabelProfit, locale.LabelInvoiceCount)}
	for _, m := range rows {
		out = append(out, []any{
			l.MonthLabel(m.Year, time.Month(m.Month)),
			m.Invoiced.StringFixed(2),
			m.Revenue.StringFixed(2),
			m.Expenses.StringFixed(2),
			m.Profit.StringFixed(2),
			m.InvoiceCount,
		})
	}
	return out
}

func ExpenseBreakdownRows(l locale.Locale, rows []core.ExpenseBreakdown) [][]any {
	out := [][]any{header(l,
		locale.LabelCategory, locale.LabelAmount, locale.LabelPercentage, locale.LabelTransactions)}
	for _, b := range rows {
		out = append(out, []any{
			l.Pick(b.CategoryName, b.CategoryNameAr),
			b.TotalAmount.StringFixed(2),
			b.Percentage.StringFixed(2),
			b.TransactionCount,
		})
	}
	return out
}

func OverduePaymentRows(l locale.Locale, rows []core.OverduePayment) [][]any {
	out := [][]any{header(l,
		locale.LabelInvoiceNumber, locale.LabelClient, locale.LabelTotal, locale.LabelPaid,
		locale.LabelDue, locale.LabelDueDate, locale.LabelDaysOverdue)}
	for _, o := range rows {
		out = append(out, []any{
			o.InvoiceNumber,
			o.ClientName,
			o.Total.StringFixed(2),
			o.AmountPaid.StringFixed(2),
			o.AmountDue.StringFixed(2),
			o.DueDate.String(),
			o.DaysOverdue,
		})
	}
	return out
}
