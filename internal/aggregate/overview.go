package aggregate

import (
	"accountant/internal/core"

	"github.com/shopspring/decimal"
)

// Overview computes the financial overview of period. Revenue is money
// collected (payments dated in the period), not money invoiced. Outstanding
// and overdue amounts are balances as of asOf and ignore the period.
func Overview(s *core.Snapshot, period core.Period, asOf core.Date) core.FinancialOverview {
	out := core.ZeroOverview(period)
	if s.IsEmpty() {
		return out
	}
	ix := buildIndex(s)

	for _, p := range s.Payments {
		if period.Contains(p.PaymentDate) {
			out.TotalRevenue = out.TotalRevenue.Add(p.Amount)
		}
	}
	for _, e := range s.Expenses {
		if period.Contains(e.ExpenseDate) {
			out.TotalExpenses = out.TotalExpenses.Add(e.Amount)
		}
	}
	out.NetProfit = out.TotalRevenue.Sub(out.TotalExpenses)
	out.OutstandingAmount = Outstanding(s.Invoices, ix.paid)

	for _, row := range overdueRows(s.Invoices, ix, asOf) {
		out.OverdueAmount = out.OverdueAmount.Add(row.AmountDue)
	}

	for _, c := range s.Clients {
		if c.IsActive {
			out.TotalClients++
		}
	}
	for _, c := range s.Contracts {
		if c.Status == core.ContractActive {
			out.ActiveContracts++
		}
	}
	for _, sub := range s.Subscriptions {
		if sub.Status == core.SubscriptionActive {
			out.ActiveSubscriptions++
		}
	}
	return out
}

// Outstanding sums max(0, total - paid) over every non-cancelled invoice.
func Outstanding(invoices []core.Invoice, paid func(invoiceID string) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, inv := range invoices {
		if inv.Status == core.InvoiceCancelled {
			continue
		}
		total = total.Add(core.NonNegative(inv.AmountDue(paid(inv.ID))))
	}
	return total
}
