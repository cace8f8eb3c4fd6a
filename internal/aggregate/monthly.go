package aggregate

import (
	"time"

	"accountant/internal/core"

	"github.com/shopspring/decimal"
)

// MonthKey identifies a calendar month.
type MonthKey struct {
	Year  int
	Month time.Month
}

func keyOf(d core.Date) MonthKey {
	return MonthKey{Year: d.Year(), Month: d.Month()}
}

// MonthFrame returns monthCount zeroed rows ending at asOf's month, oldest
// first. It is the gap-free skeleton both adapters fill in.
func MonthFrame(asOf core.Date, monthCount int) []core.MonthlyRevenue {
	if monthCount <= 0 {
		return []core.MonthlyRevenue{}
	}
	rows := make([]core.MonthlyRevenue, monthCount)
	first := asOf.MonthStart().AddMonthsClamped(-(monthCount - 1))
	for i := range rows {
		m := first.AddMonthsClamped(i)
		rows[i] = core.MonthlyRevenue{
			Year:     m.Year(),
			Month:    int(m.Month()),
			Invoiced: decimal.Zero,
			Revenue:  decimal.Zero,
			Expenses: decimal.Zero,
			Profit:   decimal.Zero,
		}
	}
	return rows
}

// FramePeriod is the date range covered by a month frame.
func FramePeriod(rows []core.MonthlyRevenue) (core.Period, bool) {
	if len(rows) == 0 {
		return core.Period{}, false
	}
	first, last := rows[0], rows[len(rows)-1]
	return core.Period{
		Start: core.NewDate(first.Year, first.Month, 1),
		End:   core.MonthPeriod(last.Year, time.Month(last.Month)).End,
	}, true
}

// FrameIndex maps each month of a frame to its row position.
func FrameIndex(rows []core.MonthlyRevenue) map[MonthKey]int {
	idx := make(map[MonthKey]int, len(rows))
	for i, r := range rows {
		idx[MonthKey{Year: r.Year, Month: time.Month(r.Month)}] = i
	}
	return idx
}

// FinishMonths derives profit once revenue and expenses are filled in.
func FinishMonths(rows []core.MonthlyRevenue) {
	for i := range rows {
		rows[i].Profit = rows[i].Revenue.Sub(rows[i].Expenses)
	}
}

// MonthlyRevenue returns the last monthCount calendar months ending at
// asOf's month, oldest first, with zero rows for idle months.
func MonthlyRevenue(s *core.Snapshot, monthCount int, asOf core.Date) []core.MonthlyRevenue {
	rows := MonthFrame(asOf, monthCount)
	if len(rows) == 0 || s.IsEmpty() {
		return rows
	}
	idx := FrameIndex(rows)

	for _, inv := range s.Invoices {
		if inv.Status == core.InvoiceCancelled {
			continue
		}
		if i, ok := idx[keyOf(inv.IssueDate)]; ok {
			rows[i].Invoiced = rows[i].Invoiced.Add(inv.Total)
			rows[i].InvoiceCount++
		}
	}
	for _, p := range s.Payments {
		if i, ok := idx[keyOf(p.PaymentDate)]; ok {
			rows[i].Revenue = rows[i].Revenue.Add(p.Amount)
		}
	}
	for _, e := range s.Expenses {
		if i, ok := idx[keyOf(e.ExpenseDate)]; ok {
			rows[i].Expenses = rows[i].Expenses.Add(e.Amount)
		}
	}
	FinishMonths(rows)
	return rows
}
