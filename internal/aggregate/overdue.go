package aggregate

import (
	"sort"

	"accountant/internal/core"

	"github.com/shopspring/decimal"
)

// OverduePayments lists invoices that are not cancelled, past due as of
// asOf and still owe money, most overdue first.
func OverduePayments(s *core.Snapshot, asOf core.Date) []core.OverduePayment {
	if s.IsEmpty() {
		return []core.OverduePayment{}
	}
	return overdueRows(s.Invoices, buildIndex(s), asOf)
}

func overdueRows(invoices []core.Invoice, ix *index, asOf core.Date) []core.OverduePayment {
	out := []core.OverduePayment{}
	for _, inv := range invoices {
		paid := ix.paid(inv.ID)
		if !inv.IsOverdue(paid, asOf) {
			continue
		}
		out = append(out, OverdueRow(inv, ix.clients[inv.ClientID].Name, paid, asOf))
	}
	SortOverdue(out)
	return out
}

// OverdueRow builds the view row of an invoice already known to be overdue.
func OverdueRow(inv core.Invoice, clientName string, paid decimal.Decimal, asOf core.Date) core.OverduePayment {
	return core.OverduePayment{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		ClientID:      inv.ClientID,
		ClientName:    clientName,
		Total:         inv.Total,
		AmountPaid:    paid,
		AmountDue:     inv.AmountDue(paid),
		DueDate:       inv.DueDate,
		DaysOverdue:   inv.DueDate.DaysUntil(asOf),
	}
}

// SortOverdue orders rows by days overdue descending, then invoice number,
// then invoice id.
func SortOverdue(rows []core.OverduePayment) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.DaysOverdue != b.DaysOverdue {
			return a.DaysOverdue > b.DaysOverdue
		}
		if a.InvoiceNumber != b.InvoiceNumber {
			return a.InvoiceNumber < b.InvoiceNumber
		}
		return a.InvoiceID < b.InvoiceID
	})
}
