package aggregate

import (
	"sort"

	"accountant/internal/core"

	"github.com/shopspring/decimal"
)

// ClientTotals is the raw per-client sum before clamping and flagging.
type ClientTotals struct {
	ClientID   string
	ClientName string
	Invoiced   decimal.Decimal
	Paid       decimal.Decimal
	// Overpaid sums, per invoice, what was paid beyond the invoice total.
	Overpaid        decimal.Decimal
	InvoiceCount    int
	LastPaymentDate core.Date
}

// ClientSummaries returns one row per known client with at least one
// non-cancelled invoice. Invoices of unknown clients are left out here and
// reported by CheckIntegrity.
func ClientSummaries(s *core.Snapshot) []core.ClientFinancialSummary {
	if s.IsEmpty() {
		return []core.ClientFinancialSummary{}
	}
	ix := buildIndex(s)

	byClient := make(map[string]*ClientTotals)
	for _, inv := range s.Invoices {
		if inv.Status == core.InvoiceCancelled {
			continue
		}
		client, ok := ix.clients[inv.ClientID]
		if !ok {
			continue
		}
		ct, ok := byClient[client.ID]
		if !ok {
			ct = &ClientTotals{ClientID: client.ID, ClientName: client.Name, Invoiced: decimal.Zero, Paid: decimal.Zero, Overpaid: decimal.Zero}
			byClient[client.ID] = ct
		}
		ct.Invoiced = ct.Invoiced.Add(inv.Total)
		paid := ix.paid(inv.ID)
		ct.Paid = ct.Paid.Add(paid)
		if excess := paid.Sub(inv.Total); excess.IsPositive() {
			ct.Overpaid = ct.Overpaid.Add(excess)
		}
		ct.InvoiceCount++
		if last, ok := ix.lastPaymentFor[inv.ID]; ok && last.After(ct.LastPaymentDate) {
			ct.LastPaymentDate = last
		}
	}

	totals := make([]ClientTotals, 0, len(byClient))
	for _, ct := range byClient {
		totals = append(totals, *ct)
	}
	return FinishClientSummaries(totals)
}

// FinishClientSummaries derives outstanding balances and orders rows by
// client name, then id. Outstanding never goes below zero. A client with any
// invoice paid beyond its total is Flagged, with the per-invoice excess in
// Overpayment, even when other invoices keep the client's balance positive.
func FinishClientSummaries(totals []ClientTotals) []core.ClientFinancialSummary {
	out := make([]core.ClientFinancialSummary, 0, len(totals))
	for _, t := range totals {
		row := core.ClientFinancialSummary{
			ClientID:         t.ClientID,
			ClientName:       t.ClientName,
			TotalInvoiced:    t.Invoiced,
			TotalPaid:        t.Paid,
			TotalOutstanding: t.Invoiced.Sub(t.Paid),
			Overpayment:      decimal.Zero,
			InvoiceCount:     t.InvoiceCount,
			LastPaymentDate:  t.LastPaymentDate,
		}
		if row.TotalOutstanding.IsNegative() {
			row.TotalOutstanding = decimal.Zero
		}
		if t.Overpaid.IsPositive() {
			row.Overpayment = t.Overpaid
			row.Flagged = true
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ClientName != out[j].ClientName {
			return out[i].ClientName < out[j].ClientName
		}
		return out[i].ClientID < out[j].ClientID
	})
	return out
}
