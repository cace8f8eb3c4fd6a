// Package aggregate is the aggregation engine: it derives every dashboard
// view from a snapshot of domain records.
//
// All functions are pure. They never mutate the snapshot, keep no state
// between calls and are safe to run concurrently over the same snapshot.
// An empty or nil snapshot yields zeroed or empty views, never an error.
//
// The finishing helpers (MonthFrame, FinishBreakdown, SelectUpcoming,
// SortOverdue, FinishClientSummaries) are exported so that adapters which
// let a database do the summing still produce byte-identical rows.
package aggregate

import (
	"accountant/internal/core"

	"github.com/shopspring/decimal"
)

// index holds lookups shared by several views.
type index struct {
	clients        map[string]core.Client
	categories     map[string]core.ExpenseCategory
	invoices       map[string]core.Invoice
	paidByInvoice  map[string]decimal.Decimal
	lastPaymentFor map[string]core.Date
}

func buildIndex(s *core.Snapshot) *index {
	ix := &index{
		clients:        make(map[string]core.Client),
		categories:     make(map[string]core.ExpenseCategory),
		invoices:       make(map[string]core.Invoice),
		paidByInvoice:  make(map[string]decimal.Decimal),
		lastPaymentFor: make(map[string]core.Date),
	}
	if s == nil {
		return ix
	}
	for _, c := range s.Clients {
		ix.clients[c.ID] = c
	}
	for _, c := range s.ExpenseCategories {
		ix.categories[c.ID] = c
	}
	for _, inv := range s.Invoices {
		ix.invoices[inv.ID] = inv
	}
	for _, p := range s.Payments {
		ix.paidByInvoice[p.InvoiceID] = ix.paid(p.InvoiceID).Add(p.Amount)
		if last, ok := ix.lastPaymentFor[p.InvoiceID]; !ok || p.PaymentDate.After(last) {
			ix.lastPaymentFor[p.InvoiceID] = p.PaymentDate
		}
	}
	return ix
}

func (ix *index) paid(invoiceID string) decimal.Decimal {
	if v, ok := ix.paidByInvoice[invoiceID]; ok {
		return v
	}
	return decimal.Zero
}

func currencyOr(c string) string {
	if c == "" {
		return core.DefaultCurrency
	}
	return c
}
