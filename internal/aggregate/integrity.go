package aggregate

import (
	"fmt"
	"sort"

	"accountant/internal/core"

	"github.com/shopspring/decimal"
)

// IssueKind classifies an integrity violation.
type IssueKind string

const (
	IssueInvalidRecord  IssueKind = "invalid_record"
	IssueDuplicateID    IssueKind = "duplicate_id"
	IssueOrphan         IssueKind = "orphan_reference"
	IssueSubtotal       IssueKind = "items_subtotal_mismatch"
	IssueOverpaid       IssueKind = "overpaid_invoice"
	IssueStatusMismatch IssueKind = "status_mismatch"
)

// Issue is one invariant violation found in a snapshot.
type Issue struct {
	Kind   IssueKind       `json:"kind"`
	Entity core.EntityKind `json:"entity"`
	ID     string          `json:"id"`
	Detail string          `json:"detail"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s/%s: %s", i.Kind, i.Entity, i.ID, i.Detail)
}

type validator interface{ Validate() error }

// CheckIntegrity reports record and cross-record invariant violations.
// Nothing is repaired; the views keep aggregating what they are given.
func CheckIntegrity(s *core.Snapshot, asOf core.Date) []Issue {
	issues := []Issue{}
	if s.IsEmpty() {
		return issues
	}
	ix := buildIndex(s)
	add := func(kind IssueKind, entity core.EntityKind, id, detail string) {
		issues = append(issues, Issue{Kind: kind, Entity: entity, ID: id, Detail: detail})
	}

	check := func(entity core.EntityKind, id string, v validator, seen map[string]bool) {
		if err := v.Validate(); err != nil {
			add(IssueInvalidRecord, entity, id, err.Error())
		}
		if id == "" {
			return
		}
		if seen[id] {
			add(IssueDuplicateID, entity, id, "id appears more than once")
		}
		seen[id] = true
	}
	seen := func() map[string]bool { return make(map[string]bool) }

	clientIDs := seen()
	for _, c := range s.Clients {
		check(core.KindClients, c.ID, c, clientIDs)
	}
	projectIDs := seen()
	for _, p := range s.Projects {
		check(core.KindProjects, p.ID, p, projectIDs)
		if _, ok := ix.clients[p.ClientID]; !ok {
			add(IssueOrphan, core.KindProjects, p.ID, "unknown client "+p.ClientID)
		}
	}
	invoiceIDs := seen()
	for _, inv := range s.Invoices {
		check(core.KindInvoices, inv.ID, inv, invoiceIDs)
		if _, ok := ix.clients[inv.ClientID]; !ok {
			add(IssueOrphan, core.KindInvoices, inv.ID, "unknown client "+inv.ClientID)
		}
		if inv.ProjectID != "" && !projectIDs[inv.ProjectID] {
			add(IssueOrphan, core.KindInvoices, inv.ID, "unknown project "+inv.ProjectID)
		}
	}

	itemSums := make(map[string]decimal.Decimal)
	itemIDs := seen()
	for _, it := range s.InvoiceItems {
		check(core.KindInvoiceItems, it.ID, it, itemIDs)
		if _, ok := ix.invoices[it.InvoiceID]; !ok {
			add(IssueOrphan, core.KindInvoiceItems, it.ID, "unknown invoice "+it.InvoiceID)
			continue
		}
		sum, ok := itemSums[it.InvoiceID]
		if !ok {
			sum = decimal.Zero
		}
		itemSums[it.InvoiceID] = sum.Add(it.Total)
	}
	for _, inv := range s.Invoices {
		sum, ok := itemSums[inv.ID]
		if ok && !core.ApproxEqual(sum, inv.Subtotal) {
			add(IssueSubtotal, core.KindInvoices, inv.ID,
				fmt.Sprintf("items sum to %s, subtotal is %s", sum.StringFixed(2), inv.Subtotal.StringFixed(2)))
		}
	}

	paymentIDs := seen()
	for _, p := range s.Payments {
		check(core.KindPayments, p.ID, p, paymentIDs)
		if _, ok := ix.invoices[p.InvoiceID]; !ok {
			add(IssueOrphan, core.KindPayments, p.ID, "unknown invoice "+p.InvoiceID)
		}
	}
	for _, inv := range s.Invoices {
		paid := ix.paid(inv.ID)
		if paid.GreaterThan(inv.Total.Add(core.MoneyEpsilon)) {
			add(IssueOverpaid, core.KindInvoices, inv.ID,
				fmt.Sprintf("paid %s exceeds total %s", paid.StringFixed(2), inv.Total.StringFixed(2)))
		}
		overdue := inv.IsOverdue(paid, asOf)
		if inv.Status == core.InvoiceOverdue && !overdue {
			add(IssueStatusMismatch, core.KindInvoices, inv.ID, "marked overdue but not overdue as of "+asOf.String())
		}
		if inv.Status == core.InvoicePaid && inv.AmountDue(paid).GreaterThan(core.MoneyEpsilon) {
			add(IssueStatusMismatch, core.KindInvoices, inv.ID, "marked paid with "+inv.AmountDue(paid).StringFixed(2)+" due")
		}
	}

	quoteIDs := seen()
	for _, q := range s.Quotes {
		check(core.KindQuotes, q.ID, q, quoteIDs)
		if _, ok := ix.clients[q.ClientID]; !ok {
			add(IssueOrphan, core.KindQuotes, q.ID, "unknown client "+q.ClientID)
		}
	}
	quoteItemIDs := seen()
	for _, qi := range s.QuoteItems {
		check(core.KindQuoteItems, qi.ID, qi, quoteItemIDs)
		if !quoteIDs[qi.QuoteID] {
			add(IssueOrphan, core.KindQuoteItems, qi.ID, "unknown quote "+qi.QuoteID)
		}
	}

	cardIDs := seen()
	for _, c := range s.Cards {
		check(core.KindCards, c.ID, c, cardIDs)
	}
	categoryIDs := seen()
	for _, c := range s.ExpenseCategories {
		check(core.KindExpenseCategories, c.ID, c, categoryIDs)
	}
	for _, c := range s.ExpenseCategories {
		if c.ParentID != "" && !categoryIDs[c.ParentID] {
			add(IssueOrphan, core.KindExpenseCategories, c.ID, "unknown parent "+c.ParentID)
		}
	}
	expenseIDs := seen()
	for _, e := range s.Expenses {
		check(core.KindExpenses, e.ID, e, expenseIDs)
		if e.CategoryID != "" && !categoryIDs[e.CategoryID] {
			add(IssueOrphan, core.KindExpenses, e.ID, "unknown category "+e.CategoryID)
		}
		if e.CardID != "" && !cardIDs[e.CardID] {
			add(IssueOrphan, core.KindExpenses, e.ID, "unknown card "+e.CardID)
		}
	}
	subIDs := seen()
	for _, sub := range s.Subscriptions {
		check(core.KindSubscriptions, sub.ID, sub, subIDs)
		if sub.CardID != "" && !cardIDs[sub.CardID] {
			add(IssueOrphan, core.KindSubscriptions, sub.ID, "unknown card "+sub.CardID)
		}
		if sub.CategoryID != "" && !categoryIDs[sub.CategoryID] {
			add(IssueOrphan, core.KindSubscriptions, sub.ID, "unknown category "+sub.CategoryID)
		}
	}
	contractIDs := seen()
	for _, c := range s.Contracts {
		check(core.KindContracts, c.ID, c, contractIDs)
		if _, ok := ix.clients[c.ClientID]; !ok {
			add(IssueOrphan, core.KindContracts, c.ID, "unknown client "+c.ClientID)
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Entity != b.Entity {
			return a.Entity < b.Entity
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.Kind < b.Kind
	})
	return issues
}
