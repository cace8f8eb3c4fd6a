package aggregate

import (
	"accountant/internal/core"

	"github.com/shopspring/decimal"
)

var asOf = core.NewDate(2026, 3, 20)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func invoice(id, number, clientID string, status core.InvoiceStatus, issue, due core.Date, subtotal string) core.Invoice {
	sub := dec(subtotal)
	rate := dec("0.05")
	tax := core.RoundMoney(sub.Mul(rate))
	return core.Invoice{
		ID:            id,
		InvoiceNumber: number,
		ClientID:      clientID,
		Status:        status,
		IssueDate:     issue,
		DueDate:       due,
		Subtotal:      sub,
		TaxRate:       rate,
		TaxAmount:     tax,
		Total:         sub.Add(tax),
		Currency:      "AED",
	}
}

func payment(id, invoiceID, amount string, on core.Date) core.Payment {
	return core.Payment{
		ID:            id,
		InvoiceID:     invoiceID,
		Amount:        dec(amount),
		PaymentDate:   on,
		PaymentMethod: core.PaymentBankTransfer,
	}
}

func expense(id, categoryID, amount string, on core.Date) core.Expense {
	return core.Expense{ID: id, CategoryID: categoryID, Amount: dec(amount), ExpenseDate: on, Currency: "AED"}
}

func subscription(id, name string, cycle core.BillingCycle, next core.Date, status core.SubscriptionStatus) core.Subscription {
	return core.Subscription{
		ID:              id,
		Name:            name,
		Provider:        name + " Inc",
		Amount:          dec("99.00"),
		Currency:        "AED",
		BillingCycle:    cycle,
		NextBillingDate: next,
		Status:          status,
		AutoRenew:       true,
	}
}

// fixture is a small but complete book: two clients, a partly paid overdue
// invoice, a paid invoice, a cancelled one and a quarter of expenses.
func fixture() *core.Snapshot {
	return &core.Snapshot{
		Clients: []core.Client{
			{ID: "c1", Name: "Acme Trading", NameAr: "أكمي للتجارة", IsActive: true},
			{ID: "c2", Name: "Blue Dunes", IsActive: true},
			{ID: "c3", Name: "Dormant LLC", IsActive: false},
		},
		Invoices: []core.Invoice{
			invoice("i1", "INV-001", "c1", core.InvoiceSent, core.NewDate(2026, 2, 1), asOf.AddDays(-15), "10000"),
			invoice("i2", "INV-002", "c2", core.InvoicePaid, core.NewDate(2026, 3, 2), core.NewDate(2026, 4, 1), "2000"),
			invoice("i3", "INV-003", "c2", core.InvoiceCancelled, core.NewDate(2026, 1, 5), core.NewDate(2026, 1, 20), "4000"),
		},
		Payments: []core.Payment{
			payment("p1", "i1", "6000", core.NewDate(2026, 2, 10)),
			payment("p2", "i2", "2100", core.NewDate(2026, 3, 5)),
		},
		ExpenseCategories: []core.ExpenseCategory{
			{ID: "rent", Name: "Rent", NameAr: "إيجار"},
			{ID: "soft", Name: "Software", NameAr: "برمجيات"},
			{ID: "idle", Name: "Idle"},
		},
		Expenses: []core.Expense{
			expense("e1", "rent", "600", core.NewDate(2026, 3, 1)),
			expense("e2", "soft", "400", core.NewDate(2026, 3, 3)),
			expense("e3", "rent", "600", core.NewDate(2026, 2, 1)),
		},
		Subscriptions: []core.Subscription{
			subscription("s1", "Figma", core.Monthly, asOf.AddDays(10), core.SubscriptionActive),
			subscription("s2", "Slack", core.Monthly, asOf.AddDays(3), core.SubscriptionPaused),
		},
		Contracts: []core.Contract{
			{ID: "k1", ClientID: "c1", ContractNumber: "CT-1", Status: core.ContractActive, StartDate: core.NewDate(2026, 1, 1), TotalValue: dec("50000")},
			{ID: "k2", ClientID: "c2", ContractNumber: "CT-2", Status: core.ContractCompleted, StartDate: core.NewDate(2025, 1, 1), TotalValue: dec("1000")},
		},
	}
}
