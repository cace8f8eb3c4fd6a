package core

import "github.com/shopspring/decimal"

// FinancialOverview summarises one reporting period. Overdue is always
// all-time as of the computation date, never scoped to the period.
type FinancialOverview struct {
	Period              Period          `json:"period"`
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	TotalExpenses       decimal.Decimal `json:"total_expenses"`
	NetProfit           decimal.Decimal `json:"net_profit"`
	OutstandingAmount   decimal.Decimal `json:"outstanding_amount"`
	OverdueAmount       decimal.Decimal `json:"overdue_amount"`
	TotalClients        int             `json:"total_clients"`
	ActiveContracts     int             `json:"active_contracts"`
	ActiveSubscriptions int             `json:"active_subscriptions"`
}

// MonthlyRevenue is one calendar month of activity. Revenue is the amount
// collected (payments dated in the month).
type MonthlyRevenue struct {
	Year         int             `json:"year"`
	Month        int             `json:"month"` // 1-12
	Invoiced     decimal.Decimal `json:"invoiced"`
	Revenue      decimal.Decimal `json:"revenue"`
	Expenses     decimal.Decimal `json:"expenses"`
	Profit       decimal.Decimal `json:"profit"`
	InvoiceCount int             `json:"invoice_count"`
}

// ExpenseBreakdown is one category's share of a period's expenses.
type ExpenseBreakdown struct {
	CategoryID       string          `json:"category_id"`
	CategoryName     string          `json:"category_name"`
	CategoryNameAr   string          `json:"category_name_ar,omitempty"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Percentage       decimal.Decimal `json:"percentage"`
	TransactionCount int             `json:"transaction_count"`
}

type UpcomingSubscription struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	NameAr           string          `json:"name_ar,omitempty"`
	Provider         string          `json:"provider"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	BillingCycle     BillingCycle    `json:"billing_cycle"`
	NextBillingDate  Date            `json:"next_billing_date"`
	DaysUntilBilling int             `json:"days_until_billing"`
}

type OverduePayment struct {
	InvoiceID     string          `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	ClientID      string          `json:"client_id"`
	ClientName    string          `json:"client_name"`
	Total         decimal.Decimal `json:"total"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	DueDate       Date            `json:"due_date"`
	DaysOverdue   int             `json:"days_overdue"`
}

// ClientFinancialSummary totals a client's invoices. Flagged rows were
// over-paid: Outstanding is clamped to zero and Overpayment carries the excess.
type ClientFinancialSummary struct {
	ClientID         string          `json:"client_id"`
	ClientName       string          `json:"client_name"`
	TotalInvoiced    decimal.Decimal `json:"total_invoiced"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	Overpayment      decimal.Decimal `json:"overpayment"`
	Flagged          bool            `json:"flagged"`
	InvoiceCount     int             `json:"invoice_count"`
	LastPaymentDate  Date            `json:"last_payment_date"`
}

// Dashboard bundles the views the main page renders.
type Dashboard struct {
	AsOf                  Date                     `json:"as_of"`
	MonthToDate           FinancialOverview        `json:"month_to_date"`
	YearToDate            FinancialOverview        `json:"year_to_date"`
	MonthlyRevenue        []MonthlyRevenue         `json:"monthly_revenue"`
	ExpenseBreakdown      []ExpenseBreakdown       `json:"expense_breakdown"`
	UpcomingSubscriptions []UpcomingSubscription   `json:"upcoming_subscriptions"`
	OverduePayments       []OverduePayment         `json:"overdue_payments"`
	ClientSummaries       []ClientFinancialSummary `json:"client_summaries"`
}

// ZeroOverview is the overview of a period with no activity.
func ZeroOverview(p Period) FinancialOverview {
	return FinancialOverview{
		Period:            p,
		TotalRevenue:      decimal.Zero,
		TotalExpenses:     decimal.Zero,
		NetProfit:         decimal.Zero,
		OutstandingAmount: decimal.Zero,
		OverdueAmount:     decimal.Zero,
	}
}
