package core

import (
	"github.com/shopspring/decimal"
)

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"

	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCash         PaymentMethod = "cash"
	PaymentCheque       PaymentMethod = "cheque"
	PaymentCard         PaymentMethod = "card"
	PaymentOnline       PaymentMethod = "online"

	CardCredit  CardType = "credit"
	CardDebit   CardType = "debit"
	CardPrepaid CardType = "prepaid"

	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPaused    SubscriptionStatus = "paused"
	SubscriptionCancelled SubscriptionStatus = "cancelled"

	ContractDraft      ContractStatus = "draft"
	ContractActive     ContractStatus = "active"
	ContractCompleted  ContractStatus = "completed"
	ContractTerminated ContractStatus = "terminated"

	ProjectDraft     ProjectStatus = "draft"
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

type (
	InvoiceStatus      string
	PaymentMethod      string
	CardType           string
	SubscriptionStatus string
	ContractStatus     string
	ProjectStatus      string

	Client struct {
		ID        string `json:"id" validate:"required"`
		Name      string `json:"name" validate:"required"`
		NameAr    string `json:"name_ar,omitempty"`
		Email     string `json:"email,omitempty" validate:"omitempty,email"`
		Phone     string `json:"phone,omitempty"`
		Company   string `json:"company,omitempty"`
		CompanyAr string `json:"company_ar,omitempty"`
		Address   string `json:"address,omitempty"`
		TaxNumber string `json:"tax_number,omitempty"`
		Notes     string `json:"notes,omitempty"`
		IsActive  bool   `json:"is_active"`
	}

	Project struct {
		ID        string           `json:"id" validate:"required"`
		ClientID  string           `json:"client_id" validate:"required"`
		Name      string           `json:"name" validate:"required"`
		NameAr    string           `json:"name_ar,omitempty"`
		Status    ProjectStatus    `json:"status" validate:"oneof=draft active completed cancelled"`
		StartDate Date             `json:"start_date"`
		EndDate   Date             `json:"end_date"`
		Budget    *decimal.Decimal `json:"budget,omitempty"`
	}

	Invoice struct {
		ID            string          `json:"id" validate:"required"`
		InvoiceNumber string          `json:"invoice_number" validate:"required"`
		ClientID      string          `json:"client_id" validate:"required"`
		ProjectID     string          `json:"project_id,omitempty"`
		Status        InvoiceStatus   `json:"status" validate:"oneof=draft sent paid overdue cancelled"`
		IssueDate     Date            `json:"issue_date" validate:"required"`
		DueDate       Date            `json:"due_date" validate:"required"`
		Subtotal      decimal.Decimal `json:"subtotal" validate:"gte=0"`
		TaxRate       decimal.Decimal `json:"tax_rate" validate:"gte=0"`
		TaxAmount     decimal.Decimal `json:"tax_amount" validate:"gte=0"`
		Total         decimal.Decimal `json:"total" validate:"gte=0"`
		Currency      string          `json:"currency" validate:"omitempty,len=3"`
		Notes         string          `json:"notes,omitempty"`
	}

	InvoiceItem struct {
		ID            string          `json:"id" validate:"required"`
		InvoiceID     string          `json:"invoice_id" validate:"required"`
		Description   string          `json:"description"`
		DescriptionAr string          `json:"description_ar,omitempty"`
		Quantity      decimal.Decimal `json:"quantity" validate:"gt=0"`
		UnitPrice     decimal.Decimal `json:"unit_price" validate:"gte=0"`
		Total         decimal.Decimal `json:"total" validate:"gte=0"`
		SortOrder     int             `json:"sort_order"`
	}

	Payment struct {
		ID              string          `json:"id" validate:"required"`
		InvoiceID       string          `json:"invoice_id" validate:"required"`
		Amount          decimal.Decimal `json:"amount" validate:"gt=0"`
		PaymentDate     Date            `json:"payment_date" validate:"required"`
		PaymentMethod   PaymentMethod   `json:"payment_method" validate:"oneof=bank_transfer cash cheque card online"`
		ReferenceNumber string          `json:"reference_number,omitempty"`
		Notes           string          `json:"notes,omitempty"`
	}

	Card struct {
		ID             string          `json:"id" validate:"required"`
		CardName       string          `json:"card_name" validate:"required"`
		CardType       CardType        `json:"card_type" validate:"oneof=credit debit prepaid"`
		LastFour       string          `json:"last_four" validate:"len=4,numeric"`
		BankName       string          `json:"bank_name,omitempty"`
		CardholderName string          `json:"cardholder_name"`
		ExpiryDate     string          `json:"expiry_date"`
		CreditLimit    decimal.Decimal `json:"credit_limit" validate:"gte=0"`
		CurrentBalance decimal.Decimal `json:"current_balance" validate:"gte=0"`
		Currency       string          `json:"currency" validate:"omitempty,len=3"`
		IsActive       bool            `json:"is_active"`
		Color          string          `json:"color,omitempty"`
	}

	ExpenseCategory struct {
		ID       string `json:"id" validate:"required"`
		Name     string `json:"name" validate:"required"`
		NameAr   string `json:"name_ar,omitempty"`
		Icon     string `json:"icon,omitempty"`
		Color    string `json:"color,omitempty"`
		ParentID string `json:"parent_id,omitempty"`
	}

	Expense struct {
		ID            string          `json:"id" validate:"required"`
		CategoryID    string          `json:"category_id" validate:"required"`
		CardID        string          `json:"card_id,omitempty"`
		Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
		Currency      string          `json:"currency" validate:"omitempty,len=3"`
		Description   string          `json:"description"`
		DescriptionAr string          `json:"description_ar,omitempty"`
		ExpenseDate   Date            `json:"expense_date" validate:"required"`
		Vendor        string          `json:"vendor,omitempty"`
		ReceiptURL    string          `json:"receipt_url,omitempty"`
		IsRecurring   bool            `json:"is_recurring"`
		Tags          []string        `json:"tags,omitempty"`
	}

	Subscription struct {
		ID              string             `json:"id" validate:"required"`
		Name            string             `json:"name" validate:"required"`
		NameAr          string             `json:"name_ar,omitempty"`
		Provider        string             `json:"provider"`
		Amount          decimal.Decimal    `json:"amount" validate:"gt=0"`
		Currency        string             `json:"currency" validate:"omitempty,len=3"`
		BillingCycle    BillingCycle       `json:"billing_cycle" validate:"oneof=monthly quarterly yearly"`
		NextBillingDate Date               `json:"next_billing_date" validate:"required"`
		CardID          string             `json:"card_id,omitempty"`
		CategoryID      string             `json:"category_id,omitempty"`
		Status          SubscriptionStatus `json:"status" validate:"oneof=active paused cancelled"`
		AutoRenew       bool               `json:"auto_renew"`
		Notes           string             `json:"notes,omitempty"`
	}

	Contract struct {
		ID             string          `json:"id" validate:"required"`
		ClientID       string          `json:"client_id" validate:"required"`
		ProjectID      string          `json:"project_id,omitempty"`
		ContractNumber string          `json:"contract_number" validate:"required"`
		Title          string          `json:"title"`
		TitleAr        string          `json:"title_ar,omitempty"`
		Description    string          `json:"description,omitempty"`
		Status         ContractStatus  `json:"status" validate:"oneof=draft active completed terminated"`
		StartDate      Date            `json:"start_date" validate:"required"`
		EndDate        Date            `json:"end_date"`
		TotalValue     decimal.Decimal `json:"total_value" validate:"gte=0"`
		Currency       string          `json:"currency" validate:"omitempty,len=3"`
		PaymentTerms   string          `json:"payment_terms,omitempty"`
		DocumentURL    string          `json:"document_url,omitempty"`
	}
)

// Snapshot is an immutable set of Domain Records the engine aggregates over.
type Snapshot struct {
	Clients           []Client          `json:"clients"`
	Projects          []Project         `json:"projects"`
	Invoices          []Invoice         `json:"invoices"`
	InvoiceItems      []InvoiceItem     `json:"invoice_items"`
	Payments          []Payment         `json:"payments"`
	Quotes            []Quote           `json:"quotes"`
	QuoteItems        []QuoteItem       `json:"quote_items"`
	Cards             []Card            `json:"cards"`
	ExpenseCategories []ExpenseCategory `json:"expense_categories"`
	Expenses          []Expense         `json:"expenses"`
	Subscriptions     []Subscription    `json:"subscriptions"`
	Contracts         []Contract        `json:"contracts"`
}

// IsEmpty reports whether the snapshot holds no records at all.
func (s *Snapshot) IsEmpty() bool {
	if s == nil {
		return true
	}
	return len(s.Clients)+len(s.Projects)+len(s.Invoices)+len(s.InvoiceItems)+
		len(s.Payments)+len(s.Quotes)+len(s.QuoteItems)+len(s.Cards)+
		len(s.ExpenseCategories)+len(s.Expenses)+len(s.Subscriptions)+len(s.Contracts) == 0
}

// EntityKind names a record table.
type EntityKind string

const (
	KindClients           EntityKind = "clients"
	KindProjects          EntityKind = "projects"
	KindInvoices          EntityKind = "invoices"
	KindInvoiceItems      EntityKind = "invoice_items"
	KindPayments          EntityKind = "payments"
	KindQuotes            EntityKind = "quotes"
	KindQuoteItems        EntityKind = "quote_items"
	KindCards             EntityKind = "cards"
	KindExpenseCategories EntityKind = "expense_categories"
	KindExpenses          EntityKind = "expenses"
	KindSubscriptions     EntityKind = "subscriptions"
	KindContracts         EntityKind = "contracts"
)

// AllKinds lists every entity kind in load order.
func AllKinds() []EntityKind {
	return []EntityKind{
		KindClients, KindProjects, KindInvoices, KindInvoiceItems, KindPayments,
		KindQuotes, KindQuoteItems, KindCards, KindExpenseCategories, KindExpenses,
		KindSubscriptions, KindContracts,
	}
}

// IsValid returns true if the kind names a known table.
func (k EntityKind) IsValid() bool {
	for _, known := range AllKinds() {
		if k == known {
			return true
		}
	}
	return false
}
