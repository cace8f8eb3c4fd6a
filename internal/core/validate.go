package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyName         = errors.New("empty name")
	ErrEmptyID           = errors.New("empty id")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrDateOrder         = errors.New("end date before start date")
	ErrTotalMismatch     = errors.New("total does not equal subtotal plus tax")
	ErrTaxMismatch       = errors.New("tax amount does not equal subtotal times tax rate")
	ErrLineMismatch      = errors.New("line total does not equal quantity times unit price")
	ErrCardLimit         = errors.New("credit limit only allowed on credit cards")
	ErrCardBalance       = errors.New("card balance outside credit limit")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidCycle      = errors.New("invalid billing cycle")
)

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrEmptyID
	}
	return nil
}

// checkTotals enforces total = subtotal + tax and tax = subtotal * rate.
func checkTotals(subtotal, rate, tax, total decimal.Decimal) error {
	if subtotal.IsNegative() || rate.IsNegative() || tax.IsNegative() || total.IsNegative() {
		return ErrInvalidAmount
	}
	if !ApproxEqual(tax, RoundMoney(subtotal.Mul(rate))) {
		return fmt.Errorf("%w: %s * %s != %s", ErrTaxMismatch, subtotal, rate, tax)
	}
	if !ApproxEqual(total, subtotal.Add(tax)) {
		return fmt.Errorf("%w: %s + %s != %s", ErrTotalMismatch, subtotal, tax, total)
	}
	return nil
}

func checkLine(qty, price, total decimal.Decimal) error {
	if !qty.IsPositive() || price.IsNegative() {
		return ErrInvalidAmount
	}
	if !ApproxEqual(total, RoundMoney(qty.Mul(price))) {
		return fmt.Errorf("%w: %s * %s != %s", ErrLineMismatch, qty, price, total)
	}
	return nil
}

func (c Client) Validate() error {
	if err := requireID(c.ID); err != nil {
		return err
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (p Project) Validate() error {
	if err := requireID(p.ID); err != nil {
		return err
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if !p.EndDate.IsZero() && !p.StartDate.IsZero() && p.EndDate.Before(p.StartDate) {
		return ErrDateOrder
	}
	return nil
}

func (i Invoice) Validate() error {
	if err := requireID(i.ID); err != nil {
		return err
	}
	switch i.Status {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue, InvoiceCancelled:
	default:
		return fmt.Errorf("%w: invoice status %q", ErrInvalidStatus, i.Status)
	}
	if err := i.IssueDate.Validate(); err != nil {
		return fmt.Errorf("issue date: %w", err)
	}
	if err := i.DueDate.Validate(); err != nil {
		return fmt.Errorf("due date: %w", err)
	}
	if i.DueDate.Before(i.IssueDate) {
		return ErrDateOrder
	}
	return checkTotals(i.Subtotal, i.TaxRate, i.TaxAmount, i.Total)
}

// AmountDue is total minus paid; negative means the invoice was over-paid.
func (i Invoice) AmountDue(paid decimal.Decimal) decimal.Decimal {
	return i.Total.Sub(paid)
}

// IsOverdue applies the overdue rule: not cancelled, due before asOf and
// something still owed.
func (i Invoice) IsOverdue(paid decimal.Decimal, asOf Date) bool {
	return i.Status != InvoiceCancelled && i.DueDate.Before(asOf) && i.AmountDue(paid).IsPositive()
}

func (it InvoiceItem) Validate() error {
	return checkLine(it.Quantity, it.UnitPrice, it.Total)
}

func (p Payment) Validate() error {
	if err := requireID(p.ID); err != nil {
		return err
	}
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return p.PaymentDate.Validate()
}

func (c Card) Validate() error {
	if err := requireID(c.ID); err != nil {
		return err
	}
	switch c.CardType {
	case CardCredit:
	case CardDebit, CardPrepaid:
		if !c.CreditLimit.IsZero() {
			return ErrCardLimit
		}
	default:
		return fmt.Errorf("%w: card type %q", ErrInvalidStatus, c.CardType)
	}
	if c.CurrentBalance.IsNegative() {
		return ErrCardBalance
	}
	if c.CreditLimit.IsPositive() && c.CurrentBalance.GreaterThan(c.CreditLimit) {
		return ErrCardBalance
	}
	return nil
}

func (c ExpenseCategory) Validate() error {
	if err := requireID(c.ID); err != nil {
		return err
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (e Expense) Validate() error {
	if err := requireID(e.ID); err != nil {
		return err
	}
	if strings.TrimSpace(e.CategoryID) == "" {
		return fmt.Errorf("category: %w", ErrEmptyID)
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return e.ExpenseDate.Validate()
}

func (s Subscription) Validate() error {
	if err := requireID(s.ID); err != nil {
		return err
	}
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if !s.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !s.BillingCycle.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCycle, s.BillingCycle)
	}
	switch s.Status {
	case SubscriptionActive, SubscriptionPaused, SubscriptionCancelled:
	default:
		return fmt.Errorf("%w: subscription status %q", ErrInvalidStatus, s.Status)
	}
	return s.NextBillingDate.Validate()
}

func (c Contract) Validate() error {
	if err := requireID(c.ID); err != nil {
		return err
	}
	switch c.Status {
	case ContractDraft, ContractActive, ContractCompleted, ContractTerminated:
	default:
		return fmt.Errorf("%w: contract status %q", ErrInvalidStatus, c.Status)
	}
	if err := c.StartDate.Validate(); err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	if !c.EndDate.IsZero() && c.EndDate.Before(c.StartDate) {
		return ErrDateOrder
	}
	if c.TotalValue.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}
