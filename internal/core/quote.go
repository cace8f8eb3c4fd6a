package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	QuoteDraft    QuoteStatus = "draft"
	QuoteSent     QuoteStatus = "sent"
	QuoteAccepted QuoteStatus = "accepted"
	QuoteRejected QuoteStatus = "rejected"
	QuoteExpired  QuoteStatus = "expired"
)

type (
	QuoteStatus string

	// Quote mirrors Invoice before acceptance.
	Quote struct {
		ID          string          `json:"id" validate:"required"`
		QuoteNumber string          `json:"quote_number" validate:"required"`
		ClientID    string          `json:"client_id" validate:"required"`
		ProjectID   string          `json:"project_id,omitempty"`
		Status      QuoteStatus     `json:"status" validate:"oneof=draft sent accepted rejected expired"`
		IssueDate   Date            `json:"issue_date" validate:"required"`
		ExpiryDate  Date            `json:"expiry_date" validate:"required"`
		Subtotal    decimal.Decimal `json:"subtotal" validate:"gte=0"`
		TaxRate     decimal.Decimal `json:"tax_rate" validate:"gte=0"`
		TaxAmount   decimal.Decimal `json:"tax_amount" validate:"gte=0"`
		Total       decimal.Decimal `json:"total" validate:"gte=0"`
		Currency    string          `json:"currency" validate:"omitempty,len=3"`
		Notes       string          `json:"notes,omitempty"`
	}

	QuoteItem struct {
		ID            string          `json:"id" validate:"required"`
		QuoteID       string          `json:"quote_id" validate:"required"`
		Description   string          `json:"description"`
		DescriptionAr string          `json:"description_ar,omitempty"`
		Quantity      decimal.Decimal `json:"quantity" validate:"gt=0"`
		UnitPrice     decimal.Decimal `json:"unit_price" validate:"gte=0"`
		Total         decimal.Decimal `json:"total" validate:"gte=0"`
		SortOrder     int             `json:"sort_order"`
	}
)

// quoteTransitions lists the statuses reachable from each status.
var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteDraft: {QuoteSent},
	QuoteSent:  {QuoteAccepted, QuoteRejected, QuoteExpired},
}

// CanTransitionTo reports whether a quote may move from s to next.
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	for _, allowed := range quoteTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal is true for accepted, rejected and expired quotes.
func (s QuoteStatus) IsTerminal() bool {
	switch s {
	case QuoteAccepted, QuoteRejected, QuoteExpired:
		return true
	}
	return false
}

// Transition moves the quote to next or returns ErrInvalidTransition.
func (q *Quote) Transition(next QuoteStatus) error {
	if !q.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: quote %s %s -> %s", ErrInvalidTransition, q.ID, q.Status, next)
	}
	q.Status = next
	return nil
}

func (q Quote) Validate() error {
	if err := q.IssueDate.Validate(); err != nil {
		return fmt.Errorf("issue date: %w", err)
	}
	if err := q.ExpiryDate.Validate(); err != nil {
		return fmt.Errorf("expiry date: %w", err)
	}
	if q.ExpiryDate.Before(q.IssueDate) {
		return ErrDateOrder
	}
	switch q.Status {
	case QuoteDraft, QuoteSent, QuoteAccepted, QuoteRejected, QuoteExpired:
	default:
		return fmt.Errorf("%w: quote status %q", ErrInvalidStatus, q.Status)
	}
	return checkTotals(q.Subtotal, q.TaxRate, q.TaxAmount, q.Total)
}

func (qi QuoteItem) Validate() error {
	return checkLine(qi.Quantity, qi.UnitPrice, qi.Total)
}
