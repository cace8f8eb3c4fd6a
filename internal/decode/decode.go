// Package decode turns raw JSON rows into typed domain records at the
// data-access boundary.
//
// Each row is decoded on its own and checked against the struct's validate
// tags (required fields, enum values, non-negative amounts). A row that does
// not fit is rejected and reported, never coerced into a default. Semantic
// invariants that span fields or records (totals, references) are left to
// aggregate.CheckIntegrity.
package decode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"accountant/internal/core"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Rejection describes a row that could not be decoded.
type Rejection struct {
	Kind   core.EntityKind `json:"kind"`
	Index  int             `json:"index"`
	ID     string          `json:"id,omitempty"`
	Reason string          `json:"reason"`
}

func (r Rejection) String() string {
	if r.ID == "" {
		return fmt.Sprintf("%s[%d]: %s", r.Kind, r.Index, r.Reason)
	}
	return fmt.Sprintf("%s[%d] %s: %s", r.Kind, r.Index, r.ID, r.Reason)
}

var ErrUnknownKind = errors.New("unknown entity kind")

// Decoder validates rows with a shared validator instance. It is safe for
// concurrent use.
type Decoder struct {
	validate *validator.Validate
}

// New builds a Decoder that understands decimal amounts and calendar dates.
func New() *Decoder {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(core.Date); ok {
			return d.Time
		}
		return time.Time{}
	}, core.Date{})
	return &Decoder{validate: v}
}

// Struct runs tag validation on a single record.
func (d *Decoder) Struct(v any) error {
	if err := d.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fieldErrors(verrs)
		}
		return err
	}
	return nil
}

func fieldErrors(verrs validator.ValidationErrors) error {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag()))
	}
	return errors.New(strings.Join(parts, "; "))
}

// Rows decodes a JSON array of T. Rows that fail to decode or validate are
// returned as rejections; a document that is not a JSON array is an error.
func Rows[T any](d *Decoder, kind core.EntityKind, data []byte) ([]T, []Rejection, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []T{}, nil, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", kind, err)
	}

	out := make([]T, 0, len(raw))
	var rejected []Rejection
	for i, row := range raw {
		var rec T
		if err := json.Unmarshal(row, &rec); err != nil {
			rejected = append(rejected, Rejection{Kind: kind, Index: i, ID: rowID(row), Reason: err.Error()})
			continue
		}
		if err := d.Struct(rec); err != nil {
			rejected = append(rejected, Rejection{Kind: kind, Index: i, ID: rowID(row), Reason: err.Error()})
			continue
		}
		out = append(out, rec)
	}
	return out, rejected, nil
}

func rowID(row json.RawMessage) string {
	var probe struct {
		ID any `json:"id"`
	}
	if err := json.Unmarshal(row, &probe); err != nil || probe.ID == nil {
		return ""
	}
	return fmt.Sprint(probe.ID)
}

// Into decodes the rows of one entity kind into the matching snapshot slice,
// replacing what was there.
func Into(d *Decoder, s *core.Snapshot, kind core.EntityKind, data []byte) ([]Rejection, error) {
	var (
		rejected []Rejection
		err      error
	)
	switch kind {
	case core.KindClients:
		s.Clients, rejected, err = Rows[core.Client](d, kind, data)
	case core.KindProjects:
		s.Projects, rejected, err = Rows[core.Project](d, kind, data)
	case core.KindInvoices:
		s.Invoices, rejected, err = Rows[core.Invoice](d, kind, data)
	case core.KindInvoiceItems:
		s.InvoiceItems, rejected, err = Rows[core.InvoiceItem](d, kind, data)
	case core.KindPayments:
		s.Payments, rejected, err = Rows[core.Payment](d, kind, data)
	case core.KindQuotes:
		s.Quotes, rejected, err = Rows[core.Quote](d, kind, data)
	case core.KindQuoteItems:
		s.QuoteItems, rejected, err = Rows[core.QuoteItem](d, kind, data)
	case core.KindCards:
		s.Cards, rejected, err = Rows[core.Card](d, kind, data)
	case core.KindExpenseCategories:
		s.ExpenseCategories, rejected, err = Rows[core.ExpenseCategory](d, kind, data)
	case core.KindExpenses:
		s.Expenses, rejected, err = Rows[core.Expense](d, kind, data)
	case core.KindSubscriptions:
		s.Subscriptions, rejected, err = Rows[core.Subscription](d, kind, data)
	case core.KindContracts:
		s.Contracts, rejected, err = Rows[core.Contract](d, kind, data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return rejected, err
}
