package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{}, false},
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateJSON(t *testing.T) {
	var d Date
	if err := d.UnmarshalJSON([]byte(`"2026-02-10"`)); err != nil || !d.Equal(NewDate(2026, 2, 10)) {
		t.Fatalf("unexpected date %v err=%v", d, err)
	}
	if err := d.UnmarshalJSON([]byte(`"2026-02-10T21:30:00Z"`)); err != nil || !d.Equal(NewDate(2026, 2, 10)) {
		t.Fatalf("timestamp should keep the calendar day, got %v err=%v", d, err)
	}
	if err := d.UnmarshalJSON([]byte(`null`)); err != nil || !d.IsZero() {
		t.Fatalf("null should give zero date")
	}
	out, _ := NewDate(2026, 3, 1).MarshalJSON()
	if string(out) != `"2026-03-01"` {
		t.Fatalf("unexpected json %s", out)
	}
}

func TestDateAddMonthsClamped(t *testing.T) {
	cases := []struct {
		in     Date
		months int
		want   Date
	}{
		{NewDate(2026, 1, 15), 1, NewDate(2026, 2, 15)},
		{NewDate(2026, 1, 31), 1, NewDate(2026, 2, 28)},
		{NewDate(2028, 1, 31), 1, NewDate(2028, 2, 29)},
		{NewDate(2026, 11, 30), 3, NewDate(2027, 2, 28)},
		{NewDate(2026, 3, 31), -1, NewDate(2026, 2, 28)},
	}
	for _, tc := range cases {
		if got := tc.in.AddMonthsClamped(tc.months); !got.Equal(tc.want) {
			t.Fatalf("%s + %d months = %s, want %s", tc.in, tc.months, got, tc.want)
		}
	}
}

func TestInvoiceValidate(t *testing.T) {
	good := Invoice{
		ID:            "inv-1",
		InvoiceNumber: "INV-001",
		ClientID:      "c1",
		Status:        InvoiceSent,
		IssueDate:     NewDate(2026, 1, 1),
		DueDate:       NewDate(2026, 1, 31),
		Subtotal:      dec("10000"),
		TaxRate:       dec("0.05"),
		TaxAmount:     dec("500"),
		Total:         dec("10500"),
		Currency:      "AED",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	badTotal := good
	badTotal.Total = dec("10400")
	if err := badTotal.Validate(); !errors.Is(err, ErrTotalMismatch) {
		t.Fatalf("expected total mismatch, got %v", err)
	}

	badTax := good
	badTax.TaxAmount = dec("400")
	badTax.Total = dec("10400")
	if err := badTax.Validate(); !errors.Is(err, ErrTaxMismatch) {
		t.Fatalf("expected tax mismatch, got %v", err)
	}

	badDates := good
	badDates.DueDate = NewDate(2025, 12, 31)
	if err := badDates.Validate(); !errors.Is(err, ErrDateOrder) {
		t.Fatalf("expected date order error, got %v", err)
	}

	badStatus := good
	badStatus.Status = "refunded"
	if err := badStatus.Validate(); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestInvoiceIsOverdue(t *testing.T) {
	inv := Invoice{Status: InvoiceSent, DueDate: NewDate(2026, 2, 10), Total: dec("10500")}
	today := NewDate(2026, 2, 25)
	if !inv.IsOverdue(dec("6000"), today) {
		t.Fatalf("expected overdue")
	}
	if inv.IsOverdue(dec("10500"), today) {
		t.Fatalf("fully paid invoice cannot be overdue")
	}
	if inv.IsOverdue(dec("0"), NewDate(2026, 2, 10)) {
		t.Fatalf("invoice due today is not overdue")
	}
	inv.Status = InvoiceCancelled
	if inv.IsOverdue(dec("0"), today) {
		t.Fatalf("cancelled invoice cannot be overdue")
	}
}

func TestCardValidate(t *testing.T) {
	cases := []struct {
		card Card
		err  error
	}{
		{Card{ID: "1", CardType: CardCredit, CreditLimit: dec("5000"), CurrentBalance: dec("1200")}, nil},
		{Card{ID: "2", CardType: CardDebit, CurrentBalance: dec("300")}, nil},
		{Card{ID: "3", CardType: CardDebit, CreditLimit: dec("100")}, ErrCardLimit},
		{Card{ID: "4", CardType: CardCredit, CreditLimit: dec("1000"), CurrentBalance: dec("1500")}, ErrCardBalance},
		{Card{ID: "5", CardType: CardPrepaid, CurrentBalance: dec("-1")}, ErrCardBalance},
	}
	for i, tc := range cases {
		err := tc.card.Validate()
		if tc.err == nil && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if tc.err != nil && !errors.Is(err, tc.err) {
			t.Fatalf("case %d expected %v, got %v", i, tc.err, err)
		}
	}
}

func TestRecordValidate(t *testing.T) {
	goods := []interface{ Validate() error }{
		Client{ID: "c1", Name: "Injazat Real Estate"},
		InvoiceItem{Quantity: dec("2"), UnitPrice: dec("2500"), Total: dec("5000")},
		Payment{ID: "p1", Amount: dec("6000"), PaymentDate: NewDate(2026, 2, 1)},
		ExpenseCategory{ID: "cat", Name: "Tools"},
		Expense{ID: "e1", CategoryID: "cat", Amount: dec("450"), ExpenseDate: NewDate(2026, 2, 14)},
		Subscription{ID: "s1", Name: "Figma", Amount: dec("450"), BillingCycle: Monthly, Status: SubscriptionActive, NextBillingDate: NewDate(2026, 3, 1)},
		Contract{ID: "k1", Status: ContractActive, StartDate: NewDate(2026, 1, 1), EndDate: NewDate(2026, 12, 31)},
	}
	for i, r := range goods {
		if err := r.Validate(); err != nil {
			t.Fatalf("good case %d: %v", i, err)
		}
	}

	bads := []interface{ Validate() error }{
		Client{ID: "c1", Name: "  "},
		InvoiceItem{Quantity: dec("2"), UnitPrice: dec("2500"), Total: dec("4000")},
		Payment{ID: "p1", Amount: dec("0"), PaymentDate: NewDate(2026, 2, 1)},
		Expense{ID: "e1", CategoryID: "", Amount: dec("1"), ExpenseDate: NewDate(2026, 2, 14)},
		Expense{ID: "e1", CategoryID: "cat", Amount: dec("-5"), ExpenseDate: NewDate(2026, 2, 14)},
		Subscription{ID: "s1", Name: "Figma", Amount: dec("450"), BillingCycle: "weekly", Status: SubscriptionActive, NextBillingDate: NewDate(2026, 3, 1)},
		Contract{ID: "k1", Status: ContractActive, StartDate: NewDate(2026, 1, 1), EndDate: NewDate(2025, 12, 31)},
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("bad case %d expected error", i)
		}
	}
}

func TestSnapshotIsEmpty(t *testing.T) {
	var nilSnap *Snapshot
	if !nilSnap.IsEmpty() || !(&Snapshot{}).IsEmpty() {
		t.Fatalf("expected empty")
	}
	if (&Snapshot{Clients: []Client{{ID: "c"}}}).IsEmpty() {
		t.Fatalf("expected non-empty")
	}
}
