package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"accountant/internal/aggregate"
	"accountant/internal/core"
)

// The SQL views must produce exactly the rows the in-process engine derives
// from the same records.
func TestViewsMatchEngine(t *testing.T) {
	repo := newTestRepo(t)
	snap := seedSnapshot(t)
	ctx := context.Background()
	if err := repo.Import(ctx, snap); err != nil {
		t.Fatalf("import: %v", err)
	}

	dates := []core.Date{asOf, core.NewDate(2026, 1, 31), core.NewDate(2025, 12, 1), core.NewDate(2027, 1, 1)}
	for _, day := range dates {
		t.Run(day.String(), func(t *testing.T) {
			for _, p := range []core.Period{core.MonthToDate(day), core.YearToDate(day), core.YearPeriod(2025)} {
				got, err := repo.FetchOverview(ctx, p, day)
				if err != nil {
					t.Fatalf("overview: %v", err)
				}
				if g, w := mustJSON(t, got), mustJSON(t, aggregate.Overview(snap, p, day)); g != w {
					t.Fatalf("overview %s\n got %s\nwant %s", p, g, w)
				}

				breakdown, err := repo.FetchExpenseBreakdown(ctx, p)
				if err != nil {
					t.Fatalf("breakdown: %v", err)
				}
				if g, w := mustJSON(t, breakdown), mustJSON(t, aggregate.ExpenseBreakdown(snap, p)); g != w {
					t.Fatalf("breakdown %s\n got %s\nwant %s", p, g, w)
				}
			}

			months, err := repo.FetchMonthlyRevenue(ctx, 12, day)
			if err != nil {
				t.Fatalf("monthly: %v", err)
			}
			if g, w := mustJSON(t, months), mustJSON(t, aggregate.MonthlyRevenue(snap, 12, day)); g != w {
				t.Fatalf("monthly\n got %s\nwant %s", g, w)
			}

			upcoming, err := repo.FetchUpcomingSubscriptions(ctx, 30, day)
			if err != nil {
				t.Fatalf("upcoming: %v", err)
			}
			if g, w := mustJSON(t, upcoming), mustJSON(t, aggregate.UpcomingSubscriptions(snap, 30, day)); g != w {
				t.Fatalf("upcoming\n got %s\nwant %s", g, w)
			}

			overdue, err := repo.FetchOverduePayments(ctx, day)
			if err != nil {
				t.Fatalf("overdue: %v", err)
			}
			if g, w := mustJSON(t, overdue), mustJSON(t, aggregate.OverduePayments(snap, day)); g != w {
				t.Fatalf("overdue\n got %s\nwant %s", g, w)
			}
		})
	}

	clients, err := repo.FetchClientSummaries(ctx)
	if err != nil {
		t.Fatalf("clients: %v", err)
	}
	if g, w := mustJSON(t, clients), mustJSON(t, aggregate.ClientSummaries(snap)); g != w {
		t.Fatalf("clients\n got %s\nwant %s", g, w)
	}
}

func TestClientSummariesFlagOverpaidInvoice(t *testing.T) {
	repo := newTestRepo(t)
	snap := seedSnapshot(t)
	ctx := context.Background()

	// Over-pay one invoice of a client that also has other invoices.
	var target core.Invoice
	for _, inv := range snap.Invoices {
		if inv.Status != core.InvoiceCancelled {
			target = inv
			break
		}
	}
	if target.ID == "" {
		t.Fatal("seed data has no open invoice")
	}
	snap.Payments = append(snap.Payments, core.Payment{
		ID:            "pay-overpaid",
		InvoiceID:     target.ID,
		Amount:        target.Total.Add(decimal.NewFromInt(100)),
		PaymentDate:   asOf,
		PaymentMethod: core.PaymentBankTransfer,
	})
	if err := repo.Import(ctx, snap); err != nil {
		t.Fatalf("import: %v", err)
	}

	got, err := repo.FetchClientSummaries(ctx)
	if err != nil {
		t.Fatalf("clients: %v", err)
	}
	want := aggregate.ClientSummaries(snap)
	if g, w := mustJSON(t, got), mustJSON(t, want); g != w {
		t.Fatalf("clients\n got %s\nwant %s", g, w)
	}
	for _, row := range got {
		if row.ClientID != target.ClientID {
			continue
		}
		if !row.Flagged || !row.Overpayment.GreaterThanOrEqual(decimal.NewFromInt(100)) {
			t.Fatalf("client %s not flagged: %+v", row.ClientID, row)
		}
		return
	}
	t.Fatalf("no summary row for client %s", target.ClientID)
}

func TestViewsOnEmptyDatabase(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	o, err := repo.FetchOverview(ctx, core.MonthToDate(asOf), asOf)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if !o.TotalRevenue.IsZero() || !o.OverdueAmount.IsZero() || o.TotalClients != 0 {
		t.Fatalf("expected zeroed overview, got %+v", o)
	}
	months, err := repo.FetchMonthlyRevenue(ctx, 12, asOf)
	if err != nil || len(months) != 12 {
		t.Fatalf("expected 12 zero months, got %d err=%v", len(months), err)
	}
	clients, err := repo.FetchClientSummaries(ctx)
	if err != nil || len(clients) != 0 {
		t.Fatalf("expected no client rows, got %v err=%v", clients, err)
	}
	overdue, err := repo.FetchOverduePayments(ctx, asOf)
	if err != nil || overdue == nil || len(overdue) != 0 {
		t.Fatalf("expected empty overdue list, got %v err=%v", overdue, err)
	}
}
