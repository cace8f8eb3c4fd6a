package adapters

import (
	"context"
	"errors"
	"testing"

	"accountant/internal/core"
	"accountant/internal/ports"
	"accountant/internal/storage/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{ err error }

func (f failingReader) LoadSnapshot(context.Context, ports.Filter) (*core.Snapshot, error) {
	return nil, f.err
}

type recordingReader struct {
	inner ports.RecordReader
	kinds [][]core.EntityKind
}

func (r *recordingReader) LoadSnapshot(ctx context.Context, f ports.Filter) (*core.Snapshot, error) {
	r.kinds = append(r.kinds, f.Kinds)
	return r.inner.LoadSnapshot(ctx, f)
}

var asOf = core.NewDate(2026, 3, 20)

func store() *memory.Store {
	return memory.New(core.Snapshot{
		Clients: []core.Client{{ID: "c1", Name: "Acme", IsActive: true}},
		Invoices: []core.Invoice{{
			ID: "i1", InvoiceNumber: "INV-1", ClientID: "c1", Status: core.InvoiceSent,
			IssueDate: core.NewDate(2026, 2, 1), DueDate: asOf.AddDays(-15),
			Subtotal: decimal.NewFromInt(10000), TaxRate: decimal.RequireFromString("0.05"),
			TaxAmount: decimal.NewFromInt(500), Total: decimal.NewFromInt(10500),
		}},
		Payments: []core.Payment{{ID: "p1", InvoiceID: "i1", Amount: decimal.NewFromInt(6000), PaymentDate: core.NewDate(2026, 2, 10), PaymentMethod: core.PaymentCash}},
	})
}

func TestRecordsOverdueScenario(t *testing.T) {
	a := NewRecords(store())
	rows, err := a.FetchOverduePayments(context.Background(), asOf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, decimal.NewFromInt(4500).Equal(rows[0].AmountDue))
	assert.Equal(t, 15, rows[0].DaysOverdue)

	o, err := a.FetchOverview(context.Background(), core.MonthToDate(asOf), asOf)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(4500).Equal(o.OverdueAmount))
}

func TestRecordsLoadsOnlyNeededKinds(t *testing.T) {
	r := &recordingReader{inner: store()}
	a := NewRecords(r)
	_, err := a.FetchUpcomingSubscriptions(context.Background(), 30, asOf)
	require.NoError(t, err)
	_, err = a.CheckIntegrity(context.Background(), asOf)
	require.NoError(t, err)

	require.Len(t, r.kinds, 2)
	assert.Equal(t, []core.EntityKind{core.KindSubscriptions}, r.kinds[0])
	assert.Empty(t, r.kinds[1], "integrity loads every kind")
}

func TestRecordsWrapsFailures(t *testing.T) {
	cause := errors.New("disk gone")
	a := NewRecords(failingReader{err: cause})

	_, err := a.FetchClientSummaries(context.Background())
	assert.ErrorIs(t, err, ports.ErrDataUnavailable)
	assert.ErrorIs(t, err, cause)

	_, err = a.FetchMonthlyRevenue(context.Background(), 12, asOf)
	assert.ErrorIs(t, err, ports.ErrDataUnavailable)
}
