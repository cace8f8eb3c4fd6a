package sheets

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accountant/internal/core"
	"accountant/internal/locale"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestMonthlyRevenueRows(t *testing.T) {
	rows := MonthlyRevenueRows(locale.English, []core.MonthlyRevenue{
		{Year: 2026, Month: 2, Invoiced: d("0"), Revenue: d("0"), Expenses: d("12.5"), Profit: d("-12.5")},
		{Year: 2026, Month: 3, Invoiced: d("210"), Revenue: d("550"), Expenses: d("400"), Profit: d("150"), InvoiceCount: 1},
	})

	require.Len(t, rows, 3)
	assert.Equal(t, []any{"Month", "Invoiced", "Revenue", "Expenses", "Profit", "Invoices"}, rows[0])
	assert.Equal(t, []any{"February 2026", "0.00", "0.00", "12.50", "-12.50", 0}, rows[1])
	assert.Equal(t, []any{"March 2026", "210.00", "550.00", "400.00", "150.00", 1}, rows[2])
}

func TestExpenseBreakdownRows_ArabicNames(t *testing.T) {
	in := []core.ExpenseBreakdown{
		{CategoryID: "c1", CategoryName: "Rent", CategoryNameAr: "إيجار", TotalAmount: d("600"), Percentage: d("66.67"), TransactionCount: 2},
		{CategoryID: "c2", CategoryName: "Travel", TotalAmount: d("300"), Percentage: d("33.33"), TransactionCount: 1},
	}

	ar := ExpenseBreakdownRows(locale.Arabic, in)
	require.Len(t, ar, 3)
	assert.Equal(t, "الفئة", ar[0][0])
	assert.Equal(t, "إيجار", ar[1][0])
	assert.Equal(t, "Travel", ar[2][0], "falls back to the English name")

	en := ExpenseBreakdownRows(locale.English, in)
	assert.Equal(t, []any{"Rent", "600.00", "66.67", 2}, en[1])
}

func TestOverduePaymentRows(t *testing.T) {
	rows := OverduePaymentRows(locale.English, []core.OverduePayment{{
		InvoiceID: "inv-1", InvoiceNumber: "INV-1", ClientName: "Acme",
		Total: d("1050"), AmountPaid: d("300"), AmountDue: d("750"),
		DueDate: core.NewDate(2026, 2, 5), DaysOverdue: 43,
	}})

	require.Len(t, rows, 2)
	assert.Equal(t, []any{"INV-1", "Acme", "1050.00", "300.00", "750.00", "2026-02-05", 43}, rows[1])
}

func TestReportTables(t *testing.T) {
	tables := Report{AsOf: core.NewDate(2026, 3, 20)}.Tables()

	require.Len(t, tables, 3)
	assert.Equal(t, TableMonthlyRevenue, tables[0].Kind)
	assert.Equal(t, TableExpenseBreakdown, tables[1].Kind)
	assert.Equal(t, TableOverduePayments, tables[2].Kind)
	for _, tb := range tables {
		assert.Len(t, tb.Rows, 1, "empty views export a header only")
	}
	assert.Equal(t, "الشهر", tables[0].Rows[0][0], "default locale is Arabic")
}
