package locale

// Label keys for report headers.
const (
	LabelMonth         = "month"
	LabelInvoiced      = "invoiced"
	LabelRevenue       = "revenue"
	LabelExpenses      = "expenses"
	LabelProfit        = "profit"
	LabelInvoiceCount  = "invoice_count"
	LabelCategory      = "category"
	LabelAmount        = "amount"
	LabelPercentage    = "percentage"
	LabelTransactions  = "transactions"
	LabelInvoiceNumber = "invoice_number"
	LabelClient        = "client"
	LabelTotal         = "total"
	LabelPaid          = "paid"
	LabelDue           = "amount_due"
	LabelDueDate       = "due_date"
	LabelDaysOverdue   = "days_overdue"
)

var labels = map[Locale]map[string]string{
	English: {
		LabelMonth:         "Month",
		LabelInvoiced:      "Invoiced",
		LabelRevenue:       "Revenue",
		LabelExpenses:      "Expenses",
		LabelProfit:        "Profit",
		LabelInvoiceCount:  "Invoices",
		LabelCategory:      "Category",
		LabelAmount:        "Amount",
		LabelPercentage:    "Share %",
		LabelTransactions:  "Transactions",
		LabelInvoiceNumber: "Invoice",
		LabelClient:        "Client",
		LabelTotal:         "Total",
		LabelPaid:          "Paid",
		LabelDue:           "Amount Due",
		LabelDueDate:       "Due Date",
		LabelDaysOverdue:   "Days Overdue",
	},
	Arabic: {
		LabelMonth:         "الشهر",
		LabelInvoiced:      "المفوتر",
		LabelRevenue:       "الإيرادات",
		LabelExpenses:      "المصروفات",
		LabelProfit:        "الربح",
		LabelInvoiceCount:  "الفواتير",
		LabelCategory:      "الفئة",
		LabelAmount:        "المبلغ",
		LabelPercentage:    "النسبة %",
		LabelTransactions:  "المعاملات",
		LabelInvoiceNumber: "الفاتورة",
		LabelClient:        "العميل",
		LabelTotal:         "الإجمالي",
		LabelPaid:          "المدفوع",
		LabelDue:           "المستحق",
		LabelDueDate:       "تاريخ الاستحقاق",
		LabelDaysOverdue:   "أيام التأخير",
	},
}

// Label returns the localized label for key, or key itself when unknown.
func (l Locale) Label(key string) string {
	if v, ok := labels[l][key]; ok {
		return v
	}
	if v, ok := labels[English][key]; ok {
		return v
	}
	return key
}

// Labels returns the localized labels for keys, in order.
func (l Locale) Labels(keys ...string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = l.Label(k)
	}
	return out
}
