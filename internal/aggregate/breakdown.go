package aggregate

import (
	"sort"

	"accountant/internal/core"

	"github.com/shopspring/decimal"
)

// CategoryTotal is the raw per-category sum before percentages.
type CategoryTotal struct {
	CategoryID     string
	CategoryName   string
	CategoryNameAr string
	Amount         decimal.Decimal
	Count          int
}

// ExpenseBreakdown groups the period's expenses by category. Categories with
// no spend in the period are omitted. Expenses pointing at an unknown
// category are still counted, under the raw category id.
func ExpenseBreakdown(s *core.Snapshot, period core.Period) []core.ExpenseBreakdown {
	if s.IsEmpty() {
		return []core.ExpenseBreakdown{}
	}
	ix := buildIndex(s)

	byCategory := make(map[string]*CategoryTotal)
	for _, e := range s.Expenses {
		if !period.Contains(e.ExpenseDate) {
			continue
		}
		ct, ok := byCategory[e.CategoryID]
		if !ok {
			ct = &CategoryTotal{CategoryID: e.CategoryID, CategoryName: e.CategoryID, Amount: decimal.Zero}
			if cat, known := ix.categories[e.CategoryID]; known {
				ct.CategoryName = cat.Name
				ct.CategoryNameAr = cat.NameAr
			}
			byCategory[e.CategoryID] = ct
		}
		ct.Amount = ct.Amount.Add(e.Amount)
		ct.Count++
	}

	totals := make([]CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		totals = append(totals, *ct)
	}
	return FinishBreakdown(totals)
}

// FinishBreakdown orders category totals (amount desc, then name, then id)
// and gives each row its share of the grand total, rounded half away from
// zero to two places. Rows are rounded independently, so their sum may drift
// from 100.00 by up to half a hundredth per row.
func FinishBreakdown(totals []CategoryTotal) []core.ExpenseBreakdown {
	kept := make([]CategoryTotal, 0, len(totals))
	grand := decimal.Zero
	for _, t := range totals {
		if !t.Amount.IsPositive() {
			continue
		}
		kept = append(kept, t)
		grand = grand.Add(t.Amount)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if c := a.Amount.Cmp(b.Amount); c != 0 {
			return c > 0
		}
		if a.CategoryName != b.CategoryName {
			return a.CategoryName < b.CategoryName
		}
		return a.CategoryID < b.CategoryID
	})

	out := make([]core.ExpenseBreakdown, len(kept))
	if len(kept) == 0 {
		return out
	}

	hundred := decimal.NewFromInt(100)
	for i, t := range kept {
		out[i] = core.ExpenseBreakdown{
			CategoryID:       t.CategoryID,
			CategoryName:     t.CategoryName,
			CategoryNameAr:   t.CategoryNameAr,
			TotalAmount:      t.Amount,
			Percentage:       t.Amount.Mul(hundred).Div(grand).Round(2),
			TransactionCount: t.Count,
		}
	}
	return out
}
