package aggregate

import (
	"sort"

	"accountant/internal/core"
)

// UpcomingSubscriptions lists active subscriptions billing within
// [asOf, asOf+horizonDays].
func UpcomingSubscriptions(s *core.Snapshot, horizonDays int, asOf core.Date) []core.UpcomingSubscription {
	if s == nil {
		return []core.UpcomingSubscription{}
	}
	return SelectUpcoming(s.Subscriptions, horizonDays, asOf)
}

// SelectUpcoming applies the upcoming-billing rule to a list of
// subscriptions. Elapsed billing dates of active subscriptions are projected
// forward by whole cycles first. Rows are ordered by days until billing, then
// name, then id. Subscriptions with an unknown billing cycle are skipped;
// CheckIntegrity reports them.
func SelectUpcoming(subs []core.Subscription, horizonDays int, asOf core.Date) []core.UpcomingSubscription {
	out := []core.UpcomingSubscription{}
	if horizonDays < 0 {
		return out
	}
	for _, sub := range subs {
		if sub.Status != core.SubscriptionActive || !sub.BillingCycle.IsValid() {
			continue
		}
		next, _, err := sub.NextBillingOn(asOf)
		if err != nil {
			continue
		}
		days := asOf.DaysUntil(next)
		if days < 0 || days > horizonDays {
			continue
		}
		out = append(out, core.UpcomingSubscription{
			ID:               sub.ID,
			Name:             sub.Name,
			NameAr:           sub.NameAr,
			Provider:         sub.Provider,
			Amount:           sub.Amount,
			Currency:         currencyOr(sub.Currency),
			BillingCycle:     sub.BillingCycle,
			NextBillingDate:  next,
			DaysUntilBilling: days,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DaysUntilBilling != b.DaysUntilBilling {
			return a.DaysUntilBilling < b.DaysUntilBilling
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return out
}
