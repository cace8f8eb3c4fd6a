package core

import "fmt"

const (
	Monthly   BillingCycle = "monthly"
	Quarterly BillingCycle = "quarterly"
	Yearly    BillingCycle = "yearly"
)

// BillingCycle is the renewal period of a subscription.
type BillingCycle string

// cycleMonths maps each billing cycle to its length in months.
var cycleMonths = map[BillingCycle]int{
	Monthly:   1,
	Quarterly: 3,
	Yearly:    12,
}

func (c BillingCycle) IsValid() bool {
	_, ok := cycleMonths[c]
	return ok
}

// Months returns the cycle length in months.
func (c BillingCycle) Months() (int, error) {
	n, ok := cycleMonths[c]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCycle, c)
	}
	return n, nil
}

// NextBillingOn returns the first billing date on or after asOf and the
// number of cycles it lies past the stored date. Each candidate is computed
// from the stored date, not from the previous candidate, so a Jan 31 anchor
// yields Feb 28 and then Mar 31. Only active subscriptions advance.
func (s Subscription) NextBillingOn(asOf Date) (Date, int, error) {
	if s.Status != SubscriptionActive || !s.NextBillingDate.Before(asOf) {
		return s.NextBillingDate, 0, nil
	}
	months, err := s.BillingCycle.Months()
	if err != nil {
		return s.NextBillingDate, 0, err
	}
	for k := 1; ; k++ {
		next := s.NextBillingDate.AddMonthsClamped(k * months)
		if !next.Before(asOf) {
			return next, k, nil
		}
	}
}
