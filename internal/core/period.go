package core

import (
	"errors"
	"fmt"
	"time"
)

// Period is an inclusive date range used to scope revenue and expense
// aggregation.
type Period struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

var ErrInvalidPeriod = errors.New("invalid period")

// NewPeriod builds a period and checks its bounds.
func NewPeriod(start, end Date) (Period, error) {
	p := Period{Start: start, End: end}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// MonthPeriod covers a whole calendar month.
func MonthPeriod(year int, month time.Month) Period {
	start := NewDate(year, int(month), 1)
	return Period{Start: start, End: start.AddMonthsClamped(1).AddDays(-1)}
}

// YearPeriod covers a whole calendar year.
func YearPeriod(year int) Period {
	return Period{Start: NewDate(year, 1, 1), End: NewDate(year, 12, 31)}
}

// MonthToDate runs from the first of asOf's month through asOf.
func MonthToDate(asOf Date) Period {
	return Period{Start: asOf.MonthStart(), End: asOf}
}

// YearToDate runs from January 1st of asOf's year through asOf.
func YearToDate(asOf Date) Period {
	return Period{Start: NewDate(asOf.Year(), 1, 1), End: asOf}
}

func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return fmt.Errorf("%w: missing bound", ErrInvalidPeriod)
	}
	if p.End.Before(p.Start) {
		return fmt.Errorf("%w: end %s before start %s", ErrInvalidPeriod, p.End, p.Start)
	}
	return nil
}

// Contains reports whether d falls inside the period, bounds included.
func (p Period) Contains(d Date) bool {
	if d.IsZero() {
		return false
	}
	return !d.Before(p.Start) && !d.After(p.End)
}

func (p Period) String() string {
	return p.Start.String() + ".." + p.End.String()
}
