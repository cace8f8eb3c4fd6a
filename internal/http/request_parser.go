// Package http provides HTTP server and handler implementations.
//
// This file implements parsing and validation of dashboard query parameters.

package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"accountant/internal/core"
	"accountant/internal/locale"
)

// Query parameter names.
const (
	paramAsOf   = "as_of"
	paramFrom   = "from"
	paramTo     = "to"
	paramYear   = "year"
	paramMonth  = "month"
	paramPeriod = "period"
	paramMonths = "months"
	paramDays   = "days"
	paramLocale = "locale"
	paramTheme  = "theme"
)

// maxMonths and maxHorizonDays cap the size of a single response.
const (
	maxMonths      = 120
	maxHorizonDays = 366
)

// ParamError reports an invalid query parameter.
type ParamError struct {
	Param  string
	Value  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Param, e.Value, e.Reason)
}

// ParseAsOf reads as_of (YYYY-MM-DD), defaulting to today.
func ParseAsOf(query url.Values, today core.Date) (core.Date, error) {
	v := strings.TrimSpace(query.Get(paramAsOf))
	if v == "" {
		return today, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, &ParamError{Param: paramAsOf, Value: v, Reason: "expected YYYY-MM-DD"}
	}
	return d, nil
}

// ParsePeriod reads the aggregation period. In order of precedence:
// from/to, year+month, year alone, period=mtd|ytd. Without any of them the
// period is month-to-date of asOf.
func ParsePeriod(query url.Values, asOf core.Date) (core.Period, error) {
	from := strings.TrimSpace(query.Get(paramFrom))
	to := strings.TrimSpace(query.Get(paramTo))
	if from != "" || to != "" {
		start, err := parseDateParam(paramFrom, from)
		if err != nil {
			return core.Period{}, err
		}
		end, err := parseDateParam(paramTo, to)
		if err != nil {
			return core.Period{}, err
		}
		p, err := core.NewPeriod(start, end)
		if err != nil {
			return core.Period{}, &ParamError{Param: paramTo, Value: to, Reason: "must not be before from"}
		}
		return p, nil
	}

	if y := strings.TrimSpace(query.Get(paramYear)); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil || year < 1900 || year > 9999 {
			return core.Period{}, &ParamError{Param: paramYear, Value: y, Reason: "expected a four-digit year"}
		}
		m := strings.TrimSpace(query.Get(paramMonth))
		if m == "" {
			return core.YearPeriod(year), nil
		}
		month, err := strconv.Atoi(m)
		if err != nil || month < 1 || month > 12 {
			return core.Period{}, &ParamError{Param: paramMonth, Value: m, Reason: "expected 1-12"}
		}
		return core.MonthPeriod(year, time.Month(month)), nil
	}

	switch v := strings.ToLower(strings.TrimSpace(query.Get(paramPeriod))); v {
	case "", "mtd":
		return core.MonthToDate(asOf), nil
	case "ytd":
		return core.YearToDate(asOf), nil
	default:
		return core.Period{}, &ParamError{Param: paramPeriod, Value: v, Reason: "expected mtd or ytd"}
	}
}

func parseDateParam(name, v string) (core.Date, error) {
	if v == "" {
		return core.Date{}, &ParamError{Param: name, Value: v, Reason: "required with " + otherBound(name)}
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, &ParamError{Param: name, Value: v, Reason: "expected YYYY-MM-DD"}
	}
	return d, nil
}

func otherBound(name string) string {
	if name == paramFrom {
		return paramTo
	}
	return paramFrom
}

// ParseCount reads an integer parameter bounded by [min, max]. A missing
// parameter yields def unchecked.
func ParseCount(query url.Values, name string, def, min, max int) (int, error) {
	v := strings.TrimSpace(query.Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ParamError{Param: name, Value: v, Reason: "expected an integer"}
	}
	if n < min {
		return 0, &ParamError{Param: name, Value: v, Reason: fmt.Sprintf("must be at least %d", min)}
	}
	if n > max {
		return 0, &ParamError{Param: name, Value: v, Reason: fmt.Sprintf("must be at most %d", max)}
	}
	return n, nil
}

// ParsePresentation builds the presentation context of r: locale from the
// locale parameter or Accept-Language, theme from the theme parameter.
func ParsePresentation(r *http.Request) locale.Context {
	query := r.URL.Query()
	l, ok := locale.Parse(query.Get(paramLocale))
	if !ok {
		l = locale.Negotiate(r.Header.Get("Accept-Language"))
	}
	return locale.NewContext(l, locale.ParseTheme(query.Get(paramTheme)))
}
