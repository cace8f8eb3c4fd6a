// Package locale carries the presentation context the views are rendered
// in: language, text direction, theme and currency formatting. It is passed
// explicitly instead of living in process-wide state.
package locale

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	Arabic  Locale = "ar"
	English Locale = "en"

	// Default is used when nothing else matches.
	Default = Arabic

	// Currency is the operating currency.
	Currency = "AED"

	// Timezone is the business timezone.
	Timezone = "Asia/Dubai"

	// PageSize is the default list page size.
	PageSize = 20
)

const (
	LTR Direction = "ltr"
	RTL Direction = "rtl"

	Light Theme = "light"
	Dark  Theme = "dark"
)

type (
	Locale    string
	Direction string
	Theme     string
)

var (
	supported = []language.Tag{language.Arabic, language.English}
	matcher   = language.NewMatcher(supported)
)

// Parse returns the locale named by s, ignoring case and region.
func Parse(s string) (Locale, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	switch Locale(s) {
	case Arabic, English:
		return Locale(s), true
	}
	return "", false
}

// Negotiate picks the best supported locale for an Accept-Language header.
func Negotiate(acceptLanguage string) Locale {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	if idx == 1 {
		return English
	}
	return Arabic
}

func (l Locale) Tag() language.Tag {
	if l == English {
		return language.English
	}
	return language.Arabic
}

func (l Locale) IsRTL() bool {
	return l == Arabic
}

func (l Locale) Direction() Direction {
	if l.IsRTL() {
		return RTL
	}
	return LTR
}

// ParseTheme returns the theme named by s, defaulting to Light.
func ParseTheme(s string) Theme {
	if Theme(strings.ToLower(strings.TrimSpace(s))) == Dark {
		return Dark
	}
	return Light
}

// Context is the presentation context of one request.
type Context struct {
	Locale    Locale    `json:"locale"`
	Direction Direction `json:"direction"`
	Theme     Theme     `json:"theme"`
	Currency  string    `json:"currency"`
	Timezone  string    `json:"timezone"`
}

func NewContext(l Locale, theme Theme) Context {
	if _, ok := Parse(string(l)); !ok {
		l = Default
	}
	if theme != Dark {
		theme = Light
	}
	return Context{
		Locale:    l,
		Direction: l.Direction(),
		Theme:     theme,
		Currency:  Currency,
		Timezone:  Timezone,
	}
}

// FormatNumber renders d with two fraction digits and locale grouping.
func (l Locale) FormatNumber(d decimal.Decimal) string {
	p := message.NewPrinter(l.Tag())
	return p.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

// FormatMoney renders an amount with its currency, AED when empty.
func (l Locale) FormatMoney(d decimal.Decimal, currency string) string {
	if currency == "" {
		currency = Currency
	}
	n := l.FormatNumber(d)
	if l == Arabic {
		return n + " " + currencySymbolAr(currency)
	}
	return currency + " " + n
}

func currencySymbolAr(currency string) string {
	if currency == Currency {
		return "د.إ"
	}
	return currency
}

var monthNames = map[Locale][12]string{
	English: {
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
	Arabic: {
		"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
		"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
	},
}

// MonthName returns the localized name of m.
func (l Locale) MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	names, ok := monthNames[l]
	if !ok {
		names = monthNames[Default]
	}
	return names[m-1]
}

// MonthLabel renders "March 2026" or its Arabic equivalent.
func (l Locale) MonthLabel(year int, m time.Month) string {
	return l.MonthName(m) + " " + strconv.Itoa(year)
}

// EnumLabel humanises an enum value such as "bank_transfer" for English
// output. Arabic output falls back to the labels table.
func (l Locale) EnumLabel(v string) string {
	if l == Arabic {
		if ar, ok := enumLabelsAr[v]; ok {
			return ar
		}
	}
	return cases.Title(language.English).String(strings.ReplaceAll(v, "_", " "))
}

var enumLabelsAr = map[string]string{
	"draft":         "مسودة",
	"sent":          "مرسلة",
	"paid":          "مدفوعة",
	"overdue":       "متأخرة",
	"cancelled":     "ملغاة",
	"active":        "نشط",
	"paused":        "متوقف",
	"monthly":       "شهري",
	"quarterly":     "ربع سنوي",
	"yearly":        "سنوي",
	"bank_transfer": "تحويل بنكي",
	"cash":          "نقداً",
	"cheque":        "شيك",
	"card":          "بطاقة",
	"online":        "إلكتروني",
}

// Pick returns the Arabic variant for Arabic when it is set, else en.
func (l Locale) Pick(en, ar string) string {
	if l == Arabic && ar != "" {
		return ar
	}
	return en
}
