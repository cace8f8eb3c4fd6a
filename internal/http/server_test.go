package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accountant/internal/adapters"
	"accountant/internal/core"
	"accountant/internal/middleware/ratelimit"
	"accountant/internal/ports"
	"accountant/internal/services"
	"accountant/internal/storage/memory"
)

var today = core.NewDate(2026, 3, 20)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testSnapshot() core.Snapshot {
	return core.Snapshot{
		Clients: []core.Client{
			{ID: "cl-1", Name: "Acme", IsActive: true},
			{ID: "cl-2", Name: "Zenith", IsActive: true},
		},
		Invoices: []core.Invoice{
			{
				ID: "inv-1", InvoiceNumber: "INV-1", ClientID: "cl-1", Status: core.InvoiceSent,
				IssueDate: core.NewDate(2026, 1, 5), DueDate: core.NewDate(2026, 2, 5),
				Subtotal: dec("1000"), TaxRate: dec("0.05"), TaxAmount: dec("50"), Total: dec("1050"),
				Currency: "AED",
			},
			{
				ID: "inv-2", InvoiceNumber: "INV-2", ClientID: "cl-2", Status: core.InvoiceSent,
				IssueDate: core.NewDate(2026, 3, 1), DueDate: core.NewDate(2026, 3, 31),
				Subtotal: dec("200"), TaxRate: dec("0.05"), TaxAmount: dec("10"), Total: dec("210"),
				Currency: "AED",
			},
		},
		Payments: []core.Payment{
			{ID: "pay-1", InvoiceID: "inv-1", Amount: dec("300"), PaymentDate: core.NewDate(2026, 3, 2), PaymentMethod: core.PaymentCash},
			{ID: "pay-2", InvoiceID: "inv-2", Amount: dec("250"), PaymentDate: core.NewDate(2026, 3, 10), PaymentMethod: core.PaymentCash},
		},
		ExpenseCategories: []core.ExpenseCategory{{ID: "cat-1", Name: "Rent", NameAr: "إيجار"}},
		Expenses: []core.Expense{
			{ID: "exp-1", CategoryID: "cat-1", Amount: dec("400"), ExpenseDate: core.NewDate(2026, 3, 3)},
		},
		Subscriptions: []core.Subscription{
			{
				ID: "sub-1", Name: "Hosting", Amount: dec("99"), BillingCycle: core.Monthly,
				NextBillingDate: core.NewDate(2026, 3, 25), Status: core.SubscriptionActive,
			},
		},
	}
}

// fixedDay pins the business day of a dashboard service.
type fixedDay struct {
	*services.DashboardService
}

func (fixedDay) Today() core.Date { return today }

// unavailable fails every overview fetch.
type unavailable struct {
	fixedDay
}

func (unavailable) Overview(context.Context, core.Period, core.Date) (core.FinancialOverview, error) {
	return core.FinancialOverview{}, ports.Unavailable("overview", errors.New("db down"))
}

// cancelled reports every overview fetch as a data failure caused by the
// client going away.
type cancelled struct {
	fixedDay
}

func (cancelled) Overview(context.Context, core.Period, core.Date) (core.FinancialOverview, error) {
	return core.FinancialOverview{}, ports.Unavailable("overview", context.Canceled)
}

func newService(integrity bool) *services.DashboardService {
	records := adapters.NewRecords(memory.New(testSnapshot()))
	var checker ports.IntegrityChecker
	if integrity {
		checker = records
	}
	return services.NewDashboardService(records, checker, nil, services.DefaultDashboardServiceConfig(), nil)
}

func newTestServer(t *testing.T, api DashboardAPI, opts Options) *Server {
	t.Helper()
	s := NewServer(api, opts)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

type apiResponse struct {
	Data    json.RawMessage   `json:"data"`
	Context map[string]string `json:"context"`
	Error   string            `json:"error"`
	Param   string            `json:"param"`
}

func get(t *testing.T, s *Server, target string, header ...string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)

	var body apiResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	}
	return rec, body
}

func TestServer_Dashboard(t *testing.T) {
	s := newTestServer(t, fixedDay{newService(true)}, Options{})

	rec, body := get(t, s, "/api/dashboard?locale=en")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "en", body.Context["locale"])
	assert.Equal(t, "ltr", body.Context["direction"])

	var d struct {
		AsOf        string `json:"as_of"`
		MonthToDate struct {
			TotalRevenue  string `json:"total_revenue"`
			OverdueAmount string `json:"overdue_amount"`
		} `json:"month_to_date"`
		MonthlyRevenue []struct {
			Label string `json:"label"`
		} `json:"monthly_revenue"`
		ExpenseBreakdown []struct {
			DisplayName string `json:"display_name"`
		} `json:"expense_breakdown"`
		OverduePayments []struct {
			InvoiceID   string `json:"invoice_id"`
			DaysOverdue int    `json:"days_overdue"`
		} `json:"overdue_payments"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &d))
	assert.Equal(t, "2026-03-20", d.AsOf)
	assert.Equal(t, "550", d.MonthToDate.TotalRevenue)
	assert.Equal(t, "750", d.MonthToDate.OverdueAmount)
	require.Len(t, d.MonthlyRevenue, 12)
	assert.Equal(t, "March 2026", d.MonthlyRevenue[11].Label)
	require.Len(t, d.ExpenseBreakdown, 1)
	assert.Equal(t, "Rent", d.ExpenseBreakdown[0].DisplayName)
	require.Len(t, d.OverduePayments, 1)
	assert.Equal(t, 43, d.OverduePayments[0].DaysOverdue)
}

func TestServer_ArabicByDefault(t *testing.T) {
	s := newTestServer(t, fixedDay{newService(true)}, Options{})

	rec, body := get(t, s, "/api/expense-breakdown?period=ytd")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ar", body.Context["locale"])
	assert.Equal(t, "rtl", body.Context["direction"])
	assert.Equal(t, "ar", rec.Header().Get("Content-Language"))

	var rows []struct {
		DisplayName string `json:"display_name"`
		Percentage  string `json:"percentage"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "إيجار", rows[0].DisplayName)
	assert.True(t, dec(rows[0].Percentage).Equal(dec("100")))
}

func TestServer_Views(t *testing.T) {
	s := newTestServer(t, fixedDay{newService(true)}, Options{})

	tests := []struct {
		target string
		check  func(t *testing.T, data json.RawMessage)
	}{
		{"/api/overview?from=2026-01-01&to=2026-03-20", func(t *testing.T, data json.RawMessage) {
			var o struct {
				TotalRevenue  string `json:"total_revenue"`
				TotalExpenses string `json:"total_expenses"`
				TotalClients  int    `json:"total_clients"`
			}
			require.NoError(t, json.Unmarshal(data, &o))
			assert.Equal(t, "550", o.TotalRevenue)
			assert.Equal(t, "400", o.TotalExpenses)
			assert.Equal(t, 2, o.TotalClients)
		}},
		{"/api/monthly-revenue?months=2&as_of=2026-03-31", func(t *testing.T, data json.RawMessage) {
			var rows []struct {
				Month int    `json:"month"`
				Label string `json:"label"`
			}
			require.NoError(t, json.Unmarshal(data, &rows))
			require.Len(t, rows, 2)
			assert.Equal(t, 2, rows[0].Month)
			assert.Equal(t, "مارس 2026", rows[1].Label)
		}},
		{"/api/subscriptions/upcoming?days=10", func(t *testing.T, data json.RawMessage) {
			var rows []struct {
				ID               string `json:"id"`
				DaysUntilBilling int    `json:"days_until_billing"`
			}
			require.NoError(t, json.Unmarshal(data, &rows))
			require.Len(t, rows, 1)
			assert.Equal(t, 5, rows[0].DaysUntilBilling)
		}},
		{"/api/subscriptions/upcoming?days=2", func(t *testing.T, data json.RawMessage) {
			assert.JSONEq(t, `[]`, string(data))
		}},
		{"/api/invoices/overdue?as_of=2026-02-01", func(t *testing.T, data json.RawMessage) {
			assert.JSONEq(t, `[]`, string(data), "nothing is overdue before the first due date")
		}},
		{"/api/clients/summary", func(t *testing.T, data json.RawMessage) {
			var rows []struct {
				ClientName string `json:"client_name"`
				Flagged    bool   `json:"flagged"`
			}
			require.NoError(t, json.Unmarshal(data, &rows))
			require.Len(t, rows, 2)
			assert.Equal(t, "Acme", rows[0].ClientName)
			assert.False(t, rows[0].Flagged)
			assert.True(t, rows[1].Flagged, "Zenith paid more than invoiced")
		}},
		{"/api/integrity", func(t *testing.T, data json.RawMessage) {
			var out struct {
				Count  int `json:"count"`
				Issues []struct {
					Kind string `json:"kind"`
					ID   string `json:"id"`
				} `json:"issues"`
			}
			require.NoError(t, json.Unmarshal(data, &out))
			require.NotZero(t, out.Count)
			assert.Equal(t, len(out.Issues), out.Count)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec, body := get(t, s, tt.target)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			tt.check(t, body.Data)
		})
	}
}

func TestServer_BadRequests(t *testing.T) {
	s := newTestServer(t, fixedDay{newService(true)}, Options{})

	tests := []struct {
		target string
		param  string
	}{
		{"/api/dashboard?as_of=yesterday", "as_of"},
		{"/api/overview?from=2026-03-01&to=2026-02-01", "to"},
		{"/api/monthly-revenue?months=-3", "months"},
		{"/api/monthly-revenue?months=0", "months"},
		{"/api/subscriptions/upcoming?days=9999", "days"},
		{"/api/expense-breakdown?year=2026&month=0", "month"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec, body := get(t, s, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, CodeBadRequest, body.Error)
			assert.Equal(t, tt.param, body.Param)
		})
	}
}

func TestServer_DataUnavailable(t *testing.T) {
	s := newTestServer(t, unavailable{fixedDay{newService(true)}}, Options{})

	rec, _ := get(t, s, "/api/overview")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"data_unavailable"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "db down")

	metrics := httptest.NewRecorder()
	s.Handler.ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, metrics.Body.String(), "dashboard_data_unavailable_total 1")
	assert.Contains(t, metrics.Body.String(), "http_server_errors_total 1")
}

func TestServer_CancelledRequestIsNotDataUnavailable(t *testing.T) {
	s := newTestServer(t, cancelled{fixedDay{newService(true)}}, Options{})

	rec, _ := get(t, s, "/api/overview")
	assert.NotEqual(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, rec.Body.String())

	metrics := httptest.NewRecorder()
	s.Handler.ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, metrics.Body.String(), "dashboard_data_unavailable_total 0")
}

func TestServer_ZeroHorizonConfigured(t *testing.T) {
	records := adapters.NewRecords(memory.New(testSnapshot()))
	config := services.DefaultDashboardServiceConfig()
	config.HorizonDays = 0
	svc := services.NewDashboardService(records, records, nil, config, nil)
	s := newTestServer(t, fixedDay{svc}, Options{})

	// Hosting bills on 2026-03-25, five days after today.
	rec, body := get(t, s, "/api/subscriptions/upcoming")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `[]`, string(body.Data), "a zero-day horizon only covers today")

	rec, body = get(t, s, "/api/subscriptions/upcoming?as_of=2026-03-25")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rows []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "sub-1", rows[0].ID)
}

func TestServer_IntegrityUnsupported(t *testing.T) {
	s := newTestServer(t, fixedDay{newService(false)}, Options{})

	rec, body := get(t, s, "/api/integrity")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Equal(t, CodeNotImplemented, body.Error)
}

func TestServer_HealthAndReady(t *testing.T) {
	s := newTestServer(t, fixedDay{newService(true)}, Options{})

	rec, _ := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec, _ = get(t, s, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"backend":"not_checked"`)

	down := newTestServer(t, fixedDay{newService(true)}, Options{
		ReadyCheck: func(context.Context) error { return errors.New("sqlite closed") },
	})
	rec, _ = get(t, down, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "sqlite closed")
}

func TestServer_SecurityHeadersAndRequestID(t *testing.T) {
	s := newTestServer(t, fixedDay{newService(true)}, Options{})

	rec, _ := get(t, s, "/api/overview", "X-Request-ID", "abc-123")
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestServer_NotFound(t *testing.T) {
	s := newTestServer(t, fixedDay{newService(true)}, Options{})

	rec, body := get(t, s, "/api/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, body.Error)
}

func TestServer_RateLimit(t *testing.T) {
	s := newTestServer(t, fixedDay{newService(true)}, Options{
		RateLimit: ratelimit.Config{RequestsPerMinute: 2},
	})

	for i := 0; i < 2; i++ {
		rec, _ := get(t, s, "/api/clients/summary")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, body := get(t, s, "/api/clients/summary")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, CodeRateLimited, body.Error)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))

	rec, _ = get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code, "probes are not rate limited")
}
