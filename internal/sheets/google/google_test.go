package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"accountant/internal/core"
	"accountant/internal/locale"
	"accountant/internal/sheets"
)

// fakeSheets records the Sheets API calls it receives.
type fakeSheets struct {
	mu       sync.Mutex
	existing []string
	added    []string
	cleared  []string
	written  []*gsheet.ValueRange
	calls    []string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := r.URL.Path
	f.calls = append(f.calls, r.Method+" "+path)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet:
		ss := gsheet.Spreadsheet{SpreadsheetId: "sid"}
		for _, name := range f.existing {
			ss.Sheets = append(ss.Sheets, &gsheet.Sheet{Properties: &gsheet.SheetProperties{Title: name}})
		}
		_ = json.NewEncoder(w).Encode(ss)
	case strings.HasSuffix(path, "/values:batchClear"):
		var req gsheet.BatchClearValuesRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.cleared = append(f.cleared, req.Ranges...)
		_, _ = w.Write([]byte(`{}`))
	case strings.HasSuffix(path, "/values:batchUpdate"):
		var req gsheet.BatchUpdateValuesRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.written = append(f.written, req.Data...)
		_, _ = w.Write([]byte(`{}`))
	case strings.HasSuffix(path, ":batchUpdate"):
		var req gsheet.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			if rq.AddSheet != nil {
				f.added = append(f.added, rq.AddSheet.Properties.Title)
			}
		}
		_, _ = w.Write([]byte(`{}`))
	default:
		http.Error(w, `{"error":{"code":404}}`, http.StatusNotFound)
	}
}

func newFakeClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return NewWithService(svc, Config{SpreadsheetID: "sid"})
}

func testReport() sheets.Report {
	d := decimal.RequireFromString
	return sheets.Report{
		AsOf:   core.NewDate(2026, 3, 20),
		Locale: locale.English,
		MonthlyRevenue: []core.MonthlyRevenue{
			{Year: 2026, Month: 3, Invoiced: d("210"), Revenue: d("550"), Expenses: d("400"), Profit: d("150"), InvoiceCount: 1},
		},
		ExpenseBreakdown: []core.ExpenseBreakdown{
			{CategoryID: "cat-1", CategoryName: "Rent", TotalAmount: d("400"), Percentage: d("100"), TransactionCount: 1},
		},
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := New(context.Background(), Config{SpreadsheetID: "sid"})
	if err == nil {
		t.Fatal("expected error without credentials")
	}
	if !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "sid", ServiceAccountFile: "/nonexistent/sa.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Overdue", 2026, "2026 Overdue"},
		{"2025 Overdue", 2026, "2025 Overdue"},
		{"  Monthly Revenue ", 2024, "2024 Monthly Revenue"},
		{"", 2026, ""},
		{"12345", 2026, "2026 12345"},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
				t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
			}
		})
	}
}

func TestQuoteSheet(t *testing.T) {
	if got := quoteSheet("Bob's Sheet"); got != "'Bob''s Sheet'" {
		t.Errorf("quoteSheet = %q", got)
	}
}

func TestWriteReport_NotInitialized(t *testing.T) {
	c := &Client{spreadsheetID: "test"}

	if _, err := c.WriteReport(context.Background(), testReport()); err == nil {
		t.Fatal("expected error with nil service")
	}
}

func TestWriteReport(t *testing.T) {
	fake := &fakeSheets{existing: []string{"2026 Monthly Revenue"}}
	c := newFakeClient(t, fake)

	res, err := c.WriteReport(context.Background(), testReport())
	if err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	wantSheets := []string{"2026 Monthly Revenue", "2026 Expense Breakdown", "2026 Overdue"}
	if strings.Join(res.Sheets, "|") != strings.Join(wantSheets, "|") {
		t.Errorf("sheets = %v, want %v", res.Sheets, wantSheets)
	}
	// 2 + 2 + header only
	if res.Rows != 5 {
		t.Errorf("rows = %d, want 5", res.Rows)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if strings.Join(fake.added, "|") != "2026 Expense Breakdown|2026 Overdue" {
		t.Errorf("added sheets = %v", fake.added)
	}
	if len(fake.cleared) != 3 || fake.cleared[0] != "'2026 Monthly Revenue'" {
		t.Errorf("cleared = %v", fake.cleared)
	}
	if len(fake.written) != 3 {
		t.Fatalf("expected 3 value ranges, got %d", len(fake.written))
	}
	revenue := fake.written[0]
	if revenue.Range != "'2026 Monthly Revenue'!A1" {
		t.Errorf("range = %q", revenue.Range)
	}
	if len(revenue.Values) != 2 || revenue.Values[1][0] != "March 2026" || revenue.Values[1][2] != "550.00" {
		t.Errorf("unexpected revenue values %v", revenue.Values)
	}
}

func TestWriteReport_AllSheetsExist(t *testing.T) {
	fake := &fakeSheets{existing: []string{"2026 Monthly Revenue", "2026 Expense Breakdown", "2026 Overdue"}}
	c := newFakeClient(t, fake)

	if _, err := c.WriteReport(context.Background(), testReport()); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	for _, call := range fake.calls {
		if strings.HasSuffix(call, "sid:batchUpdate") {
			t.Errorf("no sheet should be added, got call %s", call)
		}
	}
}

func TestWriteReport_NoAsOf(t *testing.T) {
	c := newFakeClient(t, &fakeSheets{})

	if _, err := c.WriteReport(context.Background(), sheets.Report{}); err == nil {
		t.Fatal("expected error for report without as-of date")
	}
}
