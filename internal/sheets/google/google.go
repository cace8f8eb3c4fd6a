package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"accountant/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config selects the spreadsheet and the sheets each table is written to.
// Sheet names are base names; the report year is prefixed automatically.
type Config struct {
	SpreadsheetID      string
	ServiceAccountJSON string
	ServiceAccountFile string
	RevenueSheet       string
	BreakdownSheet     string
	OverdueSheet       string
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.RevenueSheet) == "" {
		c.RevenueSheet = "Monthly Revenue"
	}
	if strings.TrimSpace(c.BreakdownSheet) == "" {
		c.BreakdownSheet = "Expense Breakdown"
	}
	if strings.TrimSpace(c.OverdueSheet) == "" {
		c.OverdueSheet = "Overdue"
	}
	return c
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	bases         map[sheets.TableKind]string
}

// Ensure interface conformance
var _ sheets.ReportWriter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg.ServiceAccountJSON, cfg.ServiceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, cfg), nil
}

// NewWithService wraps an existing service, e.g. one pointed at a test endpoint.
func NewWithService(svc *gsheet.Service, cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		bases: map[sheets.TableKind]string{
			sheets.TableMonthlyRevenue:   cfg.RevenueSheet,
			sheets.TableExpenseBreakdown: cfg.BreakdownSheet,
			sheets.TableOverduePayments:  cfg.OverdueSheet,
		},
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Falls back to GOOGLE_APPLICATION_CREDENTIALS when neither json nor file is set.
func newSheetsService(ctx context.Context, serviceAccountJSON, serviceAccountFile string) (*gsheet.Service, error) {
	serviceAccountJSON = strings.TrimSpace(serviceAccountJSON)
	serviceAccountFile = strings.TrimSpace(serviceAccountFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// SheetName returns the sheet a table of the given year is written to.
func (c *Client) SheetName(kind sheets.TableKind, year int) string {
	return yearPrefixedName(c.bases[kind], year)
}

// WriteReport implements sheets.ReportWriter. Each table replaces the whole
// content of its sheet; missing sheets are created first.
func (c *Client) WriteReport(ctx context.Context, r sheets.Report) (sheets.ExportResult, error) {
	if c.svc == nil {
		return sheets.ExportResult{}, errors.New("sheets service not initialized")
	}
	if r.AsOf.IsZero() {
		return sheets.ExportResult{}, errors.New("report has no as-of date")
	}

	tables := r.Tables()
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = c.SheetName(t.Kind, r.AsOf.Year())
	}
	if err := c.ensureSheets(ctx, names); err != nil {
		return sheets.ExportResult{}, err
	}

	clearReq := &gsheet.BatchClearValuesRequest{}
	update := &gsheet.BatchUpdateValuesRequest{ValueInputOption: "USER_ENTERED"}
	res := sheets.ExportResult{Sheets: names}
	for i, t := range tables {
		clearReq.Ranges = append(clearReq.Ranges, quoteSheet(names[i]))
		update.Data = append(update.Data, &gsheet.ValueRange{
			Range:  quoteSheet(names[i]) + "!A1",
			Values: t.Rows,
		})
		res.Rows += len(t.Rows)
	}

	if _, err := c.svc.Spreadsheets.Values.BatchClear(c.spreadsheetID, clearReq).Context(ctx).Do(); err != nil {
		return sheets.ExportResult{}, fmt.Errorf("clear report sheets: %w", err)
	}
	if _, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, update).Context(ctx).Do(); err != nil {
		return sheets.ExportResult{}, fmt.Errorf("write report sheets: %w", err)
	}

	slog.InfoContext(ctx, "Report exported to Google Sheets",
		"spreadsheet_id", c.spreadsheetID,
		"sheets", strings.Join(names, ","),
		"rows", res.Rows)
	return res, nil
}

// ensureSheets adds every sheet in names that the spreadsheet lacks.
func (c *Client) ensureSheets(ctx context.Context, names []string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet %s: %w", c.spreadsheetID, err)
	}
	existing := make(map[string]bool, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			existing[sh.Properties.Title] = true
		}
	}

	var reqs []*gsheet.Request
	for _, name := range names {
		if existing[name] {
			continue
		}
		existing[name] = true
		reqs = append(reqs, &gsheet.Request{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: name}},
		})
	}
	if len(reqs) == 0 {
		return nil
	}
	batch := &gsheet.BatchUpdateSpreadsheetRequest{Requests: reqs}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, batch).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheets: %w", err)
	}
	slog.InfoContext(ctx, "Created report sheets", "count", len(reqs))
	return nil
}

// quoteSheet quotes a sheet name for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
