package sheets

import (
	"context"
)

// Ports for outbound adapters.
type (
	// ReportWriter publishes a report to an external spreadsheet.
	ReportWriter interface {
		WriteReport(ctx context.Context, r Report) (ExportResult, error)
	}
)

// ExportResult describes what a write touched.
type ExportResult struct {
	Sheets []string `json:"sheets"`
	Rows   int      `json:"rows"`
}
