package memory

import (
	"context"
	"fmt"
	"sync"

	"accountant/internal/sheets"
)

// Writer keeps exported reports in memory. Used when no spreadsheet is
// configured and in tests.
type Writer struct {
	mu      sync.Mutex
	reports []sheets.Report
	err     error
}

func New() *Writer {
	return &Writer{}
}

// FailWith makes every subsequent write return err.
func (w *Writer) FailWith(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.err = err
}

// WriteReport implements sheets.ReportWriter
func (w *Writer) WriteReport(_ context.Context, r sheets.Report) (sheets.ExportResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return sheets.ExportResult{}, w.err
	}
	w.reports = append(w.reports, r)

	res := sheets.ExportResult{}
	for _, t := range r.Tables() {
		res.Sheets = append(res.Sheets, fmt.Sprintf("mem:%s", t.Kind))
		res.Rows += len(t.Rows)
	}
	return res, nil
}

// Count returns the number of reports written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.reports)
}

// Last returns the most recent report.
func (w *Writer) Last() (sheets.Report, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.reports) == 0 {
		return sheets.Report{}, false
	}
	return w.reports[len(w.reports)-1], true
}
