package worker

import (
	"context"
	"fmt"
	"log/slog"

	"accountant/internal/amqp"
	"accountant/internal/core"
	"accountant/internal/locale"
	"accountant/internal/sheets"
)

// ReportSource provides the views an export is built from.
type ReportSource interface {
	Today() core.Date
	MonthlyRevenue(ctx context.Context, monthCount int, asOf core.Date) ([]core.MonthlyRevenue, error)
	ExpenseBreakdown(ctx context.Context, period core.Period) ([]core.ExpenseBreakdown, error)
	OverduePayments(ctx context.Context, asOf core.Date) ([]core.OverduePayment, error)
	InvalidateCache(ctx context.Context)
}

// exportedKinds are the record kinds the exported views read.
var exportedKinds = []core.EntityKind{
	core.KindClients,
	core.KindInvoices,
	core.KindPayments,
	core.KindExpenses,
	core.KindExpenseCategories,
}

// ExportWorker rebuilds the spreadsheet report when the records behind it change.
type ExportWorker struct {
	source ReportSource
	writer sheets.ReportWriter
	locale locale.Locale
}

func NewExportWorker(source ReportSource, writer sheets.ReportWriter, l locale.Locale) *ExportWorker {
	if _, ok := locale.Parse(string(l)); !ok {
		l = locale.Default
	}
	return &ExportWorker{source: source, writer: writer, locale: l}
}

// HandleRecordsChanged processes a records.changed message from AMQP.
// Messages that touch none of the exported kinds are acknowledged without work.
func (w *ExportWorker) HandleRecordsChanged(ctx context.Context, msg *amqp.RecordsChangedMessage) error {
	slog.InfoContext(ctx, "Processing records changed message",
		"id", msg.ID,
		"source", msg.Source,
		"kinds", fmt.Sprint(msg.Kinds))

	relevant := false
	for _, k := range exportedKinds {
		if msg.Touches(k) {
			relevant = true
			break
		}
	}
	if !relevant {
		slog.DebugContext(ctx, "Records change does not affect the report", "id", msg.ID)
		return nil
	}

	w.source.InvalidateCache(ctx)
	if _, err := w.Export(ctx, w.source.Today()); err != nil {
		return fmt.Errorf("export report: %w", err)
	}
	return nil
}

// Export builds the report as of asOf and writes it.
func (w *ExportWorker) Export(ctx context.Context, asOf core.Date) (sheets.ExportResult, error) {
	report, err := w.BuildReport(ctx, asOf)
	if err != nil {
		return sheets.ExportResult{}, err
	}
	res, err := w.writer.WriteReport(ctx, report)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to write report",
			"as_of", asOf.String(),
			"error", err)
		return sheets.ExportResult{}, fmt.Errorf("write report: %w", err)
	}

	slog.InfoContext(ctx, "Successfully exported report",
		"as_of", asOf.String(),
		"sheets", len(res.Sheets),
		"rows", res.Rows)
	return res, nil
}

// BuildReport fetches the exported views: the trailing monthly revenue,
// the year-to-date expense breakdown and the overdue list.
func (w *ExportWorker) BuildReport(ctx context.Context, asOf core.Date) (sheets.Report, error) {
	monthly, err := w.source.MonthlyRevenue(ctx, 0, asOf)
	if err != nil {
		return sheets.Report{}, fmt.Errorf("monthly revenue: %w", err)
	}
	breakdown, err := w.source.ExpenseBreakdown(ctx, core.YearToDate(asOf))
	if err != nil {
		return sheets.Report{}, fmt.Errorf("expense breakdown: %w", err)
	}
	overdue, err := w.source.OverduePayments(ctx, asOf)
	if err != nil {
		return sheets.Report{}, fmt.Errorf("overdue payments: %w", err)
	}
	return sheets.Report{
		AsOf:             asOf,
		Locale:           w.locale,
		MonthlyRevenue:   monthly,
		ExpenseBreakdown: breakdown,
		OverduePayments:  overdue,
	}, nil
}

// StartupExport writes a fresh report when the worker starts, covering
// changes made while it was down.
func (w *ExportWorker) StartupExport(ctx context.Context) error {
	res, err := w.Export(ctx, w.source.Today())
	if err != nil {
		return fmt.Errorf("startup export: %w", err)
	}
	slog.InfoContext(ctx, "Startup export completed", "rows", res.Rows)
	return nil
}
