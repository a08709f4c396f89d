// Package xlsxreport renders a run report as an Excel workbook, one sheet for
// the per-period summary and one for the collected record errors.
package xlsxreport

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"songprep/internal/core/services"
)

const (
	summarySheet = "Summary"
	errorsSheet  = "Errors"
)

// Write saves the report workbook at path, overwriting any prior file.
func Write(path string, report *services.RunReport) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(errorsSheet); err != nil {
		return fmt.Errorf("create errors sheet: %w", err)
	}

	if err := writeSummary(f, report); err != nil {
		return err
	}
	if err := writeErrors(f, report); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, report *services.RunReport) error {
	rows := [][]any{
		{"run_id", report.ID},
		{"status", string(report.Status)},
		{"started_at", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"finished_at", report.FinishedAt.Format("2006-01-02 15:04:05 MST")},
		{},
		{"period", "processed", "skipped", "no_match", "write_error"},
	}
	for _, p := range report.Periods {
		rows = append(rows, []any{p.Key, p.Processed, p.Skipped, p.NoMatch, p.WriteError})
	}
	if report.AggregateError != "" {
		rows = append(rows, []any{}, []any{"aggregate_error", report.AggregateError})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("summary cell: %w", err)
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	return nil
}

func writeErrors(f *excelize.File, report *services.RunReport) error {
	rows := [][]any{
		{"period", "title", "artist", "kind", "detail"},
	}
	for _, e := range report.Errors {
		rows = append(rows, []any{e.PeriodKey, e.Title, e.Artist, e.Kind(), e.Err.Error()})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("errors cell: %w", err)
		}
		if err := f.SetSheetRow(errorsSheet, cell, &row); err != nil {
			return fmt.Errorf("write errors row: %w", err)
		}
	}
	return nil
}
