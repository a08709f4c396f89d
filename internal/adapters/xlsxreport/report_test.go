package xlsxreport

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"songprep/internal/core/domain"
	"songprep/internal/core/services"
)

func TestWrite(t *testing.T) {
	report := &services.RunReport{
		ID:         "run-1",
		StartedAt:  time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 8, 1, 10, 5, 0, 0, time.UTC),
		Status:     services.StatusPartial,
		Periods: []services.PeriodSummary{
			{Key: "1960", Processed: 50, Skipped: 1, NoMatch: 4},
			{Key: "1970", Processed: 49, WriteError: "disk full"},
		},
		Errors: []domain.RecordError{
			{PeriodKey: "1960", Title: "A", Artist: "X", Err: domain.MissingSentimentFieldError{Field: "compound"}},
		},
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := Write(path, report); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Summary" || sheets[1] != "Errors" {
		t.Fatalf("sheets: got %v", sheets)
	}

	summary, err := f.GetRows("Summary")
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if summary[0][0] != "run_id" || summary[0][1] != "run-1" {
		t.Errorf("run id row: got %v", summary[0])
	}
	if summary[1][1] != "partial" {
		t.Errorf("status row: got %v", summary[1])
	}
	// header row plus one row per period
	if got := summary[6]; got[0] != "1960" || got[1] != "50" {
		t.Errorf("first period row: got %v", got)
	}
	if got := summary[7]; got[0] != "1970" || got[4] != "disk full" {
		t.Errorf("second period row: got %v", got)
	}

	errRows, err := f.GetRows("Errors")
	if err != nil {
		t.Fatalf("read errors: %v", err)
	}
	if len(errRows) != 2 {
		t.Fatalf("error rows: got %d, want 2", len(errRows))
	}
	if errRows[1][3] != "missing_sentiment_field" {
		t.Errorf("error kind: got %q", errRows[1][3])
	}
}

func TestWriteEmptyReport(t *testing.T) {
	report := &services.RunReport{
		ID:     "run-2",
		Status: services.StatusFailed,
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := Write(path, report); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	errRows, err := f.GetRows("Errors")
	if err != nil {
		t.Fatalf("read errors: %v", err)
	}
	if len(errRows) != 1 {
		t.Fatalf("error rows: got %d, want header only", len(errRows))
	}
}
