package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"songprep/internal/core/services"
)

// renderSummaryTable renders the per-period tallies of a finished run.
func renderSummaryTable(report *services.RunReport) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"period", "processed", "skipped", "no match", "write error"})

	for _, p := range report.Periods {
		tw.AppendRow(table.Row{
			p.Key,
			strconv.Itoa(p.Processed),
			strconv.Itoa(p.Skipped),
			strconv.Itoa(p.NoMatch),
			p.WriteError,
		})
	}

	configs := make([]table.ColumnConfig, 0, 5)
	for i := 2; i <= 4; i++ {
		configs = append(configs, table.ColumnConfig{
			Number:      i,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
