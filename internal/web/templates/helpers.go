// Package templates renders the HTML views of the payroll web UI.
//
// Components are written in .templ files; the *_templ.go files are
// generated with `templ generate` and checked in.
package templates

//go:generate go run github.com/a-h/templ/cmd/templ generate

import (
	"strconv"

	"github.com/JonMunkholm/payroll/internal/core"
)

// runSummary is the count line under a run's file name.
func runSummary(run *core.Run) string {
	s := strconv.Itoa(run.Kept) + " of " + strconv.Itoa(run.Decoded) + " rows kept"
	if run.OverridesApplied > 0 {
		s += ", " + strconv.Itoa(run.OverridesApplied) + " overrides applied"
	}
	return s
}

// decodeErrorLine numbers rows from 1 the way spreadsheet users count them.
func decodeErrorLine(e core.DecodeError) string {
	return "Row " + strconv.Itoa(e.Row+1) + ": " + e.Message
}

// rowHeader is the union of the rows' columns. Trailer columns are
// export-only and never shown.
func rowHeader(rows []core.PayrollRow) []string {
	export := make([]core.ExportRow, len(rows))
	for i, r := range rows {
		export[i] = core.DataRow{PayrollRow: r}
	}
	return core.ExportHeader(export)
}
