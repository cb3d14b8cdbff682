package core

// ExportRow is one row handed to an Encoder.
// It is either a DataRow or a TrailerRow.
type ExportRow interface {
	// Columns returns the header names this row carries, in order.
	Columns() []string
	// Value returns the cell for a column, or "" if absent.
	Value(column string) string

	exportRow()
}

// DataRow wraps a PayrollRow for export.
type DataRow struct {
	PayrollRow
}

func (DataRow) exportRow() {}

// TrailerRow is the sign-off line appended after all data rows.
type TrailerRow struct {
	ApprovedBy string
	ApprovedOn string
}

// NewTrailerRow returns the sign-off row with single-space placeholders.
func NewTrailerRow() TrailerRow {
	return TrailerRow{ApprovedBy: " ", ApprovedOn: " "}
}

func (TrailerRow) exportRow() {}

// Columns implements ExportRow.
func (TrailerRow) Columns() []string {
	return []string{ColApprovedBy, ColApprovedOn}
}

// Value implements ExportRow.
func (t TrailerRow) Value(column string) string {
	switch column {
	case ColApprovedBy:
		return t.ApprovedBy
	case ColApprovedOn:
		return t.ApprovedOn
	}
	return ""
}

// Augment returns the export row set: every payroll row followed by
// exactly one TrailerRow.
func Augment(rows []PayrollRow) []ExportRow {
	out := make([]ExportRow, 0, len(rows)+1)
	for _, r := range rows {
		out = append(out, DataRow{PayrollRow: r})
	}
	return append(out, NewTrailerRow())
}

// ExportHeader returns the ordered union of the columns of all rows.
// Columns are listed in the order they are first seen.
func ExportHeader(rows []ExportRow) []string {
	seen := make(map[string]bool)
	var header []string
	for _, r := range rows {
		for _, c := range r.Columns() {
			if !seen[c] {
				seen[c] = true
				header = append(header, c)
			}
		}
	}
	return header
}
