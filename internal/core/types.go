package core

import (
	"time"
)

// Column names of the payroll export, as they appear in the CSV header.
const (
	ColHoursPerWeek   = "Hours Per Week"
	ColTeamMember     = "Team Member"
	ColDepartmentCode = "Department Code"
	ColVacation       = "Vacation Scheduled Time Off"
	ColWageRate       = "Wage Rate"
	ColSSN            = "SSN"
	ColCompletion     = "Completion"
	ColCollection     = "Collection"

	ColApprovedBy = "Approved by"
	ColApprovedOn = "Approved on"
)

// InputColumns lists the fixed header fields of an InputRow in export order.
var InputColumns = []string{
	ColHoursPerWeek,
	ColTeamMember,
	ColDepartmentCode,
	ColVacation,
	ColWageRate,
	ColSSN,
}

// Field is a single named cell outside the fixed InputRow columns.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// InputRow is one record decoded from the payroll CSV.
// Missing cells decode as empty strings.
type InputRow struct {
	HoursPerWeek   string
	TeamMember     string
	DepartmentCode string
	Vacation       string
	WageRate       string
	SSN            string

	// Extra holds columns outside the fixed set, in header order.
	Extra []Field
}

// Get returns the value of a fixed column or an extra column by header name.
func (r InputRow) Get(column string) (string, bool) {
	switch column {
	case ColHoursPerWeek:
		return r.HoursPerWeek, true
	case ColTeamMember:
		return r.TeamMember, true
	case ColDepartmentCode:
		return r.DepartmentCode, true
	case ColVacation:
		return r.Vacation, true
	case ColWageRate:
		return r.WageRate, true
	case ColSSN:
		return r.SSN, true
	}
	for _, f := range r.Extra {
		if f.Name == column {
			return f.Value, true
		}
	}
	return "", false
}

// set assigns a column value. Unknown columns are appended to Extra.
func (r *InputRow) set(column, value string) {
	switch column {
	case ColHoursPerWeek:
		r.HoursPerWeek = value
	case ColTeamMember:
		r.TeamMember = value
	case ColDepartmentCode:
		r.DepartmentCode = value
	case ColVacation:
		r.Vacation = value
	case ColWageRate:
		r.WageRate = value
	case ColSSN:
		r.SSN = value
	default:
		for i := range r.Extra {
			if r.Extra[i].Name == column {
				r.Extra[i].Value = value
				return
			}
		}
		r.Extra = append(r.Extra, Field{Name: column, Value: value})
	}
}

// PayrollRow is a cleaned row ready for payroll sign-off.
//
// SSN is either empty or "XXX-XX-DDDD", and TeamMember is "Last, First".
type PayrollRow struct {
	InputRow
	Completion string
	Collection string
}

// Columns returns the header names of the row in export order, each once.
// Input columns named Completion or Collection are replaced by the row's
// own sign-off fields.
func (r PayrollRow) Columns() []string {
	cols := make([]string, 0, len(InputColumns)+len(r.Extra)+2)
	cols = append(cols, InputColumns...)
	for _, f := range r.Extra {
		if f.Name == ColCompletion || f.Name == ColCollection {
			continue
		}
		cols = append(cols, f.Name)
	}
	return append(cols, ColCompletion, ColCollection)
}

// Value returns the cell for a column, or "" if the row has no such column.
func (r PayrollRow) Value(column string) string {
	switch column {
	case ColCompletion:
		return r.Completion
	case ColCollection:
		return r.Collection
	}
	v, _ := r.Get(column)
	return v
}

// Map returns the row keyed by column name.
func (r PayrollRow) Map() map[string]string {
	cols := r.Columns()
	m := make(map[string]string, len(cols))
	for _, c := range cols {
		m[c] = r.Value(c)
	}
	return m
}

// DecodeError is a non-fatal diagnostic produced while decoding a file.
type DecodeError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Row     int    `json:"row"`
}

func (e DecodeError) Error() string {
	return e.Message
}

// Decode error types and codes.
const (
	ErrTypeFieldMismatch = "FieldMismatch"
	ErrTypeQuotes        = "Quotes"

	ErrCodeTooFewFields  = "TooFewFields"
	ErrCodeTooManyFields = "TooManyFields"
	ErrCodeInvalidQuotes = "InvalidQuotes"
	ErrCodeMissingQuotes = "MissingQuotes"
)

// Meta describes how a file was decoded.
type Meta struct {
	Delimiter string   `json:"delimiter"`
	Linebreak string   `json:"linebreak"`
	Aborted   bool     `json:"aborted"`
	Truncated bool     `json:"truncated"`
	Fields    []string `json:"fields"`
}

// DecodeResult is the output contract of a Decoder.
type DecodeResult struct {
	Data   []InputRow
	Errors []DecodeError
	Meta   Meta
}

// Run is the outcome of one pipeline pass over an accepted file.
type Run struct {
	ID               string
	FileName         string
	Decoded          int
	Kept             int
	OverridesApplied int
	Errors           []DecodeError
	Rows             []PayrollRow
	CreatedAt        time.Time
	Duration         time.Duration
	// Bytes is the raw size of the uploaded file.
	Bytes int64
}

// ExportRows returns the rows to hand to an Encoder, trailer included.
func (r *Run) ExportRows() []ExportRow {
	return Augment(r.Rows)
}
