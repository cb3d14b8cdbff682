package core

// transform.go holds the row-level steps of the payroll pipeline.
//
// Every function here is total: malformed input produces degenerate output
// (an empty SSN, an empty sort key) rather than an error.

import (
	"regexp"
	"slices"
	"strings"
)

// ssnRegex matches a full social security number in DDD-DD-DDDD form.
var ssnRegex = regexp.MustCompile(`^(\d{3})-(\d{2})-(\d{4})$`)

// FilterRows drops rows whose SSN and Hours Per Week are both empty,
// which is how blank footer lines of the source export decode.
// Surviving rows keep their relative order.
func FilterRows(rows []InputRow) []InputRow {
	out := make([]InputRow, 0, len(rows))
	for _, r := range rows {
		if r.SSN != "" || r.HoursPerWeek != "" {
			out = append(out, r)
		}
	}
	return out
}

// CensorSSN masks all but the last four digits of an SSN.
// Empty and malformed values both yield "" so nothing ambiguous leaks.
func CensorSSN(ssn string) string {
	if ssn == "" {
		return ""
	}
	m := ssnRegex.FindStringSubmatch(ssn)
	if m == nil {
		return ""
	}
	return "XXX-XX-" + m[3]
}

// TransformName reverses the whitespace-separated tokens of a name and
// joins them with ", ", so "Jane Doe" becomes "Doe, Jane".
func TransformName(name string) string {
	tokens := strings.Fields(name)
	slices.Reverse(tokens)
	return strings.Join(tokens, ", ")
}

// NormalizeRow censors the SSN and reformats the team member name.
func NormalizeRow(r InputRow) InputRow {
	r.SSN = CensorSSN(r.SSN)
	r.TeamMember = TransformName(r.TeamMember)
	if len(r.Extra) > 0 {
		r.Extra = slices.Clone(r.Extra)
	}
	return r
}

// SortByTeamMember orders rows by Team Member using ordinal comparison.
// The sort is stable: rows with equal names keep their input order.
func SortByTeamMember(rows []InputRow) {
	slices.SortStableFunc(rows, func(a, b InputRow) int {
		return strings.Compare(a.TeamMember, b.TeamMember)
	})
}
