package core

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestDecodeCSV_Basic(t *testing.T) {
	input := "Team Member,SSN,Hours Per Week\nK Compton,123-45-6789,10\nA Zimmer,,\n"

	res, err := DecodeCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeCSV() error = %v", err)
	}

	if len(res.Errors) != 0 {
		t.Errorf("unexpected decode errors: %+v", res.Errors)
	}
	if len(res.Data) != 2 {
		t.Fatalf("got %d rows, want 2", len(res.Data))
	}
	first := res.Data[0]
	if first.TeamMember != "K Compton" || first.SSN != "123-45-6789" || first.HoursPerWeek != "10" {
		t.Errorf("row 0 = %+v", first)
	}
	if first.WageRate != "" || first.DepartmentCode != "" {
		t.Errorf("absent columns should decode empty, got %+v", first)
	}

	wantFields := []string{"Team Member", "SSN", "Hours Per Week"}
	if strings.Join(res.Meta.Fields, "|") != strings.Join(wantFields, "|") {
		t.Errorf("Meta.Fields = %v, want %v", res.Meta.Fields, wantFields)
	}
	if res.Meta.Delimiter != "," || res.Meta.Linebreak != "\n" || res.Meta.Aborted {
		t.Errorf("Meta = %+v", res.Meta)
	}
}

func TestDecodeCSV_BOMAndCRLF(t *testing.T) {
	input := "\xEF\xBB\xBFTeam Member,SSN\r\nJane Doe,111-22-3333\r\n"

	res, err := DecodeCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeCSV() error = %v", err)
	}

	if res.Meta.Fields[0] != "Team Member" {
		t.Errorf("first header = %q, BOM not stripped", res.Meta.Fields[0])
	}
	if res.Meta.Linebreak != "\r\n" {
		t.Errorf("Linebreak = %q, want CRLF", res.Meta.Linebreak)
	}
	if len(res.Data) != 1 || res.Data[0].SSN != "111-22-3333" {
		t.Errorf("Data = %+v", res.Data)
	}
}

func TestDecodeCSV_HeaderTrimmedAndExtraColumns(t *testing.T) {
	input := " Team Member , Location ,SSN\nJane Doe,North,\n"

	res, err := DecodeCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeCSV() error = %v", err)
	}

	row := res.Data[0]
	if row.TeamMember != "Jane Doe" {
		t.Errorf("TeamMember = %q", row.TeamMember)
	}
	if len(row.Extra) != 1 || row.Extra[0] != (Field{Name: "Location", Value: "North"}) {
		t.Errorf("Extra = %+v", row.Extra)
	}
}

func TestDecodeCSV_FieldMismatch(t *testing.T) {
	input := "Team Member,SSN,Hours Per Week\n" +
		"Jane Doe,111-22-3333\n" +
		"Bob Ray,222-33-4444,40,surplus\n" +
		"Al Ames,333-44-5555,20\n"

	res, err := DecodeCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeCSV() error = %v", err)
	}

	if len(res.Data) != 3 {
		t.Fatalf("got %d rows, want 3 (mismatched rows are kept)", len(res.Data))
	}
	if res.Data[0].HoursPerWeek != "" {
		t.Errorf("short row HoursPerWeek = %q, want empty", res.Data[0].HoursPerWeek)
	}
	if res.Data[1].HoursPerWeek != "40" {
		t.Errorf("long row HoursPerWeek = %q, want 40", res.Data[1].HoursPerWeek)
	}

	want := []DecodeError{
		{
			Type:    ErrTypeFieldMismatch,
			Code:    ErrCodeTooFewFields,
			Message: "Too few fields: expected 3 fields but parsed 2",
			Row:     0,
		},
		{
			Type:    ErrTypeFieldMismatch,
			Code:    ErrCodeTooManyFields,
			Message: "Too many fields: expected 3 fields but parsed 4",
			Row:     1,
		},
	}
	if len(res.Errors) != len(want) {
		t.Fatalf("got %d errors, want %d: %+v", len(res.Errors), len(want), res.Errors)
	}
	for i := range want {
		if res.Errors[i] != want[i] {
			t.Errorf("Errors[%d] = %+v, want %+v", i, res.Errors[i], want[i])
		}
	}
}

func TestDecodeCSV_QuoteErrorsAbort(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode string
		wantRows int
		wantRow  int
	}{
		{
			name:     "bare quote",
			input:    "Team Member,SSN\nJane Doe,1\nJa\"ne,2\nBob Ray,3\n",
			wantCode: ErrCodeInvalidQuotes,
			wantRows: 1,
			wantRow:  1,
		},
		{
			name:     "unterminated quote",
			input:    "Team Member,SSN\nJane Doe,1\n\"Bob Ray,3\n",
			wantCode: ErrCodeMissingQuotes,
			wantRows: 1,
			wantRow:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := DecodeCSV(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("DecodeCSV() error = %v", err)
			}
			if !res.Meta.Aborted {
				t.Error("Meta.Aborted = false, want true")
			}
			if len(res.Data) != tt.wantRows {
				t.Errorf("got %d rows, want %d", len(res.Data), tt.wantRows)
			}
			if len(res.Errors) != 1 {
				t.Fatalf("got %d errors, want 1", len(res.Errors))
			}
			got := res.Errors[0]
			if got.Type != ErrTypeQuotes || got.Code != tt.wantCode || got.Row != tt.wantRow {
				t.Errorf("error = %+v, want Quotes/%s at row %d", got, tt.wantCode, tt.wantRow)
			}
		})
	}
}

func TestDecodeCSV_Empty(t *testing.T) {
	res, err := DecodeCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("DecodeCSV() error = %v", err)
	}
	if len(res.Data) != 0 || len(res.Meta.Fields) != 0 {
		t.Errorf("empty input decoded to %+v", res)
	}
}

func TestDecodeCSV_HeaderOnlyAndBlankLines(t *testing.T) {
	res, err := DecodeCSV(strings.NewReader("Team Member,SSN\n\n\nJane Doe,1\n\n"))
	if err != nil {
		t.Fatalf("DecodeCSV() error = %v", err)
	}
	if len(res.Data) != 1 {
		t.Errorf("got %d rows, want 1 (blank lines skipped)", len(res.Data))
	}
	if len(res.Errors) != 0 {
		t.Errorf("unexpected errors: %+v", res.Errors)
	}
}

func TestDecodeXLSX(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Team Member", "SSN", "Hours Per Week"},
		{"K Compton", "123-45-6789", "10"},
		{"A Zimmer"},
		{"B Ray", "222-33-4444", "20", "surplus"},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}

	res, err := DecodeXLSX(&buf)
	if err != nil {
		t.Fatalf("DecodeXLSX() error = %v", err)
	}

	if len(res.Data) != 3 {
		t.Fatalf("got %d rows, want 3", len(res.Data))
	}
	if res.Data[0].TeamMember != "K Compton" || res.Data[0].SSN != "123-45-6789" {
		t.Errorf("row 0 = %+v", res.Data[0])
	}
	if res.Data[1].SSN != "" || res.Data[1].HoursPerWeek != "" {
		t.Errorf("short row = %+v, want empty cells", res.Data[1])
	}
	if len(res.Errors) != 1 || res.Errors[0].Code != ErrCodeTooManyFields || res.Errors[0].Row != 2 {
		t.Errorf("Errors = %+v, want one TooManyFields at row 2", res.Errors)
	}
}

func TestDecodeXLSX_Invalid(t *testing.T) {
	_, err := DecodeXLSX(strings.NewReader("Team Member,SSN\n"))
	if err == nil {
		t.Fatal("expected error for non-xlsx input")
	}
	if !strings.Contains(err.Error(), "invalid xlsx") {
		t.Errorf("error = %v, want invalid xlsx", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatCSV},
		{in: "csv", want: FormatCSV},
		{in: " XLSX ", want: FormatXLSX},
		{in: "pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("err = %v, want ErrUnsupportedFormat", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestFormatForFile(t *testing.T) {
	tests := map[string]Format{
		"payroll.csv":  FormatCSV,
		"payroll.CSV":  FormatCSV,
		"payroll.xlsx": FormatXLSX,
		"Payroll.XLSX": FormatXLSX,
		"payroll":      FormatCSV,
		"payroll.txt":  FormatCSV,
	}
	for name, want := range tests {
		if got := FormatForFile(name); got != want {
			t.Errorf("FormatForFile(%q) = %q, want %q", name, got, want)
		}
	}
}
