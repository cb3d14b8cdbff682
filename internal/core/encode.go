package core

// encode.go serializes the export row set for download.
//
// The header is the ordered union of every row's columns, so the trailer's
// sign-off columns are appended after the payroll columns. Cells a row does
// not carry are written empty.

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// DefaultExportName is the base file name of every download.
const DefaultExportName = "payroll"

// xlsxSheet is the name of the single sheet in an XLSX export.
const xlsxSheet = "payroll"

// Encoder writes export rows as CSV or XLSX.
type Encoder struct {
	// Delimiter separates CSV fields (default ',').
	Delimiter rune
	// BOM prepends a UTF-8 byte-order mark so spreadsheet tools pick the
	// right encoding.
	BOM bool
	// FileName is the download name without extension (default "payroll").
	FileName string
}

// NewEncoder returns the encoder used for payroll submissions:
// comma-delimited with a BOM, named "payroll".
func NewEncoder() *Encoder {
	return &Encoder{Delimiter: ',', BOM: true, FileName: DefaultExportName}
}

// Filename returns the download name for a format, e.g. "payroll.csv".
func (e *Encoder) Filename(format Format) string {
	name := e.FileName
	if name == "" {
		name = DefaultExportName
	}
	return name + "." + format.Extension()
}

// Encode writes rows in the given format.
func (e *Encoder) Encode(w io.Writer, format Format, rows []ExportRow) error {
	switch format {
	case FormatCSV:
		return e.EncodeCSV(w, rows)
	case FormatXLSX:
		return e.EncodeXLSX(w, rows)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// EncodeCSV writes the header and every row, each terminated by CRLF.
func (e *Encoder) EncodeCSV(w io.Writer, rows []ExportRow) error {
	if e.BOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("write bom: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	if e.Delimiter != 0 {
		cw.Comma = e.Delimiter
	}
	cw.UseCRLF = true

	header := ExportHeader(rows)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		if err := cw.Write(rowValues(header, r)); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// EncodeXLSX writes the rows to a single-sheet workbook.
func (e *Encoder) EncodeXLSX(w io.Writer, rows []ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := ExportHeader(rows)
	if err := setSheetRow(f, 1, header); err != nil {
		return err
	}
	for i, r := range rows {
		if err := setSheetRow(f, i+2, rowValues(header, r)); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// setSheetRow writes values starting at column A of the given 1-based row.
func setSheetRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", row, err)
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(xlsxSheet, cell, &cells); err != nil {
		return fmt.Errorf("write sheet row %d: %w", row, err)
	}
	return nil
}

// rowValues lays a row out along the header.
func rowValues(header []string, r ExportRow) []string {
	values := make([]string, len(header))
	for i, col := range header {
		values[i] = r.Value(col)
	}
	return values
}
