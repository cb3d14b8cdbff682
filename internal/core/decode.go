package core

// decode.go turns an uploaded file into header-keyed InputRows.
//
// The first record is always the header. Decoding problems that affect a
// single record are reported as DecodeErrors next to the data and never
// fail the call; only I/O errors from the underlying reader do.

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format identifies the container format of a payroll file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for formats other than csv and xlsx.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ParseFormat maps a user-supplied format name to a Format.
// An empty name selects CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FormatForFile picks the decoder for a file name by extension.
// Anything that is not .xlsx is treated as CSV.
func FormatForFile(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// ContentType returns the MIME type used when serving the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// peekSize bounds how much of the stream is inspected for the line break.
const peekSize = 64 * 1024

// Decode decodes a file of the given format.
func Decode(format Format, r io.Reader) (DecodeResult, error) {
	switch format {
	case FormatCSV:
		return DecodeCSV(r)
	case FormatXLSX:
		return DecodeXLSX(r)
	default:
		return DecodeResult{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// DecodeCSV decodes a comma-separated payroll export with a header row.
//
// A leading BOM is skipped and invalid UTF-8 is replaced before parsing.
// Records with the wrong number of fields are kept (missing cells empty,
// surplus cells dropped) and reported as FieldMismatch errors. A quoting
// error stops decoding; rows decoded so far are returned with Meta.Aborted.
func DecodeCSV(r io.Reader) (DecodeResult, error) {
	src := WrapForDecode(r)
	br := bufio.NewReaderSize(src, peekSize)

	res := DecodeResult{
		Meta: Meta{Delimiter: ",", Linebreak: detectLinebreak(br)},
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return res, nil
	}
	if err != nil {
		if derr, ok := quoteError(err, 0); ok {
			res.Errors = append(res.Errors, derr)
			res.Meta.Aborted = true
			return res, nil
		}
		return res, fmt.Errorf("read header: %w", err)
	}
	header = cleanHeader(header)
	res.Meta.Fields = header

	for rowIdx := 0; ; rowIdx++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if derr, ok := quoteError(err, rowIdx); ok {
				res.Errors = append(res.Errors, derr)
				res.Meta.Aborted = true
				break
			}
			return res, fmt.Errorf("read row %d: %w", rowIdx, err)
		}

		if derr, ok := fieldCountError(len(header), len(rec), rowIdx, true); ok {
			res.Errors = append(res.Errors, derr)
		}
		res.Data = append(res.Data, buildRow(header, rec))
	}

	return res, nil
}

// DecodeXLSX decodes the first sheet of a workbook, first row as header.
// Trailing empty cells are not reported since spreadsheets omit them.
func DecodeXLSX(r io.Reader) (DecodeResult, error) {
	res := DecodeResult{}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return res, fmt.Errorf("invalid xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return res, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return res, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return res, nil
	}

	header := cleanHeader(rows[0])
	res.Meta.Fields = header

	for i, rec := range rows[1:] {
		if derr, ok := fieldCountError(len(header), len(rec), i, false); ok {
			res.Errors = append(res.Errors, derr)
		}
		res.Data = append(res.Data, buildRow(header, rec))
	}

	return res, nil
}

// buildRow keys a record by header name. Missing cells become "".
func buildRow(header, rec []string) InputRow {
	var row InputRow
	for i, name := range header {
		if name == "" {
			continue
		}
		value := ""
		if i < len(rec) {
			value = rec[i]
		}
		row.set(name, value)
	}
	return row
}

// cleanHeader trims whitespace around header names.
func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// fieldCountError reports a record whose width differs from the header.
func fieldCountError(want, got, row int, reportShort bool) (DecodeError, bool) {
	switch {
	case got < want && reportShort:
		return DecodeError{
			Type:    ErrTypeFieldMismatch,
			Code:    ErrCodeTooFewFields,
			Message: fmt.Sprintf("Too few fields: expected %d fields but parsed %d", want, got),
			Row:     row,
		}, true
	case got > want:
		return DecodeError{
			Type:    ErrTypeFieldMismatch,
			Code:    ErrCodeTooManyFields,
			Message: fmt.Sprintf("Too many fields: expected %d fields but parsed %d", want, got),
			Row:     row,
		}, true
	}
	return DecodeError{}, false
}

// quoteError converts a csv.ParseError into a DecodeError.
func quoteError(err error, row int) (DecodeError, bool) {
	var perr *csv.ParseError
	if !errors.As(err, &perr) {
		return DecodeError{}, false
	}
	code := ErrCodeMissingQuotes
	if errors.Is(perr.Err, csv.ErrBareQuote) {
		code = ErrCodeInvalidQuotes
	}
	return DecodeError{
		Type:    ErrTypeQuotes,
		Code:    code,
		Message: perr.Error(),
		Row:     row,
	}, true
}

// detectLinebreak inspects the buffered head of the stream for CRLF.
func detectLinebreak(br *bufio.Reader) string {
	head, _ := br.Peek(peekSize)
	i := bytes.IndexByte(head, '\n')
	if i > 0 && head[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
