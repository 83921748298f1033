// Package csvio implements the CSV round-trip used by ski spec import and
// export: lenient parsing of comma- or semicolon-delimited uploads, strict
// RFC 4180 generation with every field quoted, and header validation.
package csvio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	domainerrors "github.com/quiverapp/quiver-server/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Record is one parsed data row: cell values trimmed and keyed by header
// name, plus the 1-based line number the row started on (the header row
// is line 1, so the first data row is normally line 2).
type Record struct {
	Line   int
	Values map[string]string
}

// Parse reads delimited text into records. The first row is the header.
// The delimiter is sniffed from the header row: semicolon when it has
// more unquoted semicolons than commas, comma otherwise. A UTF-8 BOM is
// stripped. Empty input and header-only input yield an empty record list.
// Malformed quoting fails with a validation error.
func Parse(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading csv input: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	if len(bytes.TrimSpace(data)) == 0 {
		return []Record{}, nil
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	// Row widths are validated per row during import, not here.
	reader.FieldsPerRecord = -1

	headerRow, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []Record{}, nil
		}
		return nil, domainerrors.Validation("Failed to parse CSV file").WithCause(err)
	}

	headers := make([]string, len(headerRow))
	for i, h := range headerRow {
		headers[i] = strings.TrimSpace(h)
	}

	var records []Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domainerrors.Validation("Failed to parse CSV file").WithCause(err)
		}

		line, _ := reader.FieldPos(0)
		values := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				values[h] = strings.TrimSpace(row[i])
			} else {
				values[h] = ""
			}
		}
		records = append(records, Record{Line: line, Values: values})
	}

	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// sniffDelimiter inspects the header line, counting candidate delimiters
// outside of double quotes.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	var commas, semicolons int
	inQuotes := false
	for _, b := range line {
		switch b {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				commas++
			}
		case ';':
			if !inQuotes {
				semicolons++
			}
		}
	}

	if semicolons > commas {
		return ';'
	}
	return ','
}

// Generate writes a BOM, the header row, and one row per record to w,
// comma-delimited with CRLF line endings. Every field is quoted,
// including empty ones, for maximum spreadsheet compatibility. Columns
// are emitted in the given order regardless of map iteration order;
// missing keys become empty fields.
func Generate(w io.Writer, columns []string, rows []map[string]string) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}

	if err := writeRow(w, columns); err != nil {
		return err
	}

	cells := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			cells[i] = row[col]
		}
		if err := writeRow(w, cells); err != nil {
			return err
		}
	}
	return nil
}

// writeRow emits one CSV row with every field quoted. encoding/csv only
// quotes when a field needs it, which is why export does not use it.
func writeRow(w io.Writer, cells []string) error {
	var buf bytes.Buffer
	for i, cell := range cells {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteString("\r\n")

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing csv row: %w", err)
	}
	return nil
}

// ValidateHeaders checks that every required header is present in actual,
// by case-sensitive exact match. Extra headers never cause failure. On
// failure the error names every missing header.
func ValidateHeaders(actual, required []string) error {
	present := make(map[string]bool, len(actual))
	for _, h := range actual {
		present[h] = true
	}

	var missing []string
	for _, h := range required {
		if !present[h] {
			missing = append(missing, h)
		}
	}

	if len(missing) > 0 {
		return domainerrors.Validationf("Missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}
