package flatfile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"artifact-version-service/internal/core/domain"
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// table is a header row plus the non-empty data rows beneath it. Header names
// are lower-cased and trimmed; every row is padded to the header width.
type table struct {
	headers []string
	rows    [][]string
}

func (t table) column(name string) int {
	for i, h := range t.headers {
		if h == name {
			return i
		}
	}
	return -1
}

func (t table) require(names ...string) (map[string]int, error) {
	cols := make(map[string]int, len(names))
	for _, name := range names {
		idx := t.column(name)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrMissingColumn, name)
		}
		cols[name] = idx
	}
	return cols, nil
}

func parseTable(fileName string, payload []byte) (table, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv":
		return parseCSV(payload)
	case ".xlsx":
		return parseExcel(payload)
	default:
		return table{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, ext)
	}
}

func parseCSV(payload []byte) (table, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return table{}, fmt.Errorf("failed to read csv: %w", err)
	}
	return normalizeTable(records)
}

func parseExcel(payload []byte) (table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return table{}, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return table{}, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return table{}, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	return normalizeTable(rows)
}

// normalizeTable takes the first non-empty row as the header.
func normalizeTable(records [][]string) (table, error) {
	var t table
	for i, row := range records {
		if isEmptyRow(row) {
			continue
		}
		if t.headers == nil {
			t.headers = make([]string, len(row))
			for i, h := range row {
				t.headers[i] = strings.ToLower(strings.TrimSpace(h))
			}
			continue
		}
		padded, err := padRow(row, len(t.headers))
		if err != nil {
			return table{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		t.rows = append(t.rows, padded)
	}
	if t.headers == nil {
		return table{}, errors.New("no rows found in file")
	}
	return t, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// padRow fits row to the header width. Trailing blank cells are dropped;
// anything else past the last header is rejected.
func padRow(row []string, width int) ([]string, error) {
	out := make([]string, width)
	for i, cell := range row {
		cell = strings.TrimSpace(cell)
		if i >= width {
			if cell != "" {
				return nil, fmt.Errorf("%w: column %d", domain.ErrUnexpectedCell, i+1)
			}
			continue
		}
		out[i] = cell
	}
	return out, nil
}
