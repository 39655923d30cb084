// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sheet reads tabular sources: .xlsx workbooks through excelize, and
// .csv files as a single-sheet workbook. Each sheet yields normalized column
// names and rows of column to typed raw value.
package sheet

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/openkpis/sheetsync/pkg/types"
)

// Row maps a normalized column name to its raw cell value: string, int,
// float64 or bool. Empty cells are not present.
type Row map[string]any

// Table is the content of one sheet.
type Table struct {
	Name    string
	Columns []string

	// Rows holds the non-empty data rows. Index[i] is the zero-based data
	// row position of Rows[i] in the sheet, counting dropped blank rows.
	Rows  []Row
	Index []int
}

// Empty reports whether the sheet has no usable rows.
func (t *Table) Empty() bool { return len(t.Rows) == 0 }

// Workbook is an opened tabular source.
type Workbook struct {
	path     string
	xlsx     *excelize.File
	date1904 bool

	// csvRows is set for .csv sources, which have a single sheet.
	csvSheet string
	csvRows  [][]string
}

// Open opens the source at path. Failures wrap types.ErrSourceUnavailable.
func Open(path string) (*Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrSourceUnavailable, path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return openCSV(path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening workbook %s: %v", types.ErrSourceUnavailable, path, err)
	}
	wb := &Workbook{path: path, xlsx: f}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		wb.date1904 = *props.Date1904
	}
	return wb, nil
}

func openCSV(path string) (*Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrSourceUnavailable, path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parsing CSV %s: %v", types.ErrSourceUnavailable, path, err)
	}
	// Excel writes "CSV UTF-8" with a byte-order mark.
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &Workbook{path: path, csvSheet: name, csvRows: rows}, nil
}

// Close releases the underlying workbook.
func (w *Workbook) Close() error {
	if w.xlsx != nil {
		return w.xlsx.Close()
	}
	return nil
}

// Path returns the source path.
func (w *Workbook) Path() string { return w.path }

// Sheets returns sheet names in workbook order.
func (w *Workbook) Sheets() []string {
	if w.xlsx == nil {
		return []string{w.csvSheet}
	}
	return w.xlsx.GetSheetList()
}

// ReadSheet reads the named sheet. The first non-blank row is the header.
// A sheet without data rows returns an empty Table, not an error.
func (w *Workbook) ReadSheet(name string) (*Table, error) {
	if w.xlsx == nil {
		if name != w.csvSheet {
			return nil, fmt.Errorf("sheet %s not found in %s", name, w.path)
		}
		return buildTable(name, w.csvRows, csvTyper), nil
	}

	rows, err := w.xlsx.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", name, err)
	}
	return buildTable(name, rows, w.cellTyper(name)), nil
}

// typer converts the raw text of a cell at (col, row), both 0-based
// positions in the GetRows matrix, into a typed value.
type typer func(col, row int, text string) any

func (w *Workbook) cellTyper(sheet string) typer {
	dateStyles := make(map[int]bool)
	return func(col, row int, text string) any {
		axis, err := excelize.CoordinatesToCellName(col+1, row+1)
		if err != nil {
			return text
		}
		ct, err := w.xlsx.GetCellType(sheet, axis)
		if err != nil {
			return text
		}
		switch ct {
		case excelize.CellTypeBool:
			return parseBool(text)
		case excelize.CellTypeNumber, excelize.CellTypeUnset:
			v := parseNumber(text)
			if _, ok := v.(string); ok || !w.dateStyled(sheet, axis, dateStyles) {
				return v
			}
			return w.serialDate(text)
		}
		return text
	}
}

// dateStyled reports whether the cell's number format renders a date or time.
// Results are cached per style index.
func (w *Workbook) dateStyled(sheet, axis string, cache map[int]bool) bool {
	idx, err := w.xlsx.GetCellStyle(sheet, axis)
	if err != nil || idx == 0 {
		return false
	}
	if isDate, ok := cache[idx]; ok {
		return isDate
	}
	isDate := false
	if style, err := w.xlsx.GetStyle(idx); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			isDate = dateFormatCode(*style.CustomNumFmt)
		} else {
			isDate = dateNumFmt[style.NumFmt]
		}
	}
	cache[idx] = isDate
	return isDate
}

// serialDate converts an Excel serial date to an ISO 8601 string: a date
// alone when there is no time of day, otherwise date and time.
func (w *Workbook) serialDate(text string) any {
	serial, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return parseNumber(text)
	}
	t, err := excelize.ExcelDateToTime(serial, w.date1904)
	if err != nil {
		return parseNumber(text)
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format("2006-01-02T15:04:05")
}

// dateNumFmt holds the built-in number format ids that display dates or times.
var dateNumFmt = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

var (
	quotedText   = regexp.MustCompile(`"[^"]*"`)
	bracketed    = regexp.MustCompile(`\[[^\]]*\]`)
	escapedChars = regexp.MustCompile(`\\.`)
)

// dateFormatCode reports whether a custom format code contains date or time
// tokens once literals, colors and conditions are removed.
func dateFormatCode(code string) bool {
	code = quotedText.ReplaceAllString(code, "")
	code = bracketed.ReplaceAllString(code, "")
	code = escapedChars.ReplaceAllString(code, "")
	return strings.ContainsAny(strings.ToLower(code), "ymdhs")
}

// csvTyper infers types from text, the way pandas would for a CSV column.
func csvTyper(_, _ int, text string) any {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true":
		return true
	case "false":
		return false
	}
	return parseNumber(text)
}

func buildTable(name string, rows [][]string, typeOf typer) *Table {
	t := &Table{Name: name}

	header := -1
	for i, r := range rows {
		if !blank(r) {
			header = i
			break
		}
	}
	if header < 0 {
		return t
	}

	t.Columns = make([]string, len(rows[header]))
	for i, h := range rows[header] {
		t.Columns[i] = ColumnName(h)
		if t.Columns[i] == "" {
			t.Columns[i] = fmt.Sprintf("column_%d", i+1)
		}
	}

	for i := header + 1; i < len(rows); i++ {
		r := rows[i]
		if blank(r) {
			continue
		}
		row := make(Row, len(t.Columns))
		for j, cell := range r {
			if j >= len(t.Columns) || strings.TrimSpace(cell) == "" {
				continue
			}
			row[t.Columns[j]] = typeOf(j, i, cell)
		}
		t.Rows = append(t.Rows, row)
		t.Index = append(t.Index, i-header-1)
	}
	return t
}

func blank(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

var spaceRun = regexp.MustCompile(`\s+`)

// ColumnName normalizes a header cell: trimmed, lower-cased, whitespace runs
// replaced by a single underscore. "KPI Name" becomes "kpi_name".
func ColumnName(h string) string {
	return spaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), "_")
}

func parseBool(text string) any {
	switch strings.ToUpper(strings.TrimSpace(text)) {
	case "TRUE", "1":
		return true
	case "FALSE", "0":
		return false
	}
	return text
}

func parseNumber(text string) any {
	s := strings.TrimSpace(text)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return text
}
