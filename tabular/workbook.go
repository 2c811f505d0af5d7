package tabular

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ============================================================================
// WORKBOOK READER — .xlsx sheets via excelize
// ============================================================================
// Two passes over the sheet:
//   - formatted rows give the display text users see in the spreadsheet
//   - raw rows plus the cell type tell us which cells hold numbers, so date
//     serials reach the normalizer as numbers instead of "15-Mar-23" text
// ============================================================================

// ReadWorkbook reads one sheet of an xlsx workbook into a RawTable.
// An empty sheet name selects the first sheet.
func ReadWorkbook(r io.Reader, sheet string) (*RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found (available: %s)", sheet, strings.Join(f.GetSheetList(), ", "))
	}

	formatted, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read raw values of sheet %q: %w", sheet, err)
	}

	grid := make([][]Cell, max(len(formatted), len(raw)))
	for r := range grid {
		var shown, values []string
		if r < len(formatted) {
			shown = formatted[r]
		}
		if r < len(raw) {
			values = raw[r]
		}

		row := make([]Cell, max(len(shown), len(values)))
		for c := range row {
			text := at(shown, c)
			rawValue := at(values, c)
			if isNumberCell(f, sheet, c, r, rawValue) {
				v, _ := strconv.ParseFloat(rawValue, 64)
				row[c] = NumberCell(v, text)
				continue
			}
			row[c] = TextCell(text)
		}
		grid[r] = row
	}

	return FromCells(grid), nil
}

// isNumberCell reports whether the cell at (col, row), zero-based, stores a
// number. Cells without a type attribute are numbers in the xlsx format.
func isNumberCell(f *excelize.File, sheet string, col, row int, rawValue string) bool {
	rawValue = strings.TrimSpace(rawValue)
	if rawValue == "" {
		return false
	}
	if _, err := strconv.ParseFloat(rawValue, 64); err != nil {
		return false
	}

	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return false
	}
	typ, err := f.GetCellType(sheet, name)
	if err != nil {
		return false
	}

	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeDate, excelize.CellTypeFormula:
		return true
	default:
		return false
	}
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
