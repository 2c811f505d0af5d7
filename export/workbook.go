// Package export writes aggregate tables to spreadsheet workbooks.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/rekap/engine"
)

// ============================================================================
// WORKBOOK EXPORT — []*engine.TableData → .xlsx
// ============================================================================
// One sheet per table:
//   row 1   title
//   row 3   column headers
//   row 4+  data rows
//   last    summary row (when the table has one)
// ============================================================================

// ErrNoTables is returned when there is nothing to write.
var ErrNoTables = errors.New("export: no tables")

const (
	maxSheetName = 31
	headerRow    = 3
	minColWidth  = 8
	maxColWidth  = 50
)

// WriteWorkbook writes tables to w as an .xlsx workbook.
func WriteWorkbook(w io.Writer, tables []*engine.TableData) error {
	tables = nonNil(tables)
	if len(tables) == 0 {
		return ErrNoTables
	}

	f := excelize.NewFile()
	defer f.Close()

	s, err := newStyles(f)
	if err != nil {
		return err
	}

	used := make(map[string]bool, len(tables))
	for i, table := range tables {
		name := sheetName(table.Title, i, used)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("set sheet name: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("new sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, table, s); err != nil {
			return fmt.Errorf("sheet %q: %w", name, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ============================================================================
// SHEET
// ============================================================================

type styles struct {
	title, header, cell, number, summary int
}

func newStyles(f *excelize.File) (*styles, error) {
	var s styles
	var err error

	// Title: bold, 14pt.
	if s.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	}); err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	// Header: bold white on charcoal, centered.
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	}); err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if s.cell, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	}); err != nil {
		return nil, fmt.Errorf("create cell style: %w", err)
	}

	if s.number, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10},
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    thinBorders(),
	}); err != nil {
		return nil, fmt.Errorf("create number style: %w", err)
	}

	if s.summary, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#EEEEEE"}, Pattern: 1},
		Border: thinBorders(),
	}); err != nil {
		return nil, fmt.Errorf("create summary style: %w", err)
	}
	return &s, nil
}

func writeSheet(f *excelize.File, sheet string, table *engine.TableData, s *styles) error {
	if err := f.SetCellValue(sheet, "A1", table.Title); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", s.title); err != nil {
		return err
	}
	if len(table.Columns) == 0 {
		return nil
	}

	header := make([]any, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col.Label
	}
	if err := setRow(f, sheet, headerRow, header, s.header, s.header, nil); err != nil {
		return err
	}

	numeric := make([]bool, len(table.Columns))
	for i, col := range table.Columns {
		numeric[i] = col.Type != "text"
	}

	rowNum := headerRow + 1
	for _, row := range table.Rows {
		values := make([]any, len(table.Columns))
		for i := range table.Columns {
			if i < len(row) {
				values[i] = row[i]
			}
		}
		if err := setRow(f, sheet, rowNum, values, s.cell, s.number, numeric); err != nil {
			return err
		}
		rowNum++
	}

	if table.Summary != nil {
		values := make([]any, len(table.Columns))
		values[0] = table.Summary.Label
		for i, col := range table.Columns {
			if v, ok := table.Summary.Values[col.Key]; ok && i > 0 {
				values[i] = v
			}
		}
		if err := setRow(f, sheet, rowNum, values, s.summary, s.summary, nil); err != nil {
			return err
		}
	}

	return setWidths(f, sheet, table)
}

// setRow writes values starting at column A of row and styles each cell,
// using numberStyle where numeric marks the column.
func setRow(f *excelize.File, sheet string, row int, values []any, style, numberStyle int, numeric []bool) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		return err
	}
	for col := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		st := style
		if col < len(numeric) && numeric[col] {
			st = numberStyle
		}
		if err := f.SetCellStyle(sheet, cell, cell, st); err != nil {
			return err
		}
	}
	return nil
}

func setWidths(f *excelize.File, sheet string, table *engine.TableData) error {
	for i, col := range table.Columns {
		width := utf8.RuneCountInString(col.Label)
		for _, row := range table.Rows {
			if i < len(row) {
				width = max(width, utf8.RuneCountInString(row[i]))
			}
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		w := float64(min(max(width+2, minColWidth), maxColWidth))
		if err := f.SetColWidth(sheet, name, name, w); err != nil {
			return fmt.Errorf("set col width %s: %w", name, err)
		}
	}
	return nil
}

// ============================================================================
// HELPERS
// ============================================================================

// sheetName derives a unique, valid sheet name from a title.
func sheetName(title string, index int, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = fmt.Sprintf("Sheet %d", index+1)
	}
	name = truncate(name, maxSheetName)

	base := name
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}

func nonNil(tables []*engine.TableData) []*engine.TableData {
	out := make([]*engine.TableData, 0, len(tables))
	for _, t := range tables {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

func thinBorders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "#CCCCCC", Style: 1},
		{Type: "top", Color: "#CCCCCC", Style: 1},
		{Type: "right", Color: "#CCCCCC", Style: 1},
		{Type: "bottom", Color: "#CCCCCC", Style: 1},
	}
}
