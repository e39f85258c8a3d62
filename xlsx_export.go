package main

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const comparisonSheet = "Comparison"

// GenerateComparisonXLSX renders the comparison as a single-sheet workbook
func GenerateComparisonXLSX(cmp Comparison) ([]byte, error) {
	f := excelize.NewFile()

	if _, err := f.NewSheet(comparisonSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	// Indexes shift once the default sheet is gone
	if index, err := f.GetSheetIndex(comparisonSheet); err == nil {
		f.SetActiveSheet(index)
	}

	styles, err := newComparisonStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	w := &sheetWriter{f: f, sheet: comparisonSheet, cols: len(cmp.Headers) + 1, row: 1}

	// Title and customer block
	w.put(1, cmp.Title, styles.title)
	w.mergeRow()
	w.next()
	w.put(1, cmp.Subtitle, 0)
	w.next()
	w.put(1, L(cmp.Lang, "cname"), styles.label)
	w.put(2, cmp.CustomerName, 0)
	w.next()
	w.put(1, L(cmp.Lang, "cage"), styles.label)
	w.put(2, cmp.CustomerAge, 0)
	w.next()
	w.put(1, L(cmp.Lang, "cdate"), styles.label)
	w.put(2, cmp.Date, 0)
	w.next()
	w.next()

	// Table header
	w.put(1, L(cmp.Lang, "item"), styles.header)
	for i, h := range cmp.Headers {
		w.put(i+2, h, styles.header)
	}
	w.next()
	w.put(1, "", styles.product)
	for i, p := range cmp.Products {
		w.put(i+2, p, styles.product)
	}
	w.next()

	sections := append([]ComparisonSection{}, cmp.Sections...)
	if len(cmp.RiderDetails.Rows) > 0 {
		sections = append(sections, cmp.RiderDetails)
	}
	for _, section := range sections {
		if len(section.Rows) == 0 {
			continue
		}
		w.put(1, section.Title, styles.section)
		for c := 2; c <= w.cols; c++ {
			w.put(c, "", styles.section)
		}
		w.next()
		for _, row := range section.Rows {
			w.put(1, row.Label, styles.cellLeft)
			for i, v := range row.Values {
				w.put(i+2, v, styles.cell)
			}
			w.next()
		}
	}

	w.next()
	if cmp.Advisor.Name != "" || cmp.Advisor.Contact != "" {
		w.put(1, L(cmp.Lang, "adv"), styles.label)
		w.put(2, cmp.Advisor.Name, 0)
		w.put(3, cmp.Advisor.Contact, 0)
		w.next()
	}
	w.put(1, cmp.Footer, 0)
	w.next()
	if cmp.Compliance != "" {
		w.put(1, cmp.Compliance, 0)
		w.next()
	}
	if w.err != nil {
		f.Close()
		return nil, w.err
	}

	// Column widths
	for i := 1; i <= w.cols; i++ {
		col, err := excelize.ColumnNumberToName(i)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		width := 28.0
		if i == 1 {
			width = 30.0
		}
		if err := f.SetColWidth(comparisonSheet, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type comparisonStyles struct {
	title, label, header, product, section, cell, cellLeft int
}

func newComparisonStyles(f *excelize.File) (comparisonStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "CBD5E1", Style: 1},
		{Type: "top", Color: "CBD5E1", Style: 1},
		{Type: "bottom", Color: "CBD5E1", Style: 1},
		{Type: "right", Color: "CBD5E1", Style: 1},
	}

	var firstErr error
	newStyle := func(style *excelize.Style) int {
		if firstErr != nil {
			return 0
		}
		id, err := f.NewStyle(style)
		if err != nil {
			firstErr = fmt.Errorf("failed to create style: %w", err)
		}
		return id
	}

	s := comparisonStyles{
		title: newStyle(&excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 16, Color: "003366"},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		}),
		label: newStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true, Color: "64748B"},
		}),
		header: newStyle(&excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#003366"}, Pattern: 1},
			Border:    border,
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		}),
		product: newStyle(&excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#F1F5F9"}, Pattern: 1},
			Border:    border,
			Alignment: &excelize.Alignment{Horizontal: "center"},
		}),
		section: newStyle(&excelize.Style{
			Font:   &excelize.Font{Bold: true, Color: "003366"},
			Fill:   excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
			Border: border,
		}),
		cell: newStyle(&excelize.Style{
			Border:    border,
			Alignment: &excelize.Alignment{Horizontal: "center", WrapText: true},
		}),
		cellLeft: newStyle(&excelize.Style{
			Border:    border,
			Alignment: &excelize.Alignment{Horizontal: "left", WrapText: true},
		}),
	}
	return s, firstErr
}

// sheetWriter writes cells row by row and keeps the first error
type sheetWriter struct {
	f     *excelize.File
	sheet string
	cols  int
	row   int
	err   error
}

func (w *sheetWriter) cell(col int) string {
	name, err := excelize.CoordinatesToCellName(col, w.row)
	if err != nil && w.err == nil {
		w.err = fmt.Errorf("failed to convert coordinates: %w", err)
	}
	return name
}

func (w *sheetWriter) put(col int, value any, style int) {
	if w.err != nil {
		return
	}
	cell := w.cell(col)
	if w.err != nil {
		return
	}
	if err := w.f.SetCellValue(w.sheet, cell, value); err != nil {
		w.err = fmt.Errorf("failed to set cell %s: %w", cell, err)
		return
	}
	if style != 0 {
		if err := w.f.SetCellStyle(w.sheet, cell, cell, style); err != nil {
			w.err = fmt.Errorf("failed to set style on %s: %w", cell, err)
		}
	}
}

func (w *sheetWriter) mergeRow() {
	if w.err != nil || w.cols < 2 {
		return
	}
	if err := w.f.MergeCell(w.sheet, w.cell(1), w.cell(w.cols)); err != nil {
		w.err = fmt.Errorf("failed to merge row %d: %w", w.row, err)
	}
}

func (w *sheetWriter) next() {
	w.row++
}
