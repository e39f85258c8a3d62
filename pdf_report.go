package main

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
)

const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 12.0
	marginRight  = 12.0
	marginTop    = 12.0
	marginBottom = 15.0
	contentWidth = pageWidth - marginLeft - marginRight

	labelColumnWidth = 52.0
	unicodeFontName  = "ReportUnicode"
)

// pdfText converts UTF-8 text to the Latin-1 bytes the core PDF fonts expect.
// Characters outside Latin-1 become '?'.
func pdfText(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 0x100 {
			b.WriteByte(byte(r))
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}

// PDFComparisonReport lays out a comparison on A4 pages
type PDFComparisonReport struct {
	pdf    *fpdf.Fpdf
	cmp    Comparison
	font   string
	text   func(string) string
	widths []float64
}

// GenerateComparisonPDF renders the comparison. With an empty fontFile the
// built-in Arial font is used and non-Latin text cannot be shown.
func GenerateComparisonPDF(cmp Comparison, fontFile string) ([]byte, error) {
	report := &PDFComparisonReport{
		pdf:  fpdf.New("P", "mm", "A4", ""),
		cmp:  cmp,
		font: "Arial",
		text: pdfText,
	}

	if fontFile != "" {
		report.pdf.AddUTF8Font(unicodeFontName, "", fontFile)
		report.pdf.AddUTF8Font(unicodeFontName, "B", fontFile)
		report.pdf.AddUTF8Font(unicodeFontName, "I", fontFile)
		if report.pdf.Err() {
			return nil, fmt.Errorf("load font %s: %w", fontFile, report.pdf.Error())
		}
		report.font = unicodeFontName
		report.text = func(s string) string { return s }
	}

	report.pdf.SetMargins(marginLeft, marginTop, marginRight)
	report.pdf.SetAutoPageBreak(true, marginBottom)
	report.pdf.AliasNbPages("")
	report.pdf.SetFooterFunc(report.drawFooter)
	report.columnWidths()

	report.pdf.AddPage()
	report.addTitle()
	report.addCustomerBox()
	report.addComparisonTable()
	report.addRiderDetails()
	report.addAdvisor()
	report.addCompliance()

	if report.pdf.Err() {
		return nil, report.pdf.Error()
	}

	// Output to buffer
	var buf bytes.Buffer
	err := report.pdf.Output(&buf)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (r *PDFComparisonReport) columnWidths() {
	n := len(r.cmp.Headers)
	if n == 0 {
		n = 1
	}
	slotWidth := (contentWidth - labelColumnWidth) / float64(n)
	r.widths = []float64{labelColumnWidth}
	for i := 0; i < n; i++ {
		r.widths = append(r.widths, slotWidth)
	}
}

func (r *PDFComparisonReport) addTitle() {
	r.pdf.SetFont(r.font, "B", 20)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 10, r.text(r.cmp.Title), "", 1, "C", false, 0, "")

	r.pdf.SetFont(r.font, "I", 11)
	r.pdf.SetTextColor(100, 100, 100)
	r.pdf.CellFormat(contentWidth, 6, r.text(r.cmp.Subtitle), "", 1, "C", false, 0, "")
	r.pdf.Ln(4)
}

func (r *PDFComparisonReport) addCustomerBox() {
	lang := r.cmp.Lang
	r.pdf.SetFillColor(245, 247, 250)
	r.pdf.SetDrawColor(200, 200, 200)
	r.pdf.SetTextColor(50, 50, 50)

	third := contentWidth / 3
	r.pdf.SetFont(r.font, "B", 9)
	r.pdf.CellFormat(third, 6, r.text(L(lang, "cname")), "LT", 0, "L", true, 0, "")
	r.pdf.CellFormat(third, 6, r.text(L(lang, "cage")), "T", 0, "L", true, 0, "")
	r.pdf.CellFormat(third, 6, r.text(L(lang, "cdate")), "TR", 1, "L", true, 0, "")

	name := r.cmp.CustomerName
	if name == "" {
		name = Dash
	}
	r.pdf.SetFont(r.font, "", 11)
	r.pdf.CellFormat(third, 7, r.text(name), "LB", 0, "L", true, 0, "")
	r.pdf.CellFormat(third, 7, fmt.Sprintf("%d", r.cmp.CustomerAge), "B", 0, "L", true, 0, "")
	r.pdf.CellFormat(third, 7, r.text(r.cmp.Date), "RB", 1, "L", true, 0, "")
	r.pdf.Ln(5)
}

func (r *PDFComparisonReport) addComparisonTable() {
	headers := append([]string{L(r.cmp.Lang, "item")}, r.cmp.Headers...)
	r.drawTableHeader(headers, r.widths)

	products := append([]string{""}, r.cmp.Products...)
	r.drawTableRow(products, r.widths, true)

	for _, section := range r.cmp.Sections {
		if len(section.Rows) == 0 {
			continue
		}
		r.drawSectionHeader(section.Title)
		for _, row := range section.Rows {
			r.drawTableRow(append([]string{row.Label}, row.Values...), r.widths, false)
		}
	}
	r.pdf.Ln(4)
}

func (r *PDFComparisonReport) addRiderDetails() {
	if len(r.cmp.RiderDetails.Rows) == 0 {
		return
	}
	r.drawSectionHeader(r.cmp.RiderDetails.Title)
	for _, row := range r.cmp.RiderDetails.Rows {
		r.drawTableRow(append([]string{row.Label}, row.Values...), r.widths, false)
	}
	r.pdf.Ln(4)
}

func (r *PDFComparisonReport) addAdvisor() {
	advisor := r.cmp.Advisor
	if advisor.Name == "" && advisor.Contact == "" && advisor.Photo == "" {
		return
	}

	// Keep the advisor block together
	if r.pdf.GetY()+30 > pageHeight-marginBottom {
		r.pdf.AddPage()
	}

	top := r.pdf.GetY()
	textX := marginLeft
	if info, ok := r.registerPhoto(advisor.Photo); ok {
		opts := fpdf.ImageOptions{ImageType: info, ReadDpi: false}
		r.pdf.ImageOptions("advisor", marginLeft, top, 22, 22, false, opts, 0, "")
		textX = marginLeft + 26
	}

	r.pdf.SetXY(textX, top)
	r.pdf.SetFont(r.font, "B", 9)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(80, 6, r.text(L(r.cmp.Lang, "adv")), "", 2, "L", false, 0, "")
	r.pdf.SetFont(r.font, "", 11)
	r.pdf.SetTextColor(50, 50, 50)
	r.pdf.CellFormat(80, 6, r.text(advisor.Name), "", 2, "L", false, 0, "")
	r.pdf.CellFormat(80, 6, r.text(advisor.Contact), "", 2, "L", false, 0, "")

	r.pdf.SetXY(marginLeft, max(r.pdf.GetY(), top+24))
	r.pdf.Ln(2)
}

// registerPhoto decodes a data: URL image and registers it as "advisor".
// Unreadable photos are skipped rather than failing the report.
func (r *PDFComparisonReport) registerPhoto(dataURL string) (string, bool) {
	raw, err := decodeDataURL(dataURL)
	if err != nil {
		return "", false
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", false
	}
	imageType := strings.ToUpper(format)
	if imageType == "JPEG" {
		imageType = "JPG"
	}
	r.pdf.RegisterImageOptionsReader("advisor", fpdf.ImageOptions{ImageType: imageType}, bytes.NewReader(raw))
	if r.pdf.Err() {
		r.pdf.ClearError()
		return "", false
	}
	return imageType, true
}

// decodeDataURL extracts the payload of a base64 data: URL
func decodeDataURL(dataURL string) ([]byte, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return nil, errors.New("not a data URL")
	}
	comma := strings.IndexByte(dataURL, ',')
	if comma < 0 {
		return nil, errors.New("malformed data URL")
	}
	meta := dataURL[len("data:"):comma]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, errors.New("data URL is not base64")
	}
	return base64.StdEncoding.DecodeString(dataURL[comma+1:])
}

func (r *PDFComparisonReport) addCompliance() {
	r.pdf.Ln(4)
	r.pdf.SetFont(r.font, "I", 8)
	r.pdf.SetTextColor(120, 120, 120)
	r.pdf.MultiCell(contentWidth, 4, r.text(r.cmp.Footer), "", "C", false)

	// The compliance note is Chinese only
	if r.font == unicodeFontName && r.cmp.Compliance != "" {
		r.pdf.Ln(2)
		r.pdf.MultiCell(contentWidth, 4, r.cmp.Compliance, "", "C", false)
	}
}

func (r *PDFComparisonReport) drawFooter() {
	r.pdf.SetY(-marginBottom + 5)
	r.pdf.SetFont(r.font, "I", 8)
	r.pdf.SetTextColor(150, 150, 150)
	r.pdf.CellFormat(contentWidth, 5, fmt.Sprintf("%d/{nb}", r.pdf.PageNo()), "", 0, "C", false, 0, "")
}

// Helper functions

func (r *PDFComparisonReport) drawSectionHeader(title string) {
	r.pdf.SetFont(r.font, "B", 9)
	r.pdf.SetFillColor(220, 230, 241)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 6, r.text(title), "1", 1, "L", true, 0, "")
}

func (r *PDFComparisonReport) drawTableHeader(headers []string, widths []float64) {
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont(r.font, "B", 9)

	for i, header := range headers {
		align := "L"
		if i > 0 {
			align = "C"
		}
		r.pdf.CellFormat(widths[i], 7, r.fit(header, widths[i]), "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *PDFComparisonReport) drawTableRow(cells []string, widths []float64, isBold bool) {
	r.pdf.SetFillColor(250, 250, 250)
	r.pdf.SetTextColor(50, 50, 50)

	if isBold {
		r.pdf.SetFont(r.font, "B", 8)
		r.pdf.SetFillColor(240, 240, 240)
	} else {
		r.pdf.SetFont(r.font, "", 8)
	}

	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		align := "L"
		if i > 0 {
			align = "C"
		}
		r.pdf.CellFormat(widths[i], 5.5, r.fit(cell, widths[i]), "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

// fit converts text for the current font and shortens it to the cell width
func (r *PDFComparisonReport) fit(s string, width float64) string {
	limit := width - 2
	text := r.text(s)
	if r.pdf.GetStringWidth(text) <= limit {
		return text
	}
	for len(s) > 0 {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
		text = r.text(s + "...")
		if r.pdf.GetStringWidth(text) <= limit {
			return text
		}
	}
	return ""
}
