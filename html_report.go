package main

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"
)

// GenerateComparisonHTML renders the comparison as a printable A4 page
func GenerateComparisonHTML(cmp Comparison) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteComparisonHTML(&buf, cmp); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteComparisonHTML writes the comparison page to w
func WriteComparisonHTML(w io.Writer, cmp Comparison) error {
	esc := html.EscapeString
	htmlLang := "zh-CN"
	if cmp.Lang == LangEN {
		htmlLang = "en"
	}

	// Write HTML header
	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="%s">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s - %s</title>
    <style>
        :root {
            --primary: #003366;
            --accent: #dce6f1;
            --text: #1e293b;
            --text-muted: #64748b;
            --border: #cbd5e1;
        }
        @page { size: A4; margin: 10mm; }
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', 'PingFang SC', 'Microsoft YaHei', sans-serif;
            color: var(--text);
            font-size: 11px;
            line-height: 1.4;
            background: #fff;
        }
        .page { width: 190mm; margin: 0 auto; padding: 8mm 0; }
        h1 { text-align: center; color: var(--primary); font-size: 22px; }
        .subtitle { text-align: center; color: var(--text-muted); font-style: italic; margin-bottom: 12px; }
        .customer { display: flex; border: 1px solid var(--border); margin-bottom: 12px; }
        .customer div { flex: 1; padding: 6px 8px; }
        .customer .label { display: block; color: var(--text-muted); font-size: 10px; }
        .customer .value { font-size: 13px; font-weight: 600; }
        table { width: 100%%; border-collapse: collapse; table-layout: fixed; margin-bottom: 12px; }
        th, td { border: 1px solid var(--border); padding: 4px 6px; text-align: center; }
        th { background: var(--primary); color: #fff; }
        td.label, th.label { text-align: left; width: 28%%; }
        tr.products td { background: #f1f5f9; font-weight: 600; }
        tr.section td { background: var(--accent); color: var(--primary); font-weight: 700; text-align: left; }
        .advisor { display: flex; align-items: center; gap: 10px; margin-top: 8px; }
        .advisor img { width: 64px; height: 64px; object-fit: cover; border-radius: 50%%; }
        .advisor .title { color: var(--primary); font-weight: 700; font-size: 10px; }
        .footer { text-align: center; color: var(--text-muted); font-style: italic; margin-top: 12px; }
        .compliance { text-align: center; color: var(--text-muted); font-size: 9px; margin-top: 4px; }
        @media print { .page { padding: 0; } }
    </style>
</head>
<body>
<div class="page">
    <h1>%s</h1>
    <div class="subtitle">%s</div>
`, htmlLang, esc(cmp.Title), esc(cmp.CustomerName), esc(cmp.Title), esc(cmp.Subtitle))
	if err != nil {
		return err
	}

	name := cmp.CustomerName
	if name == "" {
		name = Dash
	}
	fmt.Fprintf(w, `    <div class="customer">
        <div><span class="label">%s</span><span class="value">%s</span></div>
        <div><span class="label">%s</span><span class="value">%d</span></div>
        <div><span class="label">%s</span><span class="value">%s</span></div>
    </div>
`, esc(L(cmp.Lang, "cname")), esc(name),
		esc(L(cmp.Lang, "cage")), cmp.CustomerAge,
		esc(L(cmp.Lang, "cdate")), esc(cmp.Date))

	cols := len(cmp.Headers) + 1

	fmt.Fprintf(w, "    <table>\n        <thead><tr><th class=\"label\">%s</th>", esc(L(cmp.Lang, "item")))
	for _, h := range cmp.Headers {
		fmt.Fprintf(w, "<th>%s</th>", esc(h))
	}
	fmt.Fprintf(w, "</tr></thead>\n        <tbody>\n")

	fmt.Fprintf(w, "        <tr class=\"products\"><td class=\"label\"></td>")
	for _, p := range cmp.Products {
		fmt.Fprintf(w, "<td>%s</td>", esc(p))
	}
	fmt.Fprintf(w, "</tr>\n")

	for _, section := range cmp.Sections {
		if len(section.Rows) == 0 {
			continue
		}
		writeSectionHTML(w, section, cols)
	}
	if len(cmp.RiderDetails.Rows) > 0 {
		writeSectionHTML(w, cmp.RiderDetails, cols)
	}
	fmt.Fprintf(w, "        </tbody>\n    </table>\n")

	writeAdvisorHTML(w, cmp)

	_, err = fmt.Fprintf(w, `    <div class="footer">%s</div>
    <div class="compliance">%s</div>
</div>
</body>
</html>
`, esc(cmp.Footer), esc(cmp.Compliance))
	return err
}

func writeSectionHTML(w io.Writer, section ComparisonSection, cols int) {
	fmt.Fprintf(w, "        <tr class=\"section\"><td colspan=\"%d\">%s</td></tr>\n", cols, html.EscapeString(section.Title))
	for _, row := range section.Rows {
		fmt.Fprintf(w, "        <tr><td class=\"label\">%s</td>", html.EscapeString(row.Label))
		for _, v := range row.Values {
			fmt.Fprintf(w, "<td>%s</td>", html.EscapeString(v))
		}
		fmt.Fprintf(w, "</tr>\n")
	}
}

func writeAdvisorHTML(w io.Writer, cmp Comparison) {
	advisor := cmp.Advisor
	if advisor.Name == "" && advisor.Contact == "" && advisor.Photo == "" {
		return
	}
	fmt.Fprintf(w, "    <div class=\"advisor\">\n")
	// Only data: URLs are embedded
	if strings.HasPrefix(advisor.Photo, "data:image/") {
		fmt.Fprintf(w, "        <img src=\"%s\" alt=\"\">\n", html.EscapeString(advisor.Photo))
	}
	fmt.Fprintf(w, `        <div>
            <div class="title">%s</div>
            <div>%s</div>
            <div>%s</div>
        </div>
    </div>
`, html.EscapeString(L(cmp.Lang, "adv")), html.EscapeString(advisor.Name), html.EscapeString(advisor.Contact))
}
