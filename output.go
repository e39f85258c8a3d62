package main

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/width"
)

const (
	consoleLabelWidth = 26
	consoleColWidth   = 24
)

// displayWidth is the number of terminal cells s occupies
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// padCell truncates or pads s to exactly w terminal cells
func padCell(s string, w int) string {
	if displayWidth(s) > w {
		var b strings.Builder
		used := 0
		for _, r := range s {
			rw := displayWidth(string(r))
			if used+rw > w-1 {
				break
			}
			b.WriteRune(r)
			used += rw
		}
		b.WriteString("…")
		used++
		return b.String() + strings.Repeat(" ", max(w-used, 0))
	}
	return s + strings.Repeat(" ", w-displayWidth(s))
}

// PrintHeader prints the program banner
func PrintHeader(out io.Writer) {
	fmt.Fprintln(out, "╔══════════════════════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(out, "║                 INSURANCE QUOTE COMPARISON  保障整理表                       ║")
	fmt.Fprintln(out, "╚══════════════════════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(out)
}

// PrintComparison prints the comparison as a text table
func PrintComparison(out io.Writer, cmp Comparison) {
	fmt.Fprintf(out, "%s  (%s)\n", cmp.Title, cmp.Subtitle)
	fmt.Fprintf(out, "%s: %s   %s: %d   %s: %s\n\n",
		L(cmp.Lang, "cname"), orDash(cmp.CustomerName),
		L(cmp.Lang, "cage"), cmp.CustomerAge,
		L(cmp.Lang, "cdate"), orDash(cmp.Date))

	rule := strings.Repeat("─", consoleLabelWidth+len(cmp.Headers)*(consoleColWidth+1))

	printRow := func(label string, values []string) {
		fmt.Fprint(out, padCell(label, consoleLabelWidth))
		for _, v := range values {
			fmt.Fprint(out, "│", padCell(v, consoleColWidth))
		}
		fmt.Fprintln(out)
	}

	printRow(L(cmp.Lang, "item"), cmp.Headers)
	printRow("", cmp.Products)
	fmt.Fprintln(out, rule)

	sections := append([]ComparisonSection{}, cmp.Sections...)
	if len(cmp.RiderDetails.Rows) > 0 {
		sections = append(sections, cmp.RiderDetails)
	}
	for _, section := range sections {
		if len(section.Rows) == 0 {
			continue
		}
		fmt.Fprintf(out, "▸ %s\n", section.Title)
		for _, row := range section.Rows {
			printRow("  "+row.Label, row.Values)
		}
		fmt.Fprintln(out, rule)
	}

	if cmp.Advisor.Name != "" {
		fmt.Fprintf(out, "%s: %s  %s\n", L(cmp.Lang, "adv"), cmp.Advisor.Name, cmp.Advisor.Contact)
	}
	fmt.Fprintln(out, cmp.Footer)
}

// PrintSlotSummary prints one line per slot for the wizard menus
func PrintSlotSummary(out io.Writer, slots []ProductSlot) {
	for i, s := range slots {
		product := string(s.Product)
		if product == "" {
			product = "(未选择产品 no product)"
		}
		riders := make([]string, 0, len(s.Riders))
		for _, r := range s.Riders {
			if sa := s.RiderSA(r); sa > 0 {
				riders = append(riders, fmt.Sprintf("%s %s", r, FormatCurrency(DefaultCurrency, sa)))
			} else {
				riders = append(riders, string(r))
			}
		}
		fmt.Fprintf(out, "  %d. %s: %s\n", i+1, s.Name, product)
		if len(riders) > 0 {
			fmt.Fprintf(out, "       %s\n", strings.Join(riders, ", "))
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return Dash
	}
	return s
}
