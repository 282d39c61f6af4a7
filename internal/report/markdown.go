package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/henarth-agravat/stockcard/internal/statement"
	"github.com/montanaflynn/stats"
)

// Markdown renders the assembled statements as a markdown report:
// a highlights block over the headline profit-loss rows, then one
// table per section.
func Markdown(doc *statement.FinancialDocument) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.StockName)
	fmt.Fprintf(&b, "Extracted %s\n\n", doc.ExtractionDate)

	if lines := highlights(doc); len(lines) > 0 {
		b.WriteString("## Highlights\n\n")
		for _, l := range lines {
			fmt.Fprintf(&b, "- %s\n", l)
		}
		b.WriteString("\n")
	}

	for _, id := range statement.AllSections {
		fmt.Fprintf(&b, "## %s\n\n", id.Title())
		writeTable(&b, doc, id)
		b.WriteString("\n")
	}
	return b.String()
}

func writeTable(b *strings.Builder, doc *statement.FinancialDocument, id statement.SectionID) {
	rows := doc.Data.Section(id)
	cols := doc.Columns(id)
	if len(rows) == 0 || len(cols) == 0 {
		b.WriteString("No data.\n")
		return
	}

	b.WriteString("| " + strings.Join(escapeCells(displayColumns(cols)), " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(cols)) + "\n")
	for _, rec := range rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = rec[c]
		}
		b.WriteString("| " + strings.Join(escapeCells(cells), " | ") + " |\n")
	}
}

// displayColumns swaps the blank leading label for a readable one.
func displayColumns(cols []string) []string {
	out := make([]string, len(cols))
	copy(out, cols)
	if len(out) > 0 && out[0] == "" {
		out[0] = "Particulars"
	}
	return out
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.Join(strings.Fields(c), " ")
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return out
}

// Headline rows feed the highlights block. Matched against the lowered
// row label.
var headlinePatterns = []string{"sales", "revenue", "net profit"}

func highlights(doc *statement.FinancialDocument) []string {
	rows := doc.Data.ProfitLoss
	cols := doc.Columns(statement.ProfitLoss)
	if len(rows) == 0 || len(cols) < 2 {
		return nil
	}

	var lines []string
	for _, rec := range rows {
		name := rec.RowName()
		if !isHeadline(name) {
			continue
		}
		series := make([]float64, 0, len(cols)-1)
		for _, c := range cols[1:] {
			v, err := strconv.ParseFloat(rec[c], 64)
			if err != nil {
				continue
			}
			series = append(series, v)
		}
		if len(series) == 0 {
			continue
		}
		mean, err := stats.Mean(series)
		if err != nil {
			continue
		}
		latest := series[len(series)-1]
		lines = append(lines, fmt.Sprintf("%s: latest %.2f, mean %.2f over %d periods", name, latest, mean, len(series)))
	}
	return lines
}

func isHeadline(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range headlinePatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
