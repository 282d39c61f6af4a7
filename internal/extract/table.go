package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/henarth-agravat/stockcard/internal/statement"
)

// HeaderSet is the resolved column labels for one data table. FromBody marks
// labels recovered from the first body row, which is then consumed as the
// header and must not reappear as data.
type HeaderSet struct {
	Labels   []string
	FromBody bool
}

// resolveHeaders reads the declared header row's cell texts, trimmed. A
// missing or degenerate header row (fewer than two labels) falls back to the
// first body row: a financial table always carries a label column plus at
// least one data column, so a single header cannot be real. Worst case is an
// empty HeaderSet, which downstream yields zero rows.
func resolveHeaders(table *goquery.Selection) HeaderSet {
	var labels []string
	table.Find("thead th").Each(func(_ int, th *goquery.Selection) {
		labels = append(labels, strings.TrimSpace(th.Text()))
	})
	if len(labels) >= 2 {
		return HeaderSet{Labels: labels}
	}

	labels = labels[:0]
	table.Find("tbody tr").First().Find("td").Each(func(_ int, td *goquery.Selection) {
		labels = append(labels, strings.TrimSpace(td.Text()))
	})
	return HeaderSet{Labels: labels, FromBody: len(labels) > 0}
}

// extractRows walks the table body and builds one Record per well-formed row.
// A row must have exactly as many cells as there are headers; merged and
// spanning cells routinely break that, and such rows are dropped as expected
// noise. The leading cell is the row label and stays raw; every other cell
// is normalized. Row order is preserved.
func extractRows(table *goquery.Selection, headers HeaderSet) statement.SectionResult {
	rows := statement.SectionResult{}
	table.Find("tbody tr").Each(func(i int, tr *goquery.Selection) {
		if headers.FromBody && i == 0 {
			return
		}
		cells := tr.Find("td")
		n := cells.Length()
		if n == 0 || n != len(headers.Labels) {
			return
		}

		name := strings.TrimSpace(cells.Eq(0).Text())
		rec := statement.Record{}
		for j, label := range headers.Labels {
			if j == 0 {
				rec[label] = name
				continue
			}
			rec[label] = Normalize(cells.Eq(j).Text())
		}
		rec[statement.RowNameKey] = name
		rows = append(rows, rec)
	})
	return rows
}

// keepRecord reports whether rec carries any data beyond its label column.
// Blank rows satisfy the cell-count check yet normalize to nothing; the
// section extractor scrubs them with this.
func keepRecord(rec statement.Record, headers HeaderSet) bool {
	for j, label := range headers.Labels {
		if j == 0 {
			continue
		}
		if rec[label] != "" {
			return true
		}
	}
	return false
}
