package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/henarth-agravat/stockcard/internal/statement"
)

// WriteCSV writes one section's records as csv, header row first.
// A section with no resolved columns writes nothing.
func WriteCSV(doc *statement.FinancialDocument, id statement.SectionID, w io.Writer) error {
	rows := doc.Data.Section(id)
	cols := doc.Columns(id)
	if len(cols) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(displayColumns(cols)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range rows {
		line := make([]string, len(cols))
		for i, c := range cols {
			line[i] = rec[c]
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
