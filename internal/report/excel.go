package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/henarth-agravat/stockcard/internal/statement"
	"github.com/xuri/excelize/v2"
)

// WriteXLSX streams the assembled statements as a workbook, one sheet
// per section, headers bold, numeric cells typed as numbers.
func WriteXLSX(doc *statement.FinancialDocument, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	for _, id := range statement.AllSections {
		sheet := id.Title()
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
		if err := writeSheet(f, sheet, doc, id, headerStyle); err != nil {
			return err
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, doc *statement.FinancialDocument, id statement.SectionID, headerStyle int) error {
	rows := doc.Data.Section(id)
	cols := doc.Columns(id)
	if len(cols) == 0 {
		return nil
	}

	for i, label := range displayColumns(cols) {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, label); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(cols), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for r, rec := range rows {
		for cIdx, col := range cols {
			cell, _ := excelize.CoordinatesToCellName(cIdx+1, r+2)
			v := rec[col]
			if cIdx > 0 {
				if num, err := strconv.ParseFloat(v, 64); err == nil {
					if err := f.SetCellValue(sheet, cell, num); err != nil {
						return fmt.Errorf("write cell %s: %w", cell, err)
					}
					continue
				}
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
	}
	return nil
}
