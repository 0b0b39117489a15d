// Package xlsxexport renders the offer comparison table as an XLSX workbook.
package xlsxexport

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"polisave/internal/csvexport"
	"polisave/internal/offer"
)

const sheetName = "Comparison"

// WriteComparison writes the comparison table as a single-sheet workbook:
// bold header, frozen field column, one column per offer.
func WriteComparison(w io.Writer, table offer.ComparisonTable) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for col, value := range table.Header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, value); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("styling header: %w", err)
		}
	}

	for rowIdx, row := range table.Rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return fmt.Errorf("body cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("writing row %d: %w", rowIdx+2, err)
			}
		}
	}

	if err := f.SetColWidth(sheetName, "A", "A", 28); err != nil {
		return fmt.Errorf("sizing field column: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(table.Header))
	if err == nil && len(table.Header) > 1 {
		_ = f.SetColWidth(sheetName, "B", lastCol, 36)
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze: true, XSplit: 1, YSplit: 1, TopLeftCell: "B2", ActivePane: "bottomRight",
	}); err != nil {
		return fmt.Errorf("freezing panes: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: {sanitized_name}_{YYYY-MM-DD}.xlsx
func BuildFilename(name string) string {
	sanitized := csvexport.SanitizeFilename(name)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.xlsx", sanitized, date)
}
