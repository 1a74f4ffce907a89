package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Vendors"

var xlsxHeader = []any{"name", "url", "confidence", "whatsapp", "instagram", "location", "address", "rating"}

func writeXLSX(w io.Writer, rows []VendorRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &xlsxHeader); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "H1", bold); err != nil {
		return fmt.Errorf("style xlsx header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx cell name: %w", err)
		}
		var rating any = ""
		if row.Rating != nil {
			rating = *row.Rating
		}
		values := []any{
			row.Name,
			row.URL,
			row.Confidence,
			strings.Join(row.WhatsApp, ", "),
			strings.Join(row.Instagram, ", "),
			row.Location,
			row.Address,
			rating,
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(sheetName, "A", "B", 40); err != nil {
		return fmt.Errorf("set xlsx column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
