package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ctedash/pkg/contracts/domain"
)

const sheetName = "Documentos"

// WriteXLSX writes the documents as an XLSX workbook with a single sheet.
// Dates and values stay as text cells in the feed's pt-BR notation, matching
// the CSV export.
func WriteXLSX(w io.Writer, ctes []domain.Cte) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("remove default sheet: %w", err)
	}

	headers := make([]interface{}, len(documentHeaders))
	for i, h := range documentHeaders {
		headers[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}

	for i := range ctes {
		row := documentRow(ctes[i])
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
