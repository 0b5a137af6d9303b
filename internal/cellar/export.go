package cellar

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/nukk-pain/wine-sub001/internal/document"
)

const exportSheet = "Wines"

// exportColumns is the column order of the spreadsheet
var exportColumns = []string{
	document.FieldName,
	document.FieldVintage,
	document.FieldRegionProducer,
	document.FieldAppellation,
	document.FieldVarietal,
	document.FieldAlcohol,
	document.FieldVolume,
	document.FieldClassification,
	document.FieldPrice,
	document.FieldQuantity,
	document.FieldStore,
	document.FieldPurchaseDate,
	"Source",
	"Record",
}

// ExportXLSX writes every stored wine as one spreadsheet row, newest record first
func (s *Service) ExportXLSX(w io.Writer) error {
	records, err := s.ListRecords()
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(exportColumns))
	for i, c := range exportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := 2
	for _, rec := range records {
		for _, wine := range rec.Wines {
			values := exportRow(wine, rec)
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
			row++
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 36) // name
	_ = f.SetColWidth(exportSheet, "C", "E", 28) // region, appellation, varietal
	_ = f.SetColWidth(exportSheet, "K", "K", 24) // store
	_ = f.SetColWidth(exportSheet, "N", "N", 38) // record id

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// exportRow lays a wine out in exportColumns order; unset fields stay blank
func exportRow(wine document.CanonicalWine, rec *Record) []any {
	fields := wine.Fields()
	values := make([]any, 0, len(exportColumns))
	for _, c := range exportColumns[:len(exportColumns)-2] {
		if v, ok := fields[c]; ok {
			values = append(values, v)
		} else {
			values = append(values, "")
		}
	}
	return append(values, string(rec.Type), rec.ID)
}
