// Package xlsxout writes finished workbooks to disk. It is a thin shape
// adapter: all reconciliation happens before tables reach it.
package xlsxout

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/climateledger/disclosure-export/internal/model"
	"github.com/climateledger/disclosure-export/internal/workbook"
)

// WriteWorkbook writes one sheet per table to an XLSX file at path.
func WriteWorkbook(wb *workbook.Workbook, path string) error {
	f := xlsx.NewFile()

	for _, t := range wb.Wide {
		if err := addWideSheet(f, t); err != nil {
			return err
		}
	}
	for _, t := range wb.Lists {
		if err := addListSheet(f, t); err != nil {
			return err
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "xlsxout: save %s", path)
	}
	return nil
}

// WideHeader returns the fixed header row for a wide table: the field
// columns followed by one column group per year in the domain.
func WideHeader(t *model.WideTable) []string {
	header := []string{"Field", "Description", "Unit"}
	for _, year := range t.Years.Years() {
		header = append(header,
			fmt.Sprintf("Value_%d", year),
			fmt.Sprintf("Source_%d", year),
			fmt.Sprintf("LastUpdated_%d", year),
		)
		if t.Restated {
			header = append(header, fmt.Sprintf("Restated_%d", year))
		}
	}
	return header
}

// WideRow renders one field row against the table's year domain.
func WideRow(t *model.WideTable, r *model.WideFieldRow) []string {
	row := []string{r.FieldName, r.Description, r.Unit}
	for _, year := range t.Years.Years() {
		var cell model.YearCell
		if c, ok := r.Cells[year]; ok {
			cell = *c
		}
		row = append(row, cell.Value, cell.Source, cell.LastUpdated)
		if t.Restated {
			row = append(row, cell.Restated)
		}
	}
	return row
}

func addWideSheet(f *xlsx.File, t *model.WideTable) error {
	sheet, err := f.AddSheet(t.Sheet)
	if err != nil {
		return eris.Wrapf(err, "xlsxout: add sheet %q", t.Sheet)
	}

	writeRow(sheet, WideHeader(t))
	for _, r := range t.Rows() {
		writeRow(sheet, WideRow(t, r))
	}
	return nil
}

func addListSheet(f *xlsx.File, t *model.ListTable) error {
	sheet, err := f.AddSheet(t.Sheet)
	if err != nil {
		return eris.Wrapf(err, "xlsxout: add sheet %q", t.Sheet)
	}

	writeRow(sheet, t.Columns)
	for _, r := range t.Rows {
		writeRow(sheet, r)
	}
	return nil
}

func writeRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}
