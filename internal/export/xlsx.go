package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/blucap/ssrnbib/internal/reference"
)

// SheetName is the worksheet that holds exported citations.
const SheetName = "Citations"

// ToXLSX writes citations to an Excel workbook at path: a header row of field
// names followed by one row per citation, in Citation.Fields order.
func ToXLSX(path string, cs []reference.Citation) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := (reference.Citation{}).Fields()
	for col, field := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, field.Name); err != nil {
			return fmt.Errorf("writing header %s: %w", field.Name, err)
		}
	}

	for i, c := range cs {
		row := make([]interface{}, 0, len(header))
		for _, field := range c.Fields() {
			row = append(row, cellValue(field))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row for %s: %w", c.Key, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

// cellValue writes numeric fields as numbers so the columns sort and sum.
// An unknown number leaves the cell empty.
func cellValue(field reference.Field) interface{} {
	if !field.Numeric {
		return field.Value
	}
	n, err := strconv.Atoi(field.Value)
	if err != nil {
		return nil
	}
	return n
}
