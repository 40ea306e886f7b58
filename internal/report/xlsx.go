package report

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/address-mapper/internal/mapper"
	"github.com/sells-group/address-mapper/internal/model"
)

// SheetName is the worksheet holding the records.
const SheetName = "addresses"

// WriteXLSX writes the same table as WriteCSV to a single-sheet workbook.
// Page and coordinates are stored as numbers.
func WriteXLSX(path string, policy mapper.Policy, records []model.Record) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "report: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range Columns(policy) {
		header.AddCell().SetString(col)
	}

	for _, values := range buildTable(policy, records) {
		row := sheet.AddRow()
		for _, c := range values {
			cell := row.AddCell()
			if c.num != nil {
				cell.SetFloat(*c.num)
				continue
			}
			cell.SetString(c.text)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "report: save xlsx")
	}
	return nil
}
