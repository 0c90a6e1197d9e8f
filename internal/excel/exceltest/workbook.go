// Package exceltest builds in-memory xlsx fixtures for tests.
package exceltest

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// Header is the header row of the project sheet.
var Header = []any{
	"Nr", "Region", "Bauende geplant", "Bau abgeschlossen", "Adresse", "Betreiber", "Status", "WE",
	"Vertrag", "Provisionskategorie", "KG-Nummer", "Baufirma", "Verkaufsstart", "Verkaufsende", "Preis", "Außengebühr",
}

// Formula writes a formula instead of a value.
type Formula string

// TextFormula writes a formula together with a cached string result
// (t="str"), as spreadsheet applications save formulas that yield text.
// Result must look numeric, e.g. "00123".
type TextFormula struct {
	Expr   string
	Result string
}

// Styled writes a number with a custom number format code.
type Styled struct {
	Value  float64
	Format string
}

// Row returns a 16-column row with only region and address set.
func Row(region, address string) []any {
	row := make([]any, 16)
	row[1] = region
	row[4] = address
	return row
}

// Build writes Header followed by rows into the first sheet.
func Build(t testing.TB, rows ...[]any) []byte {
	t.Helper()
	return BuildRaw(t, append([][]any{Header}, rows...)...)
}

// BuildRaw writes rows as given, without a header.
func BuildRaw(t testing.TB, rows ...[]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := setCell(f, sheet, cell, v); err != nil {
				t.Fatalf("set %s: %v", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func setCell(f *excelize.File, sheet, cell string, v any) error {
	switch val := v.(type) {
	case Formula:
		return f.SetCellFormula(sheet, cell, string(val))
	case TextFormula:
		if err := f.SetCellDefault(sheet, cell, val.Result); err != nil {
			return err
		}
		return f.SetCellFormula(sheet, cell, val.Expr)
	case Styled:
		format := val.Format
		style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, val.Value); err != nil {
			return err
		}
		return f.SetCellStyle(sheet, cell, cell, style)
	default:
		return f.SetCellValue(sheet, cell, v)
	}
}
