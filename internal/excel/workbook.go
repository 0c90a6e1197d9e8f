package excel

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/Yaro-bit/SimpleSalesman/internal/logger"
	"github.com/Yaro-bit/SimpleSalesman/pkg/errors"
)

// RowSource exposes the cells of one spreadsheet row by 0-based column index.
type RowSource interface {
	Cell(col int) Cell
}

// SheetSource yields every row of a worksheet in order, header included.
type SheetSource interface {
	Rows() ([]RowSource, error)
}

// Workbook is an xlsx file decoded with excelize.
type Workbook struct {
	file     *excelize.File
	date1904 bool
	log      zerolog.Logger
}

func OpenWorkbook(data []byte) (*Workbook, error) {
	if len(data) == 0 {
		return nil, errors.ErrEmptyFile
	}

	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open Excel file: %v", errors.ErrInvalidFileFormat, err)
	}

	wb := &Workbook{file: file, log: logger.Component("workbook")}
	if props, err := file.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		wb.date1904 = *props.Date1904
	}
	return wb, nil
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

// FirstSheet returns the first worksheet of the workbook.
func (w *Workbook) FirstSheet() (*Sheet, error) {
	sheets := w.file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ErrNoWorksheet
	}
	return &Sheet{
		wb:         w,
		name:       sheets[0],
		dateStyles: make(map[int]bool),
	}, nil
}

type Sheet struct {
	wb         *Workbook
	name       string
	dateStyles map[int]bool
}

func (s *Sheet) Name() string {
	return s.name
}

func (s *Sheet) Rows() ([]RowSource, error) {
	raw, err := s.wb.file.GetRows(s.name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	rows := make([]RowSource, 0, len(raw))
	for i := range raw {
		rows = append(rows, &Row{sheet: s, number: i + 1, cells: make(map[int]Cell)})
	}
	return rows, nil
}

// Row is one worksheet row; number is the 1-based sheet row.
type Row struct {
	sheet  *Sheet
	number int
	cells  map[int]Cell
}

func (r *Row) Number() int {
	return r.number
}

// Cell decodes the cell at the 0-based column. Lookup failures decode to BlankCell.
func (r *Row) Cell(col int) Cell {
	if c, ok := r.cells[col]; ok {
		return c
	}
	axis, err := excelize.CoordinatesToCellName(col+1, r.number)
	if err != nil {
		return BlankCell{}
	}
	c := r.sheet.cell(axis)
	r.cells[col] = c
	return c
}

func (s *Sheet) cell(axis string) Cell {
	f := s.wb.file

	if expr, err := f.GetCellFormula(s.name, axis); err == nil && expr != "" {
		return FormulaCell{Expr: expr, Result: s.evaluate(axis)}
	}

	typ, err := f.GetCellType(s.name, axis)
	if err != nil {
		s.wb.log.Debug().Err(err).Str("cell", axis).Msg("Failed to read cell type")
		return BlankCell{}
	}
	raw, err := f.GetCellValue(s.name, axis, excelize.Options{RawCellValue: true})
	if err != nil {
		s.wb.log.Debug().Err(err).Str("cell", axis).Msg("Failed to read cell value")
		return BlankCell{}
	}
	if raw == "" {
		return BlankCell{}
	}

	switch typ {
	case excelize.CellTypeBool:
		return BoolCell{Value: raw == "1" || strings.EqualFold(raw, "true")}
	case excelize.CellTypeDate:
		if t := ParseISODate(raw); t != nil {
			return DateCell{Value: *t}
		}
		return TextCell{Value: raw}
	case excelize.CellTypeError:
		return ErrorCell{Code: raw}
	case excelize.CellTypeInlineString, excelize.CellTypeSharedString, excelize.CellTypeFormula:
		return TextCell{Value: raw}
	default:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return TextCell{Value: raw}
		}
		return NumberCell{Value: v, DateFormatted: s.isDateFormatted(axis), Date1904: s.wb.date1904}
	}
}

func (s *Sheet) evaluate(axis string) Cell {
	f := s.wb.file

	cached, cacheErr := f.GetCellValue(s.name, axis, excelize.Options{RawCellValue: true})
	value, err := f.CalcCellValue(s.name, axis, excelize.Options{RawCellValue: true})
	if err != nil {
		// fall back to the value cached by the application that saved the file
		if cacheErr != nil || cached == "" {
			s.wb.log.Debug().Err(err).Str("cell", axis).Msg("Failed to evaluate formula")
			return ErrorCell{Code: "#VALUE!"}
		}
		value = cached
	}

	typ, _ := f.GetCellType(s.name, axis)
	cachedText := typ == excelize.CellTypeFormula && cached != ""
	if cachedText {
		value = cached
	}
	c := formulaResult(value, cachedText)
	if n, ok := c.(NumberCell); ok {
		n.DateFormatted = s.isDateFormatted(axis)
		n.Date1904 = s.wb.date1904
		return n
	}
	return c
}

// formulaResult classifies an evaluated formula value. A result the saving
// application cached as a string (t="str") stays text even when it looks
// numeric, so "00123" keeps its leading zeros.
func formulaResult(value string, cachedText bool) Cell {
	trimmed := strings.TrimSpace(value)
	switch {
	case trimmed == "":
		return BlankCell{}
	case strings.HasPrefix(trimmed, "#"):
		return ErrorCell{Code: trimmed}
	case cachedText:
		return TextCell{Value: value}
	case strings.EqualFold(trimmed, "true"):
		return BoolCell{Value: true}
	case strings.EqualFold(trimmed, "false"):
		return BoolCell{Value: false}
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return NumberCell{Value: v}
	}
	return TextCell{Value: trimmed}
}

func (s *Sheet) isDateFormatted(axis string) bool {
	f := s.wb.file

	styleID, err := f.GetCellStyle(s.name, axis)
	if err != nil || styleID == 0 {
		return false
	}
	if known, ok := s.dateStyles[styleID]; ok {
		return known
	}

	isDate := false
	if style, err := f.GetStyle(styleID); err == nil && style != nil {
		switch {
		case style.CustomNumFmt != nil:
			isDate = isDateFormatCode(*style.CustomNumFmt)
		default:
			isDate = isBuiltInDateFormat(style.NumFmt)
		}
	}
	s.dateStyles[styleID] = isDate
	return isDate
}

// Built-in number format ids that render dates or times, per ECMA-376 18.8.30.
func isBuiltInDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case inQuote:
			if ch == '"' {
				inQuote = false
			}
		case inBracket:
			if ch == ']' {
				inBracket = false
			}
		case ch == '"':
			inQuote = true
		case ch == '[':
			inBracket = true
		case ch == '\\' || ch == '_' || ch == '*':
			i++
		default:
			b.WriteByte(ch)
		}
	}
	return strings.ContainsAny(strings.ToLower(b.String()), "dmyhs")
}
