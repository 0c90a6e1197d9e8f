package excel

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const isoDate = "2006-01-02"

type CellKind int

const (
	KindBlank CellKind = iota
	KindText
	KindNumber
	KindBool
	KindDate
	KindFormula
	KindError
)

// Cell is a decoded spreadsheet cell. The concrete type tells how the
// workbook stored the value.
type Cell interface {
	Kind() CellKind
}

type BlankCell struct{}

type TextCell struct {
	Value string
}

// NumberCell holds a numeric cell. DateFormatted is set when the cell's
// number format renders the value as a date.
type NumberCell struct {
	Value         float64
	DateFormatted bool
	Date1904      bool
}

type BoolCell struct {
	Value bool
}

// DateCell holds a cell stored with the ISO 8601 date type.
type DateCell struct {
	Value time.Time
}

// FormulaCell carries the formula text and its evaluated result.
type FormulaCell struct {
	Expr   string
	Result Cell
}

type ErrorCell struct {
	Code string
}

func (BlankCell) Kind() CellKind   { return KindBlank }
func (TextCell) Kind() CellKind    { return KindText }
func (NumberCell) Kind() CellKind  { return KindNumber }
func (BoolCell) Kind() CellKind    { return KindBool }
func (DateCell) Kind() CellKind    { return KindDate }
func (FormulaCell) Kind() CellKind { return KindFormula }
func (ErrorCell) Kind() CellKind   { return KindError }

var (
	nonIntegerChars = regexp.MustCompile(`[^\d-]`)
	nonDecimalChars = regexp.MustCompile(`[^\d.-]`)
)

var trueTokens = map[string]struct{}{
	"true": {},
	"1":    {},
	"ja":   {},
	"wahr": {},
	"yes":  {},
}

// CellText renders any cell as a trimmed string. Blank, error and unknown
// cells yield "".
func CellText(c Cell) string {
	switch v := c.(type) {
	case TextCell:
		return strings.TrimSpace(v.Value)
	case NumberCell:
		if v.DateFormatted {
			if t := v.date(); t != nil {
				return t.Format(isoDate)
			}
			return ""
		}
		return formatNumber(v.Value)
	case BoolCell:
		return strconv.FormatBool(v.Value)
	case DateCell:
		return v.Value.Format(isoDate)
	case FormulaCell:
		if v.Result == nil {
			return ""
		}
		return CellText(v.Result)
	default:
		return ""
	}
}

// CellDate returns the calendar date held by a date cell or by ISO 8601
// text, or nil when the cell holds no valid date.
func CellDate(c Cell) *time.Time {
	switch v := c.(type) {
	case NumberCell:
		if v.DateFormatted {
			return v.date()
		}
	case DateCell:
		return dateOnly(v.Value)
	case TextCell:
		return ParseISODate(v.Value)
	case FormulaCell:
		if v.Result != nil {
			return CellDate(v.Result)
		}
	}
	return nil
}

func CellInt(c Cell) int {
	return ParseInt(CellText(c))
}

func CellDecimal(c Cell) decimal.Decimal {
	switch v := c.(type) {
	case NumberCell:
		if math.IsNaN(v.Value) || math.IsInf(v.Value, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(v.Value)
	case TextCell:
		return ParseDecimal(v.Value)
	case FormulaCell:
		if v.Result != nil {
			return CellDecimal(v.Result)
		}
	}
	return decimal.Zero
}

func CellBool(c Cell) bool {
	return ParseBool(CellText(c))
}

// ParseInt strips everything but digits and minus signs and parses the rest.
// Values with a fractional part are truncated. Unparsable input yields 0.
func ParseInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(nonDecimalChars.ReplaceAllString(s, ""), 64)
		if err != nil || math.IsNaN(f) || f > math.MaxInt32 || f < math.MinInt32 {
			return 0
		}
		return int(f)
	}

	n, err := strconv.ParseInt(nonIntegerChars.ReplaceAllString(s, ""), 10, 32)
	if err != nil {
		return 0
	}
	return int(n)
}

// ParseDecimal accepts both "1,234.50" and the European "1.234,50" form and
// ignores currency symbols. Unparsable input yields zero.
func ParseDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.ReplaceAll(s, ",", ".")
	}

	cleaned := nonDecimalChars.ReplaceAllString(s, "")
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func ParseBool(s string) bool {
	_, ok := trueTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// ParseISODate parses "2006-01-02" and full ISO 8601 timestamps, keeping
// only the date part. Invalid text yields nil.
func ParseISODate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{isoDate, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t)
		}
	}
	return nil
}

func (n NumberCell) date() *time.Time {
	t, err := excelize.ExcelDateToTime(n.Value, n.Date1904)
	if err != nil {
		return nil
	}
	return dateOnly(t)
}

func dateOnly(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	y, m, d := t.Date()
	u := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &u
}

func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
