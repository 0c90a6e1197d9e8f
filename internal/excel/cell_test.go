package excel

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCellText(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want string
	}{
		{name: "nil", cell: nil, want: ""},
		{name: "blank", cell: BlankCell{}, want: ""},
		{name: "text is trimmed", cell: TextCell{Value: "  Wien \t"}, want: "Wien"},
		{name: "integral number", cell: NumberCell{Value: 42}, want: "42"},
		{name: "negative integral number", cell: NumberCell{Value: -7}, want: "-7"},
		{name: "fractional number", cell: NumberCell{Value: 12.5}, want: "12.5"},
		{name: "date formatted number", cell: NumberCell{Value: 45413, DateFormatted: true}, want: "2024-05-01"},
		{name: "bool true", cell: BoolCell{Value: true}, want: "true"},
		{name: "bool false", cell: BoolCell{Value: false}, want: "false"},
		{name: "date cell", cell: DateCell{Value: time.Date(2023, 12, 24, 15, 0, 0, 0, time.UTC)}, want: "2023-12-24"},
		{name: "formula recurses", cell: FormulaCell{Expr: "3*4", Result: NumberCell{Value: 12}}, want: "12"},
		{name: "formula without result", cell: FormulaCell{Expr: "A1"}, want: ""},
		{name: "error cell", cell: ErrorCell{Code: "#DIV/0!"}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CellText(tt.cell))
		})
	}
}

func TestCellDate(t *testing.T) {
	may1 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	require.Equal(t, &may1, CellDate(NumberCell{Value: 45413, DateFormatted: true}))
	require.Equal(t, &may1, CellDate(TextCell{Value: "2024-05-01"}))
	require.Equal(t, &may1, CellDate(TextCell{Value: "2024-05-01T13:45:00Z"}))
	require.Equal(t, &may1, CellDate(DateCell{Value: may1.Add(10 * time.Hour)}))
	require.Equal(t, &may1, CellDate(FormulaCell{Result: NumberCell{Value: 45413, DateFormatted: true}}))

	require.Nil(t, CellDate(NumberCell{Value: 45413}))
	require.Nil(t, CellDate(TextCell{Value: "01.05.2024"}))
	require.Nil(t, CellDate(TextCell{Value: "not a date"}))
	require.Nil(t, CellDate(BoolCell{Value: true}))
	require.Nil(t, CellDate(BlankCell{}))
	require.Nil(t, CellDate(nil))
}

func TestParseInt(t *testing.T) {
	tests := map[string]int{
		"":                     0,
		"12":                   12,
		" 12 ":                 12,
		"12.9":                 12,
		"-3":                   -3,
		"ca 40 WE":             40,
		"1.234,5":              1,
		"abc":                  0,
		"-":                    0,
		"1-2":                  0,
		"99999999999999999999": 0,
	}
	for in, want := range tests {
		require.Equal(t, want, ParseInt(in), "input %q", in)
	}
	require.Equal(t, 12, CellInt(NumberCell{Value: 12.75}))
	require.Equal(t, 7, CellInt(TextCell{Value: "7 Wohnungen"}))
	require.Zero(t, CellInt(BoolCell{Value: true}))
}

func TestParseDecimal(t *testing.T) {
	tests := map[string]string{
		"":           "0",
		"12":         "12",
		"12,5":       "12.5",
		"€ 1.234,50": "1234.5",
		"1,234.50 $": "1234.5",
		"EUR 99,90":  "99.9",
		"-5":         "-5",
		"free":       "0",
		"1.2.3":      "0",
	}
	for in, want := range tests {
		got := ParseDecimal(in)
		require.True(t, decimal.RequireFromString(want).Equal(got), "input %q: got %s want %s", in, got, want)
	}

	require.True(t, decimal.NewFromFloat(1499.99).Equal(CellDecimal(NumberCell{Value: 1499.99})))
	require.True(t, decimal.NewFromInt(20).Equal(CellDecimal(FormulaCell{Result: NumberCell{Value: 20}})))
	require.True(t, CellDecimal(BoolCell{Value: true}).IsZero())
	require.True(t, CellDecimal(ErrorCell{Code: "#N/A"}).IsZero())
}

func TestParseBool(t *testing.T) {
	for _, in := range []string{"true", "TRUE", "1", "ja", "Ja", "wahr", "yes", " YES "} {
		require.True(t, ParseBool(in), in)
	}
	for _, in := range []string{"", "0", "nein", "false", "no", "y", "x"} {
		require.False(t, ParseBool(in), in)
	}

	require.True(t, CellBool(BoolCell{Value: true}))
	require.True(t, CellBool(NumberCell{Value: 1}))
	require.False(t, CellBool(NumberCell{Value: 2}))
	require.False(t, CellBool(ErrorCell{Code: "#REF!"}))
}

func TestIsDateFormatCode(t *testing.T) {
	require.True(t, isDateFormatCode("dd.mm.yyyy"))
	require.True(t, isDateFormatCode("[$-407]d. mmmm yyyy"))
	require.True(t, isDateFormatCode("hh:mm"))
	require.False(t, isDateFormatCode("#,##0.00"))
	require.False(t, isDateFormatCode(`#,##0.00 "days"`))
	require.False(t, isDateFormatCode("[Red]0.00"))
	require.False(t, isDateFormatCode("0%"))
}
