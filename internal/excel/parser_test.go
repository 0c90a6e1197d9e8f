package excel

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Yaro-bit/SimpleSalesman/pkg/errors"
)

type memRow map[int]Cell

func (r memRow) Cell(col int) Cell {
	if c, ok := r[col]; ok {
		return c
	}
	return BlankCell{}
}

type memSheet []memRow

func (s memSheet) Rows() ([]RowSource, error) {
	rows := make([]RowSource, 0, len(s))
	for _, r := range s {
		rows = append(rows, r)
	}
	return rows, nil
}

var header = memRow{ColRegion: TextCell{Value: "Region"}, ColAddress: TextCell{Value: "Adresse"}}

func validRow(region, address string) memRow {
	return memRow{
		ColRegion:  TextCell{Value: region},
		ColAddress: TextCell{Value: address},
	}
}

func TestParseRowFullyPopulated(t *testing.T) {
	p := NewParser(10, 100)
	row := memRow{
		ColRegion:                 TextCell{Value: "Adlwang 92018-011"},
		ColPlannedConstructionEnd: NumberCell{Value: 45413, DateFormatted: true},
		ColConstructionCompleted:  TextCell{Value: "ja"},
		ColAddress:                TextCell{Value: " Hauptstraße 1 "},
		ColOperator:               TextCell{Value: "ANO"},
		ColStatus:                 TextCell{Value: "offen"},
		ColNumberOfHomes:          NumberCell{Value: 12},
		ColContractPresent:        NumberCell{Value: 1},
		ColCommissionCategory:     TextCell{Value: "B"},
		ColKGNumber:               NumberCell{Value: 45301},
		ColConstructionCompany:    TextCell{Value: "Bau GmbH"},
		ColSalesStart:             TextCell{Value: "2024-01-15"},
		ColSalesEnd:               TextCell{Value: "kein Datum"},
		ColProductPrice:           TextCell{Value: "€ 1.299,90"},
		ColOutdoorFeePresent:      BoolCell{Value: true},
	}

	project, err := p.ParseRow(row, 1)
	require.NoError(t, err)

	require.Equal(t, "Hauptstraße 1", project.Address.AddressText)
	require.Equal(t, "Adlwang 92018-011", project.Address.Region.Name)
	require.Zero(t, project.Address.ID)
	require.Zero(t, project.Address.Region.ID)
	require.Equal(t, "2024-05-01", project.PlannedConstructionEnd.Format("2006-01-02"))
	require.True(t, project.ConstructionCompleted)
	require.Equal(t, "ANO", project.Operator)
	require.Equal(t, "offen", project.Status)
	require.Equal(t, 12, project.NumberOfHomes)
	require.True(t, project.ContractPresent)
	require.Equal(t, "B", project.CommissionCategory)
	require.Equal(t, "45301", project.KGNumber)
	require.Equal(t, "Bau GmbH", project.ConstructionCompany)
	require.Equal(t, "2024-01-15", project.SalesStart.Format("2006-01-02"))
	require.Nil(t, project.SalesEnd)
	require.True(t, decimal.RequireFromString("1299.90").Equal(project.ProductPrice))
	require.True(t, project.OutdoorFeePresent)
}

func TestParseRowFallbacks(t *testing.T) {
	p := NewParser(10, 100)
	row := validRow("Wien", "Ringstraße 5")
	row[ColPlannedConstructionEnd] = TextCell{Value: "31.12.2024"}
	row[ColConstructionCompleted] = ErrorCell{Code: "#N/A"}
	row[ColNumberOfHomes] = TextCell{Value: "viele"}
	row[ColContractPresent] = TextCell{Value: "vielleicht"}
	row[ColProductPrice] = TextCell{Value: "auf Anfrage"}
	row[ColSalesStart] = BoolCell{Value: true}

	project, err := p.ParseRow(row, 4)
	require.NoError(t, err)
	require.Nil(t, project.PlannedConstructionEnd)
	require.Nil(t, project.SalesStart)
	require.False(t, project.ConstructionCompleted)
	require.False(t, project.ContractPresent)
	require.Zero(t, project.NumberOfHomes)
	require.True(t, project.ProductPrice.IsZero())
}

func TestParseRowClampsNegativeNumbers(t *testing.T) {
	p := NewParser(10, 100)
	row := validRow("Wien", "Ringstraße 6")
	row[ColNumberOfHomes] = NumberCell{Value: -4}
	row[ColProductPrice] = NumberCell{Value: -10.5}

	project, err := p.ParseRow(row, 1)
	require.NoError(t, err)
	require.Zero(t, project.NumberOfHomes)
	require.True(t, project.ProductPrice.IsZero())
}

func TestParseRowRequiredFields(t *testing.T) {
	p := NewParser(10, 100)

	_, err := p.ParseRow(memRow{ColAddress: TextCell{Value: "Hauptstraße 1"}}, 3)
	require.EqualError(t, err, "row 3: region name is required")

	_, err = p.ParseRow(memRow{ColRegion: TextCell{Value: "Wien"}, ColAddress: TextCell{Value: "   "}}, 2)
	require.EqualError(t, err, "row 2: address text is required")

	var rowErr errors.RowError
	require.ErrorAs(t, err, &rowErr)
	require.Equal(t, 2, rowErr.Row)
	require.Equal(t, "address_text", rowErr.Field)
}

func TestParseRowAddressTooLong(t *testing.T) {
	p := NewParser(10, 100)
	long := make([]rune, 501)
	for i := range long {
		long[i] = 'ß'
	}

	_, err := p.ParseRow(validRow("Wien", string(long)), 7)
	require.EqualError(t, err, "row 7: address text exceeds 500 characters")

	_, err = p.ParseRow(validRow("Wien", string(long[:500])), 7)
	require.NoError(t, err)
}

func TestParseRowRejectsValuesBeyondColumnLimits(t *testing.T) {
	p := NewParser(10, 100)
	long := strings.Repeat("x", 256)

	tests := []struct {
		name string
		col  int
		cell Cell
		want string
	}{
		{name: "operator", col: ColOperator, cell: TextCell{Value: long}, want: "row 3: operator exceeds 255 characters"},
		{name: "status", col: ColStatus, cell: TextCell{Value: long}, want: "row 3: status exceeds 255 characters"},
		{name: "commission category", col: ColCommissionCategory, cell: TextCell{Value: long}, want: "row 3: commission category exceeds 255 characters"},
		{name: "kg number", col: ColKGNumber, cell: TextCell{Value: long}, want: "row 3: KG number exceeds 255 characters"},
		{name: "construction company", col: ColConstructionCompany, cell: TextCell{Value: long}, want: "row 3: construction company exceeds 255 characters"},
		{name: "price", col: ColProductPrice, cell: NumberCell{Value: 12345678901.5}, want: "row 3: product price exceeds 9999999999.99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow("Wien", "Hauptstraße 1")
			row[tt.col] = tt.cell
			_, err := p.ParseRow(row, 3)
			require.EqualError(t, err, tt.want)
		})
	}
}

func TestParseRowAcceptsValuesAtColumnLimits(t *testing.T) {
	p := NewParser(10, 100)
	row := validRow("Wien", "Hauptstraße 1")
	row[ColOperator] = TextCell{Value: strings.Repeat("ß", 255)}
	row[ColProductPrice] = TextCell{Value: "9999999999.99"}

	project, err := p.ParseRow(row, 3)
	require.NoError(t, err)
	require.Len(t, []rune(project.Operator), 255)
	require.True(t, decimal.RequireFromString("9999999999.99").Equal(project.ProductPrice))
}

func TestParseSheetSkipsRowsBeyondColumnLimits(t *testing.T) {
	p := NewParser(10, 100)
	oversized := validRow("Wien", "Hauptstraße 2")
	oversized[ColOperator] = TextCell{Value: strings.Repeat("x", 300)}
	sheet := memSheet{header, validRow("Wien", "Hauptstraße 1"), oversized}

	result, err := p.ParseSheet(context.Background(), sheet)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	require.Equal(t, []string{"row 2: operator exceeds 255 characters"}, result.Messages())
}

func TestParseSheetCollectsRowErrors(t *testing.T) {
	p := NewParser(10, 100)
	sheet := memSheet{
		header,
		validRow("Wien", "Hauptstraße 1"),
		memRow{ColRegion: TextCell{Value: "Wien"}},
		{},
		validRow("Graz", "Herrengasse 3"),
	}

	result, err := p.ParseSheet(context.Background(), sheet)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	require.Equal(t, 1, result.Rows[0].Row)
	require.Equal(t, 4, result.Rows[1].Row)
	require.Equal(t, 3, result.TotalRows)
	require.Equal(t, []string{"row 2: address text is required"}, result.Messages())
}

func TestParseSheetStructuralFailures(t *testing.T) {
	p := NewParser(10, 2)
	ctx := context.Background()

	_, err := p.ParseSheet(ctx, memSheet{})
	require.ErrorIs(t, err, errors.ErrEmptyFile)

	_, err = p.ParseSheet(ctx, memSheet{header})
	require.ErrorIs(t, err, errors.ErrHeaderOnly)
	require.ErrorIs(t, err, errors.ErrInvalidFileFormat)

	_, err = p.ParseSheet(ctx, memSheet{header, {}, {}})
	require.ErrorIs(t, err, errors.ErrHeaderOnly)

	_, err = p.ParseSheet(ctx, memSheet{header, validRow("a", "1"), validRow("a", "2"), validRow("a", "3")})
	require.ErrorIs(t, err, errors.ErrTooManyRows)
}

func TestParseSheetNoValidRows(t *testing.T) {
	p := NewParser(10, 100)
	sheet := memSheet{header, memRow{ColRegion: TextCell{Value: "Wien"}}, memRow{ColAddress: TextCell{Value: "x"}}}

	result, err := p.ParseSheet(context.Background(), sheet)
	require.ErrorIs(t, err, errors.ErrNoValidRows)
	require.NotNil(t, result)
	require.Empty(t, result.Rows)
	require.Equal(t, []string{
		"row 1: address text is required",
		"row 2: region name is required",
	}, result.Messages())
}

func TestParseSheetCircuitBreaker(t *testing.T) {
	p := NewParser(3, 100)
	sheet := memSheet{header, validRow("Wien", "Hauptstraße 1")}
	for i := 0; i < 4; i++ {
		sheet = append(sheet, memRow{ColRegion: TextCell{Value: fmt.Sprintf("R%d", i)}})
	}

	result, err := p.ParseSheet(context.Background(), sheet)
	require.Nil(t, result)
	require.ErrorIs(t, err, errors.ErrTooManyErrors)
	require.NotErrorIs(t, err, errors.ErrInvalidFileFormat)
	require.Contains(t, err.Error(), "Last error at row 5")
}

func TestParseSheetAtErrorCeilingDoesNotTrip(t *testing.T) {
	p := NewParser(3, 100)
	sheet := memSheet{header, validRow("Wien", "Hauptstraße 1")}
	for i := 0; i < 3; i++ {
		sheet = append(sheet, memRow{ColRegion: TextCell{Value: "Wien"}})
	}

	result, err := p.ParseSheet(context.Background(), sheet)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	require.Len(t, result.Errors, 3)
}

func TestParseSheetDefaultCeiling(t *testing.T) {
	p := NewParser(0, 0)
	sheet := memSheet{header}
	for i := 0; i < DefaultMaxErrors+1; i++ {
		sheet = append(sheet, memRow{ColRegion: TextCell{Value: "Wien"}})
	}

	_, err := p.ParseSheet(context.Background(), sheet)
	require.ErrorIs(t, err, errors.ErrTooManyErrors)
}

func TestParseSheetHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser(10, 100).ParseSheet(ctx, memSheet{header, validRow("Wien", "a")})
	require.ErrorIs(t, err, context.Canceled)
}
