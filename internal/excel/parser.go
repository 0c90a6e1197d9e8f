package excel

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Yaro-bit/SimpleSalesman/internal/logger"
	"github.com/Yaro-bit/SimpleSalesman/internal/model"
	"github.com/Yaro-bit/SimpleSalesman/pkg/errors"
)

// Column layout of the project sheet (0-based). Column 0 is not imported.
const (
	ColRegion = iota + 1
	ColPlannedConstructionEnd
	ColConstructionCompleted
	ColAddress
	ColOperator
	ColStatus
	ColNumberOfHomes
	ColContractPresent
	ColCommissionCategory
	ColKGNumber
	ColConstructionCompany
	ColSalesStart
	ColSalesEnd
	ColProductPrice
	ColOutdoorFeePresent

	ColumnCount
)

const (
	DefaultMaxErrors = 1000
	DefaultMaxRows   = 200000

	progressEvery = 1000
)

// ParseResult holds the outcome of parsing one worksheet.
type ParseResult struct {
	Rows      []model.ProjectRow
	Errors    []errors.RowError
	TotalRows int
}

// Messages renders the row errors in row order.
func (r *ParseResult) Messages() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Error())
	}
	return out
}

type Parser struct {
	maxErrors int
	maxRows   int
	validator *Validator
	log       zerolog.Logger
}

func NewParser(maxErrors, maxRows int) *Parser {
	if maxErrors < 1 {
		maxErrors = DefaultMaxErrors
	}
	if maxRows < 1 {
		maxRows = DefaultMaxRows
	}
	return &Parser{
		maxErrors: maxErrors,
		maxRows:   maxRows,
		validator: NewValidator(),
		log:       logger.Component("excel_parser"),
	}
}

// Parse decodes an xlsx file and parses its first worksheet.
func (p *Parser) Parse(ctx context.Context, data []byte) (*ParseResult, error) {
	wb, err := OpenWorkbook(data)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheet, err := wb.FirstSheet()
	if err != nil {
		return nil, err
	}

	p.log.Debug().Str("sheet", sheet.Name()).Msg("Parsing first worksheet")
	return p.ParseSheet(ctx, sheet)
}

// ParseSheet skips the header row and parses every data row. A bad row is
// recorded and skipped; parsing aborts once the error count exceeds the
// ceiling. When no row could be parsed but errors occurred, the partial
// result is returned together with ErrNoValidRows.
func (p *Parser) ParseSheet(ctx context.Context, sheet SheetSource) (*ParseResult, error) {
	rows, err := sheet.Rows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.ErrEmptyFile
	}
	if len(rows) == 1 {
		return nil, errors.ErrHeaderOnly
	}
	if len(rows)-1 > p.maxRows {
		return nil, fmt.Errorf("%w (%d > %d)", errors.ErrTooManyRows, len(rows)-1, p.maxRows)
	}

	result := &ParseResult{}
	for i, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rowNum := i + 1
		if isBlankRow(row) {
			continue
		}
		result.TotalRows++

		project, err := p.ParseRow(row, rowNum)
		if err != nil {
			var rowErr errors.RowError
			if !stderrors.As(err, &rowErr) {
				rowErr = errors.NewRowError(rowNum, "", err.Error())
			}
			result.Errors = append(result.Errors, rowErr)
			p.log.Warn().Int("row", rowNum).Str("reason", rowErr.Reason).Msg("Skipping row")

			if len(result.Errors) > p.maxErrors {
				return nil, fmt.Errorf("%w (>%d). Last error at row %d: %s",
					errors.ErrTooManyErrors, p.maxErrors, rowNum, rowErr.Reason)
			}
		} else {
			result.Rows = append(result.Rows, model.ProjectRow{Row: rowNum, Project: project})
		}

		if rowNum%progressEvery == 0 {
			p.log.Info().
				Int("rows", rowNum).
				Int("parsed", len(result.Rows)).
				Int("errors", len(result.Errors)).
				Msg("Parsing progress")
		}
	}

	p.log.Info().
		Int("rows", result.TotalRows).
		Int("parsed", len(result.Rows)).
		Int("errors", len(result.Errors)).
		Msg("Spreadsheet parsing complete")

	if len(result.Rows) == 0 {
		if len(result.Errors) > 0 {
			return result, errors.ErrNoValidRows
		}
		return nil, errors.ErrHeaderOnly
	}
	return result, nil
}

// ParseRow maps one data row onto a transient Project -> Address -> Region
// graph. The only failures are missing required cells and validation errors,
// both reported as errors.RowError.
func (p *Parser) ParseRow(row RowSource, rowNum int) (*model.Project, error) {
	regionName := CellText(row.Cell(ColRegion))
	if regionName == "" {
		return nil, errors.NewRowError(rowNum, "region", "region name is required")
	}
	addressText := CellText(row.Cell(ColAddress))
	if addressText == "" {
		return nil, errors.NewRowError(rowNum, "address_text", "address text is required")
	}

	project := &model.Project{
		Address: &model.Address{
			AddressText: addressText,
			Region:      &model.Region{Name: regionName},
		},
		PlannedConstructionEnd: CellDate(row.Cell(ColPlannedConstructionEnd)),
		ConstructionCompleted:  CellBool(row.Cell(ColConstructionCompleted)),
		Operator:               CellText(row.Cell(ColOperator)),
		Status:                 CellText(row.Cell(ColStatus)),
		NumberOfHomes:          p.nonNegativeInt(row.Cell(ColNumberOfHomes), rowNum),
		ContractPresent:        CellBool(row.Cell(ColContractPresent)),
		CommissionCategory:     CellText(row.Cell(ColCommissionCategory)),
		KGNumber:               CellText(row.Cell(ColKGNumber)),
		ConstructionCompany:    CellText(row.Cell(ColConstructionCompany)),
		SalesStart:             CellDate(row.Cell(ColSalesStart)),
		SalesEnd:               CellDate(row.Cell(ColSalesEnd)),
		ProductPrice:           p.nonNegativeDecimal(row.Cell(ColProductPrice), rowNum),
		OutdoorFeePresent:      CellBool(row.Cell(ColOutdoorFeePresent)),
	}

	if err := p.validator.Validate(project, rowNum); err != nil {
		return nil, err
	}
	return project, nil
}

func (p *Parser) nonNegativeInt(c Cell, rowNum int) int {
	n := CellInt(c)
	if n < 0 {
		p.log.Debug().Int("row", rowNum).Int("value", n).Msg("Negative number of homes, defaulting to 0")
		return 0
	}
	return n
}

func (p *Parser) nonNegativeDecimal(c Cell, rowNum int) decimal.Decimal {
	d := CellDecimal(c)
	if d.IsNegative() {
		p.log.Debug().Int("row", rowNum).Str("value", d.String()).Msg("Negative product price, defaulting to 0")
		return decimal.Zero
	}
	return d
}

func isBlankRow(row RowSource) bool {
	for col := 0; col < ColumnCount; col++ {
		if CellText(row.Cell(col)) != "" {
			return false
		}
	}
	return true
}
