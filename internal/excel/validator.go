package excel

import (
	stderrors "errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Yaro-bit/SimpleSalesman/internal/model"
	"github.com/Yaro-bit/SimpleSalesman/pkg/errors"
)

// Validator checks a parsed project graph against the store's column limits.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	return &Validator{validate: v}
}

// decimalValue lets numeric tags such as lte compare decimal amounts.
func decimalValue(field reflect.Value) interface{} {
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	f, _ := d.Float64()
	return f
}

// Validate returns an errors.RowError describing the first violation, or nil.
func (v *Validator) Validate(project *model.Project, rowNum int) error {
	if project == nil || project.Address == nil || project.Address.Region == nil {
		return errors.NewRowError(rowNum, "address", "project has no address")
	}

	err := v.validate.Struct(project)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.NewRowError(rowNum, "", err.Error())
	}

	fe := verrs[0]
	return errors.RowError{
		Row:    rowNum,
		Field:  fe.Namespace(),
		Value:  fe.Value(),
		Reason: describe(fe),
	}
}

var fieldNames = map[string]string{
	"Project.Address.AddressText": "address text",
	"Project.Address.Region.Name": "region name",
	"Project.NumberOfHomes":       "number of homes",
	"Project.Status":              "status",
	"Project.Operator":            "operator",
	"Project.ConstructionCompany": "construction company",
	"Project.CommissionCategory":  "commission category",
	"Project.KGNumber":            "KG number",
	"Project.ProductPrice":        "product price",
}

func describe(fe validator.FieldError) string {
	field, ok := fieldNames[fe.StructNamespace()]
	if !ok {
		field = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s exceeds %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must not be negative", field)
	case "lte":
		return fmt.Sprintf("%s exceeds %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
