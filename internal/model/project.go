package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Project struct {
	ID                     int64           `json:"id" db:"id"`
	AddressID              int64           `json:"address_id" db:"address_id"`
	Status                 string          `json:"status" db:"status" validate:"max=255"`
	Operator               string          `json:"operator" db:"operator" validate:"max=255"`
	ConstructionCompany    string          `json:"construction_company" db:"construction_company" validate:"max=255"`
	PlannedConstructionEnd *time.Time      `json:"planned_construction_end,omitempty" db:"planned_construction_end"`
	ConstructionCompleted  bool            `json:"construction_completed" db:"construction_completed"`
	SalesStart             *time.Time      `json:"sales_start,omitempty" db:"sales_start"`
	SalesEnd               *time.Time      `json:"sales_end,omitempty" db:"sales_end"`
	NumberOfHomes          int             `json:"number_of_homes" db:"number_of_homes" validate:"gte=0"`
	ContractPresent        bool            `json:"contract_present" db:"contract_present"`
	CommissionCategory     string          `json:"commission_category" db:"commission_category" validate:"max=255"`
	KGNumber               string          `json:"kg_number" db:"kg_number" validate:"max=255"`
	ProductPrice           decimal.Decimal `json:"product_price" db:"product_price" validate:"gte=0,lte=9999999999.99"`
	OutdoorFeePresent      bool            `json:"outdoor_fee_present" db:"outdoor_fee_present"`
	Address                *Address        `json:"address,omitempty" db:"-" validate:"required"`
}

// ProjectRow is a parsed project graph together with the data row it came from.
type ProjectRow struct {
	Row     int
	Project *Project
}
