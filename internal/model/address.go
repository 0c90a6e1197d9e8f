package model

type Address struct {
	ID          int64   `json:"id" db:"id"`
	AddressText string  `json:"address_text" db:"address_text" validate:"required,max=500"`
	RegionID    int64   `json:"region_id" db:"region_id"`
	Region      *Region `json:"region,omitempty" db:"-" validate:"required"`
}

// Persisted reports whether the store has assigned an identifier.
func (a *Address) Persisted() bool {
	return a != nil && a.ID > 0
}
