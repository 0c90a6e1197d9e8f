package model

// Region groups addresses; Name is its natural key.
type Region struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name" validate:"required,max=255"`
}
