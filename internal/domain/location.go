package domain

import "github.com/google/uuid"

// Location is a named place (supplier, warehouse) associated with a product.
type Location struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CountryCode *string   `json:"country_code"`
	Address     *string   `json:"address"`
}

// NewLocation returns a location with a freshly generated id.
func NewLocation(name string) Location {
	return Location{ID: uuid.New(), Name: name}
}

func (l *Location) Clone() Location {
	c := *l
	c.Description = cloneString(l.Description)
	c.CountryCode = cloneString(l.CountryCode)
	c.Address = cloneString(l.Address)
	return c
}

// StringPtr and FloatPtr help build optional fields.
func StringPtr(s string) *string { return &s }

func FloatPtr(f float64) *float64 { return &f }
