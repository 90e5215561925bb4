package domain

import (
	"time"
)

// Property type constants.
const (
	PropertyTypeApartment  = "apartment"
	PropertyTypeHouse      = "house"
	PropertyTypeRoom       = "room"
	PropertyTypeCommercial = "commercial"
)

// Property represents a rental unit managed by an owner.
type Property struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Type      string    `json:"type"`
	Rent      int64     `json:"rent"`
	DueDate   int       `json:"due_date"`
	Photos    []string  `json:"photos"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Amenity represents a service attached to a property, either included in the
// rent or billed as an extra monthly charge.
type Amenity struct {
	ID            string    `json:"id"`
	PropertyID    string    `json:"property_id"`
	Name          string    `json:"name"`
	Included      bool      `json:"included"`
	MonthlyCharge int64     `json:"monthly_charge"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ValidPropertyTypes returns all valid property types.
func ValidPropertyTypes() []string {
	return []string{
		PropertyTypeApartment,
		PropertyTypeHouse,
		PropertyTypeRoom,
		PropertyTypeCommercial,
	}
}

// IsValidPropertyType checks whether the given type is a valid property type.
func IsValidPropertyType(t string) bool {
	for _, v := range ValidPropertyTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// IsValidDueDate checks whether the given rent due day is a valid day of month (1-31).
func IsValidDueDate(day int) bool {
	return day >= 1 && day <= 31
}
