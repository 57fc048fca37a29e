package domain

import "time"

type AddressType string

const (
	AddressTypeHome  AddressType = "home"
	AddressTypeWork  AddressType = "work"
	AddressTypeOther AddressType = "other"
)

// Address belongs to one user. At most one address per user carries
// IsDefault=true; the repository enforces this transactionally.
type Address struct {
	ID          string      `json:"id"`
	UserID      string      `json:"-"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	AddressLine string      `json:"addressLine"`
	City        string      `json:"city"`
	State       string      `json:"state"`
	PinCode     string      `json:"pinCode"`
	PhoneNumber string      `json:"phoneNumber"`
	Country     string      `json:"country"`
	AddressType AddressType `json:"addressType"`
	IsDefault   bool        `json:"isDefault"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// ValidAddressType reports whether t is one of home/work/other.
func ValidAddressType(t AddressType) bool {
	switch t {
	case AddressTypeHome, AddressTypeWork, AddressTypeOther:
		return true
	}
	return false
}
