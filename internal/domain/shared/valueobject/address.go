package valueobject

import (
	"strings"
)

// Address is a value object representing a postal address.
// Fields are exported because addresses are embedded verbatim in
// customer snapshots and compared field by field.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// NewAddress creates a trimmed Address. The country is upper-cased so
// it can be used as an ISO 3166 alpha-2 code by tax-ID validation.
func NewAddress(street, city, state, postalCode, country string) Address {
	return Address{
		Street:     strings.TrimSpace(street),
		City:       strings.TrimSpace(city),
		State:      strings.TrimSpace(state),
		PostalCode: strings.TrimSpace(postalCode),
		Country:    strings.ToUpper(strings.TrimSpace(country)),
	}
}

// IsEmpty returns true if no field is set
func (a Address) IsEmpty() bool {
	return a == Address{}
}

// Equals reports whether both addresses are identical
func (a Address) Equals(other Address) bool {
	return a == other
}

// Fields returns the address as ordered name/value pairs for field-level diffs
func (a Address) Fields() [][2]string {
	return [][2]string{
		{"street", a.Street},
		{"city", a.City},
		{"state", a.State},
		{"postalCode", a.PostalCode},
		{"country", a.Country},
	}
}

// String returns a single-line address, skipping empty parts
func (a Address) String() string {
	parts := make([]string, 0, 5)
	for _, f := range a.Fields() {
		if f[1] != "" {
			parts = append(parts, f[1])
		}
	}
	return strings.Join(parts, ", ")
}
