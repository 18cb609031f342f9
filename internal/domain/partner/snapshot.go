package partner

import (
	"maps"

	"github.com/invoicing/backend/internal/domain/shared/valueobject"
)

// CustomerSnapshot is a point-in-time copy of a customer's identity fields,
// embedded in every document when the document is created.
type CustomerSnapshot struct {
	Name    string              `json:"name"`
	Email   string              `json:"email"`
	Phone   string              `json:"phone"`
	Address valueobject.Address `json:"address"`
	TaxIDs  map[string]string   `json:"taxIds"`
}

// Equals reports structural equality. A nil and an empty TaxIDs map are equal.
func (s CustomerSnapshot) Equals(other CustomerSnapshot) bool {
	return s.Name == other.Name &&
		s.Email == other.Email &&
		s.Phone == other.Phone &&
		s.Address == other.Address &&
		maps.Equal(s.TaxIDs, other.TaxIDs)
}

// Clone returns a deep copy so callers cannot mutate a stored snapshot
func (s CustomerSnapshot) Clone() CustomerSnapshot {
	out := s
	out.TaxIDs = maps.Clone(s.TaxIDs)
	if out.TaxIDs == nil {
		out.TaxIDs = map[string]string{}
	}
	return out
}
