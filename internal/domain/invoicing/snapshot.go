package invoicing

import (
	"maps"
	"slices"
	"strings"

	"github.com/invoicing/backend/internal/domain/partner"
)

// SnapshotChange is one differing field between two customer snapshots.
// Field is a dotted path such as "email", "address.city" or "taxIds.vat".
type SnapshotChange struct {
	Field       string `json:"field"`
	OldValue    string `json:"oldValue"`
	NewValue    string `json:"newValue"`
	FormatValid *bool  `json:"formatValid,omitempty"`
}

// CompareSnapshots returns one change per differing field. Tax IDs are
// compared over the union of both maps' keys so removed IDs show up too.
// Identical snapshots yield an empty (non-nil) list.
func CompareSnapshots(old, updated partner.CustomerSnapshot) []SnapshotChange {
	changes := []SnapshotChange{}

	add := func(field, oldValue, newValue string) {
		if oldValue != newValue {
			changes = append(changes, SnapshotChange{Field: field, OldValue: oldValue, NewValue: newValue})
		}
	}

	add("name", old.Name, updated.Name)
	add("email", old.Email, updated.Email)
	add("phone", old.Phone, updated.Phone)

	oldAddr, newAddr := old.Address.Fields(), updated.Address.Fields()
	for i := range oldAddr {
		add("address."+oldAddr[i][0], oldAddr[i][1], newAddr[i][1])
	}

	keys := slices.Sorted(maps.Keys(old.TaxIDs))
	for k := range updated.TaxIDs {
		if _, ok := old.TaxIDs[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	for _, k := range keys {
		add(TaxIDField(k), old.TaxIDs[k], updated.TaxIDs[k])
	}

	return changes
}

// TaxIDField returns the change path for a tax ID key
func TaxIDField(key string) string {
	return taxIDPrefix + key
}

const taxIDPrefix = "taxIds."

// TaxIDValidator checks the format of a tax ID for a country.
// It is a pure function supplied by the caller.
type TaxIDValidator interface {
	ValidateTaxIDFormat(country, field, value string) bool
}

// AnnotateTaxIDChanges marks each tax ID change whose new value is set
// with whether that value is well-formed for the snapshot's country.
func AnnotateTaxIDChanges(changes []SnapshotChange, country string, validator TaxIDValidator) {
	if validator == nil {
		return
	}
	for i := range changes {
		c := &changes[i]
		key, ok := strings.CutPrefix(c.Field, taxIDPrefix)
		if !ok || c.NewValue == "" {
			continue
		}
		valid := validator.ValidateTaxIDFormat(country, key, c.NewValue)
		c.FormatValid = &valid
	}
}
