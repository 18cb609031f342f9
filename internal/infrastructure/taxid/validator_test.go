package taxid

import (
	"regexp"
	"testing"

	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/stretchr/testify/assert"
)

var _ invoicing.TaxIDValidator = (*Validator)(nil)

func TestValidator_Generic(t *testing.T) {
	v := NewValidator(nil)

	tests := []struct {
		name    string
		country string
		field   string
		value   string
		want    bool
	}{
		{"plain digits", "US", "ein", "12-3456789", true},
		{"vat with matching prefix", "DE", "vat", "DE123456789", true},
		{"vat prefix case-insensitive country", "de", "VAT", "de123456789", true},
		{"vat with foreign prefix", "FR", "vat", "DE123456789", false},
		{"greek vat uses EL", "GR", "vat", "EL123456789", true},
		{"vat without prefix", "FR", "vat", "12345678901", true},
		{"too short", "US", "ein", "123", false},
		{"too long", "US", "ein", "123456789012345678901", false},
		{"double separator", "US", "ein", "12--3456789", false},
		{"symbols", "US", "ein", "12#3456789", false},
		{"empty", "US", "ein", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.ValidateTaxIDFormat(tt.country, tt.field, tt.value))
		})
	}
}

func TestValidator_RulesOverrideGeneric(t *testing.T) {
	v := NewValidator(Rules{
		"FR/siret": regexp.MustCompile(`^\d{14}$`),
	})

	assert.True(t, v.ValidateTaxIDFormat("fr", "SIRET", "73282932000074"))
	assert.False(t, v.ValidateTaxIDFormat("FR", "siret", "7328293200007"))
	assert.True(t, v.ValidateTaxIDFormat("BE", "siret", "7328293200007"), "other countries use the generic check")
}
