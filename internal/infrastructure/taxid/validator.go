// Package taxid provides the structural tax-ID check used to annotate
// snapshot changes. It does not know country-specific formats or
// checksums; those are plugged in through Rules.
package taxid

import (
	"regexp"
	"strings"
)

// genericPattern accepts 4-20 letters or digits, optionally separated by
// single spaces, dots, dashes or slashes.
var genericPattern = regexp.MustCompile(`^[A-Za-z0-9](?:[ ./\-]?[A-Za-z0-9]){3,19}$`)

// vatPrefix matches the two-letter country prefix EU VAT numbers carry
var vatPrefix = regexp.MustCompile(`^[A-Za-z]{2}`)

// Rules maps "COUNTRY/field" (e.g. "FR/siret") to a pattern that replaces
// the generic check for that combination.
type Rules map[string]*regexp.Regexp

// Validator checks tax-ID formats
type Validator struct {
	rules Rules
}

// NewValidator creates a validator with optional per-country rules
func NewValidator(rules Rules) *Validator {
	if rules == nil {
		rules = Rules{}
	}
	return &Validator{rules: rules}
}

// ValidateTaxIDFormat reports whether value is well-formed for field in
// country. A "vat" value that starts with a country prefix must use the
// snapshot's country.
func (v *Validator) ValidateTaxIDFormat(country, field, value string) bool {
	country = strings.ToUpper(strings.TrimSpace(country))
	field = strings.ToLower(strings.TrimSpace(field))
	value = strings.TrimSpace(value)

	if re, ok := v.rules[country+"/"+field]; ok {
		return re.MatchString(value)
	}
	if !genericPattern.MatchString(value) {
		return false
	}
	if field == "vat" && len(country) == 2 {
		if prefix := vatPrefix.FindString(value); prefix != "" {
			return strings.EqualFold(prefix, country) || (country == "GR" && strings.EqualFold(prefix, "EL"))
		}
	}
	return true
}
