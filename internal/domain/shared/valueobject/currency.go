package valueobject

import (
	"fmt"
	"strings"

	"github.com/invoicing/backend/internal/domain/shared"
	"golang.org/x/text/currency"
)

// Currency represents an ISO 4217 currency code
type Currency string

const (
	USD Currency = "USD" // US Dollar
	EUR Currency = "EUR" // Euro
	GBP Currency = "GBP" // British Pound
	CHF Currency = "CHF" // Swiss Franc
	JPY Currency = "JPY" // Japanese Yen, no minor unit
	KWD Currency = "KWD" // Kuwaiti Dinar, three decimal places
	BHD Currency = "BHD" // Bahraini Dinar, three decimal places
)

// ErrUnsupportedCurrency is returned for codes that are not ISO 4217 currencies
var ErrUnsupportedCurrency = shared.NewDomainError("UNSUPPORTED_CURRENCY", "Unsupported currency code")

// nonTender lists ISO 4217 codes for metals, funds, testing and "no
// currency". They parse as currencies but cannot price a document.
var nonTender = map[string]struct{}{
	"XAU": {}, "XAG": {}, "XPT": {}, "XPD": {},
	"XBA": {}, "XBB": {}, "XBC": {}, "XBD": {},
	"XDR": {}, "XSU": {}, "XUA": {},
	"XTS": {}, "XXX": {},
}

// lookup resolves code to its minor-unit scale. Only tender currencies
// with 0, 2 or 3 decimal places are supported, so units of account such
// as CLF (4 places) are rejected.
func lookup(code string) (int32, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return 0, shared.WrapDomainError(ErrUnsupportedCurrency.Code, "unsupported currency code "+code, err)
	}
	if _, ok := nonTender[unit.String()]; ok {
		return 0, shared.NewDomainError(ErrUnsupportedCurrency.Code, "unsupported currency code "+code+": not a tender currency")
	}
	scale, _ := currency.Standard.Rounding(unit)
	switch scale {
	case 0, 2, 3:
		return int32(scale), nil
	default:
		return 0, shared.NewDomainError(ErrUnsupportedCurrency.Code,
			fmt.Sprintf("unsupported currency code %s: %d decimal places", code, scale))
	}
}

// ParseCurrency normalizes and validates a currency code
func ParseCurrency(code string) (Currency, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if _, err := lookup(normalized); err != nil {
		return "", err
	}
	return Currency(normalized), nil
}

// DecimalPlaces returns the number of minor-unit digits of the currency
// (0 for JPY, 2 for USD, 3 for KWD).
func DecimalPlaces(c Currency) (int32, error) {
	return lookup(string(c))
}

// String returns the currency code
func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether the code is a supported tender currency
func (c Currency) IsValid() bool {
	_, err := lookup(string(c))
	return err == nil
}

// scaleOf is DecimalPlaces for currencies already validated at construction.
// The zero Money has no currency and falls back to two places.
func scaleOf(c Currency) int32 {
	scale, err := DecimalPlaces(c)
	if err != nil {
		return 2
	}
	return scale
}
