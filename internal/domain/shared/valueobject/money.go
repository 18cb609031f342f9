package valueobject

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Money errors
var (
	ErrCurrencyMismatch  = shared.NewDomainError("CURRENCY_MISMATCH", "cannot combine money with different currencies")
	ErrAmountOutOfRange  = shared.NewDomainError("AMOUNT_OUT_OF_RANGE", "amount exceeds the representable range")
	ErrInvalidAllocation = shared.NewDomainError("INVALID_ALLOCATION", "allocation ratios must be non-negative and not all zero")
	maxMinorUnits        = decimal.NewFromInt(math.MaxInt64)
	minMinorUnits        = decimal.NewFromInt(math.MinInt64)
)

// Money is a value object representing a monetary amount as an integer
// count of the currency's minor units (cents for USD, yen for JPY).
// It is immutable - all operations return new Money instances.
// Decimal conversion only happens at the boundary via FromDecimal/ToDecimal.
type Money struct {
	minor    int64
	currency Currency
}

// NewMoney creates Money from a minor-unit count
func NewMoney(minorUnits int64, currency Currency) (Money, error) {
	if !currency.IsValid() {
		return Money{}, shared.NewDomainError(ErrUnsupportedCurrency.Code, "unsupported currency code "+string(currency))
	}
	return Money{minor: minorUnits, currency: currency}, nil
}

// MustNewMoney is NewMoney that panics on an unsupported currency
func MustNewMoney(minorUnits int64, currency Currency) Money {
	m, err := NewMoney(minorUnits, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// FromDecimal converts a decimal amount in major units into Money,
// rounding half-to-even to the currency's minor unit.
func FromDecimal(value decimal.Decimal, currency Currency) (Money, error) {
	scale, err := DecimalPlaces(currency)
	if err != nil {
		return Money{}, err
	}
	minor, err := toMinor(value.Shift(scale))
	if err != nil {
		return Money{}, err
	}
	return Money{minor: minor, currency: currency}, nil
}

// FromString parses a decimal string such as "12.50" into Money
func FromString(value string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return FromDecimal(d, currency)
}

// MustFromString is FromString that panics on error. Intended for tests and constants.
func MustFromString(value string, currency Currency) Money {
	m, err := FromString(value, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	return Money{currency: currency}
}

// MinorUnits returns the integer amount in minor units
func (m Money) MinorUnits() int64 {
	return m.minor
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// ToDecimal returns the amount in major units (e.g. 12.50 for 1250 cents)
func (m Money) ToDecimal() decimal.Decimal {
	return decimal.New(m.minor, -scaleOf(m.currency))
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.minor == 0
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.minor > 0
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.minor < 0
}

// Add returns a new Money with the sum of both amounts
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	if (other.minor > 0 && m.minor > math.MaxInt64-other.minor) ||
		(other.minor < 0 && m.minor < math.MinInt64-other.minor) {
		return Money{}, ErrAmountOutOfRange
	}
	return Money{minor: m.minor + other.minor, currency: m.currency}, nil
}

// MustAdd is Add that panics on error
func (m Money) MustAdd(other Money) Money {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Subtract returns a new Money with the difference
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	if (other.minor < 0 && m.minor > math.MaxInt64+other.minor) ||
		(other.minor > 0 && m.minor < math.MinInt64+other.minor) {
		return Money{}, ErrAmountOutOfRange
	}
	return Money{minor: m.minor - other.minor, currency: m.currency}, nil
}

// MustSubtract is Subtract that panics on error
func (m Money) MustSubtract(other Money) Money {
	result, err := m.Subtract(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Multiply scales the amount by a (possibly fractional) factor such as
// 2.5 hours, rounding half-to-even to the nearest minor unit.
func (m Money) Multiply(factor decimal.Decimal) (Money, error) {
	minor, err := toMinor(decimal.NewFromInt(m.minor).Mul(factor))
	if err != nil {
		return Money{}, err
	}
	return Money{minor: minor, currency: m.currency}, nil
}

// PercentageOf returns percent% of the amount, rounded half-to-even
func (m Money) PercentageOf(percent decimal.Decimal) (Money, error) {
	minor, err := toMinor(decimal.NewFromInt(m.minor).Mul(percent).Shift(-2))
	if err != nil {
		return Money{}, err
	}
	return Money{minor: minor, currency: m.currency}, nil
}

// Negate returns the Money with opposite sign
func (m Money) Negate() Money {
	return Money{minor: -m.minor, currency: m.currency}
}

// Compare returns -1, 0 or 1 when m is less than, equal to or greater than other
func (m Money) Compare(other Money) (int, error) {
	if err := m.sameCurrency(other); err != nil {
		return 0, err
	}
	switch {
	case m.minor < other.minor:
		return -1, nil
	case m.minor > other.minor:
		return 1, nil
	default:
		return 0, nil
	}
}

// MustCompare is Compare that panics on error
func (m Money) MustCompare(other Money) int {
	c, err := m.Compare(other)
	if err != nil {
		panic(err)
	}
	return c
}

// Equals reports whether both amount and currency are equal
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.minor == other.minor
}

// Allocate splits the amount by the given ratios. The shares always sum
// exactly to m; leftover minor units go one at a time to the earliest
// shares whose ratio is non-zero. Zero ratios receive zero.
func (m Money) Allocate(ratios []int64) ([]Money, error) {
	if len(ratios) == 0 {
		return nil, ErrInvalidAllocation
	}
	sum := decimal.Zero
	for _, r := range ratios {
		if r < 0 {
			return nil, ErrInvalidAllocation
		}
		sum = sum.Add(decimal.NewFromInt(r))
	}
	if sum.IsZero() {
		return nil, ErrInvalidAllocation
	}

	amount := decimal.NewFromInt(m.minor)
	sign := decimal.NewFromInt(1)
	if amount.IsNegative() {
		amount = amount.Neg()
		sign = sign.Neg()
	}

	shares := make([]decimal.Decimal, len(ratios))
	allocated := decimal.Zero
	for i, r := range ratios {
		q, _ := amount.Mul(decimal.NewFromInt(r)).QuoRem(sum, 0)
		shares[i] = q
		allocated = allocated.Add(q)
	}

	one := decimal.NewFromInt(1)
	remainder := amount.Sub(allocated)
	for i := 0; remainder.IsPositive() && i < len(shares); i++ {
		if ratios[i] == 0 {
			continue
		}
		shares[i] = shares[i].Add(one)
		remainder = remainder.Sub(one)
	}

	result := make([]Money, len(shares))
	for i, s := range shares {
		result[i] = Money{minor: s.Mul(sign).IntPart(), currency: m.currency}
	}
	return result, nil
}

// Sum adds up amounts of one currency, starting from zero
func Sum(currency Currency, amounts ...Money) (Money, error) {
	total := Zero(currency)
	for _, a := range amounts {
		var err error
		total, err = total.Add(a)
		if err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

// String returns a human-readable representation such as "12.50 USD"
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.StringFixed(), m.currency)
}

// StringFixed returns the amount with exactly the currency's decimal places
func (m Money) StringFixed() string {
	return m.ToDecimal().StringFixed(scaleOf(m.currency))
}

type moneyJSON struct {
	Amount   string   `json:"amount"`
	Currency Currency `json:"currency"`
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.StringFixed(), Currency: m.currency})
}

// UnmarshalJSON implements json.Unmarshaler. The amount is parsed as a
// decimal and rounded half-to-even to the currency's minor unit.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := FromString(v.Amount, v.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m Money) sameCurrency(other Money) error {
	if m.currency != other.currency {
		return shared.NewDomainError(ErrCurrencyMismatch.Code,
			fmt.Sprintf("cannot combine %s with %s", m.currency, other.currency))
	}
	return nil
}

func toMinor(d decimal.Decimal) (int64, error) {
	rounded := d.RoundBank(0)
	if rounded.GreaterThan(maxMinorUnits) || rounded.LessThan(minMinorUnits) {
		return 0, ErrAmountOutOfRange
	}
	return rounded.IntPart(), nil
}
