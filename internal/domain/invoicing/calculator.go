package invoicing

import (
	"fmt"
	"slices"
	"strings"

	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

var maxTaxRate = decimal.NewFromInt(100)

// ItemInput is a line item as authored by the user. It has no derived fields.
type ItemInput struct {
	ProductRef     string
	Name           string
	Description    string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	TaxRatePercent decimal.Decimal
}

// DocumentItem is a priced line item. Subtotal, TaxAmount and Total are
// always the output of CalculateLineItem for the authored fields.
type DocumentItem struct {
	ProductRef     string            `json:"productRef,omitempty"`
	Name           string            `json:"name"`
	Description    string            `json:"description,omitempty"`
	Quantity       decimal.Decimal   `json:"quantity"`
	UnitPrice      valueobject.Money `json:"unitPrice"`
	TaxRatePercent decimal.Decimal   `json:"taxRatePercent"`
	Subtotal       valueobject.Money `json:"subtotal"`
	TaxAmount      valueobject.Money `json:"taxAmount"`
	Total          valueobject.Money `json:"total"`
}

// LineTotals is the derived part of a line item
type LineTotals struct {
	Subtotal  valueobject.Money
	TaxAmount valueobject.Money
	Total     valueobject.Money
}

// TaxBreakdownEntry is the tax collected at one rate
type TaxBreakdownEntry struct {
	Rate    decimal.Decimal   `json:"rate"`
	Taxable valueobject.Money `json:"taxable"`
	Amount  valueobject.Money `json:"amount"`
}

// DocumentTotals are the document-level sums of its items
type DocumentTotals struct {
	Subtotal     valueobject.Money   `json:"subtotal"`
	TotalTax     valueobject.Money   `json:"totalTax"`
	Total        valueobject.Money   `json:"total"`
	TaxBreakdown []TaxBreakdownEntry `json:"taxBreakdown"`
}

// ZeroTotals returns the totals of an empty document
func ZeroTotals(currency valueobject.Currency) DocumentTotals {
	zero := valueobject.Zero(currency)
	return DocumentTotals{Subtotal: zero, TotalTax: zero, Total: zero, TaxBreakdown: []TaxBreakdownEntry{}}
}

// CalculateLineItem prices one line: subtotal = quantity x unitPrice,
// taxAmount = taxRatePercent% of subtotal, total = subtotal + taxAmount.
// All arithmetic is on minor units with half-to-even rounding.
func CalculateLineItem(quantity, unitPrice, taxRatePercent decimal.Decimal, currency valueobject.Currency) (LineTotals, error) {
	if quantity.IsNegative() {
		return LineTotals{}, shared.NewDomainError(ErrInvalidItem.Code, "quantity cannot be negative")
	}
	if taxRatePercent.IsNegative() || taxRatePercent.GreaterThan(maxTaxRate) {
		return LineTotals{}, shared.NewDomainError(ErrInvalidItem.Code, "tax rate must be between 0 and 100")
	}

	price, err := valueobject.FromDecimal(unitPrice, currency)
	if err != nil {
		return LineTotals{}, err
	}
	subtotal, err := price.Multiply(quantity)
	if err != nil {
		return LineTotals{}, err
	}
	tax, err := subtotal.PercentageOf(taxRatePercent)
	if err != nil {
		return LineTotals{}, err
	}
	total, err := subtotal.Add(tax)
	if err != nil {
		return LineTotals{}, err
	}

	return LineTotals{Subtotal: subtotal, TaxAmount: tax, Total: total}, nil
}

// CalculateDocumentTotals sums the derived fields of the items and groups
// tax by rate, sorted by ascending rate.
func CalculateDocumentTotals(items []DocumentItem, currency valueobject.Currency) (DocumentTotals, error) {
	totals := ZeroTotals(currency)
	byRate := make(map[string]*TaxBreakdownEntry)

	for i, item := range items {
		var err error
		if totals.Subtotal, err = totals.Subtotal.Add(item.Subtotal); err != nil {
			return DocumentTotals{}, fmt.Errorf("item %d: %w", i, err)
		}
		if totals.TotalTax, err = totals.TotalTax.Add(item.TaxAmount); err != nil {
			return DocumentTotals{}, fmt.Errorf("item %d: %w", i, err)
		}
		if totals.Total, err = totals.Total.Add(item.Total); err != nil {
			return DocumentTotals{}, fmt.Errorf("item %d: %w", i, err)
		}

		key := item.TaxRatePercent.String()
		entry, ok := byRate[key]
		if !ok {
			entry = &TaxBreakdownEntry{
				Rate:    item.TaxRatePercent,
				Taxable: valueobject.Zero(currency),
				Amount:  valueobject.Zero(currency),
			}
			byRate[key] = entry
		}
		if entry.Taxable, err = entry.Taxable.Add(item.Subtotal); err != nil {
			return DocumentTotals{}, err
		}
		if entry.Amount, err = entry.Amount.Add(item.TaxAmount); err != nil {
			return DocumentTotals{}, err
		}
	}

	for _, entry := range byRate {
		totals.TaxBreakdown = append(totals.TaxBreakdown, *entry)
	}
	slices.SortFunc(totals.TaxBreakdown, func(a, b TaxBreakdownEntry) int {
		return a.Rate.Cmp(b.Rate)
	})

	return totals, nil
}

// PriceItems validates authored items, derives every line's amounts and
// the document totals. It is the only way items and totals are produced.
func PriceItems(inputs []ItemInput, currency valueobject.Currency) ([]DocumentItem, DocumentTotals, error) {
	items := make([]DocumentItem, 0, len(inputs))
	for i, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, DocumentTotals{}, shared.NewDomainError(ErrInvalidItem.Code, fmt.Sprintf("item %d: name is required", i))
		}

		line, err := CalculateLineItem(in.Quantity, in.UnitPrice, in.TaxRatePercent, currency)
		if err != nil {
			return nil, DocumentTotals{}, fmt.Errorf("item %d: %w", i, err)
		}
		price, err := valueobject.FromDecimal(in.UnitPrice, currency)
		if err != nil {
			return nil, DocumentTotals{}, err
		}

		items = append(items, DocumentItem{
			ProductRef:     strings.TrimSpace(in.ProductRef),
			Name:           name,
			Description:    in.Description,
			Quantity:       in.Quantity,
			UnitPrice:      price,
			TaxRatePercent: in.TaxRatePercent,
			Subtotal:       line.Subtotal,
			TaxAmount:      line.TaxAmount,
			Total:          line.Total,
		})
	}

	totals, err := CalculateDocumentTotals(items, currency)
	if err != nil {
		return nil, DocumentTotals{}, err
	}
	return items, totals, nil
}

// Inputs returns the authored fields of the items, for re-pricing
func Inputs(items []DocumentItem) []ItemInput {
	out := make([]ItemInput, len(items))
	for i, item := range items {
		out[i] = ItemInput{
			ProductRef:     item.ProductRef,
			Name:           item.Name,
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice.ToDecimal(),
			TaxRatePercent: item.TaxRatePercent,
		}
	}
	return out
}
