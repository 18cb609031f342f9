package invoicing

import (
	"fmt"
	"strings"
	"time"

	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
)

// PaymentMethod is how a payment was settled
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodCreditNote   PaymentMethod = "credit_note"
	PaymentMethodOther        PaymentMethod = "other"
)

// IsValid returns true if the method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCard,
		PaymentMethodCheck, PaymentMethodCreditNote, PaymentMethodOther:
		return true
	}
	return false
}

// IsClientRecordable returns false for methods only the system may record
func (m PaymentMethod) IsClientRecordable() bool {
	return m.IsValid() && m != PaymentMethodCreditNote
}

// Payment is one entry of an invoice's payment ledger. Payments are
// immutable; VoidPayment is the only way to remove one.
type Payment struct {
	Amount     valueobject.Money `json:"amount"`
	Date       time.Time         `json:"date"`
	Method     PaymentMethod     `json:"method"`
	Reference  string            `json:"reference,omitempty"`
	RecordedAt time.Time         `json:"recordedAt"`
}

// NewPayment creates a payment entry
func NewPayment(amount valueobject.Money, date time.Time, method PaymentMethod, reference string) (Payment, error) {
	if !method.IsValid() {
		return Payment{}, shared.NewDomainError(ErrInvalidPaymentMethod.Code, "invalid payment method "+string(method))
	}
	if !amount.IsPositive() {
		return Payment{}, shared.NewDomainError(ErrInvalidPaymentAmount.Code, "payment amount must be positive")
	}
	now := time.Now()
	if date.IsZero() {
		date = now
	}
	return Payment{
		Amount:     amount,
		Date:       date,
		Method:     method,
		Reference:  strings.TrimSpace(reference),
		RecordedAt: now,
	}, nil
}

// PaymentStatus is the derived settlement state of an invoice
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPartial  PaymentStatus = "partial"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusOverpaid PaymentStatus = "overpaid"
)

// PaymentSummary is the result of the status machine. AmountDue is signed:
// negative means overpaid. Use DisplayAmountDue for presentation.
type PaymentSummary struct {
	Status     PaymentStatus
	AmountPaid valueobject.Money
	AmountDue  valueobject.Money
}

// DisplayAmountDue returns AmountDue floored at zero
func (s PaymentSummary) DisplayAmountDue() valueobject.Money {
	if s.AmountDue.IsNegative() {
		return valueobject.Zero(s.AmountDue.Currency())
	}
	return s.AmountDue
}

// Overpayment returns how much was paid beyond the total, or zero
func (s PaymentSummary) Overpayment() valueobject.Money {
	if s.AmountDue.IsNegative() {
		return s.AmountDue.Negate()
	}
	return valueobject.Zero(s.AmountDue.Currency())
}

// CalculatePaymentStatus derives paid/due/status from the total and the
// full payment list. It is the only place status is computed.
func CalculatePaymentStatus(total valueobject.Money, payments []Payment) (PaymentSummary, error) {
	paid := valueobject.Zero(total.Currency())
	for i, p := range payments {
		var err error
		if paid, err = paid.Add(p.Amount); err != nil {
			return PaymentSummary{}, fmt.Errorf("payment %d: %w", i, err)
		}
	}

	due, err := total.Subtract(paid)
	if err != nil {
		return PaymentSummary{}, err
	}

	cmp, err := paid.Compare(total)
	if err != nil {
		return PaymentSummary{}, err
	}

	var status PaymentStatus
	switch {
	case cmp == 0:
		status = PaymentStatusPaid
	case cmp > 0:
		status = PaymentStatusOverpaid
	case paid.IsZero():
		status = PaymentStatusUnpaid
	default:
		status = PaymentStatusPartial
	}

	return PaymentSummary{Status: status, AmountPaid: paid, AmountDue: due}, nil
}

// ValidatePaymentAmount rejects non-positive amounts and, unless
// overpayment is allowed, amounts greater than the amount due.
func ValidatePaymentAmount(amount, amountDue valueobject.Money, allowOverpayment bool) error {
	if !amount.IsPositive() {
		return shared.NewDomainError(ErrInvalidPaymentAmount.Code, "payment amount must be positive")
	}
	cmp, err := amount.Compare(amountDue)
	if err != nil {
		return err
	}
	if cmp > 0 && !allowOverpayment {
		due := amountDue
		if due.IsNegative() {
			due = valueobject.Zero(due.Currency())
		}
		return shared.NewDomainError(ErrInvalidPaymentAmount.Code,
			fmt.Sprintf("payment of %s exceeds amount due of %s", amount, due))
	}
	return nil
}
