package invoicing

import (
	"time"
)

// ApplyCreditNote posts the credit note to its invoice as a credit_note
// payment and marks the note applied. The payment may not exceed the
// amount due, so a credit note never pushes an invoice past paid.
// Nothing is modified when an error is returned.
func ApplyCreditNote(invoice *Invoice, note *CreditNote, at time.Time) error {
	if err := note.checkApplicable(invoice); err != nil {
		return err
	}

	payment := Payment{
		Amount:     note.Total(),
		Date:       at,
		Method:     PaymentMethodCreditNote,
		Reference:  note.Number,
		RecordedAt: at,
	}
	if err := invoice.appendPayment(payment, false); err != nil {
		return err
	}
	note.markApplied(at)

	invoice.AddDomainEvent(NewCreditNoteAppliedEvent(invoice, note))

	return nil
}

// ApplyDebitNote raises the invoice total by the debit note total and
// marks the note applied. The payment ledger is untouched, so a paid
// invoice moves back to partial.
func ApplyDebitNote(invoice *Invoice, note *DebitNote, at time.Time) error {
	if err := note.checkApplicable(invoice); err != nil {
		return err
	}

	adj := Adjustment{
		DebitNoteID: note.ID,
		Number:      note.Number,
		Amount:      note.Total(),
		AppliedAt:   at,
	}
	if err := invoice.applyDebit(adj); err != nil {
		return err
	}
	note.markApplied(at)

	invoice.AddDomainEvent(NewDebitNoteAppliedEvent(invoice, note))

	return nil
}
