package invoicing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// DefaultNumberPadWidth is the zero-padded width of the counter part
const DefaultNumberPadWidth = 4

// Prefix returns the number prefix of the document type
func (t DocumentType) Prefix() string {
	switch t {
	case DocumentTypeQuotation:
		return "QT-"
	case DocumentTypeInvoice:
		return "INV-"
	case DocumentTypeCreditNote:
		return "CN-"
	case DocumentTypeDebitNote:
		return "DN-"
	}
	return ""
}

// FormatDocumentNumber renders prefix + zero-padded counter, e.g. INV-0042.
// Counters wider than the pad are printed in full.
func FormatDocumentNumber(t DocumentType, counter int64, width int) string {
	if width <= 0 {
		width = DefaultNumberPadWidth
	}
	return fmt.Sprintf("%s%0*d", t.Prefix(), width, counter)
}

// CounterStore hands out per-company, per-type sequence values.
type CounterStore interface {
	// Increment atomically bumps the company's counter for docType and
	// returns the value it held before the increment. Concurrent callers
	// always receive distinct values. Returns company.ErrCompanyNotFound
	// when the company does not exist.
	Increment(ctx context.Context, companyID uuid.UUID, docType DocumentType) (int64, error)
}
