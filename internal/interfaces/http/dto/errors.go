package dto

import (
	"net/http"
	"strings"
)

// Transport-level error codes. Domain errors keep their own codes
// (INVOICE_NOT_FOUND, ALREADY_APPLIED, ...) and are mapped by GetHTTPStatus.
const (
	ErrCodeInternal       = "ERR_INTERNAL"
	ErrCodeBadRequest     = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON    = "ERR_INVALID_JSON"
	ErrCodeValidation     = "ERR_VALIDATION"
	ErrCodeTenantRequired = "ERR_TENANT_REQUIRED"
	ErrCodeRequestTooBig  = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRouteNotFound  = "ERR_ROUTE_NOT_FOUND"
)

// Normalized forms of the generic shared domain codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeInvalidInput        = "ERR_INVALID_INPUT"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Invoicing domain codes that need an explicit status
const (
	CodeAlreadyApplied      = "ALREADY_APPLIED"
	CodeAlreadyArchived     = "ALREADY_ARCHIVED"
	CodeCurrencyMismatch    = "CURRENCY_MISMATCH"
	CodeDocumentNotDraft    = "DOCUMENT_NOT_DRAFT"
	CodeEmptyDocument       = "EMPTY_DOCUMENT"
	CodeNoteInvoiceMismatch = "NOTE_INVOICE_MISMATCH"
	CodeAmountOutOfRange    = "AMOUNT_OUT_OF_RANGE"
	CodeUnsupportedCurrency = "UNSUPPORTED_CURRENCY"
	CodePaymentInProgress   = "PAYMENT_IN_PROGRESS"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:       http.StatusInternalServerError,
	ErrCodeBadRequest:     http.StatusBadRequest,
	ErrCodeInvalidJSON:    http.StatusBadRequest,
	ErrCodeValidation:     http.StatusBadRequest,
	ErrCodeTenantRequired: http.StatusBadRequest,
	ErrCodeRequestTooBig:  http.StatusRequestEntityTooLarge,
	ErrCodeRouteNotFound:  http.StatusNotFound,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Repeating an application is a conflict with the stored state
	CodeAlreadyApplied: http.StatusConflict,
	// The first request with the same idempotency key has not finished
	CodePaymentInProgress: http.StatusConflict,

	// Business rule violations -> 422
	CodeAlreadyArchived:     http.StatusUnprocessableEntity,
	CodeCurrencyMismatch:    http.StatusUnprocessableEntity,
	CodeDocumentNotDraft:    http.StatusUnprocessableEntity,
	CodeEmptyDocument:       http.StatusUnprocessableEntity,
	CodeNoteInvoiceMismatch: http.StatusUnprocessableEntity,
	CodeAmountOutOfRange:    http.StatusUnprocessableEntity,

	CodeUnsupportedCurrency: http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Codes missing from ErrorCodeHTTPStatus fall back on their shape:
// *_NOT_FOUND is 404, *_CONFLICT is 409 and INVALID_* is 400.
// Anything else is 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "_CONFLICT"):
		return http.StatusConflict
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps the generic shared domain codes to their
// ERR_ prefixed form. Specific codes such as INVOICE_NOT_FOUND pass through.
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,
}

// NormalizeErrorCode converts a generic domain code to the ERR_ format.
// Other codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
