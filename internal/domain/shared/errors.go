package shared

import (
	"errors"
	"fmt"
)

// Error codes shared across the ledger domain and mapped to HTTP statuses by the
// interface layer.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidState        = "INVALID_STATE"
	CodeOptimisticLock      = "OPTIMISTIC_LOCK_ERROR"
	CodeLockNotObtained     = "LOCK_NOT_OBTAINED"
	CodeInvalidTransaction  = "INVALID_TRANSACTION"
	CodeInvalidDate         = "INVALID_DATE"
	CodeInvalidCreditDays   = "INVALID_CREDIT_DAYS"
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeCreditLimitExceeded = "CREDIT_LIMIT_EXCEEDED"
	CodePartyArchived       = "PARTY_ARCHIVED"
	CodeInvalidPhone        = "INVALID_PHONE"
	CodeInvalidCode         = "INVALID_CODE"
	CodeInvalidName         = "INVALID_NAME"
	CodeInvalidPartyType    = "INVALID_TYPE"
	CodeInvalidTerms        = "INVALID_PAYMENT_TERMS"
	CodeInvalidCreditLimit  = "INVALID_CREDIT_LIMIT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code, so sentinel
// errors below match errors.Is regardless of message.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a VALIDATION_ERROR with the given message
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewNotFoundError creates a NOT_FOUND error for the named resource
func NewNotFoundError(resource string) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// Wrap attaches a cause to a new domain error
func Wrap(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the domain error code carried by err, or an empty string
func CodeOf(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrConcurrencyConflict = NewDomainError(CodeOptimisticLock, "Resource was modified by another process")
	ErrLockNotObtained     = NewDomainError(CodeLockNotObtained, "Resource is busy, try again")
)
