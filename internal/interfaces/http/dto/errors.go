package dto

import (
	"net/http"

	"github.com/tradebooks/backend/internal/domain/shared"
)

// Transport-level error codes. Domain failures carry the shared.Code* values.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeUnavailable     = "SERVICE_UNAVAILABLE"
	ErrCodeImportRejected  = "IMPORT_REJECTED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeImportRejected:  http.StatusBadRequest,
	ErrCodeUnavailable:     http.StatusServiceUnavailable,

	// Input errors -> 400 Bad Request
	shared.CodeValidation:         http.StatusBadRequest,
	shared.CodeInvalidTransaction: http.StatusBadRequest,
	shared.CodeInvalidDate:        http.StatusBadRequest,
	shared.CodeInvalidCreditDays:  http.StatusBadRequest,
	shared.CodeInvalidAmount:      http.StatusBadRequest,
	shared.CodeInvalidPhone:       http.StatusBadRequest,
	shared.CodeInvalidCode:        http.StatusBadRequest,
	shared.CodeInvalidName:        http.StatusBadRequest,
	shared.CodeInvalidPartyType:   http.StatusBadRequest,
	shared.CodeInvalidTerms:       http.StatusBadRequest,
	shared.CodeInvalidCreditLimit: http.StatusBadRequest,

	// Resource errors
	shared.CodeNotFound:        http.StatusNotFound,
	shared.CodeAlreadyExists:   http.StatusConflict,
	shared.CodeOptimisticLock:  http.StatusConflict,
	shared.CodeLockNotObtained: http.StatusConflict,
	shared.CodeInvalidState:    http.StatusConflict,
	shared.CodePartyArchived:   http.StatusConflict,

	// The credit guard refused a well-formed entry
	shared.CodeCreditLimitExceeded: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
