package dto

import (
	"errors"
	"net/http"

	"github.com/agrm/backend/internal/domain/credit"
	"github.com/agrm/backend/internal/domain/shared"
)

// Error codes returned by the API.
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeInternal           = "ERR_INTERNAL"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
	// ErrCodeConfiguration marks a broken reference catalog (unknown product, bad workflow)
	ErrCodeConfiguration = "ERR_CONFIGURATION"
)

// Input error codes
const (
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"
	ErrCodeUnauthorized    = "ERR_UNAUTHORIZED"
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Workflow error codes
const (
	ErrCodeInvalidState           = "ERR_INVALID_STATE"
	ErrCodeInvalidTransition      = "ERR_INVALID_TRANSITION"
	ErrCodeTerminalState          = "ERR_TERMINAL_STATE"
	ErrCodeIllegalDecisionContext = "ERR_ILLEGAL_DECISION_CONTEXT"
	ErrCodeUnknownDecision        = "ERR_UNKNOWN_DECISION"
	ErrCodeBusinessRule           = "ERR_BUSINESS_RULE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeConfiguration:      http.StatusInternalServerError,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeRateLimited:     http.StatusTooManyRequests,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState:           http.StatusUnprocessableEntity,
	ErrCodeInvalidTransition:      http.StatusUnprocessableEntity,
	ErrCodeTerminalState:          http.StatusUnprocessableEntity,
	ErrCodeIllegalDecisionContext: http.StatusUnprocessableEntity,
	ErrCodeUnknownDecision:        http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:           http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for an error code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                       ErrCodeNotFound,
	"ALREADY_EXISTS":                  ErrCodeAlreadyExists,
	"INVALID_INPUT":                   ErrCodeValidation,
	"INVALID_STATE":                   ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT":            ErrCodeConcurrencyConflict,
	credit.CodeConcurrentModification: ErrCodeConcurrencyConflict,
	credit.CodeValidationFailed:       ErrCodeValidation,
	credit.CodeInvalidTransition:      ErrCodeInvalidTransition,
	credit.CodeTerminalState:          ErrCodeTerminalState,
	credit.CodeIllegalDecisionContext: ErrCodeIllegalDecisionContext,
	credit.CodeUnknownDecision:        ErrCodeUnknownDecision,
	credit.CodeUnknownStatus:          ErrCodeConfiguration,
	credit.CodeConfiguration:          ErrCodeConfiguration,
}

// NormalizeErrorCode converts a domain error code to its API code.
// Unmapped domain codes are business rule violations.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return ErrCodeBusinessRule
}

// ErrorResponseFor converts err into an HTTP status and response body.
// Validation lists keep every violation as a detail entry.
func ErrorResponseFor(err error, requestID string) (int, Response) {
	var verrs credit.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]ValidationDetail, 0, len(verrs))
		for _, v := range verrs {
			details = append(details, ValidationDetail{Field: v.Field, Code: v.Code, Message: v.Message})
		}
		return http.StatusBadRequest, NewValidationErrorResponse("Application validation failed", requestID, details)
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := NormalizeErrorCode(domainErr.Code)
		return GetHTTPStatus(code), NewErrorResponse(code, domainErr.Message, requestID)
	}

	return http.StatusInternalServerError, NewErrorResponse(ErrCodeInternal, "An unexpected error occurred", requestID)
}
