package credit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agrm/backend/internal/domain/shared"
)

// Error codes raised by the credit lifecycle engine
const (
	CodeInvalidTransition      = "INVALID_TRANSITION"
	CodeTerminalState          = "TERMINAL_STATE"
	CodeIllegalDecisionContext = "ILLEGAL_DECISION_CONTEXT"
	CodeUnknownDecision        = "UNKNOWN_DECISION"
	CodeUnknownStatus          = "UNKNOWN_STATUS"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeValidationFailed       = "VALIDATION_FAILED"
	CodeConfiguration          = "CONFIGURATION_ERROR"
)

// Sentinels for errors.Is matching; detailed errors carry the same code.
var (
	ErrInvalidTransition      = shared.NewDomainError(CodeInvalidTransition, "transition not allowed")
	ErrTerminalState          = shared.NewDomainError(CodeTerminalState, "application is in a terminal status")
	ErrIllegalDecisionContext = shared.NewDomainError(CodeIllegalDecisionContext, "committee decision not allowed in current status")
	ErrUnknownDecision        = shared.NewDomainError(CodeUnknownDecision, "unknown committee decision")
	ErrUnknownStatus          = shared.NewDomainError(CodeUnknownStatus, "unknown application status")
	ErrConcurrentModification = shared.NewDomainError(CodeConcurrentModification, "application was modified concurrently, reload and retry")
	ErrConfiguration          = shared.NewDomainError(CodeConfiguration, "credit engine configuration error")
)

// NewInvalidTransitionError reports a target outside the current status' transition set
func NewInvalidTransitionError(from, to StatusCode) error {
	return shared.NewDomainError(CodeInvalidTransition,
		fmt.Sprintf("cannot transition application from %s to %s", from, to))
}

// NewTerminalStateError reports a transition attempt out of a terminal status
func NewTerminalStateError(status StatusCode) error {
	return shared.NewDomainError(CodeTerminalState,
		fmt.Sprintf("application in terminal status %s cannot change status", status))
}

// NewIllegalDecisionContextError reports a committee decision outside the committee status
func NewIllegalDecisionContextError(current, committee StatusCode) error {
	return shared.NewDomainError(CodeIllegalDecisionContext,
		fmt.Sprintf("committee decisions require status %s, application is in %s", committee, current))
}

// NewUnknownDecisionError reports a decision code missing from the decision table
func NewUnknownDecisionError(code DecisionCode) error {
	return shared.NewDomainError(CodeUnknownDecision,
		fmt.Sprintf("committee decision %q has no target status", code))
}

// NewUnknownStatusError reports a status code missing from the status catalog
func NewUnknownStatusError(code StatusCode) error {
	return shared.NewDomainError(CodeUnknownStatus,
		fmt.Sprintf("application status %q is not defined", code))
}

// NewConfigurationError reports an invalid or incomplete reference catalog
func NewConfigurationError(format string, args ...any) error {
	return shared.NewDomainError(CodeConfiguration, fmt.Sprintf(format, args...))
}

// IsTransitionError reports whether err belongs to the workflow-integrity family
func IsTransitionError(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrTerminalState) ||
		errors.Is(err, ErrIllegalDecisionContext) ||
		errors.Is(err, ErrUnknownDecision)
}

// IsRetryable reports whether the caller may reload the application and retry
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

// ValidationError is a single user-correctable rule violation
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrors is the full list of violations found in one validation pass
type ValidationErrors []ValidationError

// Error implements the error interface
func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// HasErrors reports whether any violation was collected
func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

// Is makes ValidationErrors match the VALIDATION_FAILED code
func (v ValidationErrors) Is(target error) bool {
	t, ok := target.(*shared.DomainError)
	return ok && t.Code == CodeValidationFailed
}

// ErrValidationFailed matches any ValidationErrors value via errors.Is
var ErrValidationFailed = shared.NewDomainError(CodeValidationFailed, "validation failed")
