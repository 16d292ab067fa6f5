package dto

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/agrm/backend/internal/domain/credit"
	"github.com/agrm/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeConfiguration, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInvalidTransition, http.StatusUnprocessableEntity},
		{ErrCodeTerminalState, http.StatusUnprocessableEntity},
		{ErrCodePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestErrorResponseFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		contains string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, ErrCodeNotFound, "not found"},
		{"wrapped not found", fmt.Errorf("load: %w", shared.ErrNotFound), http.StatusNotFound, ErrCodeNotFound, ""},
		{"invalid transition", credit.NewInvalidTransitionError(credit.StatusInitialize, credit.StatusDisbursed), http.StatusUnprocessableEntity, ErrCodeInvalidTransition, "DISBURSED"},
		{"terminal", credit.NewTerminalStateError(credit.StatusRejected), http.StatusUnprocessableEntity, ErrCodeTerminalState, ""},
		{"illegal decision context", credit.NewIllegalDecisionContextError(credit.StatusInitialize, credit.StatusPendingCommittee), http.StatusUnprocessableEntity, ErrCodeIllegalDecisionContext, ""},
		{"unknown decision", credit.NewUnknownDecisionError("MAYBE"), http.StatusUnprocessableEntity, ErrCodeUnknownDecision, "MAYBE"},
		{"concurrent", credit.ErrConcurrentModification, http.StatusConflict, ErrCodeConcurrencyConflict, ""},
		{"configuration", credit.NewConfigurationError("product %s missing", "p-1"), http.StatusInternalServerError, ErrCodeConfiguration, "p-1"},
		{"other domain rule", shared.NewDomainError("INVALID_AMOUNT", "Declared amount cannot be negative"), http.StatusUnprocessableEntity, ErrCodeBusinessRule, "negative"},
		{"plain error", errors.New("db down"), http.StatusInternalServerError, ErrCodeInternal, "unexpected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := ErrorResponseFor(tt.err, "req-1")
			assert.Equal(t, tt.status, status)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
			if tt.contains != "" {
				assert.Contains(t, resp.Error.Message, tt.contains)
			}
		})
	}
}

func TestErrorResponseFor_ValidationList(t *testing.T) {
	err := credit.ValidationErrors{
		{Field: "client_id", Code: "REQUIRED", Message: "Client is required"},
		{Field: "amount_requested", Code: "AMOUNT_ABOVE_MAX", Message: "Amount exceeds product maximum"},
	}
	status, resp := ErrorResponseFor(fmt.Errorf("create: %w", err), "")

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "amount_requested", resp.Error.Details[1].Field)
	assert.Equal(t, "AMOUNT_ABOVE_MAX", resp.Error.Details[1].Code)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 41, 2, 20)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	resp = NewSuccessResponseWithMeta(nil, 5, 1, 0)
	assert.Equal(t, 0, resp.Meta.TotalPages)
}
