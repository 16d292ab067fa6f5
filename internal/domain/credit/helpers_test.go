package credit

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func ptrUUID() *uuid.UUID {
	id := uuid.New()
	return &id
}

func validDetails() ApplicationDetails {
	return ApplicationDetails{
		ClientID:           ptrUUID(),
		BranchID:           ptrUUID(),
		CreditOfficerID:    ptrUUID(),
		LoanProductID:      ptrUUID(),
		CreditPurposeID:    ptrUUID(),
		SavingsAccountID:   ptrUUID(),
		AmountRequested:    decimal.NewFromInt(1_200_000),
		DurationMonths:     12,
		RepaymentFrequency: RepaymentMonthly,
	}
}

func newTestApplication(t *testing.T, status StatusCode) *CreditApplication {
	t.Helper()
	app, err := NewCreditApplication("CR-20260101-000001", StatusInitialize, validDetails())
	require.NoError(t, err)
	app.StatusCode = status
	app.ClearDomainEvents()
	return app
}

func newTestDefinition(t *testing.T) *WorkflowDefinition {
	t.Helper()
	def, err := NewWorkflowDefinition(DefaultWorkflowConfig())
	require.NoError(t, err)
	return def
}

var fixedNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newTestMachine(t *testing.T) *StateMachine {
	t.Helper()
	return NewStateMachine(newTestDefinition(t), WithClock(func() time.Time { return fixedNow }))
}

func testProduct() *LoanProduct {
	return &LoanProduct{
		ID:            uuid.New(),
		Code:          "PME",
		Name:          "Crédit PME",
		MinAmount:     decimal.NewFromInt(100_000),
		MaxAmount:     decimal.NewFromInt(5_000_000),
		MinTermMonths: 6,
		MaxTermMonths: 36,
		IsActive:      true,
	}
}
