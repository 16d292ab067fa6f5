package credit

import (
	"context"
	"errors"
	"testing"

	"github.com/agrm/backend/internal/domain/credit"
	"github.com/agrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type serviceFixture struct {
	svc       *LifecycleService
	apps      *MockApplicationRepository
	incomes   *MockIncomeRecordRepository
	expenses  *MockExpenseRecordRepository
	audits    *MockTransitionAuditRepository
	snapshots *MockCapacitySnapshotRepository
	products  *MockProductCatalog
	events    *MockEventPublisher
	logs      *observer.ObservedLogs
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	def, err := credit.NewWorkflowDefinition(credit.DefaultWorkflowConfig())
	require.NoError(t, err)

	core, logs := observer.New(zap.InfoLevel)
	f := &serviceFixture{
		apps:      new(MockApplicationRepository),
		incomes:   new(MockIncomeRecordRepository),
		expenses:  new(MockExpenseRecordRepository),
		audits:    new(MockTransitionAuditRepository),
		snapshots: new(MockCapacitySnapshotRepository),
		products:  new(MockProductCatalog),
		events:    NewMockEventPublisher(),
		logs:      logs,
	}
	f.svc = NewLifecycleService(
		Repositories{
			Applications: f.apps,
			Incomes:      f.incomes,
			Expenses:     f.expenses,
			Audits:       f.audits,
			Snapshots:    f.snapshots,
		},
		f.products,
		credit.NewStateMachine(def),
		credit.NewValidator(),
		zap.New(core),
	)
	f.svc.SetEventPublisher(f.events)
	return f
}

func uuidPtr() *uuid.UUID {
	id := uuid.New()
	return &id
}

func validCreateRequest(productID uuid.UUID) CreateApplicationRequest {
	return CreateApplicationRequest{
		ClientID:         uuidPtr(),
		BranchID:         uuidPtr(),
		CreditOfficerID:  uuidPtr(),
		LoanProductID:    &productID,
		CreditPurposeID:  uuidPtr(),
		SavingsAccountID: uuidPtr(),
		AmountRequested:  decimal.NewFromInt(1_200_000),
		DurationMonths:   12,
	}
}

func loanProduct(id uuid.UUID) *credit.LoanProduct {
	return &credit.LoanProduct{
		ID:            id,
		Code:          "PME",
		Name:          "Crédit PME",
		MinAmount:     decimal.NewFromInt(100_000),
		MaxAmount:     decimal.NewFromInt(5_000_000),
		MinTermMonths: 6,
		MaxTermMonths: 36,
		IsActive:      true,
	}
}

// storedApplication builds an application as a repository would return it
func (f *serviceFixture) storedApplication(t *testing.T, status credit.StatusCode) *credit.CreditApplication {
	t.Helper()
	productID := uuid.New()
	req := validCreateRequest(productID)
	app, err := credit.NewCreditApplication("CR-20260314-000001", credit.StatusInitialize, req.details())
	require.NoError(t, err)
	app.StatusCode = status
	app.ClearDomainEvents()

	f.apps.On("FindByID", mock.Anything, app.ID).Return(app, nil)
	f.products.On("ProductByID", mock.Anything, productID).Return(loanProduct(productID), nil).Maybe()
	return app
}

func TestLifecycleService_Create(t *testing.T) {
	t.Run("creates application in initial status", func(t *testing.T) {
		f := newServiceFixture(t)
		productID := uuid.New()
		f.apps.On("GenerateApplicationNumber", mock.Anything).Return("CR-20260314-000042", nil)
		f.products.On("ProductByID", mock.Anything, productID).Return(loanProduct(productID), nil)
		f.apps.On("Save", mock.Anything, mock.MatchedBy(func(app *credit.CreditApplication) bool {
			return app.StatusCode == credit.StatusInitialize && app.ApplicationNumber == "CR-20260314-000042"
		})).Return(nil)

		resp, err := f.svc.Create(context.Background(), validCreateRequest(productID))

		require.NoError(t, err)
		assert.Equal(t, "INITIALIZE", resp.StatusCode)
		assert.Equal(t, "MONTHLY", resp.RepaymentFrequency)
		assert.True(t, resp.AllowsEdit)
		assert.Equal(t, 1, resp.Version)
		assert.Len(t, f.events.GetEventsByType(credit.EventTypeApplicationCreated), 1)
		f.apps.AssertExpectations(t)
	})

	t.Run("amount below product minimum", func(t *testing.T) {
		f := newServiceFixture(t)
		productID := uuid.New()
		f.apps.On("GenerateApplicationNumber", mock.Anything).Return("CR-20260314-000043", nil)
		f.products.On("ProductByID", mock.Anything, productID).Return(loanProduct(productID), nil)

		req := validCreateRequest(productID)
		req.AmountRequested = decimal.NewFromInt(10_000)
		_, err := f.svc.Create(context.Background(), req)

		require.Error(t, err)
		assert.True(t, errors.Is(err, credit.ErrValidationFailed))
		var verrs credit.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Equal(t, credit.VCodeAmountBelowMinimum, verrs[0].Code)
		f.apps.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Equal(t, 0, f.events.Count())
	})

	t.Run("unknown product is a configuration error", func(t *testing.T) {
		f := newServiceFixture(t)
		productID := uuid.New()
		f.apps.On("GenerateApplicationNumber", mock.Anything).Return("CR-20260314-000044", nil)
		f.products.On("ProductByID", mock.Anything, productID).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Create(context.Background(), validCreateRequest(productID))

		require.Error(t, err)
		assert.True(t, errors.Is(err, credit.ErrConfiguration))
		entries := f.logs.FilterField(zap.String("product_id", productID.String())).All()
		require.Len(t, entries, 1)
		assert.Equal(t, zap.ErrorLevel, entries[0].Level)
	})
}

func TestLifecycleService_Update(t *testing.T) {
	t.Run("editable status", func(t *testing.T) {
		f := newServiceFixture(t)
		app := f.storedApplication(t, credit.StatusUnderAnalysis)
		f.apps.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)

		req := UpdateApplicationRequest{CreateApplicationRequest: CreateApplicationRequest{
			ClientID:         app.ClientID,
			BranchID:         app.BranchID,
			CreditOfficerID:  app.CreditOfficerID,
			LoanProductID:    app.LoanProductID,
			CreditPurposeID:  app.CreditPurposeID,
			SavingsAccountID: app.SavingsAccountID,
			AmountRequested:  decimal.NewFromInt(800_000),
			DurationMonths:   18,
		}}
		resp, err := f.svc.Update(context.Background(), app.ID, req)

		require.NoError(t, err)
		assert.True(t, resp.AmountRequested.Equal(decimal.NewFromInt(800_000)))
		assert.Equal(t, 2, resp.Version)
	})

	t.Run("locked status", func(t *testing.T) {
		f := newServiceFixture(t)
		app := f.storedApplication(t, credit.StatusPendingCommittee)

		_, err := f.svc.Update(context.Background(), app.ID, UpdateApplicationRequest{})

		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		f.apps.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestLifecycleService_RequestTransition(t *testing.T) {
	t.Run("allowed transition is persisted with audit entry", func(t *testing.T) {
		f := newServiceFixture(t)
		app := f.storedApplication(t, credit.StatusInitialize)
		f.apps.On("SaveTransition", mock.Anything,
			mock.MatchedBy(func(a *credit.CreditApplication) bool {
				return a.StatusCode == credit.StatusUnderAnalysis && a.Version == 2
			}),
			mock.MatchedBy(func(e credit.TransitionAuditEntry) bool {
				return e.FromStatus == credit.StatusInitialize && e.ToStatus == credit.StatusUnderAnalysis &&
					e.Actor == "officer-1" && e.Reason == "documents complete"
			}),
		).Return(nil)

		resp, err := f.svc.RequestTransition(context.Background(), app.ID, TransitionRequest{
			TargetStatus: "UNDER_ANALYSIS",
			Reason:       "documents complete",
			Actor:        "officer-1",
		})

		require.NoError(t, err)
		assert.Equal(t, "UNDER_ANALYSIS", resp.Application.StatusCode)
		assert.Equal(t, "INITIALIZE", resp.Audit.FromStatus)
		assert.Equal(t, credit.StatusInitialize, app.StatusCode, "loaded application must not be mutated")
		assert.Len(t, f.events.GetEventsByType(credit.EventTypeApplicationStatusChanged), 1)
		assert.NotEmpty(t, f.logs.FilterMessage("credit application status changed").All())
		f.apps.AssertExpectations(t)
	})

	t.Run("target outside transition set", func(t *testing.T) {
		f := newServiceFixture(t)
		app := f.storedApplication(t, credit.StatusInitialize)

		_, err := f.svc.RequestTransition(context.Background(), app.ID, TransitionRequest{TargetStatus: "DISBURSED"})

		assert.True(t, errors.Is(err, credit.ErrInvalidTransition))
		f.apps.AssertNotCalled(t, "SaveTransition", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("terminal status", func(t *testing.T) {
		f := newServiceFixture(t)
		app := f.storedApplication(t, credit.StatusRejected)

		_, err := f.svc.RequestTransition(context.Background(), app.ID, TransitionRequest{TargetStatus: "UNDER_ANALYSIS"})

		assert.True(t, errors.Is(err, credit.ErrTerminalState))
	})

	t.Run("stale expected version", func(t *testing.T) {
		f := newServiceFixture(t)
		app := f.storedApplication(t, credit.StatusInitialize)
		stale := 7

		_, err := f.svc.RequestTransition(context.Background(), app.ID, TransitionRequest{
			TargetStatus:    "UNDER_ANALYSIS",
			ExpectedVersion: &stale,
		})

		assert.True(t, errors.Is(err, credit.ErrConcurrentModification))
		assert.True(t, credit.IsRetryable(err))
	})

	t.Run("conflict at save publishes nothing", func(t *testing.T) {
		f := newServiceFixture(t)
		app := f.storedApplication(t, credit.StatusInitialize)
		f.apps.On("SaveTransition", mock.Anything, mock.Anything, mock.Anything).Return(credit.ErrConcurrentModification)

		_, err := f.svc.RequestTransition(context.Background(), app.ID, TransitionRequest{TargetStatus: "PENDING_DOCS"})

		assert.True(t, errors.Is(err, credit.ErrConcurrentModification))
		assert.Equal(t, 0, f.events.Count())
	})

	t.Run("failed validation blocks an allowed transition", func(t *testing.T) {
		f := newServiceFixture(t)
		app := f.storedApplication(t, credit.StatusInitialize)
		app.ClientID = nil

		_, err := f.svc.RequestTransition(context.Background(), app.ID, TransitionRequest{TargetStatus: "UNDER_ANALYSIS"})

		var verrs credit.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Equal(t, "client_id", verrs[0].Field)
		assert.False(t, credit.IsTransitionError(err))
		f.apps.AssertNotCalled(t, "SaveTransition", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("workflow errors win over validation errors", func(t *testing.T) {
		cases := []struct {
			status credit.StatusCode
			target string
			want   error
		}{
			{credit.StatusRejected, "UNDER_ANALYSIS", credit.ErrTerminalState},
			{credit.StatusDisbursed, "INITIALIZE", credit.ErrTerminalState},
			{credit.StatusInitialize, "DISBURSED", credit.ErrInvalidTransition},
		}
		for _, tc := range cases {
			f := newServiceFixture(t)
			app := f.storedApplication(t, tc.status)
			app.ClientID = nil
			app.AmountRequested = decimal.Zero

			_, err := f.svc.RequestTransition(context.Background(), app.ID, TransitionRequest{TargetStatus: tc.target})

			assert.True(t, errors.Is(err, tc.want), "%s -> %s: %v", tc.status, tc.target, err)
			var verrs credit.ValidationErrors
			assert.False(t, errors.As(err, &verrs))
			f.products.AssertNotCalled(t, "ProductByID", mock.Anything, mock.Anything)
		}
	})

	t.Run("application not found", func(t *testing.T) {
		f := newServiceFixture(t)
		id := uuid.New()
		f.apps.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		_, err := f.svc.RequestTransition(context.Background(), id, TransitionRequest{TargetStatus: "PENDING_DOCS"})

		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestLifecycleService_ResolveCommitteeDecision(t *testing.T) {
	t.Run("outside committee status", func(t *testing.T) {
		f := newServiceFixture(t)
		app := f.storedApplication(t, credit.StatusUnderAnalysis)

		_, err := f.svc.ResolveCommitteeDecision(context.Background(), app.ID, CommitteeDecisionRequest{DecisionCode: "NOPE"})

		assert.True(t, errors.Is(err, credit.ErrIllegalDecisionContext))
	})

	t.Run("unknown decision is logged with its code", func(t *testing.T) {
		f := newServiceFixture(t)
		app := f.storedApplication(t, credit.StatusPendingCommittee)

		_, err := f.svc.ResolveCommitteeDecision(context.Background(), app.ID, CommitteeDecisionRequest{DecisionCode: "NOPE"})

		assert.True(t, errors.Is(err, credit.ErrUnknownDecision))
		entries := f.logs.FilterField(zap.String("decision_code", "NOPE")).All()
		require.Len(t, entries, 1)
		assert.Equal(t, zap.ErrorLevel, entries[0].Level)
	})

	t.Run("reduced amount without approved amount", func(t *testing.T) {
		f := newServiceFixture(t)
		app := f.storedApplication(t, credit.StatusPendingCommittee)

		_, err := f.svc.ResolveCommitteeDecision(context.Background(), app.ID, CommitteeDecisionRequest{
			DecisionCode: "APPROUVE_MONTANT_REDUIT",
		})

		var verrs credit.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Equal(t, credit.VCodeApprovedAmountRequired, verrs[0].Code)
		f.apps.AssertNotCalled(t, "SaveTransition", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reduced amount approval", func(t *testing.T) {
		f := newServiceFixture(t)
		app := f.storedApplication(t, credit.StatusPendingCommittee)
		f.apps.On("SaveTransition", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		amount := decimal.NewFromInt(900_000)
		duration := 10

		resp, err := f.svc.ResolveCommitteeDecision(context.Background(), app.ID, CommitteeDecisionRequest{
			DecisionCode:     "APPROUVE_MONTANT_REDUIT",
			ApprovedAmount:   &amount,
			ApprovedDuration: &duration,
			Notes:            "income partially verified",
			Actor:            "committee",
		})

		require.NoError(t, err)
		assert.Equal(t, "APPROUVE_MONTANT_REDUIT", resp.Application.StatusCode)
		require.NotNil(t, resp.Application.AmountApproved)
		assert.True(t, resp.Application.AmountApproved.Equal(amount))
		assert.Equal(t, 10, *resp.Application.DurationApproved)
		require.NotNil(t, resp.Audit.DecisionCode)
		assert.Equal(t, "APPROUVE_MONTANT_REDUIT", *resp.Audit.DecisionCode)
		assert.Contains(t, resp.Audit.Reason, "APPROUVE_MONTANT_REDUIT")
		assert.Contains(t, resp.Audit.Reason, "income partially verified")
		assert.Len(t, f.events.GetEventsByType(credit.EventTypeCommitteeDecisionRecorded), 1)
	})

	t.Run("rejection requires a reason", func(t *testing.T) {
		f := newServiceFixture(t)
		app := f.storedApplication(t, credit.StatusPendingCommittee)

		_, err := f.svc.ResolveCommitteeDecision(context.Background(), app.ID, CommitteeDecisionRequest{DecisionCode: "REJETE"})

		var verrs credit.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Equal(t, credit.VCodeDecisionReasonRequired, verrs[0].Code)
	})

	t.Run("plain approval records requested amount", func(t *testing.T) {
		f := newServiceFixture(t)
		app := f.storedApplication(t, credit.StatusPendingCommittee)
		f.apps.On("SaveTransition", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		resp, err := f.svc.ResolveCommitteeDecision(context.Background(), app.ID, CommitteeDecisionRequest{DecisionCode: "APPROUVE"})

		require.NoError(t, err)
		assert.Equal(t, "APPROVED", resp.Application.StatusCode)
		assert.True(t, resp.Application.AmountApproved.Equal(app.AmountRequested))
	})
}

func TestLifecycleService_AllowedTransitions(t *testing.T) {
	f := newServiceFixture(t)

	app := f.storedApplication(t, credit.StatusPendingCommittee)
	resp, err := f.svc.AllowedTransitions(context.Background(), app.ID)
	require.NoError(t, err)
	assert.True(t, resp.AwaitingCommittee)
	assert.Empty(t, resp.Targets)
	assert.Len(t, resp.Decisions, 5)

	other := f.storedApplication(t, credit.StatusFieldVisit)
	resp, err = f.svc.AllowedTransitions(context.Background(), other.ID)
	require.NoError(t, err)
	codes := make([]string, 0, len(resp.Targets))
	for _, s := range resp.Targets {
		codes = append(codes, s.Code)
	}
	assert.ElementsMatch(t, []string{"VISIT_COMPLETED", "REJETE"}, codes)
	assert.Empty(t, resp.Decisions)
}

func TestLifecycleService_ValidateApplication(t *testing.T) {
	f := newServiceFixture(t)
	app := f.storedApplication(t, credit.StatusInitialize)
	app.DurationMonths = 48

	resp, err := f.svc.ValidateApplication(context.Background(), app.ID)

	require.NoError(t, err)
	assert.False(t, resp.Valid)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, credit.VCodeDurationAboveMaximum, resp.Errors[0].Code)
}

func TestLifecycleService_GetHistory(t *testing.T) {
	f := newServiceFixture(t)
	app := f.storedApplication(t, credit.StatusUnderAnalysis)
	decision := credit.DecisionApprove
	f.audits.On("FindByApplication", mock.Anything, app.ID).Return([]credit.TransitionAuditEntry{
		{ID: uuid.New(), ApplicationID: app.ID, FromStatus: credit.StatusPendingCommittee, ToStatus: credit.StatusApproved, DecisionCode: &decision},
		{ID: uuid.New(), ApplicationID: app.ID, FromStatus: credit.StatusInitialize, ToStatus: credit.StatusUnderAnalysis},
	}, nil)

	history, err := f.svc.GetHistory(context.Background(), app.ID)

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "APPROUVE", *history[0].DecisionCode)
	assert.Nil(t, history[1].DecisionCode)
}

func TestLifecycleService_Catalogs(t *testing.T) {
	f := newServiceFixture(t)

	statuses := f.svc.ListStatuses()
	require.Len(t, statuses, 12)
	assert.Equal(t, "INITIALIZE", statuses[0].Code)
	for i := 1; i < len(statuses); i++ {
		assert.LessOrEqual(t, statuses[i-1].SequenceOrder, statuses[i].SequenceOrder)
	}

	decisions := f.svc.ListDecisions()
	require.Len(t, decisions, 5)
}
