package credit

import (
	"context"
	"errors"
	"testing"

	"github.com/agrm/backend/internal/domain/credit"
	"github.com/agrm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLifecycleService_AddIncome(t *testing.T) {
	t.Run("editable application", func(t *testing.T) {
		f := newServiceFixture(t)
		app := f.storedApplication(t, credit.StatusUnderAnalysis)
		f.incomes.On("Save", mock.Anything, mock.AnythingOfType("*credit.IncomeRecord")).Return(nil)

		resp, err := f.svc.AddIncome(context.Background(), app.ID, IncomeRequest{
			IncomeTypeCode: "SALARY",
			DeclaredAmount: decimal.NewFromInt(250_000),
		})

		require.NoError(t, err)
		assert.Equal(t, app.ID, resp.ApplicationID)
		assert.False(t, resp.IsVerified)
		assert.True(t, resp.VerifiedAmount.IsZero())
	})

	t.Run("locked application", func(t *testing.T) {
		f := newServiceFixture(t)
		app := f.storedApplication(t, credit.StatusApproved)

		_, err := f.svc.AddIncome(context.Background(), app.ID, IncomeRequest{IncomeTypeCode: "SALARY"})

		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		f.incomes.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestLifecycleService_VerifyIncome(t *testing.T) {
	f := newServiceFixture(t)
	app := f.storedApplication(t, credit.StatusFieldVisit)
	record, err := credit.NewIncomeRecord(app.ID, credit.IncomeDetails{IncomeTypeCode: "SALARY", DeclaredAmount: decimal.NewFromInt(100_000)})
	require.NoError(t, err)
	f.incomes.On("FindByID", mock.Anything, record.ID).Return(record, nil)
	f.incomes.On("Save", mock.Anything, record).Return(nil)

	amount := decimal.NewFromInt(80_000)
	resp, err := f.svc.VerifyIncome(context.Background(), record.ID, VerifyIncomeRequest{VerifiedAmount: &amount, Actor: "agent-7"})

	require.NoError(t, err)
	assert.True(t, resp.IsVerified)
	assert.True(t, resp.VerifiedAmount.Equal(amount))
	assert.Equal(t, "agent-7", resp.VerifiedBy)
}

func TestLifecycleService_DeleteExpense(t *testing.T) {
	f := newServiceFixture(t)
	app := f.storedApplication(t, credit.StatusPendingCommittee)
	record, err := credit.NewExpenseRecord(app.ID, credit.ExpenseDetails{ExpenseTypeCode: "RENT", MonthlyAmount: decimal.NewFromInt(30_000)})
	require.NoError(t, err)
	f.expenses.On("FindByID", mock.Anything, record.ID).Return(record, nil)

	err = f.svc.DeleteExpense(context.Background(), record.ID)

	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	f.expenses.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestLifecycleService_ListExpenses(t *testing.T) {
	f := newServiceFixture(t)
	app := f.storedApplication(t, credit.StatusApproved)
	f.expenses.On("FindByApplication", mock.Anything, app.ID).Return([]credit.ExpenseRecord{
		{ApplicationID: app.ID, ExpenseTypeCode: "RENT", MonthlyAmount: decimal.NewFromInt(30_000), IsEssential: true},
	}, nil)

	list, err := f.svc.ListExpenses(context.Background(), app.ID)

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsEssential)
}

func TestLifecycleService_ComputeCapacity(t *testing.T) {
	f := newServiceFixture(t)
	app := f.storedApplication(t, credit.StatusUnderAnalysis)

	verified, err := credit.NewIncomeRecord(app.ID, credit.IncomeDetails{IncomeTypeCode: "SALARY", DeclaredAmount: decimal.NewFromInt(100_000)})
	require.NoError(t, err)
	require.NoError(t, verified.Verify(decimal.NewFromInt(80_000), "agent"))
	unverified, err := credit.NewIncomeRecord(app.ID, credit.IncomeDetails{IncomeTypeCode: "TRADE", DeclaredAmount: decimal.NewFromInt(50_000)})
	require.NoError(t, err)
	rent, err := credit.NewExpenseRecord(app.ID, credit.ExpenseDetails{ExpenseTypeCode: "RENT", MonthlyAmount: decimal.NewFromInt(30_000)})
	require.NoError(t, err)

	f.incomes.On("FindByApplication", mock.Anything, app.ID).Return([]credit.IncomeRecord{*verified, *unverified}, nil)
	f.expenses.On("FindByApplication", mock.Anything, app.ID).Return([]credit.ExpenseRecord{*rent}, nil)
	f.snapshots.On("Save", mock.Anything, mock.MatchedBy(func(s *credit.CapacitySnapshot) bool {
		return s.ApplicationID == app.ID && s.AssessedBy == "analyst"
	})).Return(nil)

	resp, err := f.svc.ComputeCapacity(context.Background(), app.ID, CapacityRequest{AnalysisNotes: "first pass", Actor: "analyst"})

	require.NoError(t, err)
	a := resp.Assessment
	assert.True(t, a.TotalDeclaredIncome.Equal(decimal.NewFromInt(150_000)))
	assert.True(t, a.TotalVerifiedIncome.Equal(decimal.NewFromInt(80_000)))
	assert.True(t, a.DisposableIncome.Equal(decimal.NewFromInt(50_000)))
	assert.True(t, a.RepaymentCapacity.Equal(decimal.NewFromInt(35_000)))
	assert.Equal(t, "first pass", resp.AnalysisNotes)
	assert.Len(t, f.events.GetEventsByType(credit.EventTypeCapacityAssessed), 1)
	f.snapshots.AssertExpectations(t)
}

func TestLifecycleService_LatestCapacity_NotFound(t *testing.T) {
	f := newServiceFixture(t)
	app := f.storedApplication(t, credit.StatusUnderAnalysis)
	f.snapshots.On("FindLatestByApplication", mock.Anything, app.ID).Return(nil, shared.ErrNotFound)

	_, err := f.svc.LatestCapacity(context.Background(), app.ID)

	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestLifecycleService_List_InvalidBranch(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.List(context.Background(), ListApplicationsFilter{BranchID: "not-a-uuid"})

	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}
