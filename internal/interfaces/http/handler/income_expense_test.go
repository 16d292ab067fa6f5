package handler

import (
	"net/http"
	"testing"

	creditapp "github.com/agrm/backend/internal/application/credit"
	"github.com/agrm/backend/internal/domain/credit"
	"github.com/agrm/backend/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncomeRecords(t *testing.T) {
	f := newAPIFixture(t)
	app := f.createApplication()
	base := "/applications/" + app.ID.String()

	w, env := f.do(http.MethodPost, base+"/incomes", map[string]any{
		"income_type_code": "SALAIRE",
		"declared_amount":  "450000",
		"employer_name":    "SONATEL",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	income := decodeData[creditapp.IncomeResponse](t, env)
	assert.False(t, income.IsVerified)
	assert.True(t, income.VerifiedAmount.IsZero())

	t.Run("negative amount is rejected", func(t *testing.T) {
		w, env := f.do(http.MethodPost, base+"/incomes", map[string]any{
			"income_type_code": "COMMERCE",
			"declared_amount":  "-1",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeBusinessRule, env.Error.Code)
	})

	t.Run("type code is required", func(t *testing.T) {
		w, env := f.do(http.MethodPost, base+"/incomes", map[string]any{"declared_amount": "10"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "income_type_code", env.Error.Details[0].Field)
	})

	t.Run("update", func(t *testing.T) {
		w, env := f.do(http.MethodPut, "/incomes/"+income.ID.String(), map[string]any{
			"income_type_code": "SALAIRE",
			"declared_amount":  "500000",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		updated := decodeData[creditapp.IncomeResponse](t, env)
		assert.True(t, decimal.NewFromInt(500_000).Equal(updated.DeclaredAmount))
	})

	t.Run("verify records the actor", func(t *testing.T) {
		w, env := f.do(http.MethodPost, "/incomes/"+income.ID.String()+"/verify", map[string]any{
			"verified_amount": "480000",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		verified := decodeData[creditapp.IncomeResponse](t, env)
		assert.True(t, verified.IsVerified)
		assert.Equal(t, testActor, verified.VerifiedBy)
		assert.NotNil(t, verified.VerifiedAt)
	})

	t.Run("verify needs an amount", func(t *testing.T) {
		w, _ := f.do(http.MethodPost, "/incomes/"+income.ID.String()+"/verify", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list", func(t *testing.T) {
		w, env := f.do(http.MethodGet, base+"/incomes", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeData[[]creditapp.IncomeResponse](t, env), 1)
	})

	t.Run("delete twice", func(t *testing.T) {
		w, _ := f.do(http.MethodDelete, "/incomes/"+income.ID.String(), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w, env := f.do(http.MethodDelete, "/incomes/"+income.ID.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, env.Error.Code)
	})

	t.Run("unknown application", func(t *testing.T) {
		w, _ := f.do(http.MethodGet, "/applications/"+uuid.NewString()+"/incomes", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestExpenseRecords(t *testing.T) {
	f := newAPIFixture(t)
	app := f.createApplication()
	base := "/applications/" + app.ID.String()

	w, env := f.do(http.MethodPost, base+"/expenses", map[string]any{
		"expense_type_code": "LOYER",
		"monthly_amount":    "100000",
		"is_essential":      true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	expense := decodeData[creditapp.ExpenseResponse](t, env)
	assert.True(t, expense.IsEssential)

	w, env = f.do(http.MethodPut, "/expenses/"+expense.ID.String(), map[string]any{
		"expense_type_code": "LOYER",
		"monthly_amount":    "-5",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeBusinessRule, env.Error.Code)

	w, env = f.do(http.MethodGet, base+"/expenses", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]creditapp.ExpenseResponse](t, env), 1)

	// records are frozen once the committee holds the file
	f.transition(app.ID, credit.StatusUnderAnalysis)
	f.transition(app.ID, credit.StatusPendingCommittee)

	w, env = f.do(http.MethodDelete, "/expenses/"+expense.ID.String(), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidState, env.Error.Code)

	w, _ = f.do(http.MethodDelete, "/expenses/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCapacity(t *testing.T) {
	f := newAPIFixture(t)
	app := f.createApplication()
	base := "/applications/" + app.ID.String()

	w, _ := f.do(http.MethodGet, base+"/capacity", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "no snapshot yet")

	w, env := f.do(http.MethodPost, base+"/incomes", map[string]any{
		"income_type_code": "SALAIRE",
		"declared_amount":  "500000",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	income := decodeData[creditapp.IncomeResponse](t, env)

	w, _ = f.do(http.MethodPost, "/incomes/"+income.ID.String()+"/verify", map[string]any{"verified_amount": "500000"})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = f.do(http.MethodPost, base+"/expenses", map[string]any{
		"expense_type_code": "LOYER",
		"monthly_amount":    "150000",
		"is_essential":      true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env = f.do(http.MethodPost, base+"/capacity", map[string]any{"analysis_notes": "revenus stables"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	computed := decodeData[creditapp.CapacityResponse](t, env)

	// 1 200 000 over 12 months against 500 000 verified income
	assert.True(t, decimal.NewFromInt(20).Equal(computed.Assessment.DebtRatio), computed.Assessment.DebtRatio.String())
	assert.True(t, decimal.NewFromInt(350_000).Equal(computed.Assessment.DisposableIncome))
	assert.True(t, computed.Assessment.IsCapacitySufficient)
	assert.Equal(t, credit.RiskLow, computed.Assessment.RiskLevel)
	assert.Equal(t, testActor, computed.AssessedBy)

	w, env = f.do(http.MethodGet, base+"/capacity", nil)
	require.Equal(t, http.StatusOK, w.Code)
	latest := decodeData[creditapp.CapacityResponse](t, env)
	assert.Equal(t, computed.SnapshotID, latest.SnapshotID)
	assert.Equal(t, "revenus stables", latest.AnalysisNotes)

	t.Run("body is optional", func(t *testing.T) {
		w, _ := f.do(http.MethodPost, base+"/capacity", nil)
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func TestWorkflowCatalog(t *testing.T) {
	f := newAPIFixture(t)

	w, env := f.do(http.MethodGet, "/workflow/statuses", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	statuses := decodeData[[]creditapp.StatusResponse](t, env)
	require.Len(t, statuses, 12)
	assert.Equal(t, "INITIALIZE", statuses[0].Code)

	w, env = f.do(http.MethodGet, "/workflow/decisions", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	decisions := decodeData[[]creditapp.DecisionResponse](t, env)
	assert.Len(t, decisions, 5)
}
