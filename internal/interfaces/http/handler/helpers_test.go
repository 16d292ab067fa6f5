package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	creditapp "github.com/agrm/backend/internal/application/credit"
	"github.com/agrm/backend/internal/domain/credit"
	"github.com/agrm/backend/internal/infrastructure/persistence"
	"github.com/agrm/backend/internal/infrastructure/persistence/models"
	"github.com/agrm/backend/internal/interfaces/http/dto"
	"github.com/agrm/backend/internal/interfaces/http/middleware"
	"github.com/agrm/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

const testActor = "agent-12"

// envelope mirrors dto.Response with a raw data field for typed decoding
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

type apiFixture struct {
	t       *testing.T
	engine  *gin.Engine
	product credit.LoanProduct
}

// newAPIFixture serves the credit routes over a real service backed by in-memory sqlite
func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	t.Cleanup(func() { _ = sqlDB.Close() })

	products := persistence.NewGormLoanProductRepository(db)
	product := credit.LoanProduct{
		ID:            uuid.New(),
		Code:          "PME-STD",
		Name:          "Pret PME",
		MinAmount:     decimal.NewFromInt(100_000),
		MaxAmount:     decimal.NewFromInt(5_000_000),
		MinTermMonths: 3,
		MaxTermMonths: 36,
		IsActive:      true,
	}
	require.NoError(t, products.Save(context.Background(), &product))

	def, err := credit.NewWorkflowDefinition(credit.DefaultWorkflowConfig())
	require.NoError(t, err)

	svc := creditapp.NewLifecycleService(
		creditapp.Repositories{
			Applications: persistence.NewGormCreditApplicationRepository(db),
			Incomes:      persistence.NewGormIncomeRecordRepository(db),
			Expenses:     persistence.NewGormExpenseRecordRepository(db),
			Audits:       persistence.NewGormTransitionAuditRepository(db),
			Snapshots:    persistence.NewGormCapacitySnapshotRepository(db),
		},
		products,
		credit.NewStateMachine(def),
		credit.NewValidator(),
		zap.NewNop(),
	)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	router.NewRouter(engine).Register(CreditRoutes(
		NewCreditApplicationHandler(svc),
		NewFinancialRecordHandler(svc),
		NewWorkflowHandler(svc),
		middleware.RequireActor(),
	)).Setup()

	return &apiFixture{t: t, engine: engine, product: product}
}

// do sends a request to /api/v1/credit+path as testActor unless actor is overridden
func (f *apiFixture) do(method, path string, body any, actor ...string) (*httptest.ResponseRecorder, envelope) {
	f.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, "/api/v1/credit"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	who := testActor
	if len(actor) > 0 {
		who = actor[0]
	}
	if who != "" {
		req.Header.Set(middleware.ActorHeader, who)
	}

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(f.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	return out
}

func (f *apiFixture) createRequest() map[string]any {
	return map[string]any{
		"client_id":          uuid.NewString(),
		"branch_id":          uuid.NewString(),
		"credit_officer_id":  uuid.NewString(),
		"loan_product_id":    f.product.ID.String(),
		"credit_purpose_id":  uuid.NewString(),
		"savings_account_id": uuid.NewString(),
		"amount_requested":   "1200000",
		"duration_months":    12,
		"notes":              "Fonds de roulement",
	}
}

// createApplication opens a valid application and returns it
func (f *apiFixture) createApplication() creditapp.ApplicationResponse {
	f.t.Helper()
	w, env := f.do(http.MethodPost, "/applications", f.createRequest())
	require.Equal(f.t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[creditapp.ApplicationResponse](f.t, env)
}

// transition moves an application and fails the test on error
func (f *apiFixture) transition(id uuid.UUID, target credit.StatusCode) creditapp.TransitionResponse {
	f.t.Helper()
	w, env := f.do(http.MethodPost, "/applications/"+id.String()+"/transitions", map[string]any{
		"target_status": string(target),
		"reason":        "dossier complet",
	})
	require.Equal(f.t, http.StatusOK, w.Code, w.Body.String())
	return decodeData[creditapp.TransitionResponse](f.t, env)
}

func jsonUnmarshal(w *httptest.ResponseRecorder, v any) error {
	return json.Unmarshal(w.Body.Bytes(), v)
}
