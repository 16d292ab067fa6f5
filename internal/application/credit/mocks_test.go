package credit

import (
	"context"
	"sync"

	"github.com/agrm/backend/internal/domain/credit"
	"github.com/agrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockApplicationRepository is a mock implementation of credit.ApplicationRepository
type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*credit.CreditApplication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credit.CreditApplication), args.Error(1)
}

func (m *MockApplicationRepository) FindByNumber(ctx context.Context, number string) (*credit.CreditApplication, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credit.CreditApplication), args.Error(1)
}

func (m *MockApplicationRepository) FindAll(ctx context.Context, filter credit.ApplicationFilter) ([]credit.CreditApplication, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]credit.CreditApplication), args.Get(1).(int64), args.Error(2)
}

func (m *MockApplicationRepository) Save(ctx context.Context, app *credit.CreditApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockApplicationRepository) SaveWithLock(ctx context.Context, app *credit.CreditApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockApplicationRepository) SaveTransition(ctx context.Context, app *credit.CreditApplication, entry credit.TransitionAuditEntry) error {
	args := m.Called(ctx, app, entry)
	return args.Error(0)
}

func (m *MockApplicationRepository) GenerateApplicationNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockIncomeRecordRepository is a mock implementation of credit.IncomeRecordRepository
type MockIncomeRecordRepository struct {
	mock.Mock
}

func (m *MockIncomeRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*credit.IncomeRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credit.IncomeRecord), args.Error(1)
}

func (m *MockIncomeRecordRepository) FindByApplication(ctx context.Context, applicationID uuid.UUID) ([]credit.IncomeRecord, error) {
	args := m.Called(ctx, applicationID)
	return args.Get(0).([]credit.IncomeRecord), args.Error(1)
}

func (m *MockIncomeRecordRepository) Save(ctx context.Context, record *credit.IncomeRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockIncomeRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockExpenseRecordRepository is a mock implementation of credit.ExpenseRecordRepository
type MockExpenseRecordRepository struct {
	mock.Mock
}

func (m *MockExpenseRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*credit.ExpenseRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credit.ExpenseRecord), args.Error(1)
}

func (m *MockExpenseRecordRepository) FindByApplication(ctx context.Context, applicationID uuid.UUID) ([]credit.ExpenseRecord, error) {
	args := m.Called(ctx, applicationID)
	return args.Get(0).([]credit.ExpenseRecord), args.Error(1)
}

func (m *MockExpenseRecordRepository) Save(ctx context.Context, record *credit.ExpenseRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockExpenseRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTransitionAuditRepository is a mock implementation of credit.TransitionAuditRepository
type MockTransitionAuditRepository struct {
	mock.Mock
}

func (m *MockTransitionAuditRepository) FindByApplication(ctx context.Context, applicationID uuid.UUID) ([]credit.TransitionAuditEntry, error) {
	args := m.Called(ctx, applicationID)
	return args.Get(0).([]credit.TransitionAuditEntry), args.Error(1)
}

// MockCapacitySnapshotRepository is a mock implementation of credit.CapacitySnapshotRepository
type MockCapacitySnapshotRepository struct {
	mock.Mock
}

func (m *MockCapacitySnapshotRepository) Save(ctx context.Context, snapshot *credit.CapacitySnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockCapacitySnapshotRepository) FindLatestByApplication(ctx context.Context, applicationID uuid.UUID) (*credit.CapacitySnapshot, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credit.CapacitySnapshot), args.Error(1)
}

// MockProductCatalog is a mock implementation of credit.ProductCatalog
type MockProductCatalog struct {
	mock.Mock
}

func (m *MockProductCatalog) ProductByID(ctx context.Context, id uuid.UUID) (*credit.LoanProduct, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credit.LoanProduct), args.Error(1)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{events: make([]shared.DomainEvent, 0)}
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

func (m *MockEventPublisher) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}
