package credit

import (
	"context"

	"github.com/agrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ApplicationFilter narrows application listings
type ApplicationFilter struct {
	shared.Filter
	StatusCode StatusCode
	BranchID   *uuid.UUID
	ClientID   *uuid.UUID
}

// ApplicationRepository persists credit applications
type ApplicationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CreditApplication, error)
	FindByNumber(ctx context.Context, number string) (*CreditApplication, error)
	FindAll(ctx context.Context, filter ApplicationFilter) ([]CreditApplication, int64, error)
	// Save inserts a new application
	Save(ctx context.Context, app *CreditApplication) error
	// SaveWithLock updates an application whose stored version is app.Version-1.
	// A mismatch returns ErrConcurrentModification.
	SaveWithLock(ctx context.Context, app *CreditApplication) error
	// SaveTransition applies SaveWithLock and appends the audit entry in one transaction
	SaveTransition(ctx context.Context, app *CreditApplication, entry TransitionAuditEntry) error
	GenerateApplicationNumber(ctx context.Context) (string, error)
}

// IncomeRecordRepository persists income records
type IncomeRecordRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*IncomeRecord, error)
	FindByApplication(ctx context.Context, applicationID uuid.UUID) ([]IncomeRecord, error)
	Save(ctx context.Context, record *IncomeRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ExpenseRecordRepository persists expense records
type ExpenseRecordRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ExpenseRecord, error)
	FindByApplication(ctx context.Context, applicationID uuid.UUID) ([]ExpenseRecord, error)
	Save(ctx context.Context, record *ExpenseRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TransitionAuditRepository reads the append-only transition history.
// Entries are written only through ApplicationRepository.SaveTransition.
type TransitionAuditRepository interface {
	FindByApplication(ctx context.Context, applicationID uuid.UUID) ([]TransitionAuditEntry, error)
}

// CapacitySnapshotRepository stores computed capacity assessments
type CapacitySnapshotRepository interface {
	Save(ctx context.Context, snapshot *CapacitySnapshot) error
	FindLatestByApplication(ctx context.Context, applicationID uuid.UUID) (*CapacitySnapshot, error)
}
