package credit

import (
	"time"

	"github.com/agrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseRecord is one recurring monthly expense of an applicant
type ExpenseRecord struct {
	shared.BaseEntity
	ApplicationID   uuid.UUID
	ExpenseTypeCode string
	MonthlyAmount   decimal.Decimal
	IsEssential     bool
	Description     *string
}

// ExpenseDetails holds the editable fields of an expense record
type ExpenseDetails struct {
	ExpenseTypeCode string
	MonthlyAmount   decimal.Decimal
	IsEssential     bool
	Description     *string
}

// NewExpenseRecord creates an expense record for an application
func NewExpenseRecord(applicationID uuid.UUID, d ExpenseDetails) (*ExpenseRecord, error) {
	if applicationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_APPLICATION", "Application ID cannot be empty")
	}
	r := &ExpenseRecord{
		BaseEntity:    shared.NewBaseEntity(),
		ApplicationID: applicationID,
	}
	if err := r.Update(d); err != nil {
		return nil, err
	}
	return r, nil
}

// Update replaces the expense fields
func (r *ExpenseRecord) Update(d ExpenseDetails) error {
	if d.MonthlyAmount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Monthly amount cannot be negative")
	}
	r.ExpenseTypeCode = d.ExpenseTypeCode
	r.MonthlyAmount = d.MonthlyAmount
	r.IsEssential = d.IsEssential
	r.Description = d.Description
	r.Touch(time.Now())
	return nil
}
