package credit

import (
	"time"

	"github.com/agrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IncomeRecord is one declared income source of an applicant.
// Only verified records count toward verified income.
type IncomeRecord struct {
	shared.BaseEntity
	ApplicationID            uuid.UUID
	IncomeTypeCode           string
	Description              string
	DeclaredAmount           decimal.Decimal
	VerifiedAmount           decimal.Decimal
	IsVerified               bool
	EmployerName             *string
	ContractType             *string
	EmploymentDurationMonths *int
	VerifiedBy               string
	VerifiedAt               *time.Time
}

// IncomeDetails holds the editable fields of an income record
type IncomeDetails struct {
	IncomeTypeCode           string
	Description              string
	DeclaredAmount           decimal.Decimal
	EmployerName             *string
	ContractType             *string
	EmploymentDurationMonths *int
}

// NewIncomeRecord creates an unverified income record for an application
func NewIncomeRecord(applicationID uuid.UUID, d IncomeDetails) (*IncomeRecord, error) {
	if applicationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_APPLICATION", "Application ID cannot be empty")
	}
	r := &IncomeRecord{
		BaseEntity:     shared.NewBaseEntity(),
		ApplicationID:  applicationID,
		VerifiedAmount: decimal.Zero,
	}
	if err := r.Update(d); err != nil {
		return nil, err
	}
	return r, nil
}

// Update replaces the declared fields; verification is kept as is
func (r *IncomeRecord) Update(d IncomeDetails) error {
	if d.DeclaredAmount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Declared amount cannot be negative")
	}
	if d.EmploymentDurationMonths != nil && *d.EmploymentDurationMonths < 0 {
		return shared.NewDomainError("INVALID_DURATION", "Employment duration cannot be negative")
	}
	r.IncomeTypeCode = d.IncomeTypeCode
	r.Description = d.Description
	r.DeclaredAmount = d.DeclaredAmount
	r.EmployerName = d.EmployerName
	r.ContractType = d.ContractType
	r.EmploymentDurationMonths = d.EmploymentDurationMonths
	r.Touch(time.Now())
	return nil
}

// Verify marks the record as verified with the amount confirmed by the officer
func (r *IncomeRecord) Verify(amount decimal.Decimal, verifiedBy string) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Verified amount cannot be negative")
	}
	now := time.Now()
	r.VerifiedAmount = amount
	r.IsVerified = true
	r.VerifiedBy = verifiedBy
	r.VerifiedAt = &now
	r.Touch(now)
	return nil
}

// Unverify clears the verification
func (r *IncomeRecord) Unverify() {
	r.VerifiedAmount = decimal.Zero
	r.IsVerified = false
	r.VerifiedBy = ""
	r.VerifiedAt = nil
	r.Touch(time.Now())
}

// EffectiveVerifiedAmount is the amount counted as verified income
func (r IncomeRecord) EffectiveVerifiedAmount() decimal.Decimal {
	if !r.IsVerified {
		return decimal.Zero
	}
	return r.VerifiedAmount
}
