package models

import (
	"time"

	"github.com/agrm/backend/internal/domain/credit"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditApplicationModel is the persistence model for the CreditApplication aggregate.
type CreditApplicationModel struct {
	AggregateModel
	ApplicationNumber  string           `gorm:"type:varchar(30);not null;uniqueIndex"`
	ClientID           *uuid.UUID       `gorm:"type:uuid;index"`
	BranchID           *uuid.UUID       `gorm:"type:uuid;index"`
	CreditOfficerID    *uuid.UUID       `gorm:"type:uuid"`
	LoanProductID      *uuid.UUID       `gorm:"type:uuid"`
	CreditPurposeID    *uuid.UUID       `gorm:"type:uuid"`
	SavingsAccountID   *uuid.UUID       `gorm:"type:uuid"`
	AmountRequested    decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	DurationMonths     int              `gorm:"not null;default:0"`
	RepaymentFrequency string           `gorm:"type:varchar(20);not null;default:'MONTHLY'"`
	StatusCode         string           `gorm:"type:varchar(40);not null;index"`
	StatusDate         time.Time        `gorm:"not null"`
	AmountApproved     *decimal.Decimal `gorm:"type:decimal(18,2)"`
	DurationApproved   *int
	ApplicationDate    time.Time `gorm:"not null"`
	Notes              string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CreditApplicationModel) TableName() string {
	return "credit_applications"
}

// ToDomain converts the persistence model to a domain CreditApplication.
func (m *CreditApplicationModel) ToDomain() *credit.CreditApplication {
	return &credit.CreditApplication{
		BaseAggregateRoot:  m.ToAggregateRoot(),
		ApplicationNumber:  m.ApplicationNumber,
		ClientID:           m.ClientID,
		BranchID:           m.BranchID,
		CreditOfficerID:    m.CreditOfficerID,
		LoanProductID:      m.LoanProductID,
		CreditPurposeID:    m.CreditPurposeID,
		SavingsAccountID:   m.SavingsAccountID,
		AmountRequested:    m.AmountRequested,
		DurationMonths:     m.DurationMonths,
		RepaymentFrequency: credit.RepaymentFrequency(m.RepaymentFrequency),
		StatusCode:         credit.StatusCode(m.StatusCode),
		StatusDate:         m.StatusDate,
		AmountApproved:     m.AmountApproved,
		DurationApproved:   m.DurationApproved,
		ApplicationDate:    m.ApplicationDate,
		Notes:              m.Notes,
	}
}

// CreditApplicationModelFromDomain creates a persistence model from a domain CreditApplication.
func CreditApplicationModelFromDomain(a *credit.CreditApplication) *CreditApplicationModel {
	m := &CreditApplicationModel{
		ApplicationNumber:  a.ApplicationNumber,
		ClientID:           a.ClientID,
		BranchID:           a.BranchID,
		CreditOfficerID:    a.CreditOfficerID,
		LoanProductID:      a.LoanProductID,
		CreditPurposeID:    a.CreditPurposeID,
		SavingsAccountID:   a.SavingsAccountID,
		AmountRequested:    a.AmountRequested,
		DurationMonths:     a.DurationMonths,
		RepaymentFrequency: string(a.RepaymentFrequency),
		StatusCode:         string(a.StatusCode),
		StatusDate:         a.StatusDate,
		AmountApproved:     a.AmountApproved,
		DurationApproved:   a.DurationApproved,
		ApplicationDate:    a.ApplicationDate,
		Notes:              a.Notes,
	}
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	return m
}

// IncomeRecordModel is the persistence model for IncomeRecord.
type IncomeRecordModel struct {
	BaseModel
	ApplicationID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	IncomeTypeCode           string          `gorm:"type:varchar(40)"`
	Description              string          `gorm:"type:text"`
	DeclaredAmount           decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	VerifiedAmount           decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	IsVerified               bool            `gorm:"not null;default:false"`
	EmployerName             *string         `gorm:"type:varchar(200)"`
	ContractType             *string         `gorm:"type:varchar(40)"`
	EmploymentDurationMonths *int
	VerifiedBy               string `gorm:"type:varchar(100)"`
	VerifiedAt               *time.Time
}

// TableName returns the table name for GORM
func (IncomeRecordModel) TableName() string {
	return "credit_income_records"
}

// ToDomain converts the persistence model to a domain IncomeRecord.
func (m *IncomeRecordModel) ToDomain() *credit.IncomeRecord {
	return &credit.IncomeRecord{
		BaseEntity:               m.BaseModel.ToDomain(),
		ApplicationID:            m.ApplicationID,
		IncomeTypeCode:           m.IncomeTypeCode,
		Description:              m.Description,
		DeclaredAmount:           m.DeclaredAmount,
		VerifiedAmount:           m.VerifiedAmount,
		IsVerified:               m.IsVerified,
		EmployerName:             m.EmployerName,
		ContractType:             m.ContractType,
		EmploymentDurationMonths: m.EmploymentDurationMonths,
		VerifiedBy:               m.VerifiedBy,
		VerifiedAt:               m.VerifiedAt,
	}
}

// IncomeRecordModelFromDomain creates a persistence model from a domain IncomeRecord.
func IncomeRecordModelFromDomain(r *credit.IncomeRecord) *IncomeRecordModel {
	m := &IncomeRecordModel{
		ApplicationID:            r.ApplicationID,
		IncomeTypeCode:           r.IncomeTypeCode,
		Description:              r.Description,
		DeclaredAmount:           r.DeclaredAmount,
		VerifiedAmount:           r.VerifiedAmount,
		IsVerified:               r.IsVerified,
		EmployerName:             r.EmployerName,
		ContractType:             r.ContractType,
		EmploymentDurationMonths: r.EmploymentDurationMonths,
		VerifiedBy:               r.VerifiedBy,
		VerifiedAt:               r.VerifiedAt,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// ExpenseRecordModel is the persistence model for ExpenseRecord.
type ExpenseRecordModel struct {
	BaseModel
	ApplicationID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ExpenseTypeCode string          `gorm:"type:varchar(40)"`
	MonthlyAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	IsEssential     bool            `gorm:"not null;default:false"`
	Description     *string         `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ExpenseRecordModel) TableName() string {
	return "credit_expense_records"
}

// ToDomain converts the persistence model to a domain ExpenseRecord.
func (m *ExpenseRecordModel) ToDomain() *credit.ExpenseRecord {
	return &credit.ExpenseRecord{
		BaseEntity:      m.BaseModel.ToDomain(),
		ApplicationID:   m.ApplicationID,
		ExpenseTypeCode: m.ExpenseTypeCode,
		MonthlyAmount:   m.MonthlyAmount,
		IsEssential:     m.IsEssential,
		Description:     m.Description,
	}
}

// ExpenseRecordModelFromDomain creates a persistence model from a domain ExpenseRecord.
func ExpenseRecordModelFromDomain(r *credit.ExpenseRecord) *ExpenseRecordModel {
	m := &ExpenseRecordModel{
		ApplicationID:   r.ApplicationID,
		ExpenseTypeCode: r.ExpenseTypeCode,
		MonthlyAmount:   r.MonthlyAmount,
		IsEssential:     r.IsEssential,
		Description:     r.Description,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// TransitionAuditModel is an append-only row of the transition history.
type TransitionAuditModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ApplicationID uuid.UUID `gorm:"type:uuid;not null;index:idx_credit_audit_app_time,priority:1"`
	FromStatus    string    `gorm:"type:varchar(40);not null"`
	ToStatus      string    `gorm:"type:varchar(40);not null"`
	Reason        string    `gorm:"type:text"`
	Actor         string    `gorm:"type:varchar(100);not null"`
	DecisionCode  *string   `gorm:"type:varchar(40)"`
	OccurredAt    time.Time `gorm:"not null;index:idx_credit_audit_app_time,priority:2"`
}

// TableName returns the table name for GORM
func (TransitionAuditModel) TableName() string {
	return "credit_transition_audits"
}

// ToDomain converts the persistence model to a domain TransitionAuditEntry.
func (m *TransitionAuditModel) ToDomain() credit.TransitionAuditEntry {
	e := credit.TransitionAuditEntry{
		ID:            m.ID,
		ApplicationID: m.ApplicationID,
		FromStatus:    credit.StatusCode(m.FromStatus),
		ToStatus:      credit.StatusCode(m.ToStatus),
		Reason:        m.Reason,
		Actor:         m.Actor,
		OccurredAt:    m.OccurredAt,
	}
	if m.DecisionCode != nil {
		code := credit.DecisionCode(*m.DecisionCode)
		e.DecisionCode = &code
	}
	return e
}

// TransitionAuditModelFromDomain creates a persistence model from a domain TransitionAuditEntry.
func TransitionAuditModelFromDomain(e credit.TransitionAuditEntry) *TransitionAuditModel {
	m := &TransitionAuditModel{
		ID:            e.ID,
		ApplicationID: e.ApplicationID,
		FromStatus:    string(e.FromStatus),
		ToStatus:      string(e.ToStatus),
		Reason:        e.Reason,
		Actor:         e.Actor,
		OccurredAt:    e.OccurredAt,
	}
	if e.DecisionCode != nil {
		code := string(*e.DecisionCode)
		m.DecisionCode = &code
	}
	return m
}

// CapacitySnapshotModel stores one capacity assessment.
type CapacitySnapshotModel struct {
	ID                     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ApplicationID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_credit_snapshot_app_time,priority:1"`
	TotalDeclaredIncome    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalVerifiedIncome    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalMonthlyExpense    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalEssentialExpense  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DisposableIncome       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RepaymentCapacity      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DebtRatio              decimal.Decimal `gorm:"type:decimal(9,2);not null"`
	RecommendedMaxAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RecommendedMaxDuration int             `gorm:"not null"`
	IsCapacitySufficient   bool            `gorm:"not null"`
	RiskLevel              string          `gorm:"type:varchar(20);not null"`
	CapacityScore          int             `gorm:"not null"`
	AnalysisNotes          string          `gorm:"type:text"`
	AssessedBy             string          `gorm:"type:varchar(100);not null"`
	AssessedAt             time.Time       `gorm:"not null;index:idx_credit_snapshot_app_time,priority:2"`
}

// TableName returns the table name for GORM
func (CapacitySnapshotModel) TableName() string {
	return "credit_capacity_snapshots"
}

// ToDomain converts the persistence model to a domain CapacitySnapshot.
func (m *CapacitySnapshotModel) ToDomain() *credit.CapacitySnapshot {
	return &credit.CapacitySnapshot{
		ID:            m.ID,
		ApplicationID: m.ApplicationID,
		Assessment: credit.CapacityAssessment{
			TotalDeclaredIncome:    m.TotalDeclaredIncome,
			TotalVerifiedIncome:    m.TotalVerifiedIncome,
			TotalMonthlyExpense:    m.TotalMonthlyExpense,
			TotalEssentialExpense:  m.TotalEssentialExpense,
			DisposableIncome:       m.DisposableIncome,
			RepaymentCapacity:      m.RepaymentCapacity,
			DebtRatio:              m.DebtRatio,
			RecommendedMaxAmount:   m.RecommendedMaxAmount,
			RecommendedMaxDuration: m.RecommendedMaxDuration,
			IsCapacitySufficient:   m.IsCapacitySufficient,
			RiskLevel:              credit.RiskLevel(m.RiskLevel),
			CapacityScore:          m.CapacityScore,
		},
		AnalysisNotes: m.AnalysisNotes,
		AssessedBy:    m.AssessedBy,
		AssessedAt:    m.AssessedAt,
	}
}

// CapacitySnapshotModelFromDomain creates a persistence model from a domain CapacitySnapshot.
func CapacitySnapshotModelFromDomain(s *credit.CapacitySnapshot) *CapacitySnapshotModel {
	a := s.Assessment
	return &CapacitySnapshotModel{
		ID:                     s.ID,
		ApplicationID:          s.ApplicationID,
		TotalDeclaredIncome:    a.TotalDeclaredIncome,
		TotalVerifiedIncome:    a.TotalVerifiedIncome,
		TotalMonthlyExpense:    a.TotalMonthlyExpense,
		TotalEssentialExpense:  a.TotalEssentialExpense,
		DisposableIncome:       a.DisposableIncome,
		RepaymentCapacity:      a.RepaymentCapacity,
		DebtRatio:              a.DebtRatio,
		RecommendedMaxAmount:   a.RecommendedMaxAmount,
		RecommendedMaxDuration: a.RecommendedMaxDuration,
		IsCapacitySufficient:   a.IsCapacitySufficient,
		RiskLevel:              string(a.RiskLevel),
		CapacityScore:          a.CapacityScore,
		AnalysisNotes:          s.AnalysisNotes,
		AssessedBy:             s.AssessedBy,
		AssessedAt:             s.AssessedAt,
	}
}

// LoanProductModel is the persistence model for LoanProduct reference data.
type LoanProductModel struct {
	BaseModel
	Code          string          `gorm:"type:varchar(40);not null;uniqueIndex"`
	Name          string          `gorm:"type:varchar(200);not null"`
	MinAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	MaxAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	MinTermMonths int             `gorm:"not null;default:0"`
	MaxTermMonths int             `gorm:"not null;default:0"`
	IsActive      bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (LoanProductModel) TableName() string {
	return "credit_loan_products"
}

// ToDomain converts the persistence model to a domain LoanProduct.
func (m *LoanProductModel) ToDomain() *credit.LoanProduct {
	return &credit.LoanProduct{
		ID:            m.ID,
		Code:          m.Code,
		Name:          m.Name,
		MinAmount:     m.MinAmount,
		MaxAmount:     m.MaxAmount,
		MinTermMonths: m.MinTermMonths,
		MaxTermMonths: m.MaxTermMonths,
		IsActive:      m.IsActive,
	}
}

// LoanProductModelFromDomain creates a persistence model from a domain LoanProduct.
func LoanProductModelFromDomain(p *credit.LoanProduct) *LoanProductModel {
	now := time.Now()
	return &LoanProductModel{
		BaseModel:     BaseModel{ID: p.ID, CreatedAt: now, UpdatedAt: now},
		Code:          p.Code,
		Name:          p.Name,
		MinAmount:     p.MinAmount,
		MaxAmount:     p.MaxAmount,
		MinTermMonths: p.MinTermMonths,
		MaxTermMonths: p.MaxTermMonths,
		IsActive:      p.IsActive,
	}
}

// AllModels lists every credit model, in dependency order, for AutoMigrate in tests.
func AllModels() []any {
	return []any{
		&LoanProductModel{},
		&CreditApplicationModel{},
		&IncomeRecordModel{},
		&ExpenseRecordModel{},
		&TransitionAuditModel{},
		&CapacitySnapshotModel{},
	}
}
