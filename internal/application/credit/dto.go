package credit

import (
	"time"

	"github.com/agrm/backend/internal/domain/credit"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ===================== Requests =====================

// CreateApplicationRequest represents a request to open a credit application
type CreateApplicationRequest struct {
	ClientID           *uuid.UUID      `json:"client_id"`
	BranchID           *uuid.UUID      `json:"branch_id"`
	CreditOfficerID    *uuid.UUID      `json:"credit_officer_id"`
	LoanProductID      *uuid.UUID      `json:"loan_product_id"`
	CreditPurposeID    *uuid.UUID      `json:"credit_purpose_id"`
	SavingsAccountID   *uuid.UUID      `json:"savings_account_id"`
	AmountRequested    decimal.Decimal `json:"amount_requested"`
	DurationMonths     int             `json:"duration_months" binding:"gte=0"`
	RepaymentFrequency string          `json:"repayment_frequency" binding:"omitempty,oneof=MONTHLY BIWEEKLY WEEKLY QUARTERLY AT_MATURITY"`
	Notes              string          `json:"notes" binding:"max=2000"`
}

func (r CreateApplicationRequest) details() credit.ApplicationDetails {
	return credit.ApplicationDetails{
		ClientID:           r.ClientID,
		BranchID:           r.BranchID,
		CreditOfficerID:    r.CreditOfficerID,
		LoanProductID:      r.LoanProductID,
		CreditPurposeID:    r.CreditPurposeID,
		SavingsAccountID:   r.SavingsAccountID,
		AmountRequested:    r.AmountRequested,
		DurationMonths:     r.DurationMonths,
		RepaymentFrequency: credit.RepaymentFrequency(r.RepaymentFrequency),
		Notes:              r.Notes,
	}
}

// UpdateApplicationRequest replaces the editable fields of an application
type UpdateApplicationRequest struct {
	CreateApplicationRequest
	ExpectedVersion *int `json:"expected_version"`
}

// ListApplicationsFilter defines filtering options for application list queries
type ListApplicationsFilter struct {
	Status   string `form:"status"`
	BranchID string `form:"branch_id" binding:"omitempty,uuid"`
	ClientID string `form:"client_id" binding:"omitempty,uuid"`
	Search   string `form:"search"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=created_at application_date amount_requested status_date application_number"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// TransitionRequest asks for a manual status change
type TransitionRequest struct {
	TargetStatus    string `json:"target_status" binding:"required"`
	Reason          string `json:"reason" binding:"max=2000"`
	ExpectedVersion *int   `json:"expected_version"`
	Actor           string `json:"-"` // Set from request header, not from request body
}

// CommitteeDecisionRequest records the committee outcome for an application
type CommitteeDecisionRequest struct {
	DecisionCode     string           `json:"decision_code" binding:"required"`
	ApprovedAmount   *decimal.Decimal `json:"approved_amount"`
	ApprovedDuration *int             `json:"approved_duration"`
	Notes            string           `json:"notes" binding:"max=2000"`
	ExpectedVersion  *int             `json:"expected_version"`
	Actor            string           `json:"-"`
}

// CapacityRequest triggers a capacity assessment
type CapacityRequest struct {
	AnalysisNotes string `json:"analysis_notes" binding:"max=4000"`
	Actor         string `json:"-"`
}

// IncomeRequest creates or updates an income record
type IncomeRequest struct {
	IncomeTypeCode           string          `json:"income_type_code" binding:"required,max=50"`
	Description              string          `json:"description" binding:"max=500"`
	DeclaredAmount           decimal.Decimal `json:"declared_amount"`
	EmployerName             *string         `json:"employer_name" binding:"omitempty,max=200"`
	ContractType             *string         `json:"contract_type" binding:"omitempty,max=50"`
	EmploymentDurationMonths *int            `json:"employment_duration_months" binding:"omitempty,gte=0"`
}

func (r IncomeRequest) details() credit.IncomeDetails {
	return credit.IncomeDetails{
		IncomeTypeCode:           r.IncomeTypeCode,
		Description:              r.Description,
		DeclaredAmount:           r.DeclaredAmount,
		EmployerName:             r.EmployerName,
		ContractType:             r.ContractType,
		EmploymentDurationMonths: r.EmploymentDurationMonths,
	}
}

// VerifyIncomeRequest confirms the verified amount of an income record
type VerifyIncomeRequest struct {
	VerifiedAmount *decimal.Decimal `json:"verified_amount" binding:"required"`
	Actor          string           `json:"-"`
}

// ExpenseRequest creates or updates an expense record
type ExpenseRequest struct {
	ExpenseTypeCode string          `json:"expense_type_code" binding:"required,max=50"`
	MonthlyAmount   decimal.Decimal `json:"monthly_amount"`
	IsEssential     bool            `json:"is_essential"`
	Description     *string         `json:"description" binding:"omitempty,max=500"`
}

func (r ExpenseRequest) details() credit.ExpenseDetails {
	return credit.ExpenseDetails{
		ExpenseTypeCode: r.ExpenseTypeCode,
		MonthlyAmount:   r.MonthlyAmount,
		IsEssential:     r.IsEssential,
		Description:     r.Description,
	}
}

// ===================== Responses =====================

// ApplicationResponse represents a credit application in API responses
type ApplicationResponse struct {
	ID                 uuid.UUID        `json:"id"`
	ApplicationNumber  string           `json:"application_number"`
	ClientID           *uuid.UUID       `json:"client_id,omitempty"`
	BranchID           *uuid.UUID       `json:"branch_id,omitempty"`
	CreditOfficerID    *uuid.UUID       `json:"credit_officer_id,omitempty"`
	LoanProductID      *uuid.UUID       `json:"loan_product_id,omitempty"`
	CreditPurposeID    *uuid.UUID       `json:"credit_purpose_id,omitempty"`
	SavingsAccountID   *uuid.UUID       `json:"savings_account_id,omitempty"`
	AmountRequested    decimal.Decimal  `json:"amount_requested"`
	DurationMonths     int              `json:"duration_months"`
	RepaymentFrequency string           `json:"repayment_frequency"`
	StatusCode         string           `json:"status_code"`
	StatusName         string           `json:"status_name,omitempty"`
	StatusNameFr       string           `json:"status_name_fr,omitempty"`
	StatusColor        string           `json:"status_color,omitempty"`
	AllowsEdit         bool             `json:"allows_edit"`
	IsTerminal         bool             `json:"is_terminal"`
	StatusDate         time.Time        `json:"status_date"`
	AmountApproved     *decimal.Decimal `json:"amount_approved,omitempty"`
	DurationApproved   *int             `json:"duration_approved,omitempty"`
	ApplicationDate    time.Time        `json:"application_date"`
	Notes              string           `json:"notes,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
	Version            int              `json:"version"`
}

// AuditEntryResponse represents one transition in the application history
type AuditEntryResponse struct {
	ID            uuid.UUID `json:"id"`
	ApplicationID uuid.UUID `json:"application_id"`
	FromStatus    string    `json:"from_status"`
	ToStatus      string    `json:"to_status"`
	Reason        string    `json:"reason,omitempty"`
	Actor         string    `json:"actor"`
	DecisionCode  *string   `json:"decision_code,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// TransitionResponse is returned by successful transitions and committee decisions
type TransitionResponse struct {
	Application ApplicationResponse `json:"application"`
	Audit       AuditEntryResponse  `json:"audit"`
}

// ValidationResponse lists every rule violation of an application
type ValidationResponse struct {
	ApplicationID uuid.UUID                `json:"application_id"`
	Valid         bool                     `json:"valid"`
	Errors        []credit.ValidationError `json:"errors"`
}

// AllowedTransitionsResponse describes where an application can move next
type AllowedTransitionsResponse struct {
	ApplicationID     uuid.UUID          `json:"application_id"`
	CurrentStatus     string             `json:"current_status"`
	IsTerminal        bool               `json:"is_terminal"`
	AwaitingCommittee bool               `json:"awaiting_committee"`
	Targets           []StatusResponse   `json:"targets"`
	Decisions         []DecisionResponse `json:"decisions,omitempty"`
}

// StatusResponse represents a workflow status
type StatusResponse struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	NameFr        string `json:"name_fr"`
	Description   string `json:"description,omitempty"`
	Color         string `json:"color,omitempty"`
	SequenceOrder int    `json:"sequence_order"`
	AllowsEdit    bool   `json:"allows_edit"`
	IsActive      bool   `json:"is_active"`
	IsTerminal    bool   `json:"is_terminal"`
}

// DecisionResponse represents a committee decision type
type DecisionResponse struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	NameFr         string `json:"name_fr"`
	IsApproval     bool   `json:"is_approval"`
	RequiresReason bool   `json:"requires_reason"`
	ReducesAmount  bool   `json:"reduces_amount"`
	TargetStatus   string `json:"target_status"`
}

// IncomeResponse represents an income record
type IncomeResponse struct {
	ID                       uuid.UUID       `json:"id"`
	ApplicationID            uuid.UUID       `json:"application_id"`
	IncomeTypeCode           string          `json:"income_type_code"`
	Description              string          `json:"description,omitempty"`
	DeclaredAmount           decimal.Decimal `json:"declared_amount"`
	VerifiedAmount           decimal.Decimal `json:"verified_amount"`
	IsVerified               bool            `json:"is_verified"`
	EmployerName             *string         `json:"employer_name,omitempty"`
	ContractType             *string         `json:"contract_type,omitempty"`
	EmploymentDurationMonths *int            `json:"employment_duration_months,omitempty"`
	VerifiedBy               string          `json:"verified_by,omitempty"`
	VerifiedAt               *time.Time      `json:"verified_at,omitempty"`
	CreatedAt                time.Time       `json:"created_at"`
	UpdatedAt                time.Time       `json:"updated_at"`
}

// ExpenseResponse represents an expense record
type ExpenseResponse struct {
	ID              uuid.UUID       `json:"id"`
	ApplicationID   uuid.UUID       `json:"application_id"`
	ExpenseTypeCode string          `json:"expense_type_code"`
	MonthlyAmount   decimal.Decimal `json:"monthly_amount"`
	IsEssential     bool            `json:"is_essential"`
	Description     *string         `json:"description,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CapacityResponse represents a stored capacity assessment
type CapacityResponse struct {
	SnapshotID    uuid.UUID                 `json:"snapshot_id"`
	ApplicationID uuid.UUID                 `json:"application_id"`
	Assessment    credit.CapacityAssessment `json:"assessment"`
	AnalysisNotes string                    `json:"analysis_notes,omitempty"`
	AssessedBy    string                    `json:"assessed_by"`
	AssessedAt    time.Time                 `json:"assessed_at"`
}

// ===================== Mapping =====================

func (s *LifecycleService) toApplicationResponse(app *credit.CreditApplication) ApplicationResponse {
	resp := ApplicationResponse{
		ID:                 app.ID,
		ApplicationNumber:  app.ApplicationNumber,
		ClientID:           app.ClientID,
		BranchID:           app.BranchID,
		CreditOfficerID:    app.CreditOfficerID,
		LoanProductID:      app.LoanProductID,
		CreditPurposeID:    app.CreditPurposeID,
		SavingsAccountID:   app.SavingsAccountID,
		AmountRequested:    app.AmountRequested,
		DurationMonths:     app.DurationMonths,
		RepaymentFrequency: string(app.RepaymentFrequency),
		StatusCode:         string(app.StatusCode),
		IsTerminal:         s.def.IsTerminal(app.StatusCode),
		StatusDate:         app.StatusDate,
		AmountApproved:     app.AmountApproved,
		DurationApproved:   app.DurationApproved,
		ApplicationDate:    app.ApplicationDate,
		Notes:              app.Notes,
		CreatedAt:          app.CreatedAt,
		UpdatedAt:          app.UpdatedAt,
		Version:            app.Version,
	}
	if st, ok := s.def.Status(app.StatusCode); ok {
		resp.StatusName = st.Name
		resp.StatusNameFr = st.NameFr
		resp.StatusColor = st.Color
		resp.AllowsEdit = st.AllowsEdit
	}
	return resp
}

func toAuditEntryResponse(e credit.TransitionAuditEntry) AuditEntryResponse {
	resp := AuditEntryResponse{
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
		resp.DecisionCode = &code
	}
	return resp
}

func (s *LifecycleService) toStatusResponse(st credit.ApplicationStatus) StatusResponse {
	return StatusResponse{
		Code:          string(st.Code),
		Name:          st.Name,
		NameFr:        st.NameFr,
		Description:   st.Description,
		Color:         st.Color,
		SequenceOrder: st.SequenceOrder,
		AllowsEdit:    st.AllowsEdit,
		IsActive:      st.IsActive,
		IsTerminal:    s.def.IsTerminal(st.Code),
	}
}

func toDecisionResponse(d credit.CommitteeDecision) DecisionResponse {
	return DecisionResponse{
		Code:           string(d.Code),
		Name:           d.Name,
		NameFr:         d.NameFr,
		IsApproval:     d.IsApproval,
		RequiresReason: d.RequiresReason,
		ReducesAmount:  d.ReducesAmount,
		TargetStatus:   string(d.TargetStatus),
	}
}

func toIncomeResponse(r *credit.IncomeRecord) IncomeResponse {
	return IncomeResponse{
		ID:                       r.ID,
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
		CreatedAt:                r.CreatedAt,
		UpdatedAt:                r.UpdatedAt,
	}
}

func toExpenseResponse(r *credit.ExpenseRecord) ExpenseResponse {
	return ExpenseResponse{
		ID:              r.ID,
		ApplicationID:   r.ApplicationID,
		ExpenseTypeCode: r.ExpenseTypeCode,
		MonthlyAmount:   r.MonthlyAmount,
		IsEssential:     r.IsEssential,
		Description:     r.Description,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func toCapacityResponse(snap *credit.CapacitySnapshot) CapacityResponse {
	return CapacityResponse{
		SnapshotID:    snap.ID,
		ApplicationID: snap.ApplicationID,
		Assessment:    snap.Assessment,
		AnalysisNotes: snap.AnalysisNotes,
		AssessedBy:    snap.AssessedBy,
		AssessedAt:    snap.AssessedAt,
	}
}
