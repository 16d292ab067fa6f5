package credit

import (
	"github.com/agrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants for credit applications
const (
	EventTypeApplicationCreated        = "credit.application.created"
	EventTypeApplicationStatusChanged  = "credit.application.status_changed"
	EventTypeCommitteeDecisionRecorded = "credit.committee.decision_recorded"
	EventTypeCapacityAssessed          = "credit.capacity.assessed"
)

// ApplicationCreatedEvent is raised when a credit application is created
type ApplicationCreatedEvent struct {
	shared.BaseDomainEvent
	ApplicationNumber string          `json:"application_number"`
	Status            StatusCode      `json:"status"`
	AmountRequested   decimal.Decimal `json:"amount_requested"`
	DurationMonths    int             `json:"duration_months"`
}

// NewApplicationCreatedEvent creates a new ApplicationCreatedEvent
func NewApplicationCreatedEvent(app *CreditApplication) *ApplicationCreatedEvent {
	return &ApplicationCreatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeApplicationCreated, AggregateTypeCreditApplication, app.ID),
		ApplicationNumber: app.ApplicationNumber,
		Status:            app.StatusCode,
		AmountRequested:   app.AmountRequested,
		DurationMonths:    app.DurationMonths,
	}
}

// ApplicationStatusChangedEvent is raised for every successful transition
type ApplicationStatusChangedEvent struct {
	shared.BaseDomainEvent
	ApplicationNumber string           `json:"application_number"`
	FromStatus        StatusCode       `json:"from_status"`
	ToStatus          StatusCode       `json:"to_status"`
	Actor             string           `json:"actor"`
	Reason            string           `json:"reason"`
	AmountApproved    *decimal.Decimal `json:"amount_approved,omitempty"`
	DurationApproved  *int             `json:"duration_approved,omitempty"`
}

// NewApplicationStatusChangedEvent creates a new ApplicationStatusChangedEvent
func NewApplicationStatusChangedEvent(app *CreditApplication, entry TransitionAuditEntry) *ApplicationStatusChangedEvent {
	return &ApplicationStatusChangedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeApplicationStatusChanged, AggregateTypeCreditApplication, app.ID),
		ApplicationNumber: app.ApplicationNumber,
		FromStatus:        entry.FromStatus,
		ToStatus:          entry.ToStatus,
		Actor:             entry.Actor,
		Reason:            entry.Reason,
		AmountApproved:    app.AmountApproved,
		DurationApproved:  app.DurationApproved,
	}
}

// CommitteeDecisionRecordedEvent is raised when a committee decision resolves an application
type CommitteeDecisionRecordedEvent struct {
	shared.BaseDomainEvent
	ApplicationNumber string           `json:"application_number"`
	DecisionCode      DecisionCode     `json:"decision_code"`
	IsApproval        bool             `json:"is_approval"`
	TargetStatus      StatusCode       `json:"target_status"`
	AmountApproved    *decimal.Decimal `json:"amount_approved,omitempty"`
	DurationApproved  *int             `json:"duration_approved,omitempty"`
}

// NewCommitteeDecisionRecordedEvent creates a new CommitteeDecisionRecordedEvent
func NewCommitteeDecisionRecordedEvent(app *CreditApplication, decision CommitteeDecision) *CommitteeDecisionRecordedEvent {
	return &CommitteeDecisionRecordedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeCommitteeDecisionRecorded, AggregateTypeCreditApplication, app.ID),
		ApplicationNumber: app.ApplicationNumber,
		DecisionCode:      decision.Code,
		IsApproval:        decision.IsApproval,
		TargetStatus:      decision.TargetStatus,
		AmountApproved:    app.AmountApproved,
		DurationApproved:  app.DurationApproved,
	}
}

// CapacityAssessedEvent is raised after a capacity assessment is computed and stored
type CapacityAssessedEvent struct {
	shared.BaseDomainEvent
	IsCapacitySufficient bool            `json:"is_capacity_sufficient"`
	RiskLevel            RiskLevel       `json:"risk_level"`
	DebtRatio            decimal.Decimal `json:"debt_ratio"`
}

// NewCapacityAssessedEvent creates a new CapacityAssessedEvent
func NewCapacityAssessedEvent(applicationID uuid.UUID, a CapacityAssessment) *CapacityAssessedEvent {
	return &CapacityAssessedEvent{
		BaseDomainEvent:      shared.NewBaseDomainEvent(EventTypeCapacityAssessed, AggregateTypeCreditApplication, applicationID),
		IsCapacitySufficient: a.IsCapacitySufficient,
		RiskLevel:            a.RiskLevel,
		DebtRatio:            a.DebtRatio,
	}
}
