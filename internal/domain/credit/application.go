package credit

import (
	"fmt"
	"time"

	"github.com/agrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeCreditApplication is the aggregate type name used in events
const AggregateTypeCreditApplication = "CreditApplication"

// RepaymentFrequency is how often installments are due
type RepaymentFrequency string

const (
	RepaymentMonthly    RepaymentFrequency = "MONTHLY"
	RepaymentBiweekly   RepaymentFrequency = "BIWEEKLY"
	RepaymentWeekly     RepaymentFrequency = "WEEKLY"
	RepaymentQuarterly  RepaymentFrequency = "QUARTERLY"
	RepaymentAtMaturity RepaymentFrequency = "AT_MATURITY"
)

// IsValid checks if the repayment frequency is a known value
func (f RepaymentFrequency) IsValid() bool {
	switch f {
	case RepaymentMonthly, RepaymentBiweekly, RepaymentWeekly, RepaymentQuarterly, RepaymentAtMaturity:
		return true
	}
	return false
}

// ApplicationDetails holds the editable fields of a credit application
type ApplicationDetails struct {
	ClientID           *uuid.UUID
	BranchID           *uuid.UUID
	CreditOfficerID    *uuid.UUID
	LoanProductID      *uuid.UUID
	CreditPurposeID    *uuid.UUID
	SavingsAccountID   *uuid.UUID
	AmountRequested    decimal.Decimal
	DurationMonths     int
	RepaymentFrequency RepaymentFrequency
	Notes              string
}

// CreditApplication is the aggregate root for a loan request moving through the workflow.
// StatusCode is changed only by the StateMachine.
type CreditApplication struct {
	shared.BaseAggregateRoot
	ApplicationNumber  string
	ClientID           *uuid.UUID
	BranchID           *uuid.UUID
	CreditOfficerID    *uuid.UUID
	LoanProductID      *uuid.UUID
	CreditPurposeID    *uuid.UUID
	SavingsAccountID   *uuid.UUID
	AmountRequested    decimal.Decimal
	DurationMonths     int
	RepaymentFrequency RepaymentFrequency
	StatusCode         StatusCode
	StatusDate         time.Time
	AmountApproved     *decimal.Decimal
	DurationApproved   *int
	ApplicationDate    time.Time
	Notes              string
}

// NewCreditApplication creates a new application in the given initial status.
// Field-level rules are checked by the Validator, not here.
func NewCreditApplication(applicationNumber string, initial StatusCode, details ApplicationDetails) (*CreditApplication, error) {
	if applicationNumber == "" {
		return nil, shared.NewDomainError("INVALID_APPLICATION_NUMBER", "Application number cannot be empty")
	}
	if initial == "" {
		return nil, shared.NewDomainError("INVALID_STATUS", "Initial status cannot be empty")
	}
	if details.RepaymentFrequency == "" {
		details.RepaymentFrequency = RepaymentMonthly
	}
	if !details.RepaymentFrequency.IsValid() {
		return nil, shared.NewDomainError("INVALID_REPAYMENT_FREQUENCY",
			fmt.Sprintf("Unknown repayment frequency: %s", details.RepaymentFrequency))
	}

	now := time.Now()
	app := &CreditApplication{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ApplicationNumber: applicationNumber,
		StatusCode:        initial,
		StatusDate:        now,
		ApplicationDate:   now,
	}
	app.assign(details)

	app.AddDomainEvent(NewApplicationCreatedEvent(app))
	return app, nil
}

// Details returns the editable fields of the application
func (a *CreditApplication) Details() ApplicationDetails {
	return ApplicationDetails{
		ClientID:           a.ClientID,
		BranchID:           a.BranchID,
		CreditOfficerID:    a.CreditOfficerID,
		LoanProductID:      a.LoanProductID,
		CreditPurposeID:    a.CreditPurposeID,
		SavingsAccountID:   a.SavingsAccountID,
		AmountRequested:    a.AmountRequested,
		DurationMonths:     a.DurationMonths,
		RepaymentFrequency: a.RepaymentFrequency,
		Notes:              a.Notes,
	}
}

// UpdateDetails replaces the editable fields.
// It fails when the current status does not allow edits.
func (a *CreditApplication) UpdateDetails(current ApplicationStatus, details ApplicationDetails) error {
	if err := a.ensureEditable(current); err != nil {
		return err
	}
	if details.RepaymentFrequency == "" {
		details.RepaymentFrequency = a.RepaymentFrequency
	}
	if !details.RepaymentFrequency.IsValid() {
		return shared.NewDomainError("INVALID_REPAYMENT_FREQUENCY",
			fmt.Sprintf("Unknown repayment frequency: %s", details.RepaymentFrequency))
	}

	a.assign(details)
	a.Touch(time.Now())
	a.IncrementVersion()
	return nil
}

// EnsureEditable fails unless the application's current status allows record edits.
// Income and expense changes go through the same gate.
func (a *CreditApplication) EnsureEditable(current ApplicationStatus) error {
	return a.ensureEditable(current)
}

func (a *CreditApplication) ensureEditable(current ApplicationStatus) error {
	if current.Code != a.StatusCode {
		return NewUnknownStatusError(a.StatusCode)
	}
	if !current.AllowsEdit {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Application %s cannot be edited in status %s", a.ApplicationNumber, a.StatusCode))
	}
	return nil
}

func (a *CreditApplication) assign(d ApplicationDetails) {
	a.ClientID = d.ClientID
	a.BranchID = d.BranchID
	a.CreditOfficerID = d.CreditOfficerID
	a.LoanProductID = d.LoanProductID
	a.CreditPurposeID = d.CreditPurposeID
	a.SavingsAccountID = d.SavingsAccountID
	a.AmountRequested = d.AmountRequested
	a.DurationMonths = d.DurationMonths
	a.RepaymentFrequency = d.RepaymentFrequency
	a.Notes = d.Notes
}

// Clone returns a deep copy of the application
func (a *CreditApplication) Clone() *CreditApplication {
	c := *a
	c.BaseAggregateRoot = a.BaseAggregateRoot.Clone()
	if a.AmountApproved != nil {
		v := *a.AmountApproved
		c.AmountApproved = &v
	}
	if a.DurationApproved != nil {
		v := *a.DurationApproved
		c.DurationApproved = &v
	}
	return &c
}

// applyStatus moves the application to a new status; only the StateMachine calls it
func (a *CreditApplication) applyStatus(to StatusCode, at time.Time) {
	a.StatusCode = to
	a.StatusDate = at
	a.Touch(at)
	a.IncrementVersion()
}

// recordApproval stores the committee-approved terms
func (a *CreditApplication) recordApproval(amount *decimal.Decimal, duration *int) {
	if amount != nil {
		v := *amount
		a.AmountApproved = &v
	}
	if duration != nil {
		v := *duration
		a.DurationApproved = &v
	}
}
