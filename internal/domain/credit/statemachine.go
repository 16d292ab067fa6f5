package credit

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommitteeDecisionRequest carries a committee outcome for an application
type CommitteeDecisionRequest struct {
	DecisionCode     DecisionCode
	ApprovedAmount   *decimal.Decimal
	ApprovedDuration *int
	Notes            string
	Actor            string
}

// StateMachine applies transitions according to an injected WorkflowDefinition.
// It holds no per-application state.
type StateMachine struct {
	def *WorkflowDefinition
	now func() time.Time
}

// StateMachineOption configures a StateMachine
type StateMachineOption func(*StateMachine)

// WithClock overrides the time source used to stamp transitions
func WithClock(now func() time.Time) StateMachineOption {
	return func(m *StateMachine) {
		m.now = now
	}
}

// NewStateMachine creates a state machine over def
func NewStateMachine(def *WorkflowDefinition, opts ...StateMachineOption) *StateMachine {
	m := &StateMachine{
		def: def,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Definition returns the workflow definition the machine runs on
func (m *StateMachine) Definition() *WorkflowDefinition {
	return m.def
}

// CheckTransition reports whether a manual move from -> target is allowed,
// without touching any application
func (m *StateMachine) CheckTransition(from, target StatusCode) error {
	if m.def.IsTerminal(from) {
		return NewTerminalStateError(from)
	}
	if !m.def.CanTransition(from, target) {
		return NewInvalidTransitionError(from, target)
	}
	return nil
}

// RequestTransition moves a copy of app to target if the manual transition table allows it
func (m *StateMachine) RequestTransition(app *CreditApplication, target StatusCode, reason, actor string) (*TransitionResult, error) {
	if err := m.CheckTransition(app.StatusCode, target); err != nil {
		return nil, err
	}
	return m.apply(app, target, reason, actor, nil, nil), nil
}

// ResolveCommitteeDecision resolves the committee status of a copy of app through the decision table
func (m *StateMachine) ResolveCommitteeDecision(app *CreditApplication, req CommitteeDecisionRequest) (*TransitionResult, error) {
	if app.StatusCode != m.def.CommitteeStatus() {
		return nil, NewIllegalDecisionContextError(app.StatusCode, m.def.CommitteeStatus())
	}
	decision, ok := m.def.Decision(req.DecisionCode)
	if !ok {
		return nil, NewUnknownDecisionError(req.DecisionCode)
	}
	if decision.ReducesAmount && req.ApprovedAmount == nil {
		return nil, ValidationErrors{{
			Field:   "approved_amount",
			Code:    "APPROVED_AMOUNT_REQUIRED",
			Message: fmt.Sprintf("Decision %s requires an approved amount", decision.Code),
		}}
	}

	var amount *decimal.Decimal
	switch {
	case req.ApprovedAmount != nil && (decision.IsApproval || decision.ReducesAmount):
		amount = req.ApprovedAmount
	case decision.IsApproval:
		requested := app.AmountRequested
		amount = &requested
	}

	code := decision.Code
	res := m.apply(app, decision.TargetStatus, committeeReason(code, req.Notes), req.Actor, &code, func(next *CreditApplication) {
		next.recordApproval(amount, req.ApprovedDuration)
	})
	res.Application.AddDomainEvent(NewCommitteeDecisionRecordedEvent(res.Application, decision))
	return res, nil
}

// apply is the single path that changes StatusCode. mutate runs on the copy
// before any event is raised.
func (m *StateMachine) apply(app *CreditApplication, target StatusCode, reason, actor string, decision *DecisionCode, mutate func(*CreditApplication)) *TransitionResult {
	now := m.now()
	next := app.Clone()
	from := next.StatusCode
	next.applyStatus(target, now)
	if mutate != nil {
		mutate(next)
	}

	entry := TransitionAuditEntry{
		ID:            uuid.New(),
		ApplicationID: next.ID,
		FromStatus:    from,
		ToStatus:      target,
		Reason:        reason,
		Actor:         actor,
		DecisionCode:  decision,
		OccurredAt:    now,
	}
	next.AddDomainEvent(NewApplicationStatusChangedEvent(next, entry))

	return &TransitionResult{Application: next, Audit: entry}
}

func committeeReason(code DecisionCode, notes string) string {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return fmt.Sprintf("Committee decision %s", code)
	}
	return fmt.Sprintf("Committee decision %s: %s", code, notes)
}
