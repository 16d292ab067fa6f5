package credit

import (
	"time"

	"github.com/google/uuid"
)

// TransitionAuditEntry records one status change. Entries are append-only.
type TransitionAuditEntry struct {
	ID            uuid.UUID
	ApplicationID uuid.UUID
	FromStatus    StatusCode
	ToStatus      StatusCode
	Reason        string
	Actor         string
	DecisionCode  *DecisionCode
	OccurredAt    time.Time
}

// IsCommitteeDecision reports whether the entry was produced by a committee decision
func (e TransitionAuditEntry) IsCommitteeDecision() bool {
	return e.DecisionCode != nil
}

// TransitionResult is the outcome of a successful transition: the updated
// application (a copy, the input is not mutated) and its audit entry.
type TransitionResult struct {
	Application *CreditApplication
	Audit       TransitionAuditEntry
}
