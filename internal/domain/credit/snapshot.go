package credit

import (
	"time"

	"github.com/google/uuid"
)

// CapacitySnapshot is a persisted capacity assessment
type CapacitySnapshot struct {
	ID            uuid.UUID
	ApplicationID uuid.UUID
	Assessment    CapacityAssessment
	AnalysisNotes string
	AssessedBy    string
	AssessedAt    time.Time
}

// NewCapacitySnapshot wraps an assessment for storage
func NewCapacitySnapshot(applicationID uuid.UUID, a CapacityAssessment, notes, assessedBy string) *CapacitySnapshot {
	return &CapacitySnapshot{
		ID:            uuid.New(),
		ApplicationID: applicationID,
		Assessment:    a,
		AnalysisNotes: notes,
		AssessedBy:    assessedBy,
		AssessedAt:    time.Now(),
	}
}
