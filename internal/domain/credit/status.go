package credit

// StatusCode identifies a workflow node of a credit application
type StatusCode string

// Well-known status codes of the default workflow catalog
const (
	StatusInitialize            StatusCode = "INITIALIZE"
	StatusPendingDocs           StatusCode = "PENDING_DOCS"
	StatusUnderAnalysis         StatusCode = "UNDER_ANALYSIS"
	StatusFieldVisit            StatusCode = "FIELD_VISIT"
	StatusVisitCompleted        StatusCode = "VISIT_COMPLETED"
	StatusPendingCommittee      StatusCode = "PENDING_COMMITTEE"
	StatusApproved              StatusCode = "APPROVED"
	StatusApprovedConditions    StatusCode = "APPROVED_CONDITIONS"
	StatusApprovedReducedAmount StatusCode = "APPROUVE_MONTANT_REDUIT"
	StatusPendingDisbursement   StatusCode = "PENDING_DISBURSEMENT"
	StatusDisbursed             StatusCode = "DISBURSED"
	StatusRejected              StatusCode = "REJETE"
)

// String returns the string representation of the status code
func (s StatusCode) String() string {
	return string(s)
}

// ApplicationStatus is the read-only reference data describing a workflow node
type ApplicationStatus struct {
	Code          StatusCode
	Name          string
	NameFr        string
	Description   string
	Color         string
	SequenceOrder int
	AllowsEdit    bool
	IsActive      bool
}
