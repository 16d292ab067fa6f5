package credit

// DecisionCode identifies a committee decision type
type DecisionCode string

// Well-known decision codes of the default catalog
const (
	DecisionApprove               DecisionCode = "APPROUVE"
	DecisionApproveWithConditions DecisionCode = "APPROUVE_SOUS_RESERVE"
	DecisionApproveReducedAmount  DecisionCode = "APPROUVE_MONTANT_REDUIT"
	DecisionPostpone              DecisionCode = "AJOURNE"
	DecisionReject                DecisionCode = "REJETE"
)

// String returns the string representation of the decision code
func (d DecisionCode) String() string {
	return string(d)
}

// CommitteeDecision is the read-only reference data for a committee outcome.
// TargetStatus is the application status the decision resolves to.
type CommitteeDecision struct {
	Code           DecisionCode
	Name           string
	NameFr         string
	IsApproval     bool
	RequiresReason bool
	ReducesAmount  bool
	TargetStatus   StatusCode
}
