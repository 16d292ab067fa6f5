package credit

import (
	"context"
	"sort"
)

// WorkflowConfig is the raw, typed catalog a WorkflowDefinition is compiled from
type WorkflowConfig struct {
	InitialStatus    StatusCode
	CommitteeStatus  StatusCode
	TerminalStatuses []StatusCode
	Statuses         []ApplicationStatus
	Transitions      map[StatusCode][]StatusCode
	Decisions        []CommitteeDecision
}

// WorkflowDefinition is the immutable, validated transition graph and decision table.
// It also serves the status and decision catalog lookups.
type WorkflowDefinition struct {
	initial     StatusCode
	committee   StatusCode
	terminal    map[StatusCode]struct{}
	statuses    map[StatusCode]ApplicationStatus
	transitions map[StatusCode][]StatusCode
	decisions   map[DecisionCode]CommitteeDecision
	statusOrder []StatusCode
	decOrder    []DecisionCode
}

// NewWorkflowDefinition validates cfg for completeness and compiles it.
// Every violation is reported as a configuration error.
func NewWorkflowDefinition(cfg WorkflowConfig) (*WorkflowDefinition, error) {
	def := &WorkflowDefinition{
		initial:     cfg.InitialStatus,
		committee:   cfg.CommitteeStatus,
		terminal:    make(map[StatusCode]struct{}, len(cfg.TerminalStatuses)),
		statuses:    make(map[StatusCode]ApplicationStatus, len(cfg.Statuses)),
		transitions: make(map[StatusCode][]StatusCode, len(cfg.Transitions)),
		decisions:   make(map[DecisionCode]CommitteeDecision, len(cfg.Decisions)),
	}

	if len(cfg.Statuses) == 0 {
		return nil, NewConfigurationError("workflow defines no statuses")
	}
	for _, s := range cfg.Statuses {
		if s.Code == "" {
			return nil, NewConfigurationError("workflow status with empty code")
		}
		if _, dup := def.statuses[s.Code]; dup {
			return nil, NewConfigurationError("workflow status %s is defined twice", s.Code)
		}
		def.statuses[s.Code] = s
		def.statusOrder = append(def.statusOrder, s.Code)
	}
	sort.SliceStable(def.statusOrder, func(i, j int) bool {
		return def.statuses[def.statusOrder[i]].SequenceOrder < def.statuses[def.statusOrder[j]].SequenceOrder
	})

	if _, ok := def.statuses[cfg.InitialStatus]; !ok {
		return nil, NewConfigurationError("initial status %q is not a defined status", cfg.InitialStatus)
	}
	if _, ok := def.statuses[cfg.CommitteeStatus]; !ok {
		return nil, NewConfigurationError("committee status %q is not a defined status", cfg.CommitteeStatus)
	}
	if len(cfg.TerminalStatuses) == 0 {
		return nil, NewConfigurationError("workflow declares no terminal status")
	}
	for _, t := range cfg.TerminalStatuses {
		if _, ok := def.statuses[t]; !ok {
			return nil, NewConfigurationError("terminal status %q is not a defined status", t)
		}
		if t == cfg.CommitteeStatus || t == cfg.InitialStatus {
			return nil, NewConfigurationError("status %s cannot be both terminal and initial or committee", t)
		}
		def.terminal[t] = struct{}{}
	}

	for from, targets := range cfg.Transitions {
		if _, ok := def.statuses[from]; !ok {
			return nil, NewConfigurationError("transition source %q is not a defined status", from)
		}
		seen := make(map[StatusCode]struct{}, len(targets))
		edges := make([]StatusCode, 0, len(targets))
		for _, to := range targets {
			if _, ok := def.statuses[to]; !ok {
				return nil, NewConfigurationError("transition %s -> %q targets an undefined status", from, to)
			}
			if to == from {
				return nil, NewConfigurationError("transition %s -> %s is a self-loop", from, to)
			}
			if _, dup := seen[to]; dup {
				continue
			}
			seen[to] = struct{}{}
			edges = append(edges, to)
		}
		def.transitions[from] = edges
	}

	if len(def.transitions[cfg.CommitteeStatus]) > 0 {
		return nil, NewConfigurationError("committee status %s must not have manual transitions", cfg.CommitteeStatus)
	}
	for _, code := range def.statusOrder {
		_, isTerminal := def.terminal[code]
		n := len(def.transitions[code])
		switch {
		case isTerminal && n > 0:
			return nil, NewConfigurationError("terminal status %s has outgoing transitions", code)
		case !isTerminal && code != cfg.CommitteeStatus && n == 0:
			return nil, NewConfigurationError("non-terminal status %s has no outgoing transition", code)
		}
	}

	if len(cfg.Decisions) == 0 {
		return nil, NewConfigurationError("workflow defines no committee decisions")
	}
	for _, d := range cfg.Decisions {
		if d.Code == "" {
			return nil, NewConfigurationError("committee decision with empty code")
		}
		if _, dup := def.decisions[d.Code]; dup {
			return nil, NewConfigurationError("committee decision %s is defined twice", d.Code)
		}
		if d.TargetStatus == "" {
			return nil, NewConfigurationError("committee decision %s has no target status", d.Code)
		}
		if _, ok := def.statuses[d.TargetStatus]; !ok {
			return nil, NewConfigurationError("committee decision %s targets undefined status %q", d.Code, d.TargetStatus)
		}
		if d.TargetStatus == cfg.CommitteeStatus {
			return nil, NewConfigurationError("committee decision %s cannot resolve back to %s", d.Code, cfg.CommitteeStatus)
		}
		def.decisions[d.Code] = d
		def.decOrder = append(def.decOrder, d.Code)
	}

	if unreachable := def.unreachableActiveStatuses(); len(unreachable) > 0 {
		return nil, NewConfigurationError("statuses unreachable from %s: %v", cfg.InitialStatus, unreachable)
	}

	return def, nil
}

// unreachableActiveStatuses walks manual and decision edges from the initial status
func (d *WorkflowDefinition) unreachableActiveStatuses() []StatusCode {
	visited := map[StatusCode]bool{d.initial: true}
	queue := []StatusCode{d.initial}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		next := append([]StatusCode(nil), d.transitions[cur]...)
		if cur == d.committee {
			for _, code := range d.decOrder {
				next = append(next, d.decisions[code].TargetStatus)
			}
		}
		for _, n := range next {
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}

	var out []StatusCode
	for _, code := range d.statusOrder {
		if d.statuses[code].IsActive && !visited[code] {
			out = append(out, code)
		}
	}
	return out
}

// InitialStatus returns the status new applications start in
func (d *WorkflowDefinition) InitialStatus() StatusCode {
	return d.initial
}

// CommitteeStatus returns the status resolved only by committee decisions
func (d *WorkflowDefinition) CommitteeStatus() StatusCode {
	return d.committee
}

// IsTerminal reports whether code is a terminal status
func (d *WorkflowDefinition) IsTerminal(code StatusCode) bool {
	_, ok := d.terminal[code]
	return ok
}

// AllowedTransitions returns a copy of the manual transition set of from
func (d *WorkflowDefinition) AllowedTransitions(from StatusCode) []StatusCode {
	edges := d.transitions[from]
	out := make([]StatusCode, len(edges))
	copy(out, edges)
	return out
}

// CanTransition reports whether to is in the manual transition set of from
func (d *WorkflowDefinition) CanTransition(from, to StatusCode) bool {
	for _, e := range d.transitions[from] {
		if e == to {
			return true
		}
	}
	return false
}

// Status returns the status with the given code
func (d *WorkflowDefinition) Status(code StatusCode) (ApplicationStatus, bool) {
	s, ok := d.statuses[code]
	return s, ok
}

// Decision returns the committee decision with the given code
func (d *WorkflowDefinition) Decision(code DecisionCode) (CommitteeDecision, bool) {
	dec, ok := d.decisions[code]
	return dec, ok
}

// Statuses returns all statuses ordered by sequence
func (d *WorkflowDefinition) Statuses() []ApplicationStatus {
	out := make([]ApplicationStatus, 0, len(d.statusOrder))
	for _, code := range d.statusOrder {
		out = append(out, d.statuses[code])
	}
	return out
}

// Decisions returns all committee decisions in catalog order
func (d *WorkflowDefinition) Decisions() []CommitteeDecision {
	out := make([]CommitteeDecision, 0, len(d.decOrder))
	for _, code := range d.decOrder {
		out = append(out, d.decisions[code])
	}
	return out
}

// StatusByCode implements StatusCatalog
func (d *WorkflowDefinition) StatusByCode(_ context.Context, code StatusCode) (ApplicationStatus, error) {
	s, ok := d.statuses[code]
	if !ok {
		return ApplicationStatus{}, NewUnknownStatusError(code)
	}
	return s, nil
}

// DecisionByCode implements DecisionCatalog
func (d *WorkflowDefinition) DecisionByCode(_ context.Context, code DecisionCode) (CommitteeDecision, error) {
	dec, ok := d.decisions[code]
	if !ok {
		return CommitteeDecision{}, NewUnknownDecisionError(code)
	}
	return dec, nil
}

var (
	_ StatusCatalog   = (*WorkflowDefinition)(nil)
	_ DecisionCatalog = (*WorkflowDefinition)(nil)
)

// DefaultWorkflowConfig returns the built-in credit workflow catalog
func DefaultWorkflowConfig() WorkflowConfig {
	return WorkflowConfig{
		InitialStatus:    StatusInitialize,
		CommitteeStatus:  StatusPendingCommittee,
		TerminalStatuses: []StatusCode{StatusDisbursed, StatusRejected},
		Statuses: []ApplicationStatus{
			{Code: StatusInitialize, Name: "Initialized", NameFr: "Initialisée", Color: "gray", SequenceOrder: 1, AllowsEdit: true, IsActive: true},
			{Code: StatusPendingDocs, Name: "Pending documents", NameFr: "En attente de documents", Color: "orange", SequenceOrder: 2, AllowsEdit: true, IsActive: true},
			{Code: StatusUnderAnalysis, Name: "Under analysis", NameFr: "En analyse", Color: "blue", SequenceOrder: 3, AllowsEdit: true, IsActive: true},
			{Code: StatusFieldVisit, Name: "Field visit", NameFr: "Visite terrain", Color: "cyan", SequenceOrder: 4, AllowsEdit: true, IsActive: true},
			{Code: StatusVisitCompleted, Name: "Visit completed", NameFr: "Visite effectuée", Color: "teal", SequenceOrder: 5, AllowsEdit: true, IsActive: true},
			{Code: StatusPendingCommittee, Name: "Pending committee", NameFr: "En attente du comité", Color: "purple", SequenceOrder: 6, AllowsEdit: false, IsActive: true},
			{Code: StatusApproved, Name: "Approved", NameFr: "Approuvée", Color: "green", SequenceOrder: 7, AllowsEdit: false, IsActive: true},
			{Code: StatusApprovedConditions, Name: "Approved with conditions", NameFr: "Approuvée sous réserve", Color: "lime", SequenceOrder: 8, AllowsEdit: false, IsActive: true},
			{Code: StatusApprovedReducedAmount, Name: "Approved with reduced amount", NameFr: "Approuvée montant réduit", Color: "olive", SequenceOrder: 9, AllowsEdit: false, IsActive: true},
			{Code: StatusPendingDisbursement, Name: "Pending disbursement", NameFr: "En attente de décaissement", Color: "gold", SequenceOrder: 10, AllowsEdit: false, IsActive: true},
			{Code: StatusDisbursed, Name: "Disbursed", NameFr: "Décaissée", Color: "darkgreen", SequenceOrder: 11, AllowsEdit: false, IsActive: true},
			{Code: StatusRejected, Name: "Rejected", NameFr: "Rejetée", Color: "red", SequenceOrder: 12, AllowsEdit: false, IsActive: true},
		},
		Transitions: map[StatusCode][]StatusCode{
			StatusInitialize:            {StatusPendingDocs, StatusUnderAnalysis, StatusRejected},
			StatusPendingDocs:           {StatusUnderAnalysis, StatusRejected},
			StatusUnderAnalysis:         {StatusPendingDocs, StatusFieldVisit, StatusPendingCommittee, StatusRejected},
			StatusFieldVisit:            {StatusVisitCompleted, StatusRejected},
			StatusVisitCompleted:        {StatusUnderAnalysis, StatusPendingCommittee, StatusRejected},
			StatusApproved:              {StatusPendingDisbursement},
			StatusApprovedConditions:    {StatusPendingDocs, StatusPendingDisbursement},
			StatusApprovedReducedAmount: {StatusPendingDisbursement},
			StatusPendingDisbursement:   {StatusDisbursed},
		},
		Decisions: []CommitteeDecision{
			{Code: DecisionApprove, Name: "Approved", NameFr: "Approuvé", IsApproval: true, TargetStatus: StatusApproved},
			{Code: DecisionApproveWithConditions, Name: "Approved with conditions", NameFr: "Approuvé sous réserve", IsApproval: true, TargetStatus: StatusApprovedConditions},
			{Code: DecisionApproveReducedAmount, Name: "Approved with reduced amount", NameFr: "Approuvé montant réduit", IsApproval: true, ReducesAmount: true, TargetStatus: StatusApprovedReducedAmount},
			{Code: DecisionPostpone, Name: "Postponed", NameFr: "Ajourné", TargetStatus: StatusUnderAnalysis},
			{Code: DecisionReject, Name: "Rejected", NameFr: "Rejeté", RequiresReason: true, TargetStatus: StatusRejected},
		},
	}
}
