package credit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agrm/backend/internal/domain/credit"
	"github.com/agrm/backend/internal/domain/shared"
	"github.com/agrm/backend/internal/infrastructure/logger"
	"github.com/agrm/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const spanService = "credit_application"

// Repositories groups the storage collaborators of the lifecycle service
type Repositories struct {
	Applications credit.ApplicationRepository
	Incomes      credit.IncomeRecordRepository
	Expenses     credit.ExpenseRecordRepository
	Audits       credit.TransitionAuditRepository
	Snapshots    credit.CapacitySnapshotRepository
}

// LifecycleService is the facade over the credit engine. It loads an application,
// runs the validator before the state machine, and persists the result.
type LifecycleService struct {
	appRepo      credit.ApplicationRepository
	incomeRepo   credit.IncomeRecordRepository
	expenseRepo  credit.ExpenseRecordRepository
	auditRepo    credit.TransitionAuditRepository
	snapshotRepo credit.CapacitySnapshotRepository
	products     credit.ProductCatalog
	machine      *credit.StateMachine
	def          *credit.WorkflowDefinition
	validator    *credit.Validator
	logger       *zap.Logger

	eventPublisher shared.EventPublisher
	metrics        *telemetry.CreditMetrics
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(
	repos Repositories,
	products credit.ProductCatalog,
	machine *credit.StateMachine,
	validator *credit.Validator,
	log *zap.Logger,
) *LifecycleService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LifecycleService{
		appRepo:      repos.Applications,
		incomeRepo:   repos.Incomes,
		expenseRepo:  repos.Expenses,
		auditRepo:    repos.Audits,
		snapshotRepo: repos.Snapshots,
		products:     products,
		machine:      machine,
		def:          machine.Definition(),
		validator:    validator,
		logger:       log,
	}
}

// SetEventPublisher sets the publisher used for domain events after commit
func (s *LifecycleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetCreditMetrics sets the metrics recorder for engine operations
func (s *LifecycleService) SetCreditMetrics(m *telemetry.CreditMetrics) {
	s.metrics = m
}

// Create opens a new application in the workflow's initial status
func (s *LifecycleService) Create(ctx context.Context, req CreateApplicationRequest) (*ApplicationResponse, error) {
	number, err := s.appRepo.GenerateApplicationNumber(ctx)
	if err != nil {
		return nil, err
	}

	app, err := credit.NewCreditApplication(number, s.def.InitialStatus(), req.details())
	if err != nil {
		return nil, err
	}

	product, err := s.productFor(ctx, app)
	if err != nil {
		return nil, err
	}
	if errs := s.validator.ValidateApplication(app, product); errs.HasErrors() {
		return nil, errs
	}

	if err := s.appRepo.Save(ctx, app); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, app)

	logger.WithLogger(ctx, s.logger).Info("credit application created",
		zap.String("application_id", app.ID.String()),
		zap.String("application_number", app.ApplicationNumber),
	)

	resp := s.toApplicationResponse(app)
	return &resp, nil
}

// Get returns one application
func (s *LifecycleService) Get(ctx context.Context, id uuid.UUID) (*ApplicationResponse, error) {
	app, err := s.appRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toApplicationResponse(app)
	return &resp, nil
}

// List returns a page of applications
func (s *LifecycleService) List(ctx context.Context, f ListApplicationsFilter) (*shared.Paginated[ApplicationResponse], error) {
	filter := credit.ApplicationFilter{Filter: shared.DefaultFilter()}
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	filter.Search = f.Search
	filter.StatusCode = credit.StatusCode(f.Status)
	if f.BranchID != "" {
		id, err := uuid.Parse(f.BranchID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "branch_id is not a valid UUID")
		}
		filter.BranchID = &id
	}
	if f.ClientID != "" {
		id, err := uuid.Parse(f.ClientID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "client_id is not a valid UUID")
		}
		filter.ClientID = &id
	}

	apps, total, err := s.appRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]ApplicationResponse, len(apps))
	for i := range apps {
		items[i] = s.toApplicationResponse(&apps[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update replaces the editable fields of an application whose status allows edits
func (s *LifecycleService) Update(ctx context.Context, id uuid.UUID, req UpdateApplicationRequest) (*ApplicationResponse, error) {
	app, err := s.appRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(app, req.ExpectedVersion); err != nil {
		return nil, err
	}

	status, err := s.def.StatusByCode(ctx, app.StatusCode)
	if err != nil {
		return nil, err
	}
	if err := app.UpdateDetails(status, req.details()); err != nil {
		return nil, err
	}

	product, err := s.productFor(ctx, app)
	if err != nil {
		return nil, err
	}
	if errs := s.validator.ValidateApplication(app, product); errs.HasErrors() {
		return nil, errs
	}

	if err := s.appRepo.SaveWithLock(ctx, app); err != nil {
		return nil, err
	}

	resp := s.toApplicationResponse(app)
	return &resp, nil
}

// ValidateApplication lists every rule violation of a stored application. It fails only
// when the application or its product cannot be loaded.
func (s *LifecycleService) ValidateApplication(ctx context.Context, id uuid.UUID) (*ValidationResponse, error) {
	app, err := s.appRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product, err := s.productFor(ctx, app)
	if err != nil {
		return nil, err
	}

	errs := s.validator.ValidateApplication(app, product)
	return &ValidationResponse{
		ApplicationID: app.ID,
		Valid:         !errs.HasErrors(),
		Errors:        errs,
	}, nil
}

// AllowedTransitions describes the manual targets and, at committee stage, the decisions available
func (s *LifecycleService) AllowedTransitions(ctx context.Context, id uuid.UUID) (*AllowedTransitionsResponse, error) {
	app, err := s.appRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &AllowedTransitionsResponse{
		ApplicationID:     app.ID,
		CurrentStatus:     string(app.StatusCode),
		IsTerminal:        s.def.IsTerminal(app.StatusCode),
		AwaitingCommittee: app.StatusCode == s.def.CommitteeStatus(),
		Targets:           []StatusResponse{},
	}
	for _, code := range s.def.AllowedTransitions(app.StatusCode) {
		if st, ok := s.def.Status(code); ok {
			resp.Targets = append(resp.Targets, s.toStatusResponse(st))
		}
	}
	if resp.AwaitingCommittee {
		for _, d := range s.def.Decisions() {
			resp.Decisions = append(resp.Decisions, toDecisionResponse(d))
		}
	}
	return resp, nil
}

// RequestTransition performs a manual status change and records it in the audit trail
func (s *LifecycleService) RequestTransition(ctx context.Context, id uuid.UUID, req TransitionRequest) (resp *TransitionResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "request_transition",
		telemetry.SpanAttrApplicationID.String(id.String()),
		telemetry.SpanAttrTargetStatus.String(req.TargetStatus),
	)
	defer s.finish(ctx, span, "request_transition", time.Now(), &err)

	app, err := s.appRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(app, req.ExpectedVersion); err != nil {
		return nil, err
	}
	target := credit.StatusCode(req.TargetStatus)
	if err := s.machine.CheckTransition(app.StatusCode, target); err != nil {
		return nil, err
	}

	product, err := s.productFor(ctx, app)
	if err != nil {
		return nil, err
	}
	if errs := s.validator.ValidateApplication(app, product); errs.HasErrors() {
		return nil, errs
	}

	result, err := s.machine.RequestTransition(app, target, req.Reason, req.Actor)
	if err != nil {
		return nil, err
	}
	return s.commitTransition(ctx, result)
}

// ResolveCommitteeDecision applies a committee decision to an application awaiting committee
func (s *LifecycleService) ResolveCommitteeDecision(ctx context.Context, id uuid.UUID, req CommitteeDecisionRequest) (resp *TransitionResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "resolve_committee_decision",
		telemetry.SpanAttrApplicationID.String(id.String()),
		telemetry.SpanAttrDecisionCode.String(req.DecisionCode),
	)
	defer s.finish(ctx, span, "resolve_committee_decision", time.Now(), &err)

	app, err := s.appRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(app, req.ExpectedVersion); err != nil {
		return nil, err
	}
	if app.StatusCode != s.def.CommitteeStatus() {
		return nil, credit.NewIllegalDecisionContextError(app.StatusCode, s.def.CommitteeStatus())
	}

	code := credit.DecisionCode(req.DecisionCode)
	decision, err := s.def.DecisionByCode(ctx, code)
	if err != nil {
		logger.WithLogger(ctx, s.logger).Error("committee decision has no target status",
			zap.String("decision_code", req.DecisionCode),
			zap.String("application_id", app.ID.String()),
		)
		return nil, err
	}

	product, err := s.productFor(ctx, app)
	if err != nil {
		return nil, err
	}
	domainReq := credit.CommitteeDecisionRequest{
		DecisionCode:     code,
		ApprovedAmount:   req.ApprovedAmount,
		ApprovedDuration: req.ApprovedDuration,
		Notes:            req.Notes,
		Actor:            req.Actor,
	}
	errs := s.validator.ValidateApplication(app, product)
	errs = append(errs, s.validator.ValidateCommitteeDecision(app, product, decision, domainReq)...)
	if errs.HasErrors() {
		return nil, errs
	}

	result, err := s.machine.ResolveCommitteeDecision(app, domainReq)
	if err != nil {
		return nil, err
	}
	return s.commitTransition(ctx, result)
}

// GetHistory returns the transition audit trail, newest first
func (s *LifecycleService) GetHistory(ctx context.Context, id uuid.UUID) ([]AuditEntryResponse, error) {
	if _, err := s.appRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.auditRepo.FindByApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = toAuditEntryResponse(e)
	}
	return out, nil
}

// ListStatuses returns the status catalog ordered by sequence
func (s *LifecycleService) ListStatuses() []StatusResponse {
	statuses := s.def.Statuses()
	out := make([]StatusResponse, len(statuses))
	for i, st := range statuses {
		out[i] = s.toStatusResponse(st)
	}
	return out
}

// ListDecisions returns the committee decision catalog
func (s *LifecycleService) ListDecisions() []DecisionResponse {
	decisions := s.def.Decisions()
	out := make([]DecisionResponse, len(decisions))
	for i, d := range decisions {
		out[i] = toDecisionResponse(d)
	}
	return out
}

// commitTransition persists the new application state with its audit entry, then publishes events
func (s *LifecycleService) commitTransition(ctx context.Context, result *credit.TransitionResult) (*TransitionResponse, error) {
	if err := s.appRepo.SaveTransition(ctx, result.Application, result.Audit); err != nil {
		return nil, err
	}

	logger.WithLogger(ctx, s.logger).Info("credit application status changed",
		zap.String("application_id", result.Application.ID.String()),
		zap.String("from", string(result.Audit.FromStatus)),
		zap.String("to", string(result.Audit.ToStatus)),
		zap.String("actor", result.Audit.Actor),
	)
	s.publishEvents(ctx, result.Application)

	return &TransitionResponse{
		Application: s.toApplicationResponse(result.Application),
		Audit:       toAuditEntryResponse(result.Audit),
	}, nil
}

// productFor resolves the application's loan product. A product id missing from the
// catalog is a configuration error, not a validation error.
func (s *LifecycleService) productFor(ctx context.Context, app *credit.CreditApplication) (*credit.LoanProduct, error) {
	if app.LoanProductID == nil || s.products == nil {
		return nil, nil
	}
	product, err := s.products.ProductByID(ctx, *app.LoanProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			logger.WithLogger(ctx, s.logger).Error("loan product missing from catalog",
				zap.String("product_id", app.LoanProductID.String()),
				zap.String("application_id", app.ID.String()),
			)
			return nil, credit.NewConfigurationError("loan product %s is not in the product catalog", app.LoanProductID)
		}
		return nil, fmt.Errorf("load loan product: %w", err)
	}
	return product, nil
}

// publishEvents publishes and clears the aggregate's pending events.
// Publish failures are logged; the state change is already committed.
func (s *LifecycleService) publishEvents(ctx context.Context, app *credit.CreditApplication) {
	s.publish(ctx, app.PullDomainEvents()...)
}

func (s *LifecycleService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("failed to publish credit events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}

func (s *LifecycleService) finish(ctx context.Context, span trace.Span, operation string, start time.Time, errp *error) {
	err := *errp
	telemetry.EndServiceSpan(span, err)
	if s.metrics != nil {
		s.metrics.RecordOperation(ctx, operation, time.Since(start), err)
	}
}

func checkVersion(app *credit.CreditApplication, expected *int) error {
	if expected == nil || *expected == app.Version {
		return nil
	}
	return shared.NewDomainError(credit.CodeConcurrentModification,
		fmt.Sprintf("application %s is at version %d, expected %d", app.ApplicationNumber, app.Version, *expected))
}

func actorOrSystem(actor string) string {
	if strings.TrimSpace(actor) == "" {
		return "system"
	}
	return actor
}
