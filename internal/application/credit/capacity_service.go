package credit

import (
	"context"
	"time"

	"github.com/agrm/backend/internal/domain/credit"
	"github.com/agrm/backend/internal/infrastructure/logger"
	"github.com/agrm/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ComputeCapacity assesses repayment capacity from the application's current
// income and expense records and stores the result as a snapshot.
func (s *LifecycleService) ComputeCapacity(ctx context.Context, id uuid.UUID, req CapacityRequest) (resp *CapacityResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "compute_capacity",
		telemetry.SpanAttrApplicationID.String(id.String()))
	defer s.finish(ctx, span, "compute_capacity", time.Now(), &err)

	app, err := s.appRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	incomes, err := s.incomeRepo.FindByApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.FindByApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	product, err := s.productFor(ctx, app)
	if err != nil {
		return nil, err
	}

	assessment := credit.ComputeCapacity(incomes, expenses, app, product)
	snapshot := credit.NewCapacitySnapshot(app.ID, assessment, req.AnalysisNotes, actorOrSystem(req.Actor))
	if err := s.snapshotRepo.Save(ctx, snapshot); err != nil {
		return nil, err
	}

	span.SetAttributes(
		telemetry.SpanAttrRiskLevel.String(string(assessment.RiskLevel)),
		telemetry.SpanAttrCapacitySufficient.Bool(assessment.IsCapacitySufficient),
	)
	logger.WithLogger(ctx, s.logger).Info("capacity assessed",
		zap.String("application_id", app.ID.String()),
		zap.String("debt_ratio", assessment.DebtRatio.String()),
		zap.Bool("sufficient", assessment.IsCapacitySufficient),
	)
	s.publish(ctx, credit.NewCapacityAssessedEvent(app.ID, assessment))

	out := toCapacityResponse(snapshot)
	return &out, nil
}

// LatestCapacity returns the most recent stored assessment of an application
func (s *LifecycleService) LatestCapacity(ctx context.Context, id uuid.UUID) (*CapacityResponse, error) {
	if _, err := s.appRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	snapshot, err := s.snapshotRepo.FindLatestByApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toCapacityResponse(snapshot)
	return &out, nil
}
