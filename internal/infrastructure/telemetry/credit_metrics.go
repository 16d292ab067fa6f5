package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/agrm/backend/internal/domain/credit"
	"github.com/agrm/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// CreditMetrics provides business metrics for the credit lifecycle engine.
// It counts domain events as an event handler, records operation latency,
// and periodically gauges the number of applications per status.
type CreditMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	applicationsCreated *Counter
	transitionsTotal    *Counter
	decisionsTotal      *Counter
	assessmentsTotal    *Counter
	operationFailures   *Counter

	// Distributions
	debtRatio         *Histogram
	operationDuration *Histogram

	// Gauge metrics (point-in-time values)
	applicationsByStatus *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	statusProvider StatusCountProvider
}

// StatusCountProvider reports how many applications sit in each status.
// This keeps the telemetry layer independent of the storage implementation.
type StatusCountProvider interface {
	CountByStatus(ctx context.Context) (map[credit.StatusCode]int64, error)
}

// CreditMetricsConfig holds configuration for credit metrics.
type CreditMetricsConfig struct {
	Meter          metric.Meter
	Logger         *zap.Logger
	StatusProvider StatusCountProvider
}

// Attribute keys for credit metrics
var (
	AttrFromStatus   = attribute.Key("from_status")
	AttrToStatus     = attribute.Key("to_status")
	AttrDecisionCode = attribute.Key("decision_code")
	AttrIsApproval   = attribute.Key("is_approval")
	AttrRiskLevel    = attribute.Key("risk_level")
	AttrSufficient   = attribute.Key("capacity_sufficient")
	AttrOperation    = attribute.Key("operation")
	AttrOutcome      = attribute.Key("outcome")
	AttrErrorCode    = attribute.Key("error_code")
	AttrStatus       = attribute.Key("status")
)

// DebtRatioBuckets are bucket boundaries for debt ratios (percent).
var DebtRatioBuckets = []float64{10, 20, 30, 40, 50, 75, 100, 200}

// NewCreditMetrics creates a new CreditMetrics instance.
func NewCreditMetrics(cfg CreditMetricsConfig) (*CreditMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cm := &CreditMetrics{
		meter:          cfg.Meter,
		logger:         logger,
		stopChan:       make(chan struct{}),
		statusProvider: cfg.StatusProvider,
	}

	var err error
	if cm.applicationsCreated, err = NewCounter(cfg.Meter,
		"agrm_credit_applications_created_total",
		"Total number of credit applications created",
		"{applications}",
	); err != nil {
		return nil, err
	}
	if cm.transitionsTotal, err = NewCounter(cfg.Meter,
		"agrm_credit_transitions_total",
		"Total number of committed status transitions",
		"{transitions}",
	); err != nil {
		return nil, err
	}
	if cm.decisionsTotal, err = NewCounter(cfg.Meter,
		"agrm_credit_committee_decisions_total",
		"Total number of committee decisions recorded",
		"{decisions}",
	); err != nil {
		return nil, err
	}
	if cm.assessmentsTotal, err = NewCounter(cfg.Meter,
		"agrm_credit_capacity_assessments_total",
		"Total number of capacity assessments computed",
		"{assessments}",
	); err != nil {
		return nil, err
	}
	if cm.operationFailures, err = NewCounter(cfg.Meter,
		"agrm_credit_operation_failures_total",
		"Total number of failed engine operations by error code",
		"{failures}",
	); err != nil {
		return nil, err
	}
	if cm.debtRatio, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "agrm_credit_debt_ratio",
		Description: "Debt ratio of capacity assessments",
		Unit:        "%",
		Boundaries:  DebtRatioBuckets,
	}); err != nil {
		return nil, err
	}
	if cm.operationDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "agrm_credit_operation_duration_seconds",
		Description: "Duration of engine operations including persistence",
		Unit:        "s",
		Boundaries:  LatencyBuckets,
	}); err != nil {
		return nil, err
	}
	if cm.applicationsByStatus, err = NewGauge(cfg.Meter,
		"agrm_credit_applications_by_status",
		"Current number of applications per workflow status",
		"{applications}",
	); err != nil {
		return nil, err
	}

	return cm, nil
}

// =============================================================================
// Event handling
// =============================================================================

// EventTypes returns the credit event types counted by the metrics
func (cm *CreditMetrics) EventTypes() []string {
	return []string{
		credit.EventTypeApplicationCreated,
		credit.EventTypeApplicationStatusChanged,
		credit.EventTypeCommitteeDecisionRecorded,
		credit.EventTypeCapacityAssessed,
	}
}

// Handle records a credit domain event
func (cm *CreditMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *credit.ApplicationCreatedEvent:
		cm.applicationsCreated.Inc(ctx)
	case *credit.ApplicationStatusChangedEvent:
		cm.transitionsTotal.Inc(ctx,
			AttrFromStatus.String(string(e.FromStatus)),
			AttrToStatus.String(string(e.ToStatus)),
		)
	case *credit.CommitteeDecisionRecordedEvent:
		cm.decisionsTotal.Inc(ctx,
			AttrDecisionCode.String(string(e.DecisionCode)),
			AttrIsApproval.Bool(e.IsApproval),
		)
	case *credit.CapacityAssessedEvent:
		cm.assessmentsTotal.Inc(ctx,
			AttrRiskLevel.String(string(e.RiskLevel)),
			AttrSufficient.Bool(e.IsCapacitySufficient),
		)
		cm.debtRatio.Record(ctx, e.DebtRatio.InexactFloat64(), AttrRiskLevel.String(string(e.RiskLevel)))
	default:
		cm.logger.Debug("Ignoring unknown event type", zap.String("event_type", event.EventType()))
	}
	return nil
}

// =============================================================================
// Operation metrics
// =============================================================================

// RecordOperation records the latency and outcome of an engine operation
func (cm *CreditMetrics) RecordOperation(ctx context.Context, operation string, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
		cm.operationFailures.Inc(ctx,
			AttrOperation.String(operation),
			AttrErrorCode.String(errorCode(err)),
		)
	}
	cm.operationDuration.RecordDuration(ctx, d,
		AttrOperation.String(operation),
		AttrOutcome.String(outcome),
	)
}

func errorCode(err error) string {
	var verrs credit.ValidationErrors
	if errors.As(err, &verrs) {
		return credit.CodeValidationFailed
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return "INTERNAL"
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of the per-status gauge.
// This is non-blocking - use Stop() to stop collection.
func (cm *CreditMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	cm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go cm.runPeriodicCollection(ctx, interval)
	})
}

func (cm *CreditMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	cm.CollectStatusCounts(ctx)

	for {
		select {
		case <-cm.stopChan:
			cm.logger.Info("Stopping periodic credit metrics collection")
			return
		case <-ctx.Done():
			cm.logger.Info("Context cancelled, stopping periodic credit metrics collection")
			return
		case <-ticker.C:
			cm.CollectStatusCounts(ctx)
		}
	}
}

// CollectStatusCounts records the current number of applications per status
func (cm *CreditMetrics) CollectStatusCounts(ctx context.Context) {
	if cm.statusProvider == nil {
		cm.logger.Debug("No status provider configured, skipping status metrics collection")
		return
	}
	counts, err := cm.statusProvider.CountByStatus(ctx)
	if err != nil {
		cm.logger.Warn("Failed to count applications by status", zap.Error(err))
		return
	}
	for status, n := range counts {
		cm.applicationsByStatus.Record(ctx, n, AttrStatus.String(string(status)))
	}
}

// Stop stops the periodic collection.
func (cm *CreditMetrics) Stop() {
	cm.stopOnce.Do(func() {
		close(cm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewCreditMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

var _ shared.EventHandler = (*CreditMetrics)(nil)
