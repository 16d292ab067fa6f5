package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName scopes the spans opened by application services.
const TracerName = "agrm-backend"

// Span attribute keys for credit operations.
var (
	SpanAttrApplicationID      = attribute.Key("credit.application_id")
	SpanAttrTargetStatus       = attribute.Key("credit.target_status")
	SpanAttrDecisionCode       = attribute.Key("credit.decision_code")
	SpanAttrRiskLevel          = attribute.Key("credit.risk_level")
	SpanAttrCapacitySufficient = attribute.Key("credit.capacity_sufficient")
)

// StartServiceSpan opens an internal span named "<service>.<operation>" from the
// global tracer provider, so it nests under the HTTP server span in ctx.
func StartServiceSpan(ctx context.Context, service, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, service+"."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// EndServiceSpan ends span, first marking it failed when err is non-nil.
func EndServiceSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
