package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// DefaultServiceVersion is reported when no version is configured.
const DefaultServiceVersion = "1.0.0"

const pipelineShutdownTimeout = 10 * time.Second

// newResource describes this service to the collector.
func newResource(serviceName, serviceVersion string) (*resource.Resource, error) {
	if serviceVersion == "" {
		serviceVersion = DefaultServiceVersion
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("describe service resource: %w", err)
	}
	return res, nil
}

// sdkProvider is what the trace, metric and log SDK providers have in common.
type sdkProvider interface {
	ForceFlush(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// pipeline carries the lifecycle shared by the OTLP signal providers.
// sdk stays nil while the signal is disabled, and every method is then a no-op.
type pipeline struct {
	signal string
	sdk    sdkProvider
	logger *zap.Logger
}

func newPipeline(signal string, logger *zap.Logger) pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return pipeline{signal: signal, logger: logger.With(zap.String("signal", signal))}
}

func (p *pipeline) start(sdk sdkProvider, fields ...zap.Field) {
	p.sdk = sdk
	p.logger.Info("Telemetry pipeline started", fields...)
}

// IsEnabled reports whether the signal is exported.
func (p *pipeline) IsEnabled() bool {
	return p.sdk != nil
}

// ForceFlush exports everything buffered so far.
func (p *pipeline) ForceFlush(ctx context.Context) error {
	if p.sdk == nil {
		return nil
	}
	return p.sdk.ForceFlush(ctx)
}

// Shutdown flushes and stops the pipeline, waiting at most pipelineShutdownTimeout.
func (p *pipeline) Shutdown(ctx context.Context) error {
	if p.sdk == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, pipelineShutdownTimeout)
	defer cancel()

	if err := p.sdk.Shutdown(ctx); err != nil {
		p.logger.Error("Telemetry pipeline shutdown failed", zap.Error(err))
		return fmt.Errorf("shutdown %s provider: %w", p.signal, err)
	}
	p.logger.Info("Telemetry pipeline stopped")
	return nil
}
