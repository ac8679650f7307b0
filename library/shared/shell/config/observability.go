package config

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const metricExportInterval = 10 * time.Second

// ObservabilityProviders holds the OpenTelemetry providers of the process.
// A provider is nil when its endpoint is not configured.
type ObservabilityProviders struct {
	TracerProvider *trace.TracerProvider
	MeterProvider  *metric.MeterProvider
	Resource       *resource.Resource
}

// NewObservabilityProviders creates OTLP/gRPC exporting providers for the configured endpoints
// and installs them as the global providers.
func NewObservabilityProviders(ctx context.Context, cfg TelemetryConfig, version string) (*ObservabilityProviders, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		return nil, err
	}

	providers := &ObservabilityProviders{Resource: res}

	if cfg.TraceEndpoint != "" {
		traceExporter, err := otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpoint(cfg.TraceEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, err
		}

		providers.TracerProvider = trace.NewTracerProvider(
			trace.WithBatcher(traceExporter),
			trace.WithResource(res),
		)

		otel.SetTracerProvider(providers.TracerProvider)
		otel.SetTextMapPropagator(propagation.TraceContext{})
	}

	if cfg.MetricEndpoint != "" {
		metricExporter, err := otlpmetricgrpc.New(
			ctx,
			otlpmetricgrpc.WithEndpoint(cfg.MetricEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			_ = providers.Shutdown(ctx)
			return nil, err
		}

		providers.MeterProvider = metric.NewMeterProvider(
			metric.WithReader(metric.NewPeriodicReader(metricExporter, metric.WithInterval(metricExportInterval))),
			metric.WithResource(res),
		)

		otel.SetMeterProvider(providers.MeterProvider)
	}

	return providers, nil
}

// Shutdown flushes and stops the providers.
func (p *ObservabilityProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		errs = append(errs, p.TracerProvider.Shutdown(ctx))
	}

	if p.MeterProvider != nil {
		errs = append(errs, p.MeterProvider.Shutdown(ctx))
	}

	return errors.Join(errs...)
}
