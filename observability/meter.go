package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/version"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.Version,
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by the dispatcher and the invoke path.
type Metrics struct {
	dispatchTotal    metric.Int64Counter
	dispatchDuration metric.Float64Histogram
	dispatchActive   metric.Int64UpDownCounter
	retryTotal       metric.Int64Counter
	invokeTotal      metric.Int64Counter
	invokeDuration   metric.Float64Histogram
	fallbackTotal    metric.Int64Counter
	errorTotal       metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	dispatchTotal, err := meter.Int64Counter("apikit.dispatch.total",
		metric.WithDescription("Total number of HTTP exchanges"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apikit.dispatch.total counter: %w", err)
	}

	dispatchDuration, err := meter.Float64Histogram("apikit.dispatch.duration",
		metric.WithDescription("Duration of HTTP exchanges in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apikit.dispatch.duration histogram: %w", err)
	}

	dispatchActive, err := meter.Int64UpDownCounter("apikit.dispatch.active",
		metric.WithDescription("Number of in-flight HTTP exchanges"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apikit.dispatch.active gauge: %w", err)
	}

	retryTotal, err := meter.Int64Counter("apikit.retry.total",
		metric.WithDescription("Total number of retried attempts"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apikit.retry.total counter: %w", err)
	}

	invokeTotal, err := meter.Int64Counter("apikit.invoke.total",
		metric.WithDescription("Total number of operation invocations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apikit.invoke.total counter: %w", err)
	}

	invokeDuration, err := meter.Float64Histogram("apikit.invoke.duration",
		metric.WithDescription("Duration of operation invocations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apikit.invoke.duration histogram: %w", err)
	}

	fallbackTotal, err := meter.Int64Counter("apikit.fallback.total",
		metric.WithDescription("Total number of failures handled by a fallback"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apikit.fallback.total counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("apikit.error.total",
		metric.WithDescription("Total errors by code and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apikit.error.total counter: %w", err)
	}

	return &Metrics{
		dispatchTotal:    dispatchTotal,
		dispatchDuration: dispatchDuration,
		dispatchActive:   dispatchActive,
		retryTotal:       retryTotal,
		invokeTotal:      invokeTotal,
		invokeDuration:   invokeDuration,
		fallbackTotal:    fallbackTotal,
		errorTotal:       errorTotal,
	}, nil
}

// RecordDispatchStart increments the in-flight dispatch count.
func (m *Metrics) RecordDispatchStart(ctx context.Context) {
	m.dispatchActive.Add(ctx, 1)
}

// RecordDispatchEnd decrements in-flight dispatches and records the exchange.
// status is the HTTP status code as text, or an error code when no response arrived.
func (m *Metrics) RecordDispatchEnd(ctx context.Context, api, method, status string, duration time.Duration) {
	m.dispatchActive.Add(ctx, -1)
	m.dispatchTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("api", api),
		attribute.String("method", method),
		attribute.String("status", status),
	))
	m.dispatchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("api", api),
		attribute.String("method", method),
	))
}

// RecordRetry records one retried attempt.
func (m *Metrics) RecordRetry(ctx context.Context, api, method string) {
	m.retryTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("api", api),
		attribute.String("method", method),
	))
}

// RecordInvoke records a finished operation invocation.
func (m *Metrics) RecordInvoke(ctx context.Context, api, operation, status string, duration time.Duration) {
	m.invokeTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("api", api),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
	m.invokeDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("api", api),
		attribute.String("operation", operation),
	))
}

// RecordFallback records a failure replaced by a fallback value.
func (m *Metrics) RecordFallback(ctx context.Context, api, operation string) {
	m.fallbackTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("api", api),
		attribute.String("operation", operation),
	))
}

// RecordError records an error by code and component.
func (m *Metrics) RecordError(ctx context.Context, code, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("component", component),
	))
}
