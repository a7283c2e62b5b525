// Package observability wires OpenTelemetry tracing and metrics into the
// engine.
//
// Exporters are optional; without them the global no-op providers are used:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("apikit"))
//	defer tp.Shutdown(ctx)
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("apikit"))
//	defer mp.Shutdown(ctx)
//
// Dispatch and invoke instruments:
//
//	metrics, err := observability.NewMetrics(observability.Meter("apikit"))
//	metrics.RecordDispatchEnd(ctx, "acme-api", "GET", "200", duration)
package observability
