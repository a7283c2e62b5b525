package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Invocation tracks one operation invocation across tracing and metrics.
type Invocation struct {
	Context   string
	Provider  string
	API       string
	Operation string
	StartTime time.Time
	// Metrics may be nil, in which case recording is skipped.
	Metrics *Metrics
}

// NewInvocation creates an invocation starting now.
func NewInvocation(contextName, provider, api, operation string, metrics *Metrics) *Invocation {
	return &Invocation{
		Context:   contextName,
		Provider:  provider,
		API:       api,
		Operation: operation,
		StartTime: time.Now(),
		Metrics:   metrics,
	}
}

type invocationKey struct{}

// WithInvocation stores inv in ctx.
func WithInvocation(ctx context.Context, inv *Invocation) context.Context {
	return context.WithValue(ctx, invocationKey{}, inv)
}

// InvocationFromContext returns the invocation stored in ctx, or nil.
func InvocationFromContext(ctx context.Context) *Invocation {
	if inv, ok := ctx.Value(invocationKey{}).(*Invocation); ok {
		return inv
	}
	return nil
}

// Start opens the invoke span and stores the invocation in the returned context.
func (inv *Invocation) Start(ctx context.Context) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, SpanInvoke)
	span.SetAttributes(
		attribute.String(AttrContext, inv.Context),
		attribute.String(AttrProvider, inv.Provider),
		attribute.String(AttrAPI, inv.API),
		attribute.String(AttrOperation, inv.Operation),
	)
	return WithInvocation(ctx, inv), span
}

// End closes span and records the invoke metric. status is "ok", "fallback" or an error code.
func (inv *Invocation) End(ctx context.Context, span trace.Span, status string, err error) {
	duration := time.Since(inv.StartTime)
	if err != nil {
		SetSpanError(ctx, err)
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	if inv.Metrics != nil {
		inv.Metrics.RecordInvoke(ctx, inv.API, inv.Operation, status, duration)
		if status == "fallback" {
			inv.Metrics.RecordFallback(ctx, inv.API, inv.Operation)
		}
	}
}

// Duration returns the elapsed time since the invocation started.
func (inv *Invocation) Duration() time.Duration {
	return time.Since(inv.StartTime)
}
