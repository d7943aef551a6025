package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "venably"

// StartWriteSpan starts a span for one validate-then-commit write cycle.
func StartWriteSpan(ctx context.Context, op, tenantID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, op,
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
		),
	)
}

// StartCheckSpan starts a span for an availability check.
func StartCheckSpan(ctx context.Context, tenantID string, spaces int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "availability_check",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.Int("spaces", spaces),
		),
	)
}
