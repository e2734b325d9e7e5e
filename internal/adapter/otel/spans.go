package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "agentforge"

// StartSynthesizeSpan starts a span for one agent document generation.
func StartSynthesizeSpan(ctx context.Context, className, variant string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "codegen.synthesize",
		trace.WithAttributes(
			attribute.String("agent.class_name", className),
			attribute.String("codegen.variant", variant),
		),
	)
}

// StartRespondSpan starts a span for one chat reply.
func StartRespondSpan(ctx context.Context, sessionID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "dialogue.respond",
		trace.WithAttributes(attribute.String("chat.session_id", sessionID)),
	)
}

// StartDelegationSpan starts a client span around an external generation call.
func StartDelegationSpan(ctx context.Context, useCase, provider string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "textgen.generate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("textgen.use_case", useCase),
			attribute.String("textgen.provider", provider),
		),
	)
}
