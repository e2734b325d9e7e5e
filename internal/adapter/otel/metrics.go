package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "agentforge"

// Metrics holds all AgentForge metric instruments. A nil *Metrics records nothing.
type Metrics struct {
	Synthesis          metric.Int64Counter
	Chat               metric.Int64Counter
	Fallbacks          metric.Int64Counter
	DelegationDuration metric.Float64Histogram
}

// NewMetrics creates all metric instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.Synthesis, err = meter.Int64Counter("agentforge.synthesis.total",
		metric.WithDescription("Number of generated agent documents"))
	if err != nil {
		return nil, err
	}

	m.Chat, err = meter.Int64Counter("agentforge.chat.total",
		metric.WithDescription("Number of chat replies"))
	if err != nil {
		return nil, err
	}

	m.Fallbacks, err = meter.Int64Counter("agentforge.delegation.fallbacks",
		metric.WithDescription("Delegations that fell back to the local path"))
	if err != nil {
		return nil, err
	}

	m.DelegationDuration, err = meter.Float64Histogram("agentforge.delegation.duration_seconds",
		metric.WithDescription("External generation call duration in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordSynthesis counts one generated document.
func (m *Metrics) RecordSynthesis(ctx context.Context, variant, source string) {
	if m == nil {
		return
	}
	m.Synthesis.Add(ctx, 1, metric.WithAttributes(
		attribute.String("variant", variant),
		attribute.String("source", source),
	))
}

// RecordChat counts one chat reply.
func (m *Metrics) RecordChat(ctx context.Context, category, source string) {
	if m == nil {
		return
	}
	m.Chat.Add(ctx, 1, metric.WithAttributes(
		attribute.String("category", category),
		attribute.String("source", source),
	))
}

// RecordDelegation records one external call and, when it failed, a fallback.
// reason is empty on success.
func (m *Metrics) RecordDelegation(ctx context.Context, useCase string, d time.Duration, reason string) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("use_case", useCase))
	m.DelegationDuration.Record(ctx, d.Seconds(), attrs)
	if reason != "" {
		m.Fallbacks.Add(ctx, 1, metric.WithAttributes(
			attribute.String("use_case", useCase),
			attribute.String("reason", reason),
		))
	}
}
