package otel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Strob0t/AgentForge/internal/config"
)

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.OTEL{ServiceName: "svc"}, "test")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordSynthesis(ctx, "classic", "local")
	m.RecordChat(ctx, "generic", "local")
	m.RecordDelegation(ctx, "chat", time.Second, "error")
}

func TestNewMetrics(t *testing.T) {
	m, err := NewMetrics()
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	ctx := context.Background()
	m.RecordSynthesis(ctx, "enhanced", "external")
	m.RecordChat(ctx, "scheduling", "local")
	m.RecordDelegation(ctx, "codegen", 150*time.Millisecond, "")
}

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func TestSpans(t *testing.T) {
	rec := withRecorder(t)
	ctx := context.Background()

	_, s1 := StartSynthesizeSpan(ctx, "BotAgent", "classic")
	s1.End()
	_, s2 := StartRespondSpan(ctx, "sess-1")
	s2.End()
	_, s3 := StartDelegationSpan(ctx, "chat", "litellm")
	s3.End()

	ended := rec.Ended()
	want := []string{"codegen.synthesize", "dialogue.respond", "textgen.generate"}
	if len(ended) != len(want) {
		t.Fatalf("expected %d spans, got %d", len(want), len(ended))
	}
	for i, name := range want {
		if ended[i].Name() != name {
			t.Errorf("span %d = %q, want %q", i, ended[i].Name(), name)
		}
	}
}

func TestHTTPMiddlewareSpanName(t *testing.T) {
	rec := withRecorder(t)

	h := HTTPMiddleware("agentforge")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	ended := rec.Ended()
	if len(ended) != 1 || ended[0].Name() != "GET /health" {
		t.Fatalf("unexpected spans: %v", ended)
	}
}
