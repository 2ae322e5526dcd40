package tracing_test

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/zerobench/internal/config"
	"github.com/torosent/zerobench/internal/stats"
	"github.com/torosent/zerobench/internal/tracing"
)

func setupTestTracer(t *testing.T) (*tracetest.InMemoryExporter, trace.Tracer) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})
	return exporter, tp.Tracer("test")
}

func TestInitDisabledByDefault(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	p, err := tracing.Init(context.Background(), config.TracingConfig{})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	if p.Enabled() {
		t.Error("Enabled() = true, want false without an endpoint")
	}

	// Tracer should return a no-op (no panic)
	_, span := p.Tracer().Start(context.Background(), "test")
	span.End()
	if span.SpanContext().IsValid() {
		t.Error("no-op tracer produced a valid span context")
	}
}

func TestInitBlankEndpointFallsBackToEnv(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	p, err := tracing.Init(context.Background(), config.TracingConfig{Endpoint: "   "})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if p.Enabled() {
		t.Error("Enabled() = true, want false for a blank endpoint")
	}

	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
	p, err = tracing.Init(context.Background(), config.TracingConfig{Endpoint: "   ", Protocol: "http", Insecure: true, SampleRate: 1})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	if !p.Enabled() {
		t.Error("Enabled() = false, want true with OTEL_EXPORTER_OTLP_ENDPOINT set")
	}
}

func TestInitWithEndpointEnablesTracing(t *testing.T) {
	// We can't actually connect to an endpoint in unit tests,
	// but we verify the provider is configured correctly.
	p, err := tracing.Init(context.Background(), config.TracingConfig{
		Endpoint:    "localhost:4317",
		Protocol:    "grpc",
		ServiceName: "test-service",
		SampleRate:  1.0,
		Insecure:    true,
	})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	if !p.Enabled() {
		t.Error("Enabled() = false, want true when an endpoint is set")
	}
}

func TestInitHTTPProtocol(t *testing.T) {
	p, err := tracing.Init(context.Background(), config.TracingConfig{
		Endpoint:   "localhost:4318",
		Protocol:   "http",
		Insecure:   true,
		SampleRate: 0.5,
	})
	if err != nil {
		t.Fatalf("Init() with http protocol error = %v", err)
	}
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	if !p.Enabled() {
		t.Error("Enabled() = false, want true")
	}
}

func TestInitUnsupportedProtocol(t *testing.T) {
	_, err := tracing.Init(context.Background(), config.TracingConfig{
		Endpoint:   "localhost:4317",
		Protocol:   "thrift",
		Insecure:   true,
		SampleRate: 1,
	})
	if err == nil {
		t.Fatal("Init() with unsupported protocol should return error")
	}
}

func TestInitInvalidSampleRate(t *testing.T) {
	tests := []struct {
		name string
		rate float64
	}{
		{"negative", -0.5},
		{"above one", 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tracing.Init(context.Background(), config.TracingConfig{
				Endpoint:   "localhost:4317",
				Protocol:   "grpc",
				Insecure:   true,
				SampleRate: tt.rate,
			})
			if err == nil {
				t.Fatalf("Init() with sample_rate=%g should return error", tt.rate)
			}
		})
	}
}

func TestNilProviderSafety(t *testing.T) {
	var p *tracing.Provider
	if p.Enabled() {
		t.Error("nil provider Enabled() = true, want false")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("nil provider Shutdown() error = %v", err)
	}
	// Tracer() on nil should return no-op, not panic
	_, span := p.Tracer().Start(context.Background(), "test")
	span.End()
}

func TestStrategySpan(t *testing.T) {
	exporter, tracer := setupTestTracer(t)

	_, span := tracing.StartStrategySpan(context.Background(), tracer, "memset", 40, 101)
	sum := stats.Summary{
		Policy: stats.PolicyQuartile,
		Fields: []stats.Field{{Name: "min", Value: 10}, {Name: "median", Value: 20}},
		StdDev: 1.5,
	}
	tracing.EndSpan(span, nil, tracing.SummaryAttributes(sum)...)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "bench memset" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "bench memset")
	}
	if spans[0].Status.Code != codes.Ok {
		t.Errorf("span status code = %d, want %d (Ok)", spans[0].Status.Code, codes.Ok)
	}

	want := map[string]bool{
		"zerobench.strategy":  false,
		"zerobench.trials":    false,
		"zerobench.median_ns": false,
		"zerobench.reducer":   false,
	}
	for _, attr := range spans[0].Attributes {
		if _, ok := want[string(attr.Key)]; ok {
			want[string(attr.Key)] = true
		}
		if string(attr.Key) == "zerobench.median_ns" && attr.Value.AsInt64() != 20 {
			t.Errorf("median attribute = %d, want 20", attr.Value.AsInt64())
		}
	}
	for key, found := range want {
		if !found {
			t.Errorf("attribute %s not found", key)
		}
	}
}

func TestEndSpanRecordsError(t *testing.T) {
	exporter, tracer := setupTestTracer(t)

	_, span := tracer.Start(context.Background(), "test-error")
	tracing.EndSpan(span, context.Canceled)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status code = %d, want %d (Error)", spans[0].Status.Code, codes.Error)
	}
}
