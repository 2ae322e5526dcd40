package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/zerobench/internal/stats"
)

// StartStrategySpan starts a span covering one strategy's full trial loop.
func StartStrategySpan(ctx context.Context, tracer trace.Tracer, strategy string, trials, bytes int) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "bench "+strategy,
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	span.SetAttributes(
		attribute.String("zerobench.strategy", strategy),
		attribute.Int("zerobench.trials", trials),
		attribute.Int("zerobench.bytes", bytes),
	)
	return ctx, span
}

// SummaryAttributes converts summary fields into span attributes.
func SummaryAttributes(sum stats.Summary) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(sum.Fields)+2)
	attrs = append(attrs,
		attribute.String("zerobench.reducer", string(sum.Policy)),
		attribute.Float64("zerobench.stddev_ns", sum.StdDev),
	)
	for _, f := range sum.Fields {
		attrs = append(attrs, attribute.Int64("zerobench."+f.Name+"_ns", int64(f.Value)))
	}
	return attrs
}

// EndSpan finishes a span, recording error status if applicable.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
