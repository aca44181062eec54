package llama

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type llamaMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
}

var llamaMetricsInit = false
var metrics llamaMetrics

func ensureLlamaMetrics() {
	if llamaMetricsInit {
		return
	}
	meter := otel.Meter("github.com/sjwitcher/obd2-explorer/backend/llama")

	requestCount, err := meter.Int64Counter(
		"ai.llama.request.count",
		metric.WithDescription("Number of llama.cpp completion requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"ai.llama.request.duration",
		metric.WithDescription("llama.cpp completion duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"ai.llama.request.errors",
		metric.WithDescription("Number of llama.cpp completion errors"),
	)
	if err != nil {
		return
	}

	metrics = llamaMetrics{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
	}
	llamaMetricsInit = true
}

func recordLlamaMetric(ctx context.Context, model string, statusCode int, duration time.Duration, err error) {
	ensureLlamaMetrics()
	if !llamaMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "llama.cpp"),
		attribute.String("ai.model", model),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	metrics.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		metrics.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
