package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ServerMetrics holds metric instruments for HTTP server telemetry.
// Initialize once at server startup and reuse for the process lifetime.
type ServerMetrics struct {
	RequestCounter    metric.Int64Counter
	RequestDuration   metric.Float64Histogram
	ActiveConnections metric.Int64UpDownCounter
	ErrorCounter      metric.Int64Counter
}

// NewServerMetrics creates a ServerMetrics instance with pre-configured
// instruments.
func NewServerMetrics() (*ServerMetrics, error) {
	meter := otel.Meter("ramapi/http")

	requestCounter, err := meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)
	if err != nil {
		return nil, err
	}

	activeConnections, err := meter.Int64UpDownCounter(
		"http.server.active_connections",
		metric.WithDescription("Number of active HTTP connections"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"http.server.error.count",
		metric.WithDescription("Total number of HTTP server errors (5xx)"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &ServerMetrics{
		RequestCounter:    requestCounter,
		RequestDuration:   requestDuration,
		ActiveConnections: activeConnections,
		ErrorCounter:      errorCounter,
	}, nil
}

// RecordRequest records one HTTP request with method, route, status, and
// duration. Called from the router's metrics middleware.
func (m *ServerMetrics) RecordRequest(ctx context.Context, method, route, status string, durationMs float64) {
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.String("http.status_code", status),
	)

	m.RequestCounter.Add(ctx, 1, attrs)
	m.RequestDuration.Record(ctx, durationMs, attrs)

	if len(status) > 0 && status[0] == '5' {
		m.ErrorCounter.Add(ctx, 1, attrs)
	}
}

// ConnectionOpened increments the active connections counter.
func (m *ServerMetrics) ConnectionOpened(ctx context.Context) {
	m.ActiveConnections.Add(ctx, 1)
}

// ConnectionClosed decrements the active connections counter.
func (m *ServerMetrics) ConnectionClosed(ctx context.Context) {
	m.ActiveConnections.Add(ctx, -1)
}
