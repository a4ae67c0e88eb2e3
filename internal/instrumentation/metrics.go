package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency and DRY
const (
	// Common attributes (reused across metrics)
	attrStatus    = "status"
	attrOperation = "operation"
	attrResult    = "result"
	attrMethod    = "method"
	attrProvider  = "provider"
	attrSender    = "sender"
)

// Metrics provides methods for recording observability metrics.
// A nil *Metrics is a valid no-op recorder.
type Metrics struct {
	// Scan metrics
	emailsScannedTotal    metric.Int64Counter
	classificationsTotal  metric.Int64Counter
	classificationSeconds metric.Float64Histogram

	// Gmail API metrics
	gmailOperationsTotal   metric.Int64Counter
	gmailOperationDuration metric.Float64Histogram

	// Unsubscribe metrics
	unsubscribeAttemptsTotal metric.Int64Counter

	// LLM metrics
	llmRequestsTotal   metric.Int64Counter
	llmRequestDuration metric.Float64Histogram

	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	m.emailsScannedTotal, err = meter.Int64Counter(
		"emails_scanned_total",
		metric.WithDescription("Total number of inbox messages scanned"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create emails_scanned_total counter: %w", err)
	}

	m.classificationsTotal, err = meter.Int64Counter(
		"classifications_total",
		metric.WithDescription("Total number of email classifications by result"),
		metric.WithUnit("{classification}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create classifications_total counter: %w", err)
	}

	m.classificationSeconds, err = meter.Float64Histogram(
		"classification_duration_seconds",
		metric.WithDescription("Email classification duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create classification_duration_seconds histogram: %w", err)
	}

	m.gmailOperationsTotal, err = meter.Int64Counter(
		"gmail_api_operations_total",
		metric.WithDescription("Total number of Gmail API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail_api_operations_total counter: %w", err)
	}

	m.gmailOperationDuration, err = meter.Float64Histogram(
		"gmail_api_operation_duration_seconds",
		metric.WithDescription("Gmail API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail_api_operation_duration_seconds histogram: %w", err)
	}

	m.unsubscribeAttemptsTotal, err = meter.Int64Counter(
		"unsubscribe_attempts_total",
		metric.WithDescription("Total number of unsubscribe attempts by method and status"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create unsubscribe_attempts_total counter: %w", err)
	}

	m.llmRequestsTotal, err = meter.Int64Counter(
		"llm_requests_total",
		metric.WithDescription("Total number of LLM completion requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm_requests_total counter: %w", err)
	}

	m.llmRequestDuration, err = meter.Float64Histogram(
		"llm_request_duration_seconds",
		metric.WithDescription("LLM completion request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm_request_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordEmailScanned increments the scanned message counter.
func (m *Metrics) RecordEmailScanned(ctx context.Context) {
	if m == nil || m.emailsScannedTotal == nil {
		return // Instrumentation not initialized
	}

	m.emailsScannedTotal.Add(ctx, 1)
}

// RecordClassification records an email classification with result and duration.
// Result should be one of: "marketing", "not_marketing", "error"
func (m *Metrics) RecordClassification(ctx context.Context, result string, duration time.Duration) {
	if m == nil || m.classificationsTotal == nil || m.classificationSeconds == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrResult, result),
	}

	m.classificationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.classificationSeconds.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordGmailOperation records a Gmail API operation with operation name,
// status, and duration.
//
// Parameters:
//   - operation: Operation type (list, get, modify, send, labels.create, etc.)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the operation including retries
func (m *Metrics) RecordGmailOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m == nil || m.gmailOperationsTotal == nil || m.gmailOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.gmailOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.gmailOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordUnsubscribeAttempt records an unsubscribe attempt with method and status.
//
// Parameters:
//   - method: Unsubscribe method ("one_click", "mailto", "browser")
//   - status: Result status ("success", "error", "skipped")
func (m *Metrics) RecordUnsubscribeAttempt(ctx context.Context, method, status string) {
	if m == nil || m.unsubscribeAttemptsTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrStatus, status),
	}

	m.unsubscribeAttemptsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordUnsubscribeAttemptWithSender records an unsubscribe attempt including
// an anonymized sender identifier. The sender label is only attached when
// detailedLabels is enabled to avoid cardinality explosion.
func (m *Metrics) RecordUnsubscribeAttemptWithSender(ctx context.Context, method, status, sender string) {
	if m == nil || m.unsubscribeAttemptsTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrStatus, status),
	}

	// Only add high-cardinality labels if explicitly enabled
	if m.detailedLabels && sender != "" {
		attrs = append(attrs, attribute.String(attrSender, sender))
	}

	m.unsubscribeAttemptsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordLLMRequest records an LLM completion request with provider, status,
// and duration.
//
// Parameters:
//   - provider: LLM provider name ("google", "anthropic", "openai")
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the request
func (m *Metrics) RecordLLMRequest(ctx context.Context, provider, status string, duration time.Duration) {
	if m == nil || m.llmRequestsTotal == nil || m.llmRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrProvider, provider),
		attribute.String(attrStatus, status),
	}

	m.llmRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.llmRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
