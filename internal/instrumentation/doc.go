// Package instrumentation provides OpenTelemetry instrumentation for the
// gmail-ai-unsub CLI.
//
// Telemetry is opt-in: an interactive CLI should not emit metrics or traces
// unless the user asks for them via INSTRUMENTATION_ENABLED=true. When
// disabled, the provider hands out no-op recorders so callers never need to
// branch on whether telemetry is configured.
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Scan Metrics:
//   - emails_scanned_total: Counter of inbox messages scanned
//   - classifications_total: Counter of classifications by result
//   - classification_duration_seconds: Histogram of classification durations
//
// Gmail API Metrics:
//   - gmail_api_operations_total: Counter of Gmail API operations by operation and status
//   - gmail_api_operation_duration_seconds: Histogram of Gmail API operation durations
//
// Unsubscribe Metrics:
//   - unsubscribe_attempts_total: Counter of unsubscribe attempts by method and status
//
// LLM Metrics:
//   - llm_requests_total: Counter of LLM completion requests by provider and status
//   - llm_request_duration_seconds: Histogram of LLM request durations
//
// # Configuration
//
// All configuration is read from environment variables:
//   - INSTRUMENTATION_ENABLED: enable telemetry (default: false)
//   - METRICS_EXPORTER: "otlp", "stdout", or "none" (default: "none")
//   - TRACING_EXPORTER: "otlp", "stdout", or "none" (default: "none")
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP collector endpoint
//   - OTEL_EXPORTER_OTLP_INSECURE: use plain HTTP for OTLP export
//   - OTEL_TRACES_SAMPLER_ARG: trace sampling rate (default: 0.1)
//   - METRICS_DETAILED_LABELS: include high-cardinality labels (default: false)
package instrumentation
