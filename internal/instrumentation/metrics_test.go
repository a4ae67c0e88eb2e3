package instrumentation

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func testMetrics(t *testing.T, detailedLabels bool) *Metrics {
	t.Helper()

	mp := sdkmetric.NewMeterProvider()
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"), detailedLabels)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return m
}

func TestMetrics_RecordEmailScanned(t *testing.T) {
	ctx := context.Background()
	metrics := testMetrics(t, false)

	// Should not panic
	metrics.RecordEmailScanned(ctx)
	metrics.RecordEmailScanned(ctx)
}

func TestMetrics_RecordClassification(t *testing.T) {
	ctx := context.Background()
	metrics := testMetrics(t, false)

	// Should not panic
	metrics.RecordClassification(ctx, ResultMarketing, 800*time.Millisecond)
	metrics.RecordClassification(ctx, ResultNotMarketing, 600*time.Millisecond)
	metrics.RecordClassification(ctx, StatusError, 5*time.Second)
}

func TestMetrics_RecordGmailOperation(t *testing.T) {
	ctx := context.Background()
	metrics := testMetrics(t, false)

	// Should not panic
	metrics.RecordGmailOperation(ctx, "messages.list", StatusSuccess, 200*time.Millisecond)
	metrics.RecordGmailOperation(ctx, "messages.modify", StatusError, 500*time.Millisecond)
}

func TestMetrics_RecordUnsubscribeAttempt(t *testing.T) {
	ctx := context.Background()
	metrics := testMetrics(t, false)

	// Should not panic
	metrics.RecordUnsubscribeAttempt(ctx, MethodOneClick, StatusSuccess)
	metrics.RecordUnsubscribeAttempt(ctx, MethodMailto, StatusSuccess)
	metrics.RecordUnsubscribeAttempt(ctx, MethodBrowser, StatusError)
}

func TestMetrics_RecordUnsubscribeAttemptWithSender(t *testing.T) {
	ctx := context.Background()

	// With detailed labels disabled the sender attribute is dropped
	metrics := testMetrics(t, false)
	metrics.RecordUnsubscribeAttemptWithSender(ctx, MethodOneClick, StatusSuccess, "sender:abc123")

	// With detailed labels enabled it is attached
	detailed := testMetrics(t, true)
	detailed.RecordUnsubscribeAttemptWithSender(ctx, MethodOneClick, StatusSuccess, "sender:abc123")
	detailed.RecordUnsubscribeAttemptWithSender(ctx, MethodBrowser, StatusError, "")
}

func TestMetrics_RecordLLMRequest(t *testing.T) {
	ctx := context.Background()
	metrics := testMetrics(t, false)

	// Should not panic
	metrics.RecordLLMRequest(ctx, "google", StatusSuccess, 1200*time.Millisecond)
	metrics.RecordLLMRequest(ctx, "anthropic", StatusError, 30*time.Second)
}

func TestMetrics_NilSafe(t *testing.T) {
	ctx := context.Background()

	// A nil recorder and an uninitialized recorder are both no-ops
	var nilMetrics *Metrics
	nilMetrics.RecordEmailScanned(ctx)
	nilMetrics.RecordClassification(ctx, ResultMarketing, time.Second)
	nilMetrics.RecordGmailOperation(ctx, "messages.get", StatusSuccess, time.Second)
	nilMetrics.RecordUnsubscribeAttempt(ctx, MethodMailto, StatusSuccess)
	nilMetrics.RecordLLMRequest(ctx, "openai", StatusSuccess, time.Second)

	empty := &Metrics{}
	empty.RecordEmailScanned(ctx)
	empty.RecordClassification(ctx, ResultMarketing, time.Second)
	empty.RecordGmailOperation(ctx, "messages.get", StatusSuccess, time.Second)
	empty.RecordUnsubscribeAttempt(ctx, MethodMailto, StatusSuccess)
	empty.RecordLLMRequest(ctx, "openai", StatusSuccess, time.Second)
}
