package instrumentation

import (
	"context"
	"testing"
	"time"
)

func TestNewProviderDisabled(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider(ctx, Config{Enabled: false})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	if provider.Enabled() {
		t.Error("expected provider to be disabled")
	}
	if provider.Metrics() == nil {
		t.Fatal("expected a no-op metrics recorder, got nil")
	}

	// No-op metrics should not panic
	provider.Metrics().RecordEmailScanned(ctx)

	tracer := provider.Tracer("test")
	_, span := tracer.Start(ctx, "noop")
	span.End()

	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("shutdown of disabled provider failed: %v", err)
	}
}

func TestNewProviderStdoutExporters(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:       "test-service",
		ServiceVersion:    "1.0.0",
		Enabled:           true,
		MetricsExporter:   ExporterStdout,
		TracingExporter:   ExporterStdout,
		TraceSamplingRate: 1.0,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if !provider.Enabled() {
		t.Error("expected provider to be enabled")
	}
	if provider.Metrics() == nil {
		t.Fatal("expected metrics recorder")
	}

	provider.Metrics().RecordEmailScanned(ctx)
	provider.Metrics().RecordUnsubscribeAttempt(ctx, MethodOneClick, StatusSuccess)

	_, span := provider.Tracer("test").Start(ctx, "scan")
	span.End()
}

func TestNewProviderMetricsNone(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		Enabled:         true,
		MetricsExporter: ExporterNone,
		TracingExporter: ExporterNone,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	// Metrics recorder exists but is a no-op
	if provider.Metrics() == nil {
		t.Fatal("expected a no-op metrics recorder")
	}
	provider.Metrics().RecordEmailScanned(ctx)
}

func TestNewProviderInvalidExporter(t *testing.T) {
	ctx := context.Background()

	_, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		Enabled:         true,
		MetricsExporter: "graphite",
	})
	if err == nil {
		t.Error("expected error for unsupported metrics exporter")
	}

	_, err = NewProvider(ctx, Config{
		ServiceName:     "test-service",
		Enabled:         true,
		MetricsExporter: ExporterNone,
		TracingExporter: "jaeger",
	})
	if err == nil {
		t.Error("expected error for unsupported tracing exporter")
	}
}

func TestNewProviderOTLPRequiresEndpoint(t *testing.T) {
	ctx := context.Background()

	_, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		Enabled:         true,
		MetricsExporter: ExporterOTLP,
	})
	if err == nil {
		t.Error("expected error for OTLP metrics exporter without endpoint")
	}
}
