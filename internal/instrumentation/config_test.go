package instrumentation

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.ServiceName != "gmail-ai-unsub" {
		t.Errorf("expected service name gmail-ai-unsub, got %s", config.ServiceName)
	}
	if config.Enabled {
		t.Error("expected instrumentation to be disabled by default")
	}
	if config.MetricsExporter != ExporterNone {
		t.Errorf("expected metrics exporter none, got %s", config.MetricsExporter)
	}
	if config.TracingExporter != ExporterNone {
		t.Errorf("expected tracing exporter none, got %s", config.TracingExporter)
	}
	if config.TraceSamplingRate != 0.1 {
		t.Errorf("expected sampling rate 0.1, got %f", config.TraceSamplingRate)
	}
}

func TestDefaultConfigFromEnv(t *testing.T) {
	t.Setenv("INSTRUMENTATION_ENABLED", "true")
	t.Setenv("METRICS_EXPORTER", "stdout")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.5")

	config := DefaultConfig()

	if !config.Enabled {
		t.Error("expected instrumentation to be enabled")
	}
	if config.MetricsExporter != ExporterStdout {
		t.Errorf("expected metrics exporter stdout, got %s", config.MetricsExporter)
	}
	if config.TraceSamplingRate != 0.5 {
		t.Errorf("expected sampling rate 0.5, got %f", config.TraceSamplingRate)
	}
}

func TestDefaultConfigInvalidEnvValues(t *testing.T) {
	t.Setenv("INSTRUMENTATION_ENABLED", "not-a-bool")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "not-a-float")

	config := DefaultConfig()

	if config.Enabled {
		t.Error("expected invalid bool to fall back to default false")
	}
	if config.TraceSamplingRate != 0.1 {
		t.Errorf("expected invalid float to fall back to 0.1, got %f", config.TraceSamplingRate)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid defaults",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name: "valid stdout exporters",
			config: Config{
				MetricsExporter:   ExporterStdout,
				TracingExporter:   ExporterStdout,
				TraceSamplingRate: 0.1,
			},
			wantErr: false,
		},
		{
			name: "valid otlp with endpoint",
			config: Config{
				MetricsExporter:   ExporterOTLP,
				TracingExporter:   ExporterOTLP,
				OTLPEndpoint:      "localhost:4318",
				TraceSamplingRate: 1.0,
			},
			wantErr: false,
		},
		{
			name: "sampling rate too high",
			config: Config{
				TraceSamplingRate: 1.5,
			},
			wantErr: true,
		},
		{
			name: "negative sampling rate",
			config: Config{
				TraceSamplingRate: -0.1,
			},
			wantErr: true,
		},
		{
			name: "unknown metrics exporter",
			config: Config{
				MetricsExporter: "graphite",
			},
			wantErr: true,
		},
		{
			name: "unknown tracing exporter",
			config: Config{
				TracingExporter: "jaeger",
			},
			wantErr: true,
		},
		{
			name: "otlp metrics without endpoint",
			config: Config{
				MetricsExporter: ExporterOTLP,
			},
			wantErr: true,
		},
		{
			name: "otlp tracing without endpoint",
			config: Config{
				TracingExporter: ExporterOTLP,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
