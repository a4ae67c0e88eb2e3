package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zbowling/gmail-ai-unsub/internal/instrumentation"
)

func noopMetrics() *instrumentation.Metrics {
	return &instrumentation.Metrics{}
}

type fakeClient struct {
	text string
	err  error
}

func (f *fakeClient) Complete(ctx context.Context, system, user string) (string, error) {
	return f.text, f.err
}

func (f *fakeClient) Provider() string { return "fake" }
func (f *fakeClient) Model() string    { return "fake-model" }

func TestNewValidation(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, ProviderOpenAI, "gpt-4o-mini", "", Options{})
	assert.Error(t, err, "missing API key")

	_, err = New(ctx, ProviderOpenAI, "", "sk-test", Options{})
	assert.Error(t, err, "missing model")

	_, err = New(ctx, "mistral", "some-model", "key", Options{})
	assert.Error(t, err, "unknown provider")
}

func TestNewProviderIdentity(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		provider string
		model    string
	}{
		{ProviderAnthropic, "claude-sonnet-4-20250514"},
		{ProviderOpenAI, "gpt-4o-mini"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			client, err := New(ctx, tt.provider, tt.model, "test-key", Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.provider, client.Provider())
			assert.Equal(t, tt.model, client.Model())
		})
	}
}

func TestThinkingBudget(t *testing.T) {
	assert.Equal(t, 512, thinkingBudget("low"))
	assert.Equal(t, 16384, thinkingBudget("high"))
	assert.Equal(t, 0, thinkingBudget(""))
	assert.Equal(t, 0, thinkingBudget("medium"))
}

func TestWithMetricsNilRecorder(t *testing.T) {
	inner := &fakeClient{text: "ok"}
	assert.Same(t, Client(inner), WithMetrics(inner, nil))
}

func TestWithMetricsPassthrough(t *testing.T) {
	ctx := context.Background()

	inner := &fakeClient{text: "hello"}
	wrapped := WithMetrics(inner, noopMetrics())

	text, err := wrapped.Complete(ctx, "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Equal(t, "fake", wrapped.Provider())
	assert.Equal(t, "fake-model", wrapped.Model())

	inner.err = errors.New("boom")
	_, err = wrapped.Complete(ctx, "system", "user")
	assert.Error(t, err)
}
