// Package llm provides a provider-agnostic completion client backed by the
// Google Gemini, Anthropic, or OpenAI APIs. The same client serves both
// email classification and browser-agent decision making.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/zbowling/gmail-ai-unsub/internal/instrumentation"
)

// Supported provider names.
const (
	ProviderGoogle    = "google"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Thinking budget tokens for Gemini 2.5+ models. Valid range is 512 to
// 24576; "low" is the minimum and "high" trades latency for reasoning.
const (
	thinkingBudgetLow  = 512
	thinkingBudgetHigh = 16384
)

// Client produces a completion for a system prompt plus user message.
type Client interface {
	// Complete sends the prompts and returns the raw completion text.
	Complete(ctx context.Context, system, user string) (string, error)

	// Provider returns the provider name ("google", "anthropic", "openai").
	Provider() string

	// Model returns the configured model name.
	Model() string
}

// Options tunes generation. Zero values leave the model defaults in place.
type Options struct {
	// Temperature overrides the sampling temperature when non-nil. Some
	// models perform poorly with custom temperatures, so nil means the
	// provider default.
	Temperature *float64

	// MaxTokens caps the completion length when positive.
	MaxTokens int

	// ThinkingLevel enables extended reasoning on Gemini 2.5+ models.
	// "low" or "high"; empty disables thinking. Ignored by other providers.
	ThinkingLevel string
}

// New creates a completion client for the named provider.
func New(ctx context.Context, provider, model, apiKey string, opts Options) (Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required for provider %q", provider)
	}
	if model == "" {
		return nil, fmt.Errorf("model is required for provider %q", provider)
	}

	switch provider {
	case ProviderGoogle:
		return newGeminiClient(ctx, model, apiKey, opts)
	case ProviderAnthropic:
		return newAnthropicClient(model, apiKey, opts), nil
	case ProviderOpenAI:
		return newOpenAIClient(model, apiKey, opts), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", provider)
	}
}

// WithMetrics wraps a client so every completion is recorded in the
// metrics recorder. A nil recorder leaves the client untouched.
func WithMetrics(c Client, m *instrumentation.Metrics) Client {
	if m == nil {
		return c
	}
	return &instrumentedClient{inner: c, metrics: m}
}

type instrumentedClient struct {
	inner   Client
	metrics *instrumentation.Metrics
}

func (c *instrumentedClient) Complete(ctx context.Context, system, user string) (string, error) {
	start := time.Now()
	text, err := c.inner.Complete(ctx, system, user)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	c.metrics.RecordLLMRequest(ctx, c.inner.Provider(), status, time.Since(start))
	return text, err
}

func (c *instrumentedClient) Provider() string { return c.inner.Provider() }
func (c *instrumentedClient) Model() string    { return c.inner.Model() }
