package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

type geminiClient struct {
	client *genai.Client
	model  string
	opts   Options
}

func newGeminiClient(ctx context.Context, model, apiKey string, opts Options) (*geminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiClient{client: client, model: model, opts: opts}, nil
}

func (c *geminiClient) Complete(ctx context.Context, system, user string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}
	if c.opts.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*c.opts.Temperature))
	}
	if c.opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(c.opts.MaxTokens)
	}
	if budget := thinkingBudget(c.opts.ThinkingLevel); budget > 0 {
		config.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(int32(budget)),
		}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(user), config)
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty completion")
	}
	return text, nil
}

func (c *geminiClient) Provider() string { return ProviderGoogle }
func (c *geminiClient) Model() string    { return c.model }

// thinkingBudget maps a thinking level to a Gemini thinking token budget.
// Empty or unknown levels disable thinking.
func thinkingBudget(level string) int {
	switch level {
	case "low":
		return thinkingBudgetLow
	case "high":
		return thinkingBudgetHigh
	default:
		return 0
	}
}
