package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

type openaiClient struct {
	client *openai.Client
	model  string
	opts   Options
}

func newOpenAIClient(model, apiKey string, opts Options) *openaiClient {
	return &openaiClient{
		client: openai.NewClient(apiKey),
		model:  model,
		opts:   opts,
	}
}

func (c *openaiClient) Complete(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	if c.opts.Temperature != nil {
		req.Temperature = float32(*c.opts.Temperature)
	}
	if c.opts.MaxTokens > 0 {
		req.MaxTokens = c.opts.MaxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai returned an empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *openaiClient) Provider() string { return ProviderOpenAI }
func (c *openaiClient) Model() string    { return c.model }
