// Package classify decides whether an email is marketing using an LLM.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zbowling/gmail-ai-unsub/internal/llm"
)

// Body text beyond this is dropped to keep prompts within token limits.
const maxBodyChars = 2000

// Result is the structured classification returned by the model.
type Result struct {
	IsMarketing bool    `json:"is_marketing"`
	Confidence  float64 `json:"confidence"`
	Reason      string  `json:"reason"`
}

// Classifier classifies emails against configurable criteria.
type Classifier struct {
	client            llm.Client
	systemPrompt      string
	marketingCriteria string
	exclusions        string
	userPreferences   string
}

// New creates a classifier. The user preferences string is free-form text
// describing mail the user wants to keep; it is appended to the exclusions.
func New(client llm.Client, systemPrompt, marketingCriteria, exclusions, userPreferences string) *Classifier {
	return &Classifier{
		client:            client,
		systemPrompt:      systemPrompt,
		marketingCriteria: marketingCriteria,
		exclusions:        exclusions,
		userPreferences:   userPreferences,
	}
}

// Classify analyzes a single email and returns the model's verdict.
func (c *Classifier) Classify(ctx context.Context, subject, fromAddress, body string) (Result, error) {
	prompt := c.buildUserPrompt(subject, fromAddress, body)

	text, err := c.client.Complete(ctx, c.systemPrompt, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("classification request failed: %w", err)
	}

	result, err := ParseResult(text)
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse classification response: %w", err)
	}
	return result, nil
}

func (c *Classifier) buildUserPrompt(subject, fromAddress, body string) string {
	if len(body) > maxBodyChars {
		body = body[:maxBodyChars]
	}

	exclusions := c.exclusions
	if strings.TrimSpace(c.userPreferences) != "" {
		exclusions += "\n\nUser Preferences:\n" + c.userPreferences
	}

	var b strings.Builder
	b.WriteString("Analyze the following email and determine if it is a marketing or promotional email.\n\n")
	b.WriteString("Marketing Criteria:\n")
	b.WriteString(c.marketingCriteria)
	b.WriteString("\n\nExclusions:\n")
	b.WriteString(exclusions)
	b.WriteString("\n\nEmail Subject: ")
	b.WriteString(subject)
	b.WriteString("\nEmail From: ")
	b.WriteString(fromAddress)
	b.WriteString("\nEmail Body (first 2000 chars): ")
	b.WriteString(body)
	b.WriteString("\n\nRespond with a JSON object containing exactly these fields:\n")
	b.WriteString(`{"is_marketing": true or false, "confidence": a number between 0.0 and 1.0, "reason": "a brief explanation (1-2 sentences)"}`)
	b.WriteString("\n\nRespond with only the JSON object, no other text.")
	return b.String()
}

// ParseResult extracts a Result from raw model output. Models often wrap
// JSON in markdown code fences or surrounding prose, so the first JSON
// object in the text is used. Confidence is clamped to [0, 1].
func ParseResult(text string) (Result, error) {
	raw := extractJSONObject(text)
	if raw == "" {
		return Result{}, fmt.Errorf("no JSON object in response: %q", truncateForError(text))
	}

	var result Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return Result{}, fmt.Errorf("invalid classification JSON: %w", err)
	}

	if result.Confidence < 0 {
		result.Confidence = 0
	} else if result.Confidence > 1 {
		result.Confidence = 1
	}
	return result, nil
}

// extractJSONObject returns the first balanced {...} block in the text.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

func truncateForError(text string) string {
	const max = 120
	text = strings.TrimSpace(text)
	if len(text) > max {
		return text[:max] + "..."
	}
	return text
}
