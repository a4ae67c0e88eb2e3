package classify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	response string
	err      error
	lastUser string
}

func (f *fakeLLM) Complete(ctx context.Context, system, user string) (string, error) {
	f.lastUser = user
	return f.response, f.err
}

func (f *fakeLLM) Provider() string { return "fake" }
func (f *fakeLLM) Model() string    { return "fake-model" }

func TestClassify(t *testing.T) {
	fake := &fakeLLM{
		response: `{"is_marketing": true, "confidence": 0.92, "reason": "Promotional discount email."}`,
	}
	c := New(fake, "system", "criteria", "exclusions", "")

	result, err := c.Classify(context.Background(), "50% off!", "deals@example.com", "Big sale today")
	require.NoError(t, err)
	assert.True(t, result.IsMarketing)
	assert.Equal(t, 0.92, result.Confidence)
	assert.Equal(t, "Promotional discount email.", result.Reason)

	assert.Contains(t, fake.lastUser, "Email Subject: 50% off!")
	assert.Contains(t, fake.lastUser, "Email From: deals@example.com")
	assert.Contains(t, fake.lastUser, "criteria")
	assert.Contains(t, fake.lastUser, "exclusions")
}

func TestClassifyTruncatesBody(t *testing.T) {
	fake := &fakeLLM{
		response: `{"is_marketing": false, "confidence": 0.1, "reason": "Personal email."}`,
	}
	c := New(fake, "system", "criteria", "exclusions", "")

	body := strings.Repeat("a", 5000)
	_, err := c.Classify(context.Background(), "hi", "friend@example.com", body)
	require.NoError(t, err)

	assert.NotContains(t, fake.lastUser, strings.Repeat("a", 2001))
	assert.Contains(t, fake.lastUser, strings.Repeat("a", 2000))
}

func TestClassifyAppendsUserPreferences(t *testing.T) {
	fake := &fakeLLM{
		response: `{"is_marketing": false, "confidence": 0.2, "reason": "Wanted newsletter."}`,
	}
	c := New(fake, "system", "criteria", "exclusions", "Keep anything from my university")

	_, err := c.Classify(context.Background(), "Alumni news", "alumni@uni.edu", "...")
	require.NoError(t, err)

	assert.Contains(t, fake.lastUser, "User Preferences:")
	assert.Contains(t, fake.lastUser, "Keep anything from my university")
}

func TestClassifyLLMError(t *testing.T) {
	fake := &fakeLLM{err: errors.New("rate limited")}
	c := New(fake, "system", "criteria", "exclusions", "")

	_, err := c.Classify(context.Background(), "s", "f@example.com", "b")
	assert.Error(t, err)
}

func TestParseResult(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Result
		wantErr bool
	}{
		{
			name:  "plain json",
			input: `{"is_marketing": true, "confidence": 0.9, "reason": "ad"}`,
			want:  Result{IsMarketing: true, Confidence: 0.9, Reason: "ad"},
		},
		{
			name: "code fenced",
			input: "```json\n" +
				`{"is_marketing": false, "confidence": 0.15, "reason": "receipt"}` +
				"\n```",
			want: Result{IsMarketing: false, Confidence: 0.15, Reason: "receipt"},
		},
		{
			name:  "surrounding prose",
			input: `Here is my analysis: {"is_marketing": true, "confidence": 0.8, "reason": "newsletter"} Hope that helps!`,
			want:  Result{IsMarketing: true, Confidence: 0.8, Reason: "newsletter"},
		},
		{
			name:  "confidence clamped high",
			input: `{"is_marketing": true, "confidence": 1.7, "reason": "x"}`,
			want:  Result{IsMarketing: true, Confidence: 1, Reason: "x"},
		},
		{
			name:  "confidence clamped low",
			input: `{"is_marketing": false, "confidence": -0.3, "reason": "x"}`,
			want:  Result{IsMarketing: false, Confidence: 0, Reason: "x"},
		},
		{
			name:  "braces inside strings",
			input: `{"is_marketing": true, "confidence": 0.5, "reason": "contains {curly} text"}`,
			want:  Result{IsMarketing: true, Confidence: 0.5, Reason: "contains {curly} text"},
		},
		{
			name:    "no json at all",
			input:   "I cannot classify this email.",
			wantErr: true,
		},
		{
			name:    "unbalanced json",
			input:   `{"is_marketing": true, "confidence": 0.9`,
			wantErr: true,
		},
		{
			name:    "malformed json",
			input:   `{"is_marketing": maybe}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResult(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
