package unsubscribe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAgentDecision(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    agentDecision
		wantErr bool
	}{
		{
			name:  "click action",
			input: `{"action": "click", "selector": "#unsub-all", "reason": "broadest option"}`,
			want:  agentDecision{Action: "click", Selector: "#unsub-all", Reason: "broadest option"},
		},
		{
			name: "code fenced",
			input: "```json\n" +
				`{"action": "done", "reason": "page confirms unsubscribe"}` +
				"\n```",
			want: agentDecision{Action: "done", Reason: "page confirms unsubscribe"},
		},
		{
			name:  "surrounding prose",
			input: `Based on the page: {"action": "fail", "reason": "login required"}`,
			want:  agentDecision{Action: "fail", Reason: "login required"},
		},
		{
			name:    "no json",
			input:   "I clicked the button",
			wantErr: true,
		},
		{
			name:    "empty action",
			input:   `{"selector": "#x"}`,
			wantErr: true,
		},
		{
			name:    "malformed",
			input:   `{"action": }`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAgentDecision(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchSuccessPhrase(t *testing.T) {
	assert.NotEmpty(t, matchSuccessPhrase("You have been unsubscribed from our newsletter."))
	assert.NotEmpty(t, matchSuccessPhrase("SUCCESSFULLY UNSUBSCRIBED"))
	assert.NotEmpty(t, matchSuccessPhrase("Your preferences have been updated."))
	assert.Empty(t, matchSuccessPhrase("Please confirm your subscription"))
	assert.Empty(t, matchSuccessPhrase(""))
}

func TestNewBrowserAgentDefaults(t *testing.T) {
	agent := NewBrowserAgent(nil, true, 0)
	assert.NotNil(t, agent)
	assert.Equal(t, "1m0s", agent.timeout.String())
}
