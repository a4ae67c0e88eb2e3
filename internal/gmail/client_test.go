package gmail

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"server error", &googleapi.Error{Code: http.StatusInternalServerError}, true},
		{"bad gateway", &googleapi.Error{Code: http.StatusBadGateway}, true},
		{"not found", &googleapi.Error{Code: http.StatusNotFound}, false},
		{"forbidden", &googleapi.Error{Code: http.StatusForbidden}, false},
		{"wrapped rate limit", errors.Join(errors.New("context"), &googleapi.Error{Code: 429}), true},
		{"plain error", errors.New("connection reset"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.err))
		})
	}
}

func TestInternalDate(t *testing.T) {
	ts := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	msg := &gmail.Message{InternalDate: ts.UnixMilli()}
	assert.True(t, InternalDate(msg).Equal(ts))

	msg = &gmail.Message{
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "Date", Value: "Fri, 15 Mar 2024 10:30:00 +0000"},
			},
		},
	}
	assert.True(t, InternalDate(msg).Equal(ts))

	assert.True(t, InternalDate(&gmail.Message{}).IsZero())
}

func TestEscapeLabelForQuery(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  string
	}{
		{"simple", "Unsubscribe", "Unsubscribe"},
		{"with space", "To Review", `"To Review"`},
		{"nested", "Cleanup/Unsubscribed", `"Cleanup/Unsubscribed"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeLabelForQuery(tt.label))
		})
	}
}
