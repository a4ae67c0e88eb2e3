package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/zbowling/gmail-ai-unsub/internal/google"
	"github.com/zbowling/gmail-ai-unsub/internal/instrumentation"
)

// metadataHeaders are the headers requested when fetching message metadata.
// Metadata fetches are quota-cheaper than full fetches and cover everything
// the scan and unsubscribe phases need short of the body.
var metadataHeaders = []string{
	"Subject", "From", "Date", "List-Unsubscribe", "List-Unsubscribe-Post",
}

const pageSize = 50

// Client wraps the Gmail Users service.
type Client struct {
	svc     *gmail.UsersService
	metrics *instrumentation.Metrics
}

// NewClient creates a new Gmail client with OAuth2 authentication.
// The OAuth token must already be cached; run the setup flow first.
func NewClient(ctx context.Context, credentialsFile, tokenFile string) (*Client, error) {
	httpClient, err := google.HTTPClient(ctx, credentialsFile, tokenFile)
	if err != nil {
		return nil, err
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{svc: svc.Users}, nil
}

// SetMetrics attaches a metrics recorder for Gmail API operations.
func (c *Client) SetMetrics(m *instrumentation.Metrics) {
	c.metrics = m
}

// isRetryable reports whether a Gmail API error should be retried.
// Rate limits (429) and server errors (5xx) are transient; everything else
// surfaces to the caller.
func isRetryable(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests || gerr.Code >= 500
	}
	return false
}

// withRetry runs fn with exponential backoff on retryable Gmail API errors
// and records the operation in the metrics recorder.
func (c *Client) withRetry(ctx context.Context, op string, fn func() error) error {
	start := time.Now()
	wrapped := func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if isRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	err := backoff.Retry(wrapped, bo)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	c.metrics.RecordGmailOperation(ctx, op, status, time.Since(start))
	return err
}

// ForeachMessage iterates over all message references matching the query.
// The callback receives bare references (ID and thread ID only); fetch
// metadata or the full message as needed.
func (c *Client) ForeachMessage(ctx context.Context, q string, fn func(*gmail.Message) error) error {
	pageToken := ""
	for {
		var res *gmail.ListMessagesResponse
		err := c.withRetry(ctx, "messages.list", func() error {
			req := c.svc.Messages.List("me").Q(q).MaxResults(pageSize)
			if pageToken != "" {
				req.PageToken(pageToken)
			}
			var err error
			res, err = req.Context(ctx).Do()
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to list messages: %w", err)
		}
		for _, m := range res.Messages {
			if err := fn(m); err != nil {
				return err
			}
		}
		if res.NextPageToken == "" {
			return nil
		}
		pageToken = res.NextPageToken
	}
}

// GetMessage retrieves a full Gmail message including its body parts.
func (c *Client) GetMessage(ctx context.Context, messageID string) (*gmail.Message, error) {
	var msg *gmail.Message
	err := c.withRetry(ctx, "messages.get", func() error {
		var err error
		msg, err = c.svc.Messages.Get("me", messageID).Format("full").Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}
	return msg, nil
}

// GetMessageMetadata retrieves message headers without the body.
func (c *Client) GetMessageMetadata(ctx context.Context, messageID string) (*gmail.Message, error) {
	var msg *gmail.Message
	err := c.withRetry(ctx, "messages.get_metadata", func() error {
		var err error
		msg, err = c.svc.Messages.Get("me", messageID).
			Format("metadata").
			MetadataHeaders(metadataHeaders...).
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get message metadata %s: %w", messageID, err)
	}
	return msg, nil
}

// ModifyLabels adds and removes labels on a message.
func (c *Client) ModifyLabels(ctx context.Context, messageID string, addLabelIDs, removeLabelIDs []string) error {
	err := c.withRetry(ctx, "messages.modify", func() error {
		_, err := c.svc.Messages.Modify("me", messageID, &gmail.ModifyMessageRequest{
			AddLabelIds:    addLabelIDs,
			RemoveLabelIds: removeLabelIDs,
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to modify labels on message %s: %w", messageID, err)
	}
	return nil
}

// InternalDate returns the Gmail internal receive time of a message,
// falling back to the Date header and finally the zero time.
func InternalDate(msg *gmail.Message) time.Time {
	if msg.InternalDate > 0 {
		return time.UnixMilli(msg.InternalDate)
	}
	if date := HeaderValue(msg, "Date"); date != "" {
		if t, err := parseRFC2822Date(date); err == nil {
			return t
		}
	}
	return time.Time{}
}
