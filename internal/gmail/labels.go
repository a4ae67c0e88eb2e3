package gmail

import (
	"context"
	"fmt"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// ListLabels lists all Gmail labels for the user.
func (c *Client) ListLabels(ctx context.Context) ([]*gmail.Label, error) {
	var resp *gmail.ListLabelsResponse
	err := c.withRetry(ctx, "labels.list", func() error {
		var err error
		resp, err = c.svc.Labels.List("me").Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	return resp.Labels, nil
}

// LabelIDByName returns the ID of the label with the given name, or an empty
// string when no such label exists. Matching is case-insensitive because
// Gmail treats label names that way.
func (c *Client) LabelIDByName(ctx context.Context, name string) (string, error) {
	labels, err := c.ListLabels(ctx)
	if err != nil {
		return "", err
	}
	for _, l := range labels {
		if strings.EqualFold(l.Name, name) {
			return l.Id, nil
		}
	}
	return "", nil
}

// GetOrCreateLabel returns the ID of the named label, creating it when it
// does not exist yet.
func (c *Client) GetOrCreateLabel(ctx context.Context, name string) (string, error) {
	id, err := c.LabelIDByName(ctx, name)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	var created *gmail.Label
	err = c.withRetry(ctx, "labels.create", func() error {
		var err error
		created, err = c.svc.Labels.Create("me", &gmail.Label{
			Name:                  name,
			LabelListVisibility:   "labelShow",
			MessageListVisibility: "show",
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to create label %q: %w", name, err)
	}
	return created.Id, nil
}

// EscapeLabelForQuery quotes a label name for use in a Gmail search query.
// Labels containing spaces or hierarchy separators must be quoted.
func EscapeLabelForQuery(name string) string {
	if strings.ContainsAny(name, " /") {
		return `"` + name + `"`
	}
	return name
}
