package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/mail"
	"strings"
	"time"

	gmail "google.golang.org/api/gmail/v1"
)

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	To      []string
	Subject string
	Body    string
}

// encodeRFC2047 encodes a string for use in email headers according to RFC 2047.
// This is necessary for non-ASCII characters in subjects.
func encodeRFC2047(s string) string {
	needsEncoding := false
	for _, r := range s {
		if r > 127 {
			needsEncoding = true
			break
		}
	}
	if !needsEncoding {
		return s
	}
	return mime.BEncoding.Encode("UTF-8", s)
}

// BuildRFC2822 assembles the raw RFC 2822 form of a message.
func BuildRFC2822(msg *EmailMessage) (string, error) {
	if len(msg.To) == 0 {
		return "", fmt.Errorf("at least one recipient is required")
	}
	if msg.Subject == "" {
		return "", fmt.Errorf("subject is required")
	}

	var b strings.Builder
	b.WriteString("To: ")
	b.WriteString(strings.Join(msg.To, ", "))
	b.WriteString("\r\n")
	b.WriteString("Subject: ")
	b.WriteString(encodeRFC2047(msg.Subject))
	b.WriteString("\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return b.String(), nil
}

// SendMessage sends an email through the Gmail API and returns the sent
// message ID.
func (c *Client) SendMessage(ctx context.Context, msg *EmailMessage) (string, error) {
	raw, err := BuildRFC2822(msg)
	if err != nil {
		return "", err
	}

	gmailMsg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}

	var sent *gmail.Message
	err = c.withRetry(ctx, "messages.send", func() error {
		var err error
		sent, err = c.svc.Messages.Send("me", gmailMsg).Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return sent.Id, nil
}

// ExtractAddress returns the bare address from a From-style header like
// "Name <user@example.com>".
func ExtractAddress(header string) string {
	if header == "" {
		return ""
	}
	if addr, err := mail.ParseAddress(header); err == nil {
		return addr.Address
	}
	// Fall back to naive angle-bracket extraction for malformed headers
	if start := strings.Index(header, "<"); start != -1 {
		if end := strings.Index(header[start:], ">"); end != -1 {
			return strings.TrimSpace(header[start+1 : start+end])
		}
	}
	return strings.TrimSpace(header)
}

func parseRFC2822Date(value string) (time.Time, error) {
	return mail.ParseDate(value)
}

// MessageURL generates a Gmail web URL that opens a message directly.
func MessageURL(messageID string) string {
	return "https://mail.google.com/mail/u/0/#inbox/" + messageID
}
