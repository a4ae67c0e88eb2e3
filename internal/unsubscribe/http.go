package unsubscribe

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gmailpkg "github.com/zbowling/gmail-ai-unsub/internal/gmail"
)

const (
	oneClickBody    = "List-Unsubscribe=One-Click"
	headCheckWindow = 5 * time.Second
)

// OneClickPOST performs an RFC 8058 one-click unsubscribe POST. The request
// body is the fixed token the RFC prescribes; a 2xx or 3xx response counts
// as success.
func OneClickPOST(ctx context.Context, client *http.Client, target string) error {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(oneClickBody))
	if err != nil {
		return fmt.Errorf("failed to build one-click request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("one-click POST failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("one-click POST returned status %d", resp.StatusCode)
	}
	return nil
}

// CheckURL probes a URL with a HEAD request. It returns the status code and
// whether the URL is worth attempting; network errors give the URL the
// benefit of the doubt.
func CheckURL(ctx context.Context, client *http.Client, target string) (bool, int) {
	if client == nil {
		client = http.DefaultClient
	}

	ctx, cancel := context.WithTimeout(ctx, headCheckWindow)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false, 0
	}

	resp, err := client.Do(req)
	if err != nil {
		// Could be a transient network issue; let the caller try anyway
		return true, 0
	}
	defer resp.Body.Close()

	return resp.StatusCode < 400, resp.StatusCode
}

// MailtoTarget is a parsed mailto unsubscribe address.
type MailtoTarget struct {
	Address string
	Subject string
	Body    string
}

// ParseMailto splits a mailto target into address plus optional subject and
// body query parameters. The input may or may not carry the mailto: scheme.
func ParseMailto(raw string) (MailtoTarget, error) {
	raw = strings.TrimPrefix(raw, "mailto:")

	target := MailtoTarget{
		Subject: "Unsubscribe",
		Body:    "Please remove this address from your mailing list.",
	}

	addr, query, found := strings.Cut(raw, "?")
	target.Address = strings.TrimSpace(addr)
	if target.Address == "" {
		return MailtoTarget{}, fmt.Errorf("mailto target has no address: %q", raw)
	}

	if found {
		values, err := url.ParseQuery(query)
		if err == nil {
			if s := values.Get("subject"); s != "" {
				target.Subject = s
			}
			if b := values.Get("body"); b != "" {
				target.Body = b
			}
		}
	}
	return target, nil
}

// SendMailto sends the unsubscribe email through the user's own Gmail
// account, as RFC 8058 mailto targets expect the request to come from the
// subscribed address.
func SendMailto(ctx context.Context, client *gmailpkg.Client, mailto string) error {
	target, err := ParseMailto(mailto)
	if err != nil {
		return err
	}

	_, err = client.SendMessage(ctx, &gmailpkg.EmailMessage{
		To:      []string{target.Address},
		Subject: target.Subject,
		Body:    target.Body,
	})
	if err != nil {
		return fmt.Errorf("failed to send unsubscribe email: %w", err)
	}
	return nil
}
