package unsubscribe

import (
	"context"
	"log/slog"
	"net/http"

	gmail "google.golang.org/api/gmail/v1"

	gmailpkg "github.com/zbowling/gmail-ai-unsub/internal/gmail"
	"github.com/zbowling/gmail-ai-unsub/internal/instrumentation"
	"github.com/zbowling/gmail-ai-unsub/internal/logging"
	"github.com/zbowling/gmail-ai-unsub/internal/state"
)

// Unsubscribe method names, also used as metric labels.
const (
	MethodMailto   = instrumentation.MethodMailto
	MethodOneClick = instrumentation.MethodOneClick
	MethodBrowser  = instrumentation.MethodBrowser
)

// BrowserRunner completes an unsubscribe page interactively. Satisfied by
// *BrowserAgent.
type BrowserRunner interface {
	Run(ctx context.Context, url string) (bool, string)
}

// Outcome reports how an attempt ended.
type Outcome struct {
	Success bool
	// Method is the method that succeeded, or the last one tried.
	Method string
	// WorkingURL is the URL that completed the unsubscribe, when one did.
	WorkingURL string
	// Note carries the confirmation or failure detail.
	Note string
}

// Executor attempts unsubscribes for a single message using every method
// its link offers: a mailto send, an RFC 8058 one-click POST, and finally
// browser automation over all candidate URLs.
type Executor struct {
	gmail        *gmailpkg.Client
	httpClient   *http.Client
	browser      BrowserRunner
	metrics      *instrumentation.Metrics
	enableMailto bool
}

// NewExecutor creates an executor. The browser runner may be nil, in which
// case URLs without one-click support fail with an explanatory note.
func NewExecutor(gmailClient *gmailpkg.Client, httpClient *http.Client, browser BrowserRunner, metrics *instrumentation.Metrics, enableMailto bool) *Executor {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Executor{
		gmail:        gmailClient,
		httpClient:   httpClient,
		browser:      browser,
		metrics:      metrics,
		enableMailto: enableMailto,
	}
}

// Attempt works through the unsubscribe methods for one message. A message
// that advertises RFC 8058 one-click is resolved by the POST alone and is
// never handed to browser automation.
func (e *Executor) Attempt(ctx context.Context, msg *gmail.Message, link state.Link) Outcome {
	logger := slog.With(logging.MessageID(link.MessageID))

	mailtoSent := false
	if link.Mailto != "" && e.enableMailto {
		err := SendMailto(ctx, e.gmail, link.Mailto)
		mailtoSent = err == nil
		e.recordAttempt(ctx, MethodMailto, err == nil)
		if err != nil {
			logger.Warn("mailto unsubscribe failed", logging.Method(MethodMailto), logging.Err(err))
		} else {
			logger.Info("unsubscribe email sent", logging.Method(MethodMailto))
		}
	}

	if link.URL == "" {
		if mailtoSent {
			return Outcome{Success: true, Method: MethodMailto, Note: "unsubscribe email sent"}
		}
		return Outcome{Method: MethodMailto, Note: "no unsubscribe method succeeded"}
	}

	if HasOneClick(msg) {
		// RFC 8058 messages are settled here; the POST endpoint is the
		// sender's own machinery and a browser adds nothing.
		err := OneClickPOST(ctx, e.httpClient, link.URL)
		e.recordAttempt(ctx, MethodOneClick, err == nil)
		if err == nil {
			logger.Info("one-click unsubscribe accepted", logging.Method(MethodOneClick))
			return Outcome{Success: true, Method: MethodOneClick, WorkingURL: link.URL, Note: "one-click POST accepted"}
		}
		logger.Warn("one-click unsubscribe failed", logging.Method(MethodOneClick), logging.Err(err))
		if mailtoSent {
			return Outcome{Success: true, Method: MethodMailto, Note: "unsubscribe email sent; one-click POST failed"}
		}
		return Outcome{Method: MethodOneClick, Note: err.Error()}
	}

	body := gmailpkg.ExtractBody(msg)
	candidates := AllCandidateURLs(link.URL, body.Text, body.HTML)
	if len(candidates) == 0 {
		if mailtoSent {
			return Outcome{Success: true, Method: MethodMailto, Note: "unsubscribe email sent"}
		}
		return Outcome{Method: MethodBrowser, Note: "no valid unsubscribe URLs found"}
	}

	if e.browser == nil {
		if mailtoSent {
			return Outcome{Success: true, Method: MethodMailto, Note: "unsubscribe email sent"}
		}
		return Outcome{Method: MethodBrowser, Note: "browser automation unavailable"}
	}

	var lastNote string
	for i, candidate := range candidates {
		// The first candidate is always worth a real attempt; later ones
		// get a cheap probe so dead links do not burn a browser session.
		if i > 0 {
			if ok, status := CheckURL(ctx, e.httpClient, candidate); !ok && status == http.StatusNotFound {
				logger.Debug("skipping dead unsubscribe URL", "url", candidate, "http_status", status)
				continue
			}
		}

		success, note := e.browser.Run(ctx, candidate)
		e.recordAttempt(ctx, MethodBrowser, success)
		if success {
			logger.Info("browser unsubscribe confirmed", logging.Method(MethodBrowser))
			return Outcome{Success: true, Method: MethodBrowser, WorkingURL: candidate, Note: note}
		}
		lastNote = note
		logger.Warn("browser unsubscribe failed", logging.Method(MethodBrowser), "note", note)
	}

	if mailtoSent {
		return Outcome{Success: true, Method: MethodMailto, Note: "unsubscribe email sent; browser attempts failed"}
	}
	if lastNote == "" {
		lastNote = "all candidate URLs were dead"
	}
	return Outcome{Method: MethodBrowser, Note: lastNote}
}

func (e *Executor) recordAttempt(ctx context.Context, method string, ok bool) {
	status := instrumentation.StatusSuccess
	if !ok {
		status = instrumentation.StatusError
	}
	e.metrics.RecordUnsubscribeAttempt(ctx, method, status)
}
