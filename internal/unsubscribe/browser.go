package unsubscribe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/zbowling/gmail-ai-unsub/internal/llm"
	"github.com/zbowling/gmail-ai-unsub/internal/logging"
)

// Agent loop bounds. The step cap avoids wandering on pages that keep
// presenting new forms; the page text cap keeps prompts small.
const (
	maxAgentSteps   = 15
	maxPageChars    = 3000
	maxPageElements = 40
	actionSettle    = 300 * time.Millisecond
	agentMaxRetries = 3
)

// Phrases that indicate the page already confirmed the unsubscribe.
var successPhrases = []string{
	"you have been unsubscribed",
	"successfully unsubscribed",
	"already unsubscribed",
	"unsubscribe successful",
	"opt out successful",
	"you've been removed",
	"has been removed from our list",
	"preferences have been updated",
}

const agentSystemPrompt = `You are controlling a web browser to unsubscribe from a mailing list.

CRITICAL RULES:
1. If the page text indicates success ("OK", "Success", "Unsubscribed", "You have been unsubscribed"), the task is COMPLETE.
2. When there are multiple options, pick the MOST BROAD one: "Unsubscribe from all", "All emails", "Everything". Never pick a single category.
3. Read button text carefully. Some pages use dark patterns: "Stay subscribed", "Keep me subscribed", and "Continue receiving" look like unsubscribe buttons but are the opposite. Never click those.
4. NEVER log in, fill in passwords, enter an email address into a form, or navigate away from the unsubscribe page. If the page demands a login, the link did not work; report failure.
5. If it is not obvious how to unsubscribe, do not search around. Either the link is broken or the user is already unsubscribed; decide from the page text.

Respond with a single JSON object and nothing else:
{"action": "click" | "done" | "fail", "selector": "<CSS selector of the element to click, for click only>", "reason": "<one sentence>"}

For clicks, use one of the selectors listed under "Clickable elements".

Use "done" when the page confirms the unsubscribe. Use "fail" when the page requires login, is broken, or no safe action exists.`

// agentDecision is one step decided by the model.
type agentDecision struct {
	Action   string `json:"action"`
	Selector string `json:"selector"`
	Reason   string `json:"reason"`
}

// BrowserAgent drives a headless Chrome session through an unsubscribe
// page, asking an LLM which element to click at each step.
type BrowserAgent struct {
	llm      llm.Client
	headless bool
	timeout  time.Duration
}

// NewBrowserAgent creates an agent. The timeout bounds the whole session.
func NewBrowserAgent(client llm.Client, headless bool, timeout time.Duration) *BrowserAgent {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &BrowserAgent{llm: client, headless: headless, timeout: timeout}
}

// Run navigates to the unsubscribe URL and works the page until it confirms
// success, the model gives up, or the step budget runs out. The returned
// note is either the confirming page text or the failure reason.
func (a *BrowserAgent) Run(ctx context.Context, target string) (bool, string) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", a.headless),
		chromedp.Flag("incognito", true),
		chromedp.WindowSize(1280, 720),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if err := chromedp.Run(browserCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body"),
	); err != nil {
		return false, fmt.Sprintf("failed to load page: %v", err)
	}

	failures := 0
	for step := 1; step <= maxAgentSteps; step++ {
		pageText, err := a.pageText(browserCtx)
		if err != nil {
			return false, fmt.Sprintf("failed to read page: %v", err)
		}

		if phrase := matchSuccessPhrase(pageText); phrase != "" {
			return true, phrase
		}

		elements, err := a.pageElements(browserCtx)
		if err != nil {
			return false, fmt.Sprintf("failed to read page elements: %v", err)
		}

		decision, err := a.decide(ctx, target, step, pageText, elements)
		if err != nil {
			failures++
			if failures >= agentMaxRetries {
				return false, fmt.Sprintf("agent gave no usable decision: %v", err)
			}
			continue
		}

		switch decision.Action {
		case "done":
			return true, decision.Reason
		case "fail":
			return false, decision.Reason
		case "click":
			if decision.Selector == "" {
				failures++
				if failures >= agentMaxRetries {
					return false, "agent kept returning click actions without a selector"
				}
				continue
			}
			err := chromedp.Run(browserCtx,
				chromedp.Click(decision.Selector, chromedp.NodeVisible),
				chromedp.Sleep(actionSettle),
			)
			if err != nil {
				slog.Debug("browser click failed",
					logging.Operation("browser_agent"),
					"selector", decision.Selector,
					logging.Err(err),
				)
				failures++
				if failures >= agentMaxRetries {
					return false, fmt.Sprintf("could not click %q: %v", decision.Selector, err)
				}
			}
		default:
			failures++
			if failures >= agentMaxRetries {
				return false, fmt.Sprintf("agent returned unknown action %q", decision.Action)
			}
		}
	}

	return false, "step limit reached without a confirmation"
}

// pageText returns the visible text of the current page, truncated.
func (a *BrowserAgent) pageText(ctx context.Context) (string, error) {
	var text string
	err := chromedp.Run(ctx,
		chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &text),
	)
	if err != nil {
		return "", err
	}
	if len(text) > maxPageChars {
		text = text[:maxPageChars]
	}
	return text, nil
}

// elementSnapshotJS tags every visible interactive element with a stable
// data attribute and returns one line per element: its selector followed by
// its label text.
var elementSnapshotJS = fmt.Sprintf(`(() => {
	const nodes = document.querySelectorAll(
		'a, button, input[type="submit"], input[type="button"], input[type="checkbox"], input[type="radio"], select');
	const out = [];
	let n = 0;
	for (const el of nodes) {
		if (out.length >= %d) break;
		const rect = el.getBoundingClientRect();
		if (rect.width === 0 && rect.height === 0) continue;
		n++;
		el.setAttribute('data-unsub-agent', String(n));
		const label = (el.innerText || el.value || el.getAttribute('aria-label') || '').trim().slice(0, 80);
		const tag = el.tagName.toLowerCase() + (el.type ? '[' + el.type + ']' : '');
		out.push('[data-unsub-agent="' + n + '"] ' + tag + ': ' + label);
	}
	return out.join('\n');
})()`, maxPageElements)

// pageElements returns the clickable elements of the current page, one per
// line, each prefixed with a selector the model can click.
func (a *BrowserAgent) pageElements(ctx context.Context) (string, error) {
	var elements string
	if err := chromedp.Run(ctx, chromedp.Evaluate(elementSnapshotJS, &elements)); err != nil {
		return "", err
	}
	return elements, nil
}

// decide asks the model for the next action given the current page state.
func (a *BrowserAgent) decide(ctx context.Context, target string, step int, pageText, elements string) (agentDecision, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Unsubscribe URL: %s\nStep %d of %d.\n\nVisible page text:\n%s\n", target, step, maxAgentSteps, pageText)
	if elements != "" {
		fmt.Fprintf(&b, "\nClickable elements:\n%s\n", elements)
	}
	b.WriteString("\nDecide the next action.")

	response, err := a.llm.Complete(ctx, agentSystemPrompt, b.String())
	if err != nil {
		return agentDecision{}, fmt.Errorf("agent completion failed: %w", err)
	}
	return parseAgentDecision(response)
}

// parseAgentDecision extracts the JSON action from model output, tolerating
// code fences and surrounding prose.
func parseAgentDecision(text string) (agentDecision, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return agentDecision{}, fmt.Errorf("no JSON action in response")
	}

	var decision agentDecision
	if err := json.Unmarshal([]byte(text[start:end+1]), &decision); err != nil {
		return agentDecision{}, fmt.Errorf("invalid agent action: %w", err)
	}
	if decision.Action == "" {
		return agentDecision{}, fmt.Errorf("agent action is empty")
	}
	return decision, nil
}

// matchSuccessPhrase returns the first success phrase present in the page
// text, or empty.
func matchSuccessPhrase(pageText string) string {
	lower := strings.ToLower(pageText)
	for _, phrase := range successPhrases {
		if strings.Contains(lower, phrase) {
			return phrase
		}
	}
	return ""
}
