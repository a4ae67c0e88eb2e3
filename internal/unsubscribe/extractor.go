package unsubscribe

import (
	"bytes"
	"io"
	"mime/quotedprintable"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	gmail "google.golang.org/api/gmail/v1"

	gmailpkg "github.com/zbowling/gmail-ai-unsub/internal/gmail"
	"github.com/zbowling/gmail-ai-unsub/internal/state"
)

var (
	angleBracketRe = regexp.MustCompile(`<([^>]+)>`)
	bareTargetRe   = regexp.MustCompile(`(https?://[^\s,>]+|mailto:[^\s,>]+)`)

	// Fallback patterns when HTML parsing finds nothing.
	hrefPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)href=["']([^"']*unsub[^"']*)["']`),
		regexp.MustCompile(`(?i)href=["']([^"']*opt.?out[^"']*)["']`),
	}
	textURLPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(https?://[^\s<>"]*unsub[^\s<>"]*)`),
		regexp.MustCompile(`(?i)(https?://[^\s<>"]*opt.?out[^\s<>"]*)`),
	}

	anchorKeywords = []string{"unsubscribe", "unsub", "opt-out", "optout", "remove", "preferences"}
)

// ValidateURL reports whether a URL looks complete and usable. Truncated
// links are common in marketing mail; a URL ending in "=" or "?" lost its
// query value somewhere along the way.
func ValidateURL(raw string) bool {
	if raw == "" {
		return false
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return false
	}

	trimmed := strings.TrimRight(raw, " \t")
	if strings.HasSuffix(trimmed, "=") || strings.HasSuffix(trimmed, "?") {
		return false
	}
	if q := strings.TrimRight(parsed.RawQuery, " \t"); q != "" && strings.HasSuffix(q, "=") {
		return false
	}
	return true
}

// FromHeader parses the List-Unsubscribe header of a message into a link.
// The header can carry several targets in angle brackets; an https URL is
// preferred and a mailto address is retained alongside it.
func FromHeader(msg *gmail.Message) (state.Link, bool) {
	header := gmailpkg.HeaderValue(msg, "List-Unsubscribe")
	if header == "" {
		return state.Link{}, false
	}

	var urls, mailtos []string
	collect := func(target string) {
		// Some senders emit spaces inside the target (Office Depot, notably)
		target = strings.ReplaceAll(target, " ", "")
		switch {
		case strings.HasPrefix(target, "mailto:"):
			mailtos = append(mailtos, strings.TrimPrefix(target, "mailto:"))
		case strings.HasPrefix(target, "http://"), strings.HasPrefix(target, "https://"):
			urls = append(urls, target)
		}
	}

	matches := angleBracketRe.FindAllStringSubmatch(header, -1)
	for _, m := range matches {
		collect(m[1])
	}
	if len(matches) == 0 {
		// Malformed header without angle brackets; look for bare targets
		for _, m := range bareTargetRe.FindAllString(strings.ReplaceAll(header, " ", ""), -1) {
			collect(m)
		}
	}

	link := state.Link{
		MessageID: msg.Id,
		Header:    header,
		Source:    state.SourceHeader,
		Status:    state.StatusPending,
	}
	if len(urls) > 0 {
		link.URL = urls[0]
	}
	if len(mailtos) > 0 {
		link.Mailto = mailtos[0]
	}
	if link.URL == "" && link.Mailto == "" {
		return state.Link{}, false
	}
	return link, true
}

// HasOneClick reports whether the message advertises RFC 8058 one-click
// unsubscribe via the List-Unsubscribe-Post header.
func HasOneClick(msg *gmail.Message) bool {
	post := gmailpkg.HeaderValue(msg, "List-Unsubscribe-Post")
	return strings.Contains(post, "List-Unsubscribe=One-Click")
}

// FromBody extracts the first unsubscribe URL found in the message body.
func FromBody(messageID, bodyText, bodyHTML string) (state.Link, bool) {
	urls := URLsFromBody(bodyText, bodyHTML)
	if len(urls) == 0 {
		return state.Link{}, false
	}
	return state.Link{
		MessageID: messageID,
		URL:       urls[0],
		Source:    state.SourceBody,
		Status:    state.StatusPending,
	}, true
}

// URLsFromBody extracts every unsubscribe URL in the message body. HTML
// anchors are parsed first; regexes over the raw text catch what the parse
// misses. Results are de-duplicated in discovery order.
func URLsFromBody(bodyText, bodyHTML string) []string {
	var urls []string
	seen := make(map[string]bool)
	add := func(raw string) {
		raw = strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
		raw = strings.TrimRight(raw, ".,;:!?)")
		if !ValidateURL(raw) {
			return
		}
		if parsed, err := url.Parse(raw); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return
		}
		if !seen[raw] {
			seen[raw] = true
			urls = append(urls, raw)
		}
	}

	if bodyHTML != "" {
		for _, u := range anchorsFromHTML(DecodeQuotedPrintable(bodyHTML)) {
			add(u)
		}
	}

	if len(urls) == 0 {
		for _, re := range hrefPatterns {
			for _, m := range re.FindAllStringSubmatch(bodyText, -1) {
				add(m[1])
			}
		}
	}
	if len(urls) == 0 {
		for _, re := range textURLPatterns {
			for _, m := range re.FindAllStringSubmatch(bodyText, -1) {
				add(m[1])
			}
		}
	}

	return urls
}

// AllCandidateURLs builds the ordered list of URLs worth trying for a
// message: the header URL first when valid, then body URLs not already
// listed.
func AllCandidateURLs(headerURL, bodyText, bodyHTML string) []string {
	var candidates []string
	seen := make(map[string]bool)

	if ValidateURL(headerURL) {
		candidates = append(candidates, headerURL)
		seen[headerURL] = true
	}
	for _, u := range URLsFromBody(bodyText, bodyHTML) {
		if !seen[u] {
			seen[u] = true
			candidates = append(candidates, u)
		}
	}
	return candidates
}

// anchorsFromHTML walks the parse tree collecting hrefs from <a> tags whose
// href or visible text mentions unsubscribing.
func anchorsFromHTML(content string) []string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var urls []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			var href string
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					href = attr.Val
					break
				}
			}
			if href != "" && isUnsubscribeAnchor(href, anchorText(n)) {
				urls = append(urls, href)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return urls
}

func isUnsubscribeAnchor(href, text string) bool {
	href = strings.ToLower(href)
	text = strings.ToLower(text)
	for _, kw := range anchorKeywords {
		if strings.Contains(href, kw) || strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// anchorText returns the concatenated text content of a node.
func anchorText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

// DecodeQuotedPrintable decodes quoted-printable text, returning the input
// unchanged when it does not decode cleanly.
func DecodeQuotedPrintable(text string) string {
	decoded, err := io.ReadAll(quotedprintable.NewReader(bytes.NewReader([]byte(text))))
	if err != nil {
		return text
	}
	return string(decoded)
}
