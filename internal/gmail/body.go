package gmail

import (
	"encoding/base64"
	"html"
	"regexp"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// Body holds the decoded text and HTML variants of a message body.
type Body struct {
	Text string
	HTML string
}

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// ExtractBody walks the MIME tree of a full-format message and decodes the
// first text/plain and text/html parts it finds. When only HTML is present,
// a tag-stripped version is used as the plain text.
func ExtractBody(msg *gmail.Message) Body {
	var body Body
	if msg == nil || msg.Payload == nil {
		return body
	}
	walkParts(msg.Payload, func(part *gmail.MessagePart) {
		if part.Body == nil || part.Body.Data == "" {
			return
		}
		switch part.MimeType {
		case "text/plain":
			if body.Text == "" {
				body.Text = decodePartData(part.Body.Data)
			}
		case "text/html":
			if body.HTML == "" {
				body.HTML = decodePartData(part.Body.Data)
			}
		}
	})

	if body.Text == "" && body.HTML != "" {
		body.Text = html.UnescapeString(htmlTagRe.ReplaceAllString(body.HTML, ""))
	}
	return body
}

// walkParts visits every part of a message payload depth-first.
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}
	fn(part)
	for _, sub := range part.Parts {
		walkParts(sub, fn)
	}
}

// decodePartData decodes Gmail body data, which is base64url per the API.
// Some relays emit standard base64; fall back to that before giving up.
func decodePartData(data string) string {
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	if decoded, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	if decoded, err := base64.StdEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	return ""
}

// HeaderValue extracts a header value from a Gmail message. Header name
// matching is case-insensitive.
func HeaderValue(m *gmail.Message, header string) string {
	if m == nil || m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if strings.EqualFold(h.Name, header) {
			return h.Value
		}
	}
	return ""
}
