package gmail

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	gmail "google.golang.org/api/gmail/v1"
)

func b64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestExtractBodyMultipart(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "multipart/alternative",
			Parts: []*gmail.MessagePart{
				{
					MimeType: "text/plain",
					Body:     &gmail.MessagePartBody{Data: b64("plain body")},
				},
				{
					MimeType: "text/html",
					Body:     &gmail.MessagePartBody{Data: b64("<p>html body</p>")},
				},
			},
		},
	}

	body := ExtractBody(msg)
	assert.Equal(t, "plain body", body.Text)
	assert.Equal(t, "<p>html body</p>", body.HTML)
}

func TestExtractBodyHTMLOnly(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "text/html",
			Body:     &gmail.MessagePartBody{Data: b64("<p>Hello &amp; welcome</p>")},
		},
	}

	body := ExtractBody(msg)
	assert.Equal(t, "<p>Hello &amp; welcome</p>", body.HTML)
	// Tag-stripped, entity-decoded fallback text
	assert.Equal(t, "Hello & welcome", body.Text)
}

func TestExtractBodyNested(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "multipart/mixed",
			Parts: []*gmail.MessagePart{
				{
					MimeType: "multipart/alternative",
					Parts: []*gmail.MessagePart{
						{
							MimeType: "text/plain",
							Body:     &gmail.MessagePartBody{Data: b64("nested text")},
						},
					},
				},
			},
		},
	}

	body := ExtractBody(msg)
	assert.Equal(t, "nested text", body.Text)
}

func TestExtractBodyEmpty(t *testing.T) {
	assert.Equal(t, Body{}, ExtractBody(nil))
	assert.Equal(t, Body{}, ExtractBody(&gmail.Message{}))
}

func TestDecodePartDataStdBase64Fallback(t *testing.T) {
	// Standard base64 with + and / characters
	std := base64.StdEncoding.EncodeToString([]byte("data with ?? odd >> bytes"))
	assert.Equal(t, "data with ?? odd >> bytes", decodePartData(std))
}

func TestHeaderValue(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: "Weekly deals"},
				{Name: "List-Unsubscribe", Value: "<https://example.com/unsub>"},
			},
		},
	}

	assert.Equal(t, "Weekly deals", HeaderValue(msg, "Subject"))
	// Case-insensitive lookup
	assert.Equal(t, "Weekly deals", HeaderValue(msg, "subject"))
	assert.Equal(t, "<https://example.com/unsub>", HeaderValue(msg, "List-Unsubscribe"))
	assert.Equal(t, "", HeaderValue(msg, "From"))
	assert.Equal(t, "", HeaderValue(nil, "Subject"))
}
