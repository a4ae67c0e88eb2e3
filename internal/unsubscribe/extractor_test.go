package unsubscribe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"

	"github.com/zbowling/gmail-ai-unsub/internal/state"
)

func messageWithHeaders(headers map[string]string) *gmail.Message {
	var hs []*gmail.MessagePartHeader
	for name, value := range headers {
		hs = append(hs, &gmail.MessagePartHeader{Name: name, Value: value})
	}
	return &gmail.Message{
		Id:      "msg-1",
		Payload: &gmail.MessagePart{Headers: hs},
	}
}

func TestFromHeader(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantURL    string
		wantMailto string
		wantFound  bool
	}{
		{
			name:      "url only",
			header:    "<https://example.com/unsub?id=42>",
			wantURL:   "https://example.com/unsub?id=42",
			wantFound: true,
		},
		{
			name:       "mailto only",
			header:     "<mailto:unsub@example.com>",
			wantMailto: "unsub@example.com",
			wantFound:  true,
		},
		{
			name:       "url and mailto",
			header:     "<https://example.com/unsub>, <mailto:unsub@example.com>",
			wantURL:    "https://example.com/unsub",
			wantMailto: "unsub@example.com",
			wantFound:  true,
		},
		{
			name:      "spaces inside target",
			header:    "<https://example.com/unsub ?id= 42>",
			wantURL:   "https://example.com/unsub?id=42",
			wantFound: true,
		},
		{
			name:      "bare url without brackets",
			header:    "https://example.com/unsub",
			wantURL:   "https://example.com/unsub",
			wantFound: true,
		},
		{
			name:       "bare mailto without brackets",
			header:     "mailto:unsub@example.com",
			wantMailto: "unsub@example.com",
			wantFound:  true,
		},
		{
			name:      "unusable contents",
			header:    "<ftp://example.com/unsub>",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := messageWithHeaders(map[string]string{"List-Unsubscribe": tt.header})
			link, found := FromHeader(msg)
			assert.Equal(t, tt.wantFound, found)
			if !tt.wantFound {
				return
			}
			assert.Equal(t, "msg-1", link.MessageID)
			assert.Equal(t, tt.wantURL, link.URL)
			assert.Equal(t, tt.wantMailto, link.Mailto)
			assert.Equal(t, state.SourceHeader, link.Source)
			assert.Equal(t, state.StatusPending, link.Status)
			assert.Equal(t, tt.header, link.Header)
		})
	}
}

func TestFromHeaderMissing(t *testing.T) {
	_, found := FromHeader(messageWithHeaders(map[string]string{"Subject": "hi"}))
	assert.False(t, found)
}

func TestHasOneClick(t *testing.T) {
	msg := messageWithHeaders(map[string]string{
		"List-Unsubscribe":      "<https://example.com/unsub>",
		"List-Unsubscribe-Post": "List-Unsubscribe=One-Click",
	})
	assert.True(t, HasOneClick(msg))

	msg = messageWithHeaders(map[string]string{
		"List-Unsubscribe": "<https://example.com/unsub>",
	})
	assert.False(t, HasOneClick(msg))

	msg = messageWithHeaders(map[string]string{
		"List-Unsubscribe-Post": "something-else",
	})
	assert.False(t, HasOneClick(msg))
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/unsub", true},
		{"https://example.com/unsub?id=42", true},
		{"http://example.com/u", true},
		{"", false},
		{"example.com/unsub", false},
		{"https://example.com/unsub?envelope=", false},
		{"https://example.com/unsub?", false},
		{"not a url", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidateURL(tt.url), "url %q", tt.url)
	}
}

func TestURLsFromBodyHTML(t *testing.T) {
	html := `<html><body>
		<a href="https://example.com/news">Today's news</a>
		<a href="https://example.com/unsubscribe?u=1">Unsubscribe</a>
		<a href="https://example.com/prefs?u=1">Manage preferences</a>
	</body></html>`

	urls := URLsFromBody("", html)
	require.Len(t, urls, 2)
	assert.Equal(t, "https://example.com/unsubscribe?u=1", urls[0])
	assert.Equal(t, "https://example.com/prefs?u=1", urls[1])
}

func TestURLsFromBodyAnchorText(t *testing.T) {
	// The href has no keyword but the anchor text does
	html := `<a href="https://example.com/x?y=1">Click here to unsubscribe</a>`

	urls := URLsFromBody("", html)
	require.Len(t, urls, 1)
	assert.Equal(t, "https://example.com/x?y=1", urls[0])
}

func TestURLsFromBodyRegexFallback(t *testing.T) {
	text := `To stop receiving these emails visit https://example.com/unsub?u=99 today.`

	urls := URLsFromBody(text, "")
	require.Len(t, urls, 1)
	assert.Equal(t, "https://example.com/unsub?u=99", urls[0])
}

func TestURLsFromBodySkipsInvalid(t *testing.T) {
	text := `Unsubscribe: https://example.com/unsub?envelope=`
	assert.Empty(t, URLsFromBody(text, ""))
}

func TestFromBody(t *testing.T) {
	link, found := FromBody("msg-2", "visit https://example.com/unsub?u=1 now", "")
	require.True(t, found)
	assert.Equal(t, "msg-2", link.MessageID)
	assert.Equal(t, "https://example.com/unsub?u=1", link.URL)
	assert.Equal(t, state.SourceBody, link.Source)

	_, found = FromBody("msg-3", "no links here", "")
	assert.False(t, found)
}

func TestAllCandidateURLs(t *testing.T) {
	html := `<a href="https://example.com/unsub?u=1">Unsubscribe</a>
	         <a href="https://other.example.com/optout?u=2">Opt out</a>`

	candidates := AllCandidateURLs("https://example.com/unsub?u=1", "", html)
	require.Len(t, candidates, 2, "header URL deduplicated against body URLs")
	assert.Equal(t, "https://example.com/unsub?u=1", candidates[0])
	assert.Equal(t, "https://other.example.com/optout?u=2", candidates[1])

	// Invalid header URL is dropped, body still contributes
	candidates = AllCandidateURLs("https://example.com/unsub?id=", "", html)
	require.Len(t, candidates, 2)
	assert.Equal(t, "https://example.com/unsub?u=1", candidates[0])
}

func TestDecodeQuotedPrintable(t *testing.T) {
	assert.Equal(t, "a=b", DecodeQuotedPrintable("a=3Db"))
	// Text that is not quoted-printable comes back unchanged
	malformed := `<a href="x">y</a> 100% =G`
	assert.Equal(t, malformed, DecodeQuotedPrintable(malformed))
}
