package google

import (
	"crypto/rand"
	"encoding/hex"
)

// Scopes are the Gmail OAuth scopes required by the application.
//
// The scopes provide access to:
//   - gmail.readonly: read messages and metadata during scans
//   - gmail.modify: manage labels on messages
//   - gmail.send: send mail (for mailto unsubscribe requests)
var Scopes = []string{
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/gmail.send",
}

// ScopeDescriptions returns human-readable descriptions of the required
// scopes for display during setup.
func ScopeDescriptions() [][2]string {
	return [][2]string{
		{"https://www.googleapis.com/auth/gmail.readonly", "Read your email messages and settings"},
		{"https://www.googleapis.com/auth/gmail.modify", "Manage your email labels"},
		{"https://www.googleapis.com/auth/gmail.send", "Send emails on your behalf (for unsubscribe requests)"},
	}
}

func randomState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
