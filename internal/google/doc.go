// Package google provides OAuth2 authentication and token management for the
// Gmail API.
//
// Client credentials resolve in priority order: GMAIL_CLIENT_ID and
// GMAIL_CLIENT_SECRET environment variables, build-time injected defaults,
// or a user-provided credentials.json for people who run their own OAuth app.
// Tokens are cached as JSON in the user cache directory and refreshed
// transparently; the interactive flow uses a loopback redirect on an
// ephemeral localhost port.
package google
