// Package unsubscribe finds unsubscribe targets in marketing mail and
// executes them.
//
// Targets come from the RFC 2369 List-Unsubscribe header or, failing that,
// from links in the message body. Execution tries the cheapest reliable
// method first: a mailto send through the user's own account, an RFC 8058
// one-click POST when the sender advertises it, and an LLM-guided browser
// session for pages that need a human-shaped visitor. Messages with a
// one-click header are settled by the POST and never reach the browser.
package unsubscribe
