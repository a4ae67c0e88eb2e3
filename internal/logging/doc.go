// Package logging provides structured logging utilities for the gmail-ai-unsub
// application.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (sender address anonymization)
//   - Consistent attribute naming across the codebase
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "gmail.list")
//	logger.Info("listing messages",
//	    logging.Status("success"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("classified message",
//	    logging.Sender(from))
//
// # Security Considerations
//
// Sender addresses are hashed to prevent PII leakage while allowing
// correlation; API keys and tokens are never logged.
package logging
