package ports

import "context"

// Logger is the structured logging interface used across the core and the
// adapters. Implementations decide formatting and destination; callers pass
// a context plus an optional map of structured fields.
type Logger interface {
	// Debug logs fine-grained diagnostic detail, e.g. per-check verdicts.
	Debug(ctx context.Context, msg string, fields ...map[string]interface{})
	// Info logs normal lifecycle events.
	Info(ctx context.Context, msg string, fields ...map[string]interface{})
	// Warn logs recoverable anomalies.
	Warn(ctx context.Context, msg string, fields ...map[string]interface{})
	// Error logs failures together with the causing error.
	Error(ctx context.Context, err error, msg string, fields ...map[string]interface{})
}
