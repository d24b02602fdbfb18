package logger

import (
	"context"

	"hedgeguard/internal/ports"
)

// AlertSink implements ports.AlertSink on top of a ports.Logger. Reports
// land as error-level log lines; callers throttle before invoking it.
type AlertSink struct {
	logger ports.Logger
}

// NewAlertSink wraps a logger as an alert sink.
func NewAlertSink(l ports.Logger) *AlertSink {
	return &AlertSink{logger: l}
}

// Error reports a failure message with structured context data.
func (s *AlertSink) Error(ctx context.Context, msg string, data map[string]interface{}) {
	s.logger.Error(ctx, nil, msg, data)
}

// Exception reports an unexpected error.
func (s *AlertSink) Exception(ctx context.Context, err error) {
	s.logger.Error(ctx, err, "unexpected exception")
}
