package checks

import (
	"context"
	"fmt"

	"hedgeguard/internal/ports"
	"hedgeguard/internal/sandbox"
)

// ThrottleKey builds the identifying key a failure report is throttled by:
// {orderKind}_{symbol}_{side}, extended with _id_{sourceOrderID} when the
// intent originated from a persisted order.
func ThrottleKey(o sandbox.Intent) string {
	key := fmt.Sprintf("%s_%s_%s", o.Kind, o.Symbol, o.Side)
	if o.SourceOrderID != 0 {
		key += fmt.Sprintf("_id_%d", o.SourceOrderID)
	}
	return key
}

// FailureReporter is the single seam where unexpected sandbox errors are
// wrapped and reported. Reporting is throttled per identifying key so a
// misconfiguration repeating every evaluation cycle cannot flood the alert
// sink; the wrapped error is returned regardless.
type FailureReporter struct {
	limiters ports.LimiterFactory
	alerts   ports.AlertSink
}

// NewFailureReporter wires the reporter to its limiter factory and sink.
func NewFailureReporter(limiters ports.LimiterFactory, alerts ports.AlertSink) *FailureReporter {
	return &FailureReporter{limiters: limiters, alerts: alerts}
}

// Handle wraps err as an UnexpectedSandboxFailureError identifying the
// caller and the intent, reports it when the key's limiter accepts, and
// returns the wrapped error. When the context runs inside another sandbox
// evaluation (throttling disabled) nothing is consumed or reported here;
// the outer cycle owns the report.
func (r *FailureReporter) Handle(ctx context.Context, caller string, intent sandbox.Intent, tc *Context, err error) error {
	wrapped := &UnexpectedSandboxFailureError{Caller: caller, Intent: intent, Err: err}

	if tc != nil && tc.ThrottlingDisabled() {
		return wrapped
	}

	if r.limiters.Create(ThrottleKey(intent)).Consume() {
		data := map[string]interface{}{
			"caller":    caller,
			"orderKind": string(intent.Kind),
			"symbol":    intent.Symbol,
			"side":      string(intent.Side),
			"error":     err.Error(),
		}
		if intent.SourceOrderID != 0 {
			data["sourceOrderId"] = intent.SourceOrderID
		}
		r.alerts.Error(ctx, wrapped.Error(), data)
	}

	return wrapped
}
