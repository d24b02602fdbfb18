// Package checks implements the trading check pipeline: an ordered,
// pluggable sequence of safety rules every candidate order must pass before
// it is allowed to reach the real exchange.
package checks

// FailedReason is the closed enumeration of typed failure reasons a check
// can produce. Calling code branches on the reason, never on the info text.
type FailedReason int

const (
	// ReasonNone marks a successful result.
	ReasonNone FailedReason = iota
	// ReasonInsufficientBalance — the order would drive the projected
	// available balance below zero.
	ReasonInsufficientBalance
	// ReasonPositionNotFound — the order closes a side with no open position.
	ReasonPositionNotFound
	// ReasonOrderBeyondLiquidation — the order price has already been passed
	// by the position's liquidation price.
	ReasonOrderBeyondLiquidation
	// ReasonLiquidationTooClose — after applying the order, the main
	// position's liquidation price would sit too close to the mark price.
	ReasonLiquidationTooClose
	// ReasonBelowMinOrderQty — the order volume is below the symbol's
	// minimum order quantity.
	ReasonBelowMinOrderQty
	// ReasonTooManyTries — a check exhausted its internal retry budget.
	ReasonTooManyTries
	// ReasonFixationBudgetSpent — the position's budget of profit fixations
	// is already used up.
	ReasonFixationBudgetSpent
	// ReasonUnexpectedSandboxFailure — an unanticipated error was raised
	// while evaluating inside a sandbox step.
	ReasonUnexpectedSandboxFailure
)

// String returns a stable name for the reason.
func (r FailedReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonInsufficientBalance:
		return "insufficient available balance"
	case ReasonPositionNotFound:
		return "position not found"
	case ReasonOrderBeyondLiquidation:
		return "order price is beyond the liquidation price"
	case ReasonLiquidationTooClose:
		return "further main position liquidation is too close"
	case ReasonBelowMinOrderQty:
		return "order volume is below the minimum order quantity"
	case ReasonTooManyTries:
		return "too many tries"
	case ReasonFixationBudgetSpent:
		return "profit fixation budget is spent"
	case ReasonUnexpectedSandboxFailure:
		return "unexpected sandbox exception thrown"
	default:
		return "unknown"
	}
}

// Result is the immutable verdict of one check. The failed reason is set
// exactly when the check did not succeed; the Pass and Fail constructors
// are the only way to build a Result, which enforces that invariant.
type Result struct {
	success bool
	source  string
	info    string
	reason  FailedReason
}

// Pass builds a successful result.
func Pass(source, info string) Result {
	return Result{success: true, source: source, info: info}
}

// Fail builds a failed result with a typed reason. A ReasonNone argument is
// coerced to ReasonUnexpectedSandboxFailure so a failed result can never
// carry an empty reason.
func Fail(source, info string, reason FailedReason) Result {
	if reason == ReasonNone {
		reason = ReasonUnexpectedSandboxFailure
	}
	return Result{success: false, source: source, info: info, reason: reason}
}

// Success reports whether the check passed.
func (r Result) Success() bool { return r.success }

// Source returns the name of the check that produced the result.
func (r Result) Source() string { return r.source }

// Info returns the human-readable detail line.
func (r Result) Info() string { return r.info }

// Reason returns the typed failure reason, ReasonNone for a success.
func (r Result) Reason() FailedReason { return r.reason }

// AllPassed reports whether every result in the slice is a success.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.success {
			return false
		}
	}
	return true
}

// FirstFailed returns the first failed result in pipeline order, which is
// authoritative for "can this order proceed". The second value is false
// when everything passed.
func FirstFailed(results []Result) (Result, bool) {
	for _, r := range results {
		if !r.success {
			return r, true
		}
	}
	return Result{}, false
}
