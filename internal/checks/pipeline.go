package checks

import (
	"context"
	"errors"

	"hedgeguard/internal/ports"
	"hedgeguard/internal/sandbox"
)

// Check is one pluggable rule in the safety pipeline.
type Check interface {
	// Name identifies the check in results and logs.
	Name() string
	// Supports reports whether the check applies to the intent. An
	// ErrReferencedPositionNotFound error causes a skip, not a failure.
	Supports(ctx context.Context, intent sandbox.Intent, tc *Context) (bool, error)
	// Check evaluates the intent and returns a verdict. Expected negative
	// outcomes are failed Results; errors are reserved for conditions the
	// check did not anticipate.
	Check(ctx context.Context, intent sandbox.Intent, tc *Context) (Result, error)
}

// Pipeline runs a fixed, ordered set of checks against a candidate order.
// All supported checks execute — there is no short-circuit — so one
// evaluation cycle reports every failing reason at once. The first failed
// result in registration order is authoritative for go/no-go.
type Pipeline struct {
	checks   []Check
	logger   ports.Logger
	reporter *FailureReporter
}

// NewPipeline builds a pipeline evaluating the given checks in registration
// order.
func NewPipeline(logger ports.Logger, reporter *FailureReporter, checks ...Check) *Pipeline {
	return &Pipeline{checks: checks, logger: logger, reporter: reporter}
}

// Run evaluates every applicable check against the intent. Unexpected
// errors raised inside a check abort the cycle: they are routed once
// through the failure reporter and returned alongside the results gathered
// so far. A retry-budget exhaustion (ErrTooManyTries) is surfaced as-is.
func (p *Pipeline) Run(ctx context.Context, intent sandbox.Intent, tc *Context) ([]Result, error) {
	results := make([]Result, 0, len(p.checks))

	for _, check := range p.checks {
		supported, err := check.Supports(ctx, intent, tc)
		if err != nil {
			if errors.Is(err, ErrReferencedPositionNotFound) || errors.Is(err, ports.ErrPositionNotFound) {
				p.logger.Debug(ctx, "check skipped: referenced position not found", map[string]interface{}{
					"check":  check.Name(),
					"symbol": intent.Symbol,
					"side":   string(intent.Side),
				})
				continue
			}
			return results, p.reporter.Handle(ctx, check.Name(), intent, tc, err)
		}
		if !supported {
			continue
		}

		result, err := check.Check(ctx, intent, tc)
		if err != nil {
			if errors.Is(err, ErrTooManyTries) {
				return results, err
			}
			return results, p.reporter.Handle(ctx, check.Name(), intent, tc, err)
		}

		if !result.Success() {
			p.logger.Debug(ctx, "check failed", map[string]interface{}{
				"check":  result.Source(),
				"reason": result.Reason().String(),
				"info":   result.Info(),
			})
		}
		results = append(results, result)
	}

	return results, nil
}
