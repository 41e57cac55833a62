// Package stage implements the dual-mode execution contract shared by
// every text-processing stage: a deterministic rule engine, an optional
// delegated service engine, and a uniform per-call fallback policy.
package stage

import (
	"context"
	"fmt"
	"os"
)

// Mode selects how a stage executes.
type Mode string

const (
	// ModeRule runs the pure, deterministic local implementation.
	ModeRule Mode = "rule"
	// ModeService delegates to the external text-understanding service.
	ModeService Mode = "service"
)

// Error is a recoverable service failure. It names the stage so callers
// that disabled fallback can attribute the propagated failure.
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("stage %s: service call failed: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// RuleFunc is a pure local implementation. It must be deterministic and
// must return an empty result, never an error, for empty input.
type RuleFunc[I, O any] func(input I) O

// ServiceFunc delegates the stage to the external service. Any error it
// returns is treated as recoverable under the fallback policy.
type ServiceFunc[I, O any] func(ctx context.Context, input I) (O, error)

// Options control a single stage invocation. FallbackOnError is per-call
// so strict non-degrading pipelines can opt out of silent fallback.
type Options struct {
	Mode            Mode
	FallbackOnError bool
}

// DefaultOptions runs in rule mode with fallback enabled.
func DefaultOptions() Options {
	return Options{Mode: ModeRule, FallbackOnError: true}
}

// Executor wraps one stage's dual-mode logic.
type Executor[I, O any] struct {
	name    string
	rule    RuleFunc[I, O]
	service ServiceFunc[I, O]
	isEmpty func(I) bool
}

// New creates an executor. service may be nil for rule-only stages.
// isEmpty guards service mode: empty input short-circuits to rule mode
// without issuing a service call.
func New[I, O any](name string, rule RuleFunc[I, O], service ServiceFunc[I, O], isEmpty func(I) bool) *Executor[I, O] {
	return &Executor[I, O]{name: name, rule: rule, service: service, isEmpty: isEmpty}
}

// Name returns the stage name used in diagnostics and errors.
func (e *Executor[I, O]) Name() string { return e.name }

// Run executes the stage. In service mode a successful service result
// replaces the rule output entirely; on failure the executor either logs
// and re-executes the rule engine (opts.FallbackOnError) or propagates a
// *Error naming the stage.
func (e *Executor[I, O]) Run(ctx context.Context, input I, opts Options) (O, error) {
	if opts.Mode != ModeService || e.service == nil || (e.isEmpty != nil && e.isEmpty(input)) {
		return e.rule(input), nil
	}

	out, err := e.service(ctx, input)
	if err != nil {
		if !opts.FallbackOnError {
			var zero O
			return zero, &Error{Stage: e.name, Err: err}
		}
		fmt.Fprintf(os.Stderr, "[newsdesk] %s: service fallback: %v\n", e.name, err)
		return e.rule(input), nil
	}
	return out, nil
}
