// Package guardrail implements the multi-stage validation pipeline that
// gates every user message before it reaches the LLM. Rejections are
// values, not errors: the error return is reserved for infrastructure
// failures of a check, which must never be conflated with pass or reject.
package guardrail

import (
	"context"
	"fmt"
)

// Verdict is the outcome of a pipeline run or a single stage.
// Exactly one stage produces a rejection; once rejected, no further
// stages execute.
type Verdict struct {
	Allowed bool
	Stage   string // stage that rejected; empty when allowed
	Reason  string // human-readable, user-facing
}

// Allow is the passing verdict.
func Allow() Verdict {
	return Verdict{Allowed: true}
}

// Reject builds a rejection verdict for a stage.
func Reject(stage, reason string) Verdict {
	return Verdict{Stage: stage, Reason: reason}
}

// Stage is a single guardrail check.
type Stage interface {
	Name() string
	Check(ctx context.Context, text string) (Verdict, error)
}

// StageError reports an infrastructure failure of a check: transport
// error, timeout, or an unusable classifier response. It is not a
// rejection and must not be treated as an implicit allow.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("guardrail stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
