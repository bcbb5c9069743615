// Package task implements the retryable orchestration tasks that run as steps
// inside the pipeline execution engine. The engine re-invokes a task at its
// backoff period until the task stops reporting RUNNING or the task's timeout
// elapses.
package task

import (
	"context"
	"time"
)

// Status is the outcome class of a single task invocation.
type Status string

const (
	// StatusRunning asks the engine to invoke the task again after its
	// backoff period.
	StatusRunning Status = "RUNNING"
	// StatusSucceeded ends the stage successfully.
	StatusSucceeded Status = "SUCCEEDED"
	// StatusTerminal ends the stage as failed. The engine will not retry.
	StatusTerminal Status = "TERMINAL"
)

// Result is the outcome of one task invocation. Context carries key/value
// patches the engine merges into persistent stage state.
type Result struct {
	Status  Status
	Context map[string]any
}

// Running returns a RUNNING result.
func Running() Result {
	return Result{Status: StatusRunning}
}

// Succeeded returns a SUCCEEDED result with an optional context patch.
func Succeeded(patch map[string]any) Result {
	return Result{Status: StatusSucceeded, Context: patch}
}

// Terminal returns a TERMINAL result.
func Terminal() Result {
	return Result{Status: StatusTerminal}
}

// RetryableTask is a unit of work the engine may invoke repeatedly. Execute
// must be idempotent with respect to already-applied side effects: calling it
// again with the same or a later stage snapshot is always safe. An error
// return signals an unrecoverable configuration or input problem that
// retrying cannot fix.
type RetryableTask interface {
	// BackoffPeriod is how long the engine waits between invocations.
	BackoffPeriod() time.Duration
	// Timeout is how long the engine lets the stage stay non-terminal.
	Timeout() time.Duration
	Execute(ctx context.Context, stage *Stage) (Result, error)
}
