package orchestrator

import (
	"errors"
	"fmt"
)

// ErrRunInProgress is returned by Start when this orchestrator already has an active run.
var ErrRunInProgress = errors.New("a generation run is already in progress")

// RejectionError means the concurrency gate refused to start a run.
// The caller can wait for another run to finish or move to a larger tier.
type RejectionError struct {
	Limit  int
	Active int
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("generation limit reached: %d of %d runs active", e.Active, e.Limit)
}

// TransitionError indicates a status change the state machine does not allow.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// StageError wraps a failure of one pipeline stage.
type StageError struct {
	Stage Stage
	Cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}
