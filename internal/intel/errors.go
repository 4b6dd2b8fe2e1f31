package intel

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
)

// Stage identifies a pipeline stage for failure attribution.
type Stage string

const (
	StageSearch     Stage = "search"
	StageClassify   Stage = "classify"
	StageWhiteSpace Stage = "white_space"
)

// FailureReason is the coarse cause behind a stage falling back to its
// default value.
type FailureReason string

const (
	FailureTimeout     FailureReason = "timeout"
	FailureBadResponse FailureReason = "bad_response"
	FailureTransport   FailureReason = "transport"
)

// StageError records why a stage degraded to its fallback. It is carried
// as a value alongside the stage's typed output; the orchestrator inspects
// it in one place and never propagates it to the caller.
type StageError struct {
	Stage  Stage
	Reason FailureReason
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage degraded (%s): %v", e.Stage, e.Reason, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// transportFailure wraps an external-call error, classifying timeouts.
func transportFailure(stage Stage, err error) *StageError {
	reason := FailureTransport
	if eris.Is(err, context.DeadlineExceeded) || eris.Is(err, context.Canceled) {
		reason = FailureTimeout
	}
	return &StageError{Stage: stage, Reason: reason, Err: err}
}

// parseFailure wraps a malformed-model-output error.
func parseFailure(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Reason: FailureBadResponse, Err: err}
}
