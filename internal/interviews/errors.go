package interviews

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotReady     = errors.New("interview is not ready to start")
	ErrNotRunning   = errors.New("interview is not in progress")
	ErrNotFinished  = errors.New("interview has not finished")
	ErrTimedOut     = errors.New("interview timed out")
)

// Error codes stored on failed sessions.
const (
	ErrorCodeProviderExhausted = "provider_exhausted"
	ErrorCodeSchemaMismatch    = "schema_mismatch"
	ErrorCodeStageFailure      = "stage_failure"
	ErrorCodeTimeout           = "interview_timeout"
	ErrorCodeStorage           = "storage_error"
	ErrorCodeInternal          = "internal_error"
)

// StageError marks a pipeline stage failure and carries the cause.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
