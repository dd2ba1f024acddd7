package domain

import "errors"

var (
	// Inference errors
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("validation error")
	ErrEvaluation    = errors.New("evaluation error")
	ErrBusy          = errors.New("prediction already in progress")
	ErrNotFound      = errors.New("entity not found")
)

// ErrTimeout is an evaluation error raised when a job exceeds the configured cap.
var ErrTimeout = timeoutError{}

type timeoutError struct{}

func (timeoutError) Error() string        { return "evaluation timed out" }
func (timeoutError) Is(target error) bool { return target == ErrEvaluation }
