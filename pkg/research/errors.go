package research

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks validation failures such as an empty task or a
	// malformed URL. These are never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedResponse marks model output that could not be parsed.
	ErrMalformedResponse = errors.New("malformed model response")
)

// PlanningError is returned by the planner when the model call fails or when
// every parse attempt produced unusable output.
type PlanningError struct {
	Attempts int
	Err      error
}

func (e *PlanningError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("planner: no valid plan after %d attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("planner: %v", e.Err)
}

func (e *PlanningError) Unwrap() error { return e.Err }

// WritingError is returned by the writer when the report could not be produced.
type WritingError struct {
	Err error
}

func (e *WritingError) Error() string {
	return fmt.Sprintf("writer: %v", e.Err)
}

func (e *WritingError) Unwrap() error { return e.Err }
