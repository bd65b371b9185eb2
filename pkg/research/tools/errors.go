package tools

import (
	"errors"
	"fmt"

	"github.com/mikeboe/deep-research/pkg/research"
)

// ErrInvalidURL is reported for URLs without an http(s) scheme or host.
var ErrInvalidURL = fmt.Errorf("%w: url must be absolute http or https", research.ErrInvalidInput)

// SearchError describes a failed call to a search backend.
type SearchError struct {
	Provider   string
	Query      string
	StatusCode int
	Timeout    bool
	Err        error
}

func (e *SearchError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("%s search timed out for %q: %v", e.Provider, e.Query, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s search for %q returned status %d: %v", e.Provider, e.Query, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("%s search for %q failed: %v", e.Provider, e.Query, e.Err)
	}
}

func (e *SearchError) Unwrap() error { return e.Err }

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
