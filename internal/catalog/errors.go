package catalog

import (
	"context"
	"errors"
	"fmt"
)

// TransientError marks a provider failure that may succeed on retry:
// timeouts, rate limits, temporary network trouble. The orchestrator retries
// a transient failure once in place before deferring to the next tier.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient provider error: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// MalformedResponseError marks an AI response that could not be parsed.
// It is an image-level (or batch-level) failure for the current tier only.
type MalformedResponseError struct {
	Response string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed provider response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// IsTransient reports whether err should get an in-place retry.
// A deadline on an individual call counts as transient; cancellation of the
// whole batch does not.
func IsTransient(err error) bool {
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
