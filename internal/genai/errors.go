package genai

import "fmt"

type ErrorKind string

const (
	// KindRateLimited covers HTTP 429 and quota-exhausted replies.
	KindRateLimited ErrorKind = "rate_limited"
	// KindAPIFailure covers every other transport or server failure.
	KindAPIFailure ErrorKind = "api_failure"
)

// APIError is the classified failure of a model call. Classification happens
// once here at the client boundary; callers switch on Kind instead of
// matching substrings in error text.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("genai: %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("genai: %s: %s", e.Kind, e.Message)
}
