package quiz

import (
	"errors"
	"fmt"

	"github.com/quizcraft/grammarquiz/internal/genai"
)

// The three recognized model-call failure kinds. A reply that arrives but
// cannot be parsed into the expected shape is ErrMalformedResponse, distinct
// from transport/server failures.
var (
	ErrRateLimited       = errors.New("model API quota exceeded")
	ErrAPIFailure        = errors.New("model API call failed")
	ErrMalformedResponse = errors.New("model reply is not valid JSON of the expected shape")
)

func classifyModelErr(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) && apiErr.Kind == genai.KindRateLimited {
		return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
	}
	return fmt.Errorf("%w: %v", ErrAPIFailure, err)
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
}
