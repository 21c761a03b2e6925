package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ProviderError is returned by the Gateway after every model/credential
// combination exhausted its retries. It is fatal to the enclosing pipeline
// stage or turn, never to the process.
type ProviderError struct {
	Models   []string
	Attempts int
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("llm provider exhausted after %d attempts across %d model(s): %v",
		e.Attempts, len(e.Models), e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// SchemaError reports a structured response that failed to parse or
// validate. The Gateway never retries these; callers decide whether to
// re-issue the whole structured call.
type SchemaError struct {
	Schema string
	Raw    string
	Err    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("llm schema %q: %v", e.Schema, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// StatusError is implemented by provider errors that carry an HTTP status.
type StatusError interface {
	error
	HTTPStatus() int
}

// IsRateLimited reports whether err signals provider throttling. The
// Gateway uses this to advance the credential rotation immediately.
func IsRateLimited(err error) bool {
	var se StatusError
	if errors.As(err, &se) {
		return se.HTTPStatus() == http.StatusTooManyRequests
	}
	return false
}
