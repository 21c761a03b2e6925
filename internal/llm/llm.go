package llm

import (
	"context"
	"errors"
)

// Default call parameters applied by the Gateway when a Prompt leaves them unset.
const (
	DefaultTextTemperature       = 0.7
	DefaultStructuredTemperature = 0.2
	DefaultMaxTokens             = 4096
)

// Prompt is one request to the language model, provider-agnostic.
// A zero Temperature means "use the gateway default"; a zero MaxTokens
// means the configured completion budget.
type Prompt struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// CompletionRequest is what a provider client receives for a single attempt.
type CompletionRequest struct {
	Model       string
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Client executes one completion against one provider credential.
// Implementations live under llm/groq and llm/gemini; the Gateway owns
// retry, rotation and fallback, so a Client should make exactly one
// provider call per Complete invocation.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Result reports how a gateway call was served.
type Result struct {
	Text       string
	Model      string
	Credential int
	Attempts   int
}

// Validator is implemented by structured-output targets that can check
// their own field constraints after decoding.
type Validator interface {
	Validate() error
}

// ErrNotConfigured is returned by the placeholder client wired in
// environments without provider credentials.
var ErrNotConfigured = errors.New("llm provider not configured")

// PlaceholderClient satisfies Client where no provider is configured.
type PlaceholderClient struct{}

// Complete always fails with ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotConfigured
}

var _ Client = PlaceholderClient{}
