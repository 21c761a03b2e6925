package llm

import (
	"fmt"
	"strings"
	"time"
)

// Policy is the explicit retry/fallback contract the Gateway executes:
// every model in order, every credential per model, up to MaxAttempts
// attempts per (credential, model) pair with exponential backoff.
type Policy struct {
	// Models holds the primary model first, then the fallback cascade.
	Models []string
	// MaxAttempts per (credential, model) pair.
	MaxAttempts int
	// BaseDelay doubles per failed attempt up to MaxDelay; the Gateway
	// applies +/-25% jitter on top.
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// MaxTokens is the completion budget applied when a Prompt leaves
	// MaxTokens unset.
	MaxTokens int
	// TextTemperature and StructuredTemperature are the defaults for
	// Generate and GenerateStructured respectively.
	TextTemperature       float64
	StructuredTemperature float64
}

// DefaultPolicy returns the production defaults. Models must still be set
// by the caller.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:           3,
		BaseDelay:             2 * time.Second,
		MaxDelay:              10 * time.Second,
		MaxTokens:             DefaultMaxTokens,
		TextTemperature:       DefaultTextTemperature,
		StructuredTemperature: DefaultStructuredTemperature,
	}
}

func (p Policy) validate() error {
	if len(p.Models) == 0 {
		return fmt.Errorf("llm policy: at least one model is required")
	}
	for _, m := range p.Models {
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("llm policy: empty model identifier")
		}
	}
	if p.MaxAttempts < 1 {
		return fmt.Errorf("llm policy: max attempts must be >= 1")
	}
	return nil
}

// delay returns the raw backoff for a failed attempt (1-based), before
// jitter: BaseDelay * 2^(attempt-1), capped at MaxDelay.
func (p Policy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}
