package llm

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"interview-backend/internal/shared/metrics"
	"interview-backend/internal/shared/telemetry"
)

// Gateway is the process-wide chokepoint for provider calls. It owns the
// credential rotation cursor, the retry/backoff loop and the model
// fallback cascade. It holds no session data.
type Gateway struct {
	clients []Client
	policy  Policy

	mu   sync.Mutex
	next int

	// Injection points for tests. sleep must respect ctx cancellation;
	// jitter perturbs a computed backoff delay.
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(d time.Duration) time.Duration
}

// New constructs a Gateway over an ordered, non-empty credential/client
// list. Construction fails on an empty list or an invalid policy.
func New(clients []Client, policy Policy) (*Gateway, error) {
	if len(clients) == 0 {
		return nil, fmt.Errorf("llm gateway: at least one client is required")
	}
	if err := policy.validate(); err != nil {
		return nil, err
	}
	return &Gateway{
		clients: clients,
		policy:  policy,
		sleep:   sleepContext,
		jitter:  jitterDelay,
	}, nil
}

// Policy returns the gateway's retry/fallback policy.
func (g *Gateway) Policy() Policy { return g.policy }

// Generate runs the full cascade for a text completion: every model in
// policy order, every credential per model, up to MaxAttempts attempts
// per pair. Backoff sleeps happen between attempts and hold no locks.
func (g *Gateway) Generate(ctx context.Context, p Prompt) (Result, error) {
	req := CompletionRequest{
		System:      p.System,
		User:        p.User,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	}
	if req.Temperature == 0 {
		req.Temperature = g.policy.TextTemperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = g.policy.MaxTokens
	}

	var lastErr error
	totalAttempts := 0

	// One round-robin acquisition per gateway call; the cascade walks the
	// remaining credentials from there without advancing the shared cursor.
	start := g.acquire()

	for _, model := range g.policy.Models {
		req.Model = model
		for leg := 0; leg < len(g.clients); leg++ {
			idx := (start + leg) % len(g.clients)
			client := g.clients[idx]
			for attempt := 1; attempt <= g.policy.MaxAttempts; attempt++ {
				metrics.IncLLMCall()
				if attempt > 1 {
					metrics.IncLLMRetry()
				}
				began := time.Now()
				text, err := client.Complete(ctx, req)
				elapsedMs := float64(time.Since(began).Microseconds()) / 1000.0
				metrics.ObserveLLMCallDurationMs(elapsedMs)
				totalAttempts++
				if err == nil {
					telemetry.Info("llm.call", map[string]any{
						"model":       model,
						"credential":  idx,
						"attempt":     attempt,
						"duration_ms": elapsedMs,
					})
					return Result{Text: text, Model: model, Credential: idx, Attempts: totalAttempts}, nil
				}
				lastErr = err
				rateLimited := IsRateLimited(err)
				telemetry.Error("llm.attempt_failed", map[string]any{
					"model":        model,
					"credential":   idx,
					"attempt":      attempt,
					"rate_limited": rateLimited,
					"duration_ms":  elapsedMs,
					"error":        err.Error(),
				})
				if rateLimited {
					g.skipThrottled(idx)
				}
				if attempt < g.policy.MaxAttempts {
					if serr := g.sleep(ctx, g.jitter(g.policy.delay(attempt))); serr != nil {
						return Result{Model: model, Credential: idx, Attempts: totalAttempts},
							&ProviderError{Models: g.policy.Models, Attempts: totalAttempts, Err: serr}
					}
				}
			}
		}
	}

	return Result{Attempts: totalAttempts},
		&ProviderError{Models: g.policy.Models, Attempts: totalAttempts, Err: lastErr}
}

// acquire hands out the next credential index round-robin.
func (g *Gateway) acquire() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	idx := g.next
	g.next = (g.next + 1) % len(g.clients)
	return idx
}

// skipThrottled advances the rotation cursor past a rate-limited
// credential, out of the normal cadence, so the next acquisition does
// not start on it.
func (g *Gateway) skipThrottled(idx int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.next == idx {
		g.next = (idx + 1) % len(g.clients)
		metrics.IncLLMRotation()
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// jitterDelay perturbs d by +/-25%.
func jitterDelay(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	span := float64(d) / 2
	return time.Duration(float64(d)*0.75 + rand.Float64()*span)
}
