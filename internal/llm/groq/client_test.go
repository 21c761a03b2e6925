package groq

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"interview-backend/internal/llm"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient("test-key", srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return srv, client
}

func TestCompleteSendsChatRequest(t *testing.T) {
	var got chatRequest
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Fatalf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "hello there"}},
			},
		})
	})

	out, err := client.Complete(context.Background(), llm.CompletionRequest{
		Model:       "llama-3.3-70b-versatile",
		System:      "be brief",
		User:        "say hello",
		Temperature: 0.2,
		MaxTokens:   256,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "hello there" {
		t.Fatalf("expected content, got %q", out)
	}
	if got.Model != "llama-3.3-70b-versatile" {
		t.Fatalf("expected model forwarded, got %q", got.Model)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}
	if got.Temperature == nil || *got.Temperature != 0.2 {
		t.Fatalf("expected temperature 0.2, got %+v", got.Temperature)
	}
	if got.MaxTokens != 256 {
		t.Fatalf("expected max_tokens 256, got %d", got.MaxTokens)
	}
}

func TestCompleteRateLimitCarriesStatus(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limit exceeded", "type": "tokens"},
		})
	})

	_, err := client.Complete(context.Background(), llm.CompletionRequest{Model: "m", User: "x"})
	if err == nil {
		t.Fatalf("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", apiErr.StatusCode)
	}
	if !llm.IsRateLimited(err) {
		t.Fatalf("expected rate-limit detection")
	}
}

func TestCompleteServerErrorSurfaced(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusInternalServerError)
	})

	_, err := client.Complete(context.Background(), llm.CompletionRequest{Model: "m", User: "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", apiErr.StatusCode)
	}
	if llm.IsRateLimited(err) {
		t.Fatalf("500 must not be treated as rate limit")
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	if _, err := client.Complete(context.Background(), llm.CompletionRequest{Model: "m", User: "x"}); err == nil {
		t.Fatalf("expected error for missing choices")
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", ""); err == nil {
		t.Fatalf("expected error for empty api key")
	}
	client, err := NewClient("k", "")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.baseURL != DefaultBaseURL {
		t.Fatalf("expected default base url, got %q", client.baseURL)
	}
}
