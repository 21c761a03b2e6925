package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// DefaultBaseURL is Groq's OpenAI-compatible API root.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

const (
	// DefaultSTTModel is the transcription model used when none is
	// configured.
	DefaultSTTModel = "whisper-large-v3"
	// DefaultTTSModel is the synthesis model used when none is
	// configured.
	DefaultTTSModel = "playai-tts"
	// DefaultVoice is the synthesis voice used when none is configured.
	DefaultVoice = "Fritz-PlayAI"

	requestTimeout = 60 * time.Second
	maxErrorBody   = 200
)

// APIError carries the provider's HTTP status for callers that need to
// distinguish throttling from hard failures.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("groq audio api status %d: %s", e.StatusCode, e.Message)
}

// HTTPStatus reports the provider status code.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// GroqTranscriber implements Transcriber against Groq's
// audio/transcriptions endpoint.
type GroqTranscriber struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewGroqTranscriber constructs a transcriber for one API key. Empty
// baseURL and model select the public endpoint and default model.
func NewGroqTranscriber(apiKey, baseURL, model string) (*GroqTranscriber, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("speech: api key is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultSTTModel
	}
	return &GroqTranscriber{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: requestTimeout},
	}, nil
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads one recording as multipart form data and returns
// the recognized text. Callers decide how to treat an empty result.
func (t *GroqTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("speech: empty audio")
	}
	if strings.TrimSpace(filename) == "" {
		filename = "turn.wav"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audio); err != nil {
		return "", err
	}
	if err := writer.WriteField("model", t.model); err != nil {
		return "", err
	}
	if err := writer.WriteField("response_format", "json"); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Message: truncate(string(raw), maxErrorBody)}
	}

	var parsed transcriptionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("speech: transcription parse: %w", err)
	}
	return strings.TrimSpace(parsed.Text), nil
}

// GroqSynthesizer implements Synthesizer against Groq's audio/speech
// endpoint.
type GroqSynthesizer struct {
	apiKey     string
	baseURL    string
	model      string
	voice      string
	httpClient *http.Client
}

// NewGroqSynthesizer constructs a synthesizer for one API key. Empty
// baseURL, model and voice select the public endpoint and defaults.
func NewGroqSynthesizer(apiKey, baseURL, model, voice string) (*GroqSynthesizer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("speech: api key is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultTTSModel
	}
	if strings.TrimSpace(voice) == "" {
		voice = DefaultVoice
	}
	return &GroqSynthesizer{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		voice:      voice,
		httpClient: &http.Client{Timeout: requestTimeout},
	}, nil
}

type speechRequest struct {
	Model          string `json:"model"`
	Voice          string `json:"voice"`
	Input          string `json:"input"`
	ResponseFormat string `json:"response_format"`
}

// Synthesize renders one utterance as WAV bytes.
func (s *GroqSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("speech: empty text")
	}

	payload, err := json.Marshal(speechRequest{
		Model:          s.model,
		Voice:          s.voice,
		Input:          text,
		ResponseFormat: "wav",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: truncate(string(raw), maxErrorBody)}
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("speech: empty audio response")
	}
	return raw, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ Transcriber = (*GroqTranscriber)(nil)
var _ Synthesizer = (*GroqSynthesizer)(nil)
