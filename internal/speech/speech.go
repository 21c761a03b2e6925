// Package speech provides the voice collaborators of the interview
// loop: transcription of candidate audio and synthesis of interviewer
// utterances, both backed by Groq's audio endpoints.
package speech

import (
	"context"
	"errors"
)

// ErrDisabled is returned by a synthesizer that is configured off.
// Callers treat it as "no audio available", not as a failure.
var ErrDisabled = errors.New("speech: synthesis disabled")

// Transcriber converts one audio recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// Synthesizer converts one utterance into audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Disabled is a Synthesizer that always reports ErrDisabled. It is
// wired when TTS is switched off so the turn controller keeps a single
// code path.
type Disabled struct{}

// Synthesize implements Synthesizer.
func (Disabled) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return nil, ErrDisabled
}

var _ Synthesizer = Disabled{}
