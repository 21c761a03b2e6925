// Package workerproc decodes queued setup jobs and hands them to the
// interview pipeline. Both the SQS poller and the Lambda consumer share it
// so payload validation behaves the same in either runtime.
package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"interview-backend/internal/bootstrap"
	"interview-backend/internal/interviews"
	"interview-backend/internal/queue"
)

// MessageMeta describes the raw payload for log lines: its length plus a
// digest so a bad producer can be traced without logging the body.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 digest.
func ComputeMeta(body string) MessageMeta {
	meta := MessageMeta{BodyLen: len(body)}
	if body != "" {
		sum := sha256.Sum256([]byte(body))
		meta.BodySHA = hex.EncodeToString(sum[:])
	}
	return meta
}

// ErrEmptyBody marks a blank queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (ErrEmptyBody) Error() string { return "queue payload is empty" }

// ErrDecode marks a payload that is not valid message JSON.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode queue payload"
	}
	return "decode queue payload: " + e.Err.Error()
}

func (e ErrDecode) Unwrap() error { return e.Err }

// ErrMissingInterviewID marks a decoded payload without an interview id.
type ErrMissingInterviewID struct {
	Meta      MessageMeta
	RequestID string
}

func (ErrMissingInterviewID) Error() string { return "queue payload has no interview id" }

// ErrProcess wraps a pipeline failure for a successfully parsed payload.
type ErrProcess struct {
	InterviewID string
	RequestID   string
	Err         error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process interview"
	}
	return "process interview: " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// ParseMessage decodes and validates a queue payload. The returned meta is
// populated even on failure so callers can log it.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}
	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if strings.TrimSpace(msg.InterviewID) == "" {
		return msg, meta, ErrMissingInterviewID{Meta: meta, RequestID: msg.RequestID}
	}
	return msg, meta, nil
}

type parsedMessageKey struct{}

// WithParsedMessage stashes an already-decoded message so HandleMessage
// skips re-parsing when the caller validated the payload up front.
func WithParsedMessage(ctx context.Context, msg queue.Message) context.Context {
	return context.WithValue(ctx, parsedMessageKey{}, msg)
}

func parsedMessage(ctx context.Context) (queue.Message, bool) {
	if ctx == nil {
		return queue.Message{}, false
	}
	msg, ok := ctx.Value(parsedMessageKey{}).(queue.Message)
	return msg, ok
}

var errNoProcessor = errors.New("interview processor not configured")

func resolveProcessor(app *bootstrap.App) (bootstrap.InterviewProcessor, error) {
	if app == nil {
		return nil, errNoProcessor
	}
	if app.InterviewProcessor != nil {
		return app.InterviewProcessor, nil
	}
	if app.InterviewService != nil {
		return app.InterviewService, nil
	}
	return nil, errNoProcessor
}

// HandleMessage runs the setup pipeline for one queued interview: parse the
// payload, thread the producer's request id through the context, process.
func HandleMessage(ctx context.Context, app *bootstrap.App, body string) error {
	processor, err := resolveProcessor(app)
	if err != nil {
		return err
	}

	msg, ok := parsedMessage(ctx)
	if !ok {
		if msg, _, err = ParseMessage(body); err != nil {
			return err
		}
	}
	if strings.TrimSpace(msg.InterviewID) == "" {
		return ErrMissingInterviewID{Meta: ComputeMeta(body), RequestID: msg.RequestID}
	}

	procCtx := interviews.WithRequestID(ctx, msg.RequestID)
	if err := processor.ProcessInterview(procCtx, msg.InterviewID); err != nil {
		return ErrProcess{InterviewID: msg.InterviewID, RequestID: msg.RequestID, Err: err}
	}
	return nil
}
