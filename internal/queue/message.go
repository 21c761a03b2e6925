package queue

import (
	"encoding/json"
	"time"
)

// MessageVersion is stamped on outgoing payloads so consumers can
// reject formats they do not understand.
const MessageVersion = 1

// Message is the job payload routed through the interview queue.
type Message struct {
	InterviewID string `json:"interviewId"`
	RequestID   string `json:"requestId"`
	EnqueuedAt  string `json:"enqueuedAt"`
	Version     int    `json:"version"`
}

// NewMessage builds a versioned message for an interview, stamping the
// enqueue time.
func NewMessage(interviewID, requestID string) Message {
	return Message{
		InterviewID: interviewID,
		RequestID:   requestID,
		EnqueuedAt:  time.Now().UTC().Format(time.RFC3339),
		Version:     MessageVersion,
	}
}

// EncodeMessage renders msg in the JSON wire form.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses the JSON wire form.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
