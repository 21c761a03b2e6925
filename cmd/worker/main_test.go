package main

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"interview-backend/internal/bootstrap"
	"interview-backend/internal/queue"
)

func newTestRunner(client queueAPI, svc bootstrap.InterviewProcessor) *runner {
	return &runner{
		client:    client,
		queueURL:  "queue",
		processor: svc,
		slots:     make(chan struct{}, 1),
	}
}

type fakeSQS struct {
	deleted []string
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	_ = ctx
	_ = params
	_ = optFns
	return &sqs.ReceiveMessageOutput{}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	_ = ctx
	_ = optFns
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

type fakeProcessor struct {
	err       error
	processed []string
}

func (f *fakeProcessor) ProcessInterview(ctx context.Context, sessionID string) error {
	_ = ctx
	f.processed = append(f.processed, sessionID)
	return f.err
}

func TestWorkerDeletesMessageOnSuccess(t *testing.T) {
	client := &fakeSQS{}
	svc := &fakeProcessor{}
	msgBody, _ := queue.EncodeMessage(queue.Message{InterviewID: "interview-1", RequestID: "req-1"})
	msg := sqstypes.Message{
		MessageId:     aws.String("m1"),
		ReceiptHandle: aws.String("r1"),
		Body:          aws.String(string(msgBody)),
		Attributes:    map[string]string{"ApproximateReceiveCount": "1"},
	}

	newTestRunner(client, svc).handle(context.Background(), msg)

	if len(svc.processed) != 1 || svc.processed[0] != "interview-1" {
		t.Fatalf("expected interview-1 processed, got %v", svc.processed)
	}
	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
}

func TestWorkerDoesNotDeleteOnFailure(t *testing.T) {
	client := &fakeSQS{}
	svc := &fakeProcessor{err: errors.New("boom")}
	msgBody, _ := queue.EncodeMessage(queue.Message{InterviewID: "interview-2", RequestID: "req-2"})
	msg := sqstypes.Message{
		MessageId:     aws.String("m2"),
		ReceiptHandle: aws.String("r2"),
		Body:          aws.String(string(msgBody)),
	}

	newTestRunner(client, svc).handle(context.Background(), msg)

	if len(client.deleted) != 0 {
		t.Fatalf("expected no delete, got %d", len(client.deleted))
	}
}

func TestWorkerDeletesOnInvalidJSON(t *testing.T) {
	client := &fakeSQS{}
	svc := &fakeProcessor{}
	msg := sqstypes.Message{
		MessageId:     aws.String("m3"),
		ReceiptHandle: aws.String("r3"),
		Body:          aws.String("{bad-json"),
	}

	newTestRunner(client, svc).handle(context.Background(), msg)

	if len(svc.processed) != 0 {
		t.Fatalf("expected no processing, got %v", svc.processed)
	}
	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
}

func TestWorkerDiscardsMessageMissingInterviewID(t *testing.T) {
	client := &fakeSQS{}
	svc := &fakeProcessor{}
	msgBody, _ := queue.EncodeMessage(queue.Message{RequestID: "req-4"})
	msg := sqstypes.Message{
		MessageId:     aws.String("m4"),
		ReceiptHandle: aws.String("r4"),
		Body:          aws.String(string(msgBody)),
	}

	newTestRunner(client, svc).handle(context.Background(), msg)

	if len(svc.processed) != 0 {
		t.Fatalf("expected no processing, got %v", svc.processed)
	}
	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
}
