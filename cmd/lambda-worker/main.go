package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=amd64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"interview-backend/internal/bootstrap"
	"interview-backend/internal/shared/config"
	"interview-backend/internal/shared/metrics"
	"interview-backend/internal/shared/telemetry"
	"interview-backend/internal/workerproc"
)

var (
	initOnce sync.Once
	initErr  error
	app      *bootstrap.App
)

func initApp() {
	cfg := config.Load()
	built, err := bootstrap.Build(cfg)
	if err != nil {
		initErr = err
		return
	}
	app = built
}

// handler processes an SQS batch. Only processing failures are reported
// back for redrive; malformed payloads are dropped since retrying them
// can never succeed.
func handler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		log.Printf("bootstrap error: %v", initErr)
		failures := make([]events.SQSBatchItemFailure, 0, len(event.Records))
		for _, record := range event.Records {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
		return events.SQSEventResponse{BatchItemFailures: failures}, initErr
	}

	failures := make([]events.SQSBatchItemFailure, 0)
	for _, record := range event.Records {
		metrics.IncWorkerJobReceived()
		err := workerproc.HandleMessage(ctx, app, record.Body)
		if err == nil {
			metrics.IncWorkerJobCompleted()
			continue
		}

		var procErr workerproc.ErrProcess
		if errors.As(err, &procErr) {
			telemetry.Error("worker.interview.failed", map[string]any{
				"interview_id":   procErr.InterviewID,
				"request_id":     procErr.RequestID,
				"sqs_message_id": record.MessageId,
				"error":          err.Error(),
			})
			metrics.IncWorkerJobFailed()
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
			continue
		}

		telemetry.Error("worker.interview.discarded", map[string]any{
			"sqs_message_id": record.MessageId,
			"body_len":       len(record.Body),
			"error":          err.Error(),
		})
		metrics.IncWorkerJobDiscarded()
	}

	return events.SQSEventResponse{BatchItemFailures: failures}, nil
}

func main() {
	lambda.Start(handler)
}
