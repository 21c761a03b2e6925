// The worker drains the interview setup queue. Each message names an
// interview whose documents must be extracted, profiled and turned into a
// question script before the candidate can start answering.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"interview-backend/internal/bootstrap"
	"interview-backend/internal/interviews"
	"interview-backend/internal/shared/config"
	"interview-backend/internal/shared/metrics"
	"interview-backend/internal/shared/telemetry"
	"interview-backend/internal/workerproc"
)

const (
	defaultVisibilitySeconds  = 1200
	defaultWorkerConcurrency  = 4
	defaultShutdownTimeoutSec = 30

	receiveBatchSize  = 10
	longPollSeconds   = 20
	receiveCountAttr  = "ApproximateReceiveCount"
)

type queueAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// runner owns the poll loop: it long-polls SQS, fans messages out to a
// bounded set of goroutines and tracks them for graceful shutdown.
type runner struct {
	client     queueAPI
	queueURL   string
	processor  bootstrap.InterviewProcessor
	visibility int32
	slots      chan struct{}
	wg         sync.WaitGroup
}

func main() {
	cfg := config.Load()

	queueURL := strings.TrimSpace(cfg.QueueURL)
	if queueURL == "" {
		log.Fatal("IV_SQS_QUEUE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var loadOpts []func(*awsconfig.LoadOptions) error
	if region := strings.TrimSpace(cfg.AWSRegion); region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	if app.InterviewProcessor == nil {
		log.Fatal("interview processor not configured")
	}

	concurrency := intFromEnv("IV_WORKER_CONCURRENCY", defaultWorkerConcurrency)
	if concurrency < 1 {
		concurrency = 1
	}
	r := &runner{
		client:     sqs.NewFromConfig(awsCfg),
		queueURL:   queueURL,
		processor:  app.InterviewProcessor,
		visibility: int32(intFromEnv("IV_SQS_VISIBILITY_TIMEOUT_SECONDS", defaultVisibilitySeconds)),
		slots:      make(chan struct{}, concurrency),
	}

	log.Printf("worker started queue=%s concurrency=%d visibility=%ds", queueURL, concurrency, r.visibility)
	r.poll(ctx)

	shutdownTimeout := time.Duration(intFromEnv("IV_SHUTDOWN_TIMEOUT_SECONDS", defaultShutdownTimeoutSec)) * time.Second
	log.Printf("shutdown requested, waiting up to %s for in-flight jobs", shutdownTimeout)
	r.drain(shutdownTimeout)
}

func (r *runner) poll(ctx context.Context) {
	for ctx.Err() == nil {
		out, err := r.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(r.queueURL),
			MaxNumberOfMessages: receiveBatchSize,
			WaitTimeSeconds:     longPollSeconds,
			VisibilityTimeout:   r.visibility,
			AttributeNames:      []sqstypes.QueueAttributeName{sqstypes.QueueAttributeName(receiveCountAttr)},
		})
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			log.Printf("receive message: %v", err)
			continue
		}

		for _, msg := range out.Messages {
			if !r.acquireSlot(ctx) {
				return
			}
			metrics.IncWorkerJobReceived()
			r.wg.Add(1)
			go func(m sqstypes.Message) {
				defer r.wg.Done()
				defer func() { <-r.slots }()
				r.handle(ctx, m)
			}(msg)
		}
	}
}

func (r *runner) acquireSlot(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case r.slots <- struct{}{}:
		return true
	}
}

// drain waits for in-flight jobs, but not past the shutdown timeout; jobs
// cut off here reappear after the visibility timeout.
func (r *runner) drain(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		log.Printf("shutdown timeout reached; exiting with in-flight jobs")
	}
}

// handle runs one queued interview. Unparseable payloads are deleted so
// they never redrive; processing failures leave the message for the
// visibility timeout to retry.
func (r *runner) handle(ctx context.Context, msg sqstypes.Message) {
	decoded, meta, err := workerproc.ParseMessage(aws.ToString(msg.Body))
	if err != nil {
		r.discard(ctx, msg, meta, err)
		return
	}

	telemetry.Info("worker.interview.received", msgFields(msg, decoded.InterviewID, decoded.RequestID))

	procCtx := interviews.WithRequestID(ctx, decoded.RequestID)
	if err := r.processor.ProcessInterview(procCtx, decoded.InterviewID); err != nil {
		fields := msgFields(msg, decoded.InterviewID, decoded.RequestID)
		fields["error"] = err.Error()
		telemetry.Error("worker.interview.failed", fields)
		metrics.IncWorkerJobFailed()
		return
	}

	if err := r.remove(ctx, msg); err != nil {
		fields := msgFields(msg, decoded.InterviewID, decoded.RequestID)
		fields["error"] = err.Error()
		telemetry.Error("worker.interview.delete_failed", fields)
		return
	}
	telemetry.Info("worker.interview.completed", msgFields(msg, decoded.InterviewID, decoded.RequestID))
	metrics.IncWorkerJobCompleted()
}

// discard logs why the payload cannot be processed, then deletes it.
func (r *runner) discard(ctx context.Context, msg sqstypes.Message, meta workerproc.MessageMeta, parseErr error) {
	fields := msgFields(msg, "", "")
	fields["body_len"] = meta.BodyLen
	if meta.BodySHA != "" {
		fields["body_sha256"] = meta.BodySHA
	}

	var (
		empty   workerproc.ErrEmptyBody
		badJSON workerproc.ErrDecode
		noID    workerproc.ErrMissingInterviewID
	)
	event := "worker.interview.decode_failed"
	switch {
	case errors.As(parseErr, &empty):
		event = "worker.interview.empty_body"
	case errors.As(parseErr, &noID):
		event = "worker.interview.missing_id"
		if strings.TrimSpace(noID.RequestID) != "" {
			fields["request_id"] = noID.RequestID
		}
	case errors.As(parseErr, &badJSON):
		fields["error"] = badJSON.Error()
	default:
		fields["error"] = parseErr.Error()
	}
	telemetry.Error(event, fields)

	if err := r.remove(ctx, msg); err != nil {
		fields := msgFields(msg, "", "")
		fields["error"] = err.Error()
		telemetry.Error("worker.interview.delete_failed", fields)
		return
	}
	metrics.IncWorkerJobDiscarded()
}

func (r *runner) remove(ctx context.Context, msg sqstypes.Message) error {
	receipt := aws.ToString(msg.ReceiptHandle)
	if receipt == "" {
		return errors.New("missing receipt handle")
	}
	_, err := r.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(r.queueURL),
		ReceiptHandle: aws.String(receipt),
	})
	return err
}

func msgFields(msg sqstypes.Message, interviewID, requestID string) map[string]any {
	fields := map[string]any{
		"sqs_message_id": aws.ToString(msg.MessageId),
		"receive_count":  receiveCount(msg),
	}
	if interviewID != "" {
		fields["interview_id"] = interviewID
	}
	if strings.TrimSpace(requestID) != "" {
		fields["request_id"] = requestID
	}
	return fields
}

func receiveCount(msg sqstypes.Message) int {
	n, _ := strconv.Atoi(msg.Attributes[receiveCountAttr])
	return n
}

func intFromEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
