package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	pipelineStartedTotal   atomic.Uint64
	pipelineCompletedTotal atomic.Uint64
	pipelineFailedTotal    atomic.Uint64

	turnsProcessedTotal atomic.Uint64
	followUpsAskedTotal atomic.Uint64
	reportsBuiltTotal   atomic.Uint64

	llmCallsTotal     atomic.Uint64
	llmRetriesTotal   atomic.Uint64
	llmRotationsTotal atomic.Uint64

	workerJobsReceivedTotal  atomic.Uint64
	workerJobsCompletedTotal atomic.Uint64
	workerJobsFailedTotal    atomic.Uint64
	workerJobsDiscardedTotal atomic.Uint64

	pipelineDuration = newHistogram([]float64{500, 1000, 2000, 5000, 10000, 20000, 30000, 60000, 120000})
	llmCallDuration  = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncPipelineStarted increments the setup pipeline started counter.
func IncPipelineStarted() {
	pipelineStartedTotal.Add(1)
}

// IncPipelineCompleted increments the setup pipeline completed counter.
func IncPipelineCompleted() {
	pipelineCompletedTotal.Add(1)
}

// IncPipelineFailed increments the setup pipeline failed counter.
func IncPipelineFailed() {
	pipelineFailedTotal.Add(1)
}

// IncTurnProcessed increments the interview turns counter.
func IncTurnProcessed() {
	turnsProcessedTotal.Add(1)
}

// IncFollowUpAsked increments the follow-up questions counter.
func IncFollowUpAsked() {
	followUpsAskedTotal.Add(1)
}

// IncReportBuilt increments the hiring reports counter.
func IncReportBuilt() {
	reportsBuiltTotal.Add(1)
}

// IncLLMCall increments the model invocation counter.
func IncLLMCall() {
	llmCallsTotal.Add(1)
}

// IncLLMRetry increments the model retry counter.
func IncLLMRetry() {
	llmRetriesTotal.Add(1)
}

// IncLLMRotation increments the credential rotation counter.
func IncLLMRotation() {
	llmRotationsTotal.Add(1)
}

// IncWorkerJobReceived increments the queue jobs received counter.
func IncWorkerJobReceived() {
	workerJobsReceivedTotal.Add(1)
}

// IncWorkerJobCompleted increments the queue jobs completed counter.
func IncWorkerJobCompleted() {
	workerJobsCompletedTotal.Add(1)
}

// IncWorkerJobFailed increments the queue jobs failed counter.
func IncWorkerJobFailed() {
	workerJobsFailedTotal.Add(1)
}

// IncWorkerJobDiscarded increments the counter for jobs dropped as
// unrecoverable (empty or malformed payloads).
func IncWorkerJobDiscarded() {
	workerJobsDiscardedTotal.Add(1)
}

// ObservePipelineDurationMs records a pipeline run duration in milliseconds.
func ObservePipelineDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	pipelineDuration.Observe(value)
}

// ObserveLLMCallDurationMs records a model call duration in milliseconds.
func ObserveLLMCallDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	llmCallDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "interview_pipeline_started_total", "Total setup pipelines started", pipelineStartedTotal.Load())
	writeCounter(&buf, "interview_pipeline_completed_total", "Total setup pipelines completed", pipelineCompletedTotal.Load())
	writeCounter(&buf, "interview_pipeline_failed_total", "Total setup pipelines failed", pipelineFailedTotal.Load())
	writeCounter(&buf, "interview_turns_total", "Total interview turns processed", turnsProcessedTotal.Load())
	writeCounter(&buf, "interview_follow_ups_total", "Total follow-up questions asked", followUpsAskedTotal.Load())
	writeCounter(&buf, "interview_reports_total", "Total hiring reports built", reportsBuiltTotal.Load())
	writeCounter(&buf, "llm_calls_total", "Total model invocations", llmCallsTotal.Load())
	writeCounter(&buf, "llm_retries_total", "Total model call retries", llmRetriesTotal.Load())
	writeCounter(&buf, "llm_rotations_total", "Total credential rotations on throttle", llmRotationsTotal.Load())
	writeCounter(&buf, "worker_jobs_received_total", "Total queue jobs received", workerJobsReceivedTotal.Load())
	writeCounter(&buf, "worker_jobs_completed_total", "Total queue jobs completed", workerJobsCompletedTotal.Load())
	writeCounter(&buf, "worker_jobs_failed_total", "Total queue jobs failed", workerJobsFailedTotal.Load())
	writeCounter(&buf, "worker_jobs_discarded_total", "Total queue jobs dropped as unrecoverable", workerJobsDiscardedTotal.Load())
	writeHistogram(&buf, "interview_pipeline_duration_ms", "Setup pipeline duration in milliseconds", pipelineDuration.Snapshot())
	writeHistogram(&buf, "llm_call_duration_ms", "Model call duration in milliseconds", llmCallDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe records one value. Each observation lands in exactly one
// bucket slot; Render accumulates them into the cumulative form the
// exposition format requires.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
