package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/shared/telemetry"
)

// Logging emits one request.complete line per request. OPTIONS
// preflights are skipped to keep CORS noise out of the logs.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		telemetry.Info("request.complete", requestFields(c, time.Since(start)))
	}
}

// requestFields gathers the per-request log fields. Handlers stash
// documentId, interviewId and statusTransition on the context so the
// access line correlates with domain events.
func requestFields(c *gin.Context, latency time.Duration) map[string]any {
	return map[string]any{
		"request_id":        RequestIDFromContext(c),
		"method":            c.Request.Method,
		"path":              c.Request.URL.Path,
		"status":            c.Writer.Status(),
		"status_transition": c.GetString("statusTransition"),
		"duration_ms":       float64(latency.Microseconds()) / 1000.0,
		"user_id":           UserIDFromContext(c),
		"document_id":       c.GetString("documentId"),
		"interview_id":      c.GetString("interviewId"),
		"is_guest":          IsGuest(c),
		"client_ip":         c.ClientIP(),
		"user_agent":        c.Request.UserAgent(),
	}
}
