package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/shared/telemetry"
)

func TestRequestLogCarriesCorrelationFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	restore := telemetry.SetOutput(&buf)
	defer restore()

	router := gin.New()
	router.Use(RequestID(), Auth("dev"), Logging())
	router.GET("/test", func(c *gin.Context) {
		c.Set("documentId", "doc-1")
		c.Set("interviewId", "interview-1")
		c.Set("statusTransition", "setup->ready")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Guest-Id", "guest1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) == 0 || lines[0] == "" {
		t.Fatal("no log output")
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &payload); err != nil {
		t.Fatalf("decode log line: %v", err)
	}

	want := map[string]any{
		"user_id":           "guest:guest1",
		"document_id":       "doc-1",
		"interview_id":      "interview-1",
		"status_transition": "setup->ready",
		"is_guest":          true,
	}
	for key, expect := range want {
		if got := payload[key]; got != expect {
			t.Fatalf("%s = %v, want %v", key, got, expect)
		}
	}
	for _, key := range []string{"request_id", "duration_ms", "status", "client_ip"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field %s", key)
		}
	}
	if payload["status"] != float64(http.StatusOK) {
		t.Fatalf("status = %v, want 200", payload["status"])
	}
}

func TestPreflightRequestsAreNotLogged(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	restore := telemetry.SetOutput(&buf)
	defer restore()

	router := gin.New()
	router.Use(Logging())
	router.OPTIONS("/test", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodOptions, "/test", nil))

	if strings.Contains(buf.String(), "request.complete") {
		t.Fatalf("preflight was logged: %s", buf.String())
	}
}
