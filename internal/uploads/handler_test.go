package uploads

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
)

// Browsers cannot be forced to send Content-Length on the PUT, so the
// presigned URL must not pin it.
func TestPresignSignedHeadersExcludeContentLength(t *testing.T) {
	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider("AKID", "SECRET", "")),
	}
	client := s3.NewFromConfig(cfg)
	presigner := s3.NewPresignClient(client)

	input := presignInput("bucket", "documents/google:1/doc-1/resume.pdf")
	out, err := presigner.PresignPutObject(context.Background(), input)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}

	parsed, err := url.Parse(out.URL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}

	signed := parsed.Query().Get("X-Amz-SignedHeaders")
	if signed == "" {
		t.Fatalf("expected X-Amz-SignedHeaders")
	}
	if strings.Contains(signed, "content-length") {
		t.Fatalf("unexpected content-length in signed headers: %s", signed)
	}
	if !strings.Contains(signed, "host") {
		t.Fatalf("expected host in signed headers: %s", signed)
	}
}

func newPresignRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"))
	return router
}

func postPresign(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/presign", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestPresignRejectsMissingFileName(t *testing.T) {
	router := newPresignRouter()
	resp := postPresign(t, router, `{"contentType":"application/pdf","sizeBytes":1024}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestPresignRejectsDisallowedContentType(t *testing.T) {
	router := newPresignRouter()
	resp := postPresign(t, router, `{"fileName":"resume.exe","contentType":"application/octet-stream","sizeBytes":1024}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestPresignRejectsOversizedFile(t *testing.T) {
	router := newPresignRouter()
	resp := postPresign(t, router, `{"fileName":"resume.pdf","contentType":"application/pdf","sizeBytes":10485761}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestPresignRequiresBucketConfig(t *testing.T) {
	t.Setenv("UPLOADS_S3_BUCKET", "")
	router := newPresignRouter()
	resp := postPresign(t, router, `{"fileName":"resume.pdf","contentType":"application/pdf","sizeBytes":1024}`)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}
