// Package uploads issues presigned S3 PUT URLs so browsers push source
// documents straight to the bucket. The API sees only metadata afterward,
// registered through POST /documents/from-s3.
package uploads

import (
	"errors"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"interview-backend/internal/shared/server/middleware"
	"interview-backend/internal/shared/server/respond"
	"interview-backend/internal/shared/telemetry"
	"interview-backend/internal/shared/util"
)

const (
	maxUploadBytes       = 5 << 20
	presignExpires       = 15 * time.Minute
	defaultRegion        = "us-east-1"
	defaultUploadsPrefix = "documents/"
)

var allowedContentTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

func RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads/presign", presign)
}

// settings are read from the environment on every request, so bucket or
// prefix changes need no restart.
type settings struct {
	region string
	bucket string
	prefix string
}

func loadSettings() (settings, error) {
	s := settings{
		region: strings.TrimSpace(os.Getenv("AWS_REGION")),
		bucket: strings.TrimSpace(os.Getenv("UPLOADS_S3_BUCKET")),
		prefix: strings.TrimSpace(os.Getenv("UPLOADS_S3_PREFIX")),
	}
	if s.bucket == "" {
		return settings{}, errors.New("UPLOADS_S3_BUCKET is required")
	}
	if s.region == "" {
		s.region = defaultRegion
	}
	if s.prefix == "" {
		s.prefix = defaultUploadsPrefix
	}
	if !strings.HasSuffix(s.prefix, "/") {
		s.prefix += "/"
	}
	return s, nil
}

type presignRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	MimeType    string `json:"mimeType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

func (r *presignRequest) validate() string {
	r.FileName = strings.TrimSpace(r.FileName)
	r.ContentType = strings.TrimSpace(r.ContentType)

	if r.FileName == "" {
		return "fileName is required"
	}
	if _, ok := allowedContentTypes[r.ContentType]; !ok {
		return "contentType is not allowed"
	}
	if r.SizeBytes <= 0 || r.SizeBytes > maxUploadBytes {
		return "sizeBytes exceeds limit"
	}
	return ""
}

type presignResponse struct {
	UploadURL        string `json:"uploadUrl"`
	S3Key            string `json:"s3Key"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
}

func presign(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if msg := req.validate(); msg != "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", msg, nil)
		return
	}
	sanitized, err := util.SanitizeFileName(req.FileName)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid fileName", nil)
		return
	}

	cfg, err := loadSettings()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "uploads not configured", nil)
		return
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(c.Request.Context(), awsconfig.WithRegion(cfg.region))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to initialize uploader", nil)
		return
	}
	presigner := s3.NewPresignClient(s3.NewFromConfig(awsCfg))

	userID := middleware.UserIDFromContext(c)
	key := path.Join(cfg.prefix, userID, uuid.NewString(), uuid.NewString()+"-"+sanitized)

	out, err := presigner.PresignPutObject(c.Request.Context(), presignInput(cfg.bucket, key), func(opts *s3.PresignOptions) {
		opts.Expires = presignExpires
	})
	if err != nil {
		telemetry.Error("uploads.presign.failed", map[string]any{
			"err":         err.Error(),
			"bucket":      cfg.bucket,
			"key":         key,
			"contentType": req.ContentType,
			"sizeBytes":   req.SizeBytes,
			"request_id":  c.GetString("requestId"),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate upload url", nil)
		return
	}

	respond.JSON(c, http.StatusOK, presignResponse{
		UploadURL:        out.URL,
		S3Key:            key,
		ExpiresInSeconds: int64(presignExpires.Seconds()),
	})
}

// presignInput deliberately omits Content-Length: browsers cannot be made
// to sign it on the PUT.
func presignInput(bucket, key string) *s3.PutObjectInput {
	return &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
}
