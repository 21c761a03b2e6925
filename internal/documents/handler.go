package documents

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/shared/server/middleware"
	"interview-backend/internal/shared/server/respond"
)

const (
	maxUploadSize = 10 << 20 // 10MB

	defaultPageSize = 20
	maxPageSize     = 50
)

// Handler exposes document upload, registration and lookup over HTTP.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
	rg.POST("/documents/from-s3", h.createFromS3)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.DELETE("/documents/:id", h.delete)
}

// respondDocError maps service errors onto the shared error envelope.
func respondDocError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	kind := c.PostForm("kind")
	if kind == "" {
		kind = KindResume
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	doc, err := h.Svc.Upload(c.Request.Context(), userID, kind, fileHeader.Filename, file)
	if err != nil {
		respondDocError(c, err, "failed to upload document")
		return
	}
	respond.JSON(c, http.StatusCreated, doc.response())
}

type createFromS3Request struct {
	Kind             string `json:"kind"`
	S3Key            string `json:"s3Key"`
	OriginalFileName string `json:"originalFileName"`
	ContentType      string `json:"contentType"`
	SizeBytes        int64  `json:"sizeBytes"`
}

func (r *createFromS3Request) validate() string {
	r.Kind = strings.TrimSpace(r.Kind)
	r.S3Key = strings.TrimSpace(r.S3Key)
	r.OriginalFileName = strings.TrimSpace(r.OriginalFileName)
	r.ContentType = strings.TrimSpace(r.ContentType)

	if r.Kind == "" {
		r.Kind = KindResume
	}
	switch {
	case r.S3Key == "":
		return "s3Key is required"
	case r.OriginalFileName == "":
		return "originalFileName is required"
	case r.ContentType == "":
		return "contentType is required"
	case r.SizeBytes <= 0:
		return "sizeBytes must be positive"
	}
	return ""
}

// createFromS3 registers a document the client pushed straight to S3 with a
// presigned URL, so the API never proxies the bytes.
func (h *Handler) createFromS3(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createFromS3Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if msg := req.validate(); msg != "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", msg, nil)
		return
	}

	doc, err := h.Svc.CreateFromS3(c.Request.Context(), userID, req.Kind, req.S3Key, req.OriginalFileName, req.ContentType, req.SizeBytes)
	if err != nil {
		respondDocError(c, err, "failed to create document")
		return
	}
	respond.JSON(c, http.StatusCreated, doc.response())
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	doc, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondDocError(c, err, "failed to fetch document")
		return
	}
	respond.JSON(c, http.StatusOK, doc.response())
}

func (h *Handler) delete(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondDocError(c, err, "failed to delete document")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) list(c *gin.Context) {
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view history", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	limit, offset := pageParams(c)

	docs, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondDocError(c, err, "failed to list documents")
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, doc.response())
	}
	respond.JSON(c, http.StatusOK, resp)
}

// pageParams reads limit and offset, clamping limit to [0, maxPageSize] and
// offset to >= 0. Unparseable values fall back to the defaults.
func pageParams(c *gin.Context) (limit, offset int) {
	limit = defaultPageSize
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			offset = parsed
		}
	}
	return limit, offset
}
