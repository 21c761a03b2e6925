package reports

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/shared/server/middleware"
	"interview-backend/internal/shared/server/respond"
	"interview-backend/internal/shared/storage/object"
)

// Handler wires HTTP handlers to the report artifact service.
type Handler struct {
	Svc   *Service
	Repo  Repo
	Store object.ObjectStore
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, repo Repo, store object.ObjectStore) *Handler {
	return &Handler{Svc: svc, Repo: repo, Store: store}
}

// RegisterRoutes attaches report artifact routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/interviews/:id/report/artifacts", h.create)
	rg.GET("/report-artifacts", h.list)
	rg.GET("/report-artifacts/:id", h.get)
	rg.GET("/report-artifacts/:id/download", h.download)
}

type createRequest struct {
	Format string `json:"format"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	sessionID := c.Param("id")
	if sessionID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "interview id is required", nil)
		return
	}

	req := createRequest{}
	if err := decodeOptionalJSON(c.Request.Body, &req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	artifact, err := h.Svc.Render(c.Request.Context(), userID, sessionID, req.Format)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid input", nil)
		case errors.Is(err, ErrUnsupportedFormat):
			respond.Error(c, http.StatusBadRequest, "unsupported_format", "format must be markdown or text", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "interview not found", nil)
		case errors.Is(err, ErrNotReady):
			respond.Error(c, http.StatusConflict, "report_not_ready", "interview has not finished", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render report", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, toArtifactResponse(artifact))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}

	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	artifacts, err := h.Repo.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list report artifacts", nil)
		return
	}

	resp := make([]ArtifactResponse, 0, len(artifacts))
	for _, artifact := range artifacts {
		resp = append(resp, toArtifactResponse(artifact))
	}

	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	artifactID := c.Param("id")
	if artifactID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "artifact id is required", nil)
		return
	}

	artifact, err := h.Repo.GetByID(c.Request.Context(), userID, artifactID)
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "access denied", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "report artifact not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch report artifact", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toArtifactResponse(artifact))
}

func (h *Handler) download(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		return
	}

	artifactID := c.Param("id")
	if artifactID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "artifact id is required", nil)
		return
	}

	artifact, err := h.Repo.GetByID(c.Request.Context(), userID, artifactID)
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "access denied", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "report artifact not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch report artifact", nil)
		}
		return
	}

	reader, err := h.Store.Open(c.Request.Context(), artifact.StorageKey)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load report artifact", nil)
		return
	}
	defer reader.Close()

	c.Header("Content-Type", artifact.MimeType)
	c.Header("Content-Disposition", "attachment; filename=\""+artifact.FileName+"\"")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}

func decodeOptionalJSON(body io.ReadCloser, out any) error {
	if body == nil {
		return nil
	}
	errInvalidJSON := errors.New("invalid json body")
	decoder := json.NewDecoder(body)
	if err := decoder.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errInvalidJSON
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return errInvalidJSON
	}
	return nil
}
