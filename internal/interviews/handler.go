package interviews

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/llm"
	"interview-backend/internal/shared/server/middleware"
	"interview-backend/internal/shared/server/respond"
	"interview-backend/internal/usage"
)

// maxAudioBytes caps one uploaded audio turn.
const maxAudioBytes = 10 << 20

// Transcriber converts candidate audio into text for the turn
// controller.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// Handler wires HTTP handlers to the interview service.
type Handler struct {
	Svc *Service
	STT Transcriber
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, stt Transcriber) *Handler {
	return &Handler{Svc: svc, STT: stt}
}

// RegisterRoutes attaches interview routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/interviews", h.createInterview)
	rg.GET("/interviews", h.listInterviews)
	rg.GET("/interviews/:id", h.getInterview)
	rg.POST("/interviews/:id/start", h.startInterview)
	rg.POST("/interviews/:id/turns", h.processTurn)
	rg.GET("/interviews/:id/report", h.getReport)
}

// RegisterDebugRoutes attaches the dev-only session dump.
func (h *Handler) RegisterDebugRoutes(rg *gin.RouterGroup) {
	rg.GET("/interviews", h.debugInterviews)
}

type createRequest struct {
	CVText       string `json:"cvText"`
	JDText       string `json:"jdText"`
	CVDocumentID string `json:"cvDocumentId"`
	JDDocumentID string `json:"jdDocumentId"`
}

func (h *Handler) createInterview(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	session, err := h.Svc.Create(ctx, CreateInput{
		UserID:       userID,
		CVText:       req.CVText,
		JDText:       req.JDText,
		CVDocumentID: req.CVDocumentID,
		JDDocumentID: req.JDDocumentID,
	})
	if err != nil {
		h.respondError(c, err, "failed to create interview")
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"interviewId": session.ID,
		"status":      session.Status,
	})
}

func (h *Handler) listInterviews(c *gin.Context) {
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
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	sessions, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list interviews", nil)
		return
	}

	items := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		item := gin.H{
			"interviewId": s.ID,
			"status":      s.Status,
			"createdAt":   s.CreatedAt,
		}
		if s.Role != nil {
			item["roleTitle"] = s.Role.Title
		}
		if s.Gap != nil {
			item["matchScore"] = s.Gap.MatchScore
		}
		items = append(items, item)
	}
	respond.JSON(c, http.StatusOK, gin.H{"interviews": items})
}

func (h *Handler) getInterview(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	sessionID := c.Param("id")
	if sessionID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "interview id is required", nil)
		return
	}

	session, err := h.Svc.Get(c.Request.Context(), userID, sessionID)
	if err != nil {
		h.respondError(c, err, "failed to fetch interview")
		return
	}
	c.Set("interviewId", session.ID)

	resp := gin.H{
		"interviewId": session.ID,
		"status":      session.Status,
		"createdAt":   session.CreatedAt,
		"updatedAt":   session.UpdatedAt,
	}
	if session.Gap != nil {
		resp["gap"] = session.Gap
	}
	if len(session.Questions) > 0 {
		resp["questions"] = session.Questions
		resp["cursor"] = session.Cursor
	}
	if len(session.Scores) > 0 {
		resp["scores"] = session.Scores
	}
	if session.Status == StatusError {
		resp["errorCode"] = session.ErrorCode
		resp["errorMessage"] = session.ErrorMessage
		if session.FailedStage != "" {
			resp["failedStage"] = session.FailedStage
		}
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) startInterview(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	sessionID := c.Param("id")
	if sessionID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "interview id is required", nil)
		return
	}
	c.Set("interviewId", sessionID)

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	result, err := h.Svc.Start(ctx, userID, sessionID)
	if err != nil {
		h.respondError(c, err, "failed to start interview")
		return
	}
	respond.JSON(c, http.StatusOK, turnResponse(result))
}

type turnRequest struct {
	Message string `json:"message"`
}

func (h *Handler) processTurn(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	sessionID := c.Param("id")
	if sessionID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "interview id is required", nil)
		return
	}
	c.Set("interviewId", sessionID)

	utterance, ok := h.readUtterance(c)
	if !ok {
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	result, err := h.Svc.ProcessTurn(ctx, userID, sessionID, utterance)
	if err != nil {
		h.respondError(c, err, "failed to process turn")
		return
	}
	respond.JSON(c, http.StatusOK, turnResponse(result))
}

// readUtterance pulls the candidate turn from either a JSON body or a
// multipart audio upload. Inaudible audio degrades to the sentinel so
// the turn still advances.
func (h *Handler) readUtterance(c *gin.Context) (string, bool) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var req turnRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return "", false
		}
		return strings.TrimSpace(req.Message), true
	}

	if h.STT == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "audio turns are not enabled", nil)
		return "", false
	}
	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "audio file is required", nil)
		return "", false
	}
	defer file.Close()
	if header.Size > maxAudioBytes {
		respond.Error(c, http.StatusBadRequest, "validation_error", "audio file is too large", nil)
		return "", false
	}
	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes+1))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read audio", nil)
		return "", false
	}
	if len(audio) > maxAudioBytes {
		respond.Error(c, http.StatusBadRequest, "validation_error", "audio file is too large", nil)
		return "", false
	}

	text, err := h.STT.Transcribe(c.Request.Context(), audio, header.Filename)
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "transcription_failed", "failed to transcribe audio", nil)
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		text = SentinelUtterance
	}
	return text, true
}

func (h *Handler) getReport(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	sessionID := c.Param("id")
	if sessionID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "interview id is required", nil)
		return
	}
	c.Set("interviewId", sessionID)

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	report, err := h.Svc.GenerateReport(ctx, userID, sessionID)
	if err != nil {
		h.respondError(c, err, "failed to generate report")
		return
	}
	respond.JSON(c, http.StatusOK, report)
}

func (h *Handler) debugInterviews(c *gin.Context) {
	sessions, err := h.Svc.ListAll(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list interviews", nil)
		return
	}
	items := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, gin.H{
			"interviewId": s.ID,
			"userId":      s.UserID,
			"status":      s.Status,
			"cursor":      s.Cursor,
			"questions":   len(s.Questions),
			"scores":      len(s.Scores),
			"createdAt":   s.CreatedAt,
		})
	}
	respond.JSON(c, http.StatusOK, gin.H{"interviews": items})
}

func turnResponse(result TurnResult) gin.H {
	resp := gin.H{
		"reply":    result.Reply,
		"done":     result.Done,
		"followUp": result.FollowUp,
	}
	if result.Score != nil {
		resp["score"] = result.Score
	}
	if result.AudioB64 != "" {
		resp["audio"] = result.AudioB64
	}
	return resp
}

// respondError maps service errors onto the standard error body.
func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	var schemaErr *llm.SchemaError
	var providerErr *llm.ProviderError
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "interview not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, usage.ErrLimitReached):
		respond.Error(c, http.StatusTooManyRequests, "limit_reached", "You've reached your interview limit. Upgrade your plan to continue.", []map[string]string{
			{"field": "usage", "issue": "limit_reached"},
		})
	case errors.Is(err, ErrNotReady):
		respond.Error(c, http.StatusConflict, "conflict", "interview is not ready to start", nil)
	case errors.Is(err, ErrNotRunning):
		respond.Error(c, http.StatusConflict, "conflict", "interview is not in progress", nil)
	case errors.Is(err, ErrNotFinished):
		respond.Error(c, http.StatusConflict, "conflict", "interview has not finished", nil)
	case errors.Is(err, ErrTimedOut):
		respond.Error(c, http.StatusGone, "interview_timeout", "interview exceeded its time budget", nil)
	case errors.As(err, &schemaErr):
		respond.Error(c, http.StatusBadGateway, "schema_mismatch", "model returned an unusable response", nil)
	case errors.As(err, &providerErr):
		respond.Error(c, http.StatusBadGateway, "provider_unavailable", "model provider is unavailable", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
