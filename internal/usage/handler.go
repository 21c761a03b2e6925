package usage

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/shared/server/middleware"
	"interview-backend/internal/shared/server/respond"
)

// Handler exposes the quota endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches GET /usage.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/usage", h.getUsage)
}

// RegisterDevRoutes attaches POST /usage/reset. The router mounts these
// only outside production.
func (h *Handler) RegisterDevRoutes(rg *gin.RouterGroup) {
	rg.POST("/usage/reset", h.resetUsage)
}

func (h *Handler) getUsage(c *gin.Context) {
	h.serve(c, "failed to fetch usage", h.Svc.EnsurePeriod)
}

func (h *Handler) resetUsage(c *gin.Context) {
	h.serve(c, "failed to reset usage", h.Svc.Reset)
}

// serve runs op for the authenticated user and writes the resulting
// quota snapshot. Usage marshals straight to the response shape.
func (h *Handler) serve(c *gin.Context, failMsg string, op func(context.Context, string) (Usage, error)) {
	userID := middleware.UserIDFromContext(c)
	u, err := op(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", failMsg, nil)
		return
	}

	respond.JSON(c, http.StatusOK, u)
}
