// Package account hosts cross-entity operations on a caller's data:
// claiming guest work after login and deleting everything on request.
package account

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"interview-backend/internal/shared/server/middleware"
	"interview-backend/internal/shared/server/respond"
)

// Handler exposes the account endpoints.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/account/claim-guest", h.claimGuest)
	rg.DELETE("/account", h.purge)
}

// claimGuest moves a guest identity's data to the logged-in caller. The
// guest is named by the X-Guest-Id header so the frontend can claim
// right after the OAuth redirect, while it still holds the guest id.
func (h *Handler) claimGuest(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}

	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if userID == "" || middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}

	guestID := strings.TrimSpace(c.GetHeader("X-Guest-Id"))
	switch {
	case guestID == "":
		guestIDError(c, "missing X-Guest-Id header", "required")
		return
	case !isUUID(guestID):
		guestIDError(c, "invalid guest id", "invalid")
		return
	}

	result, err := h.Svc.ClaimGuest(c.Request.Context(), "guest:"+guestID, userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to claim guest data", nil)
		return
	}
	respond.JSON(c, http.StatusOK, result)
}

// purge deletes the caller's documents, interviews, report artifacts
// and usage row. Guests may purge their own data too.
func (h *Handler) purge(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}

	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		return
	}

	result, err := h.Svc.Purge(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to purge account data", nil)
		return
	}
	respond.JSON(c, http.StatusOK, result)
}

func guestIDError(c *gin.Context, msg, issue string) {
	respond.Error(c, http.StatusBadRequest, "validation_error", msg, []map[string]string{
		{"field": "X-Guest-Id", "issue": issue},
	})
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
