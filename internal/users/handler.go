package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/shared/server/middleware"
	"interview-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

// me reports the caller's identity. Guests get their guest id back;
// authenticated users get the stored profile, falling back to the
// token claims when no row exists yet.
func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		return
	}

	response := gin.H{"id": userID, "isGuest": false}
	if middleware.IsGuest(c) {
		response["isGuest"] = true
		respond.JSON(c, http.StatusOK, response)
		return
	}

	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}

	user, err := h.Svc.GetByID(c.Request.Context(), userID)
	switch {
	case err == nil:
		response["email"] = user.Email
		response["fullName"] = user.FullName
		response["pictureUrl"] = user.PictureURL
	case errors.Is(err, ErrNotFound):
		response["email"] = middleware.UserEmailFromContext(c)
		response["fullName"] = middleware.UserNameFromContext(c)
		response["pictureUrl"] = middleware.UserPictureFromContext(c)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
		return
	}

	respond.JSON(c, http.StatusOK, response)
}
