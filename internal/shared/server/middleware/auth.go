package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/shared/auth"
	"interview-backend/internal/shared/server/respond"
)

const (
	userIDKey      = "userId"
	userEmailKey   = "userEmail"
	userNameKey    = "userName"
	userPictureKey = "userPicture"
	isGuestKey     = "isGuest"

	guestIDHeader = "X-Guest-Id"
	maxGuestIDLen = 128
)

// Auth resolves the caller's identity: a Bearer login token or the
// guest header. OAuth endpoints pass through since they exist to mint
// the token in the first place.
func Auth(env string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api/v1/auth/google/") {
			c.Next()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header != "" {
			token, ok := strings.CutPrefix(header, "Bearer ")
			token = strings.TrimSpace(token)
			if !ok || token == "" {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
			claims, err := auth.VerifyJWT(token)
			if err != nil {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
			setIdentity(c, claims)
			c.Next()
			return
		}

		guestID := strings.TrimSpace(c.GetHeader(guestIDHeader))
		if guestID == "" || len(guestID) > maxGuestIDLen {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}
		c.Set(userIDKey, "guest:"+guestID)
		c.Set(isGuestKey, true)
		c.Next()
	}
}

func setIdentity(c *gin.Context, claims auth.Claims) {
	c.Set(userIDKey, claims.Sub)
	if claims.Email != "" {
		c.Set(userEmailKey, claims.Email)
	}
	if claims.Name != "" {
		c.Set(userNameKey, claims.Name)
	}
	if claims.Picture != "" {
		c.Set(userPictureKey, claims.Picture)
	}
	c.Set(isGuestKey, false)
}

// UserIDFromContext returns the identity set by Auth, or "".
func UserIDFromContext(c *gin.Context) string {
	return stringFromContext(c, userIDKey)
}

// IsGuest reports whether Auth resolved the caller from the guest
// header rather than a login token.
func IsGuest(c *gin.Context) bool {
	if c == nil {
		return false
	}
	return c.GetBool(isGuestKey)
}

// UserEmailFromContext returns the email claim, or "".
func UserEmailFromContext(c *gin.Context) string {
	return stringFromContext(c, userEmailKey)
}

// UserNameFromContext returns the display name claim, or "".
func UserNameFromContext(c *gin.Context) string {
	return stringFromContext(c, userNameKey)
}

// UserPictureFromContext returns the picture claim, or "".
func UserPictureFromContext(c *gin.Context) string {
	return stringFromContext(c, userPictureKey)
}

func stringFromContext(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	return c.GetString(key)
}
