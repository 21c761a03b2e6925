package respond

import "github.com/gin-gonic/gin"

// JSON writes payload with the given status. All success responses go
// through here so the content type stays uniform across handlers.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}
