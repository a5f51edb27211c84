package middleware

import (
	"net/http"

	"reminderpro/reminder-api/model"

	"github.com/gin-gonic/gin"
)

// NewAdminMiddleware rejects principals without the admin role. Must sit
// behind the JWT middleware.
func NewAdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		user, ok := c.MustGet("user").(*model.User)
		if !ok || !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":     "Not authorized",
				"requestID": requestID,
			})
			return
		}

		c.Next()
	}
}
