package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) AdminUsers(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	users, err := a.Store.AllUsers()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list users", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Password hashes and stripe ids are stripped by the model's json tags
	c.JSON(http.StatusOK, users)
}
