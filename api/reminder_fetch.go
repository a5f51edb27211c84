package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) ReminderFetch(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "ID is not a valid integer",
			"requestID": requestID,
		})
		return
	}

	reminder, err := a.Store.ReminderByID(uint(id))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to load reminder", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Someone else's reminder looks the same as a missing one
	if reminder == nil || reminder.UserID != userID {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "Reminder not found",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, reminder)
}
