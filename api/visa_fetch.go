package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VisaFetch returns the visa sub-record of one of the caller's reminders.
// The :id parameter is the owning reminder's id.
func (a *API) VisaFetch(c *gin.Context) {
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

	if reminder == nil || reminder.UserID != userID || reminder.VisaData == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "Visa reminder not found",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, reminder.VisaData)
}
