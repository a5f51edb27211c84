package api

import (
	"net/http"

	"reminderpro/reminder-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) ReminderFetchBulk(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	typ := model.ReminderType(c.Query("type"))
	if typ != "" && !typ.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid reminder type provided",
			"requestID": requestID,
		})
		return
	}

	reminders, err := a.Store.RemindersByUserID(userID, typ)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to lookup user reminders", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, reminders)
}
