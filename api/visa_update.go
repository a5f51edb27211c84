package api

import (
	"net/http"
	"strconv"

	"reminderpro/reminder-api/model"
	"reminderpro/reminder-api/store"
	"reminderpro/reminder-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VisaUpdate edits a visa sub-record in place without touching the owning
// reminder. The :id parameter is the owning reminder's id.
func (a *API) VisaUpdate(c *gin.Context) {
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

	if reminder == nil || reminder.UserID != userID {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "Reminder not found",
			"requestID": requestID,
		})
		return
	}

	if reminder.ReminderType != model.ReminderVisa {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Not a visa reminder",
			"requestID": requestID,
		})
		return
	}

	var data validators.VisaInput
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if err := validators.VisaValidator(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	expiryDate, err := validators.ParseDate(data.ExpiryDate)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	visa, err := a.Store.UpdateVisaReminder(uint(id), store.VisaUpdate{
		VisaType:   data.VisaType,
		Country:    data.Country,
		ExpiryDate: expiryDate,
		Notes:      data.Notes,
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update visa reminder", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if visa == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "Visa reminder not found",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, visa)
}
