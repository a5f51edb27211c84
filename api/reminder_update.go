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

func (a *API) ReminderUpdate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(*model.User)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "ID is not a valid integer",
			"requestID": requestID,
		})
		return
	}

	existing, err := a.Store.ReminderByID(uint(id))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to load reminder", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if existing == nil || existing.UserID != user.ID {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "Reminder not found",
			"requestID": requestID,
		})
		return
	}

	var data validators.ReminderInput
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if err := validators.ReminderValidator(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	reminderDate, err := validators.ParseDate(data.ReminderDate)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	upd := store.ReminderUpdate{
		Title:        data.Title,
		Description:  data.Description,
		ReminderType: data.ReminderType,
		ReminderDate: reminderDate,
	}

	if data.ReminderType == model.ReminderVisa {
		expiryDate, err := validators.ParseDate(data.VisaData.ExpiryDate)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}

		upd.VisaData = &store.VisaUpdate{
			VisaType:   data.VisaData.VisaType,
			Country:    data.VisaData.Country,
			ExpiryDate: expiryDate,
			Notes:      data.VisaData.Notes,
		}
	}

	updated, err := a.Store.UpdateReminder(uint(id), upd)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update reminder", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if updated == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "Reminder not found",
			"requestID": requestID,
		})
		return
	}

	if data.Notifications != nil {
		if err := a.reconcileNotifications(user, uint(id), data.Notifications); err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to update notifications", zap.Error(err), zap.String("requestID", requestID))
			return
		}
	}

	c.JSON(http.StatusOK, updated)
}
