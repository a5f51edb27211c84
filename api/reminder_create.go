package api

import (
	"errors"
	"net/http"

	"reminderpro/reminder-api/model"
	"reminderpro/reminder-api/plan"
	"reminderpro/reminder-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) ReminderCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(*model.User)

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

	if err := plan.CheckReminderQuota(a.Store, user); err != nil {
		if errors.Is(err, plan.ErrQuotaExceeded) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":     "Reminder limit reached. Upgrade to Pro for more reminders",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check reminder quota", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	reminder := &model.Reminder{
		UserID:       user.ID,
		Title:        data.Title,
		Description:  data.Description,
		ReminderType: data.ReminderType,
		ReminderDate: reminderDate,
	}

	var visa *model.VisaReminder

	if data.ReminderType == model.ReminderVisa {
		expiryDate, err := validators.ParseDate(data.VisaData.ExpiryDate)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}

		visa = &model.VisaReminder{
			VisaType:   data.VisaData.VisaType,
			Country:    data.VisaData.Country,
			ExpiryDate: expiryDate,
			Notes:      data.VisaData.Notes,
		}
	}

	if err := a.Store.CreateReminder(reminder, visa); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create reminder", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	channels := data.Notifications
	if channels == nil {
		channels = defaultChannels
	}

	if err := a.reconcileNotifications(user, reminder.ID, channels); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create notifications", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	created, err := a.Store.ReminderByID(reminder.ID)
	if err != nil || created == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to load created reminder", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, created)
}
