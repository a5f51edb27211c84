package api

import (
	"net/http"

	"reminderpro/reminder-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminStats builds the reporting document for the admin dashboard. All
// numbers are recomputed from current state on every (uncached) request.
func (a *API) AdminStats(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	fail := func(err error, what string) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to compute admin stats", zap.String("stat", what), zap.Error(err), zap.String("requestID", requestID))
	}

	totalUsers, err := a.Store.CountUsers()
	if err != nil {
		fail(err, "users")
		return
	}

	proUsers, err := a.Store.CountUsersByPlan(model.PlanPro)
	if err != nil {
		fail(err, "pro_users")
		return
	}

	freeUsers, err := a.Store.CountUsersByPlan(model.PlanFree)
	if err != nil {
		fail(err, "free_users")
		return
	}

	totalReminders, err := a.Store.CountReminders()
	if err != nil {
		fail(err, "reminders")
		return
	}

	byType, err := a.Store.CountVisaRemindersByType()
	if err != nil {
		fail(err, "visa_by_type")
		return
	}

	var totalVisas int64
	for _, b := range byType {
		totalVisas += b.Count
	}

	expirations := map[string]int64{}
	for _, days := range []int{7, 30, 90} {
		n, err := a.Store.UpcomingExpirations(days)
		if err != nil {
			fail(err, "expirations")
			return
		}
		expirations[expirationKey(days)] = n
	}

	revenue, err := a.Store.MonthlyRevenue()
	if err != nil {
		fail(err, "revenue")
		return
	}

	newSubs, err := a.Store.NewSubscriptions()
	if err != nil {
		fail(err, "new_subscriptions")
		return
	}

	renewals, err := a.Store.Renewals()
	if err != nil {
		fail(err, "renewals")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": gin.H{
			"total": totalUsers,
			"pro":   proUsers,
			"free":  freeUsers,
		},
		"reminders": gin.H{
			"total":   totalReminders,
			"visa":    totalVisas,
			"by_type": byType,
		},
		"expirations": expirations,
		"revenue": gin.H{
			"monthly":           revenue,
			"new_subscriptions": newSubs,
			"renewals":          renewals,
		},
	})
}

func expirationKey(days int) string {
	switch days {
	case 7:
		return "next_7_days"
	case 30:
		return "next_30_days"
	default:
		return "next_90_days"
	}
}
