// Package plan gates writes by subscription tier
package plan

import (
	"errors"

	"reminderpro/reminder-api/model"
	"reminderpro/reminder-api/store"

	"github.com/spf13/viper"
)

// ErrQuotaExceeded is an expected business rejection, not a fault
var ErrQuotaExceeded = errors.New("reminder limit reached, upgrade to Pro for more reminders")

// LimitFor returns the reminder limit seeded for a plan tier
func LimitFor(plan model.PlanType) int {
	if plan == model.PlanPro {
		return viper.GetInt("plan.pro_limit")
	}

	return viper.GetInt("plan.free_limit")
}

// CheckReminderQuota reads the user's live reminder count and rejects the
// creation when a free-tier user is at their limit. Pro users are never
// gated. Two overlapping creations can both pass the check; the quota is an
// advisory gate, not a lock.
func CheckReminderQuota(s store.Store, u *model.User) error {
	if u.PlanType == model.PlanPro {
		return nil
	}

	count, err := s.CountRemindersByUserID(u.ID)
	if err != nil {
		return err
	}

	if count >= int64(u.ReminderLimit) {
		return ErrQuotaExceeded
	}

	return nil
}

// FilterNotificationTypes drops channels the plan tier can't use. SMS is a
// pro feature; requests to enable it for free users are silently ignored
// rather than rejected.
func FilterNotificationTypes(plan model.PlanType, types []model.NotificationType) []model.NotificationType {
	out := make([]model.NotificationType, 0, len(types))

	for _, t := range types {
		if t == model.NotifySMS && plan != model.PlanPro {
			continue
		}

		out = append(out, t)
	}

	return out
}
