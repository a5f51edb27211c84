package api

import (
	"slices"

	"reminderpro/reminder-api/model"
	"reminderpro/reminder-api/plan"
)

// defaultChannels is what a reminder gets when the request doesn't pick any
var defaultChannels = []model.NotificationType{model.NotifyEmail, model.NotifyPush}

// reconcileNotifications makes the reminder's notification rows match the
// requested channel set: requested channels are enabled (created on first
// use), everything else is disabled in place. Channels the user's plan
// can't use are silently dropped from the requested set, so an sms request
// from a free user ends up disabled, not enabled.
func (a *API) reconcileNotifications(user *model.User, reminderID uint, requested []model.NotificationType) error {
	allowed := plan.FilterNotificationTypes(user.PlanType, requested)

	current, err := a.Store.NotificationsByReminderID(reminderID)
	if err != nil {
		return err
	}

	for _, t := range allowed {
		idx := slices.IndexFunc(current, func(n model.Notification) bool {
			return n.NotificationType == t
		})

		if idx >= 0 {
			if _, err := a.Store.SetNotificationEnabled(current[idx].ID, true); err != nil {
				return err
			}
			continue
		}

		err := a.Store.CreateNotification(&model.Notification{
			ReminderID:       reminderID,
			NotificationType: t,
			IsEnabled:        true,
		})
		if err != nil {
			return err
		}
	}

	for _, n := range current {
		if !slices.Contains(allowed, n.NotificationType) {
			if _, err := a.Store.SetNotificationEnabled(n.ID, false); err != nil {
				return err
			}
		}
	}

	return nil
}
