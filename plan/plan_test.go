package plan_test

import (
	"testing"
	"time"

	"reminderpro/reminder-api/model"
	"reminderpro/reminder-api/plan"
	"reminderpro/reminder-api/store"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedReminders(t *testing.T, s store.Store, userID string, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		require.NoError(t, s.CreateReminder(&model.Reminder{
			UserID:       userID,
			Title:        "r",
			ReminderType: model.ReminderGeneral,
			ReminderDate: time.Now().Add(time.Hour),
		}, nil))
	}
}

func TestLimitFor(t *testing.T) {
	viper.Set("plan.free_limit", 10)
	viper.Set("plan.pro_limit", 100)

	assert.Equal(t, 10, plan.LimitFor(model.PlanFree))
	assert.Equal(t, 100, plan.LimitFor(model.PlanPro))
}

func TestCheckReminderQuota(t *testing.T) {
	s := store.NewMemory()

	free := &model.User{ID: "free", PlanType: model.PlanFree, ReminderLimit: 2}
	pro := &model.User{ID: "pro", PlanType: model.PlanPro, ReminderLimit: 100}

	require.NoError(t, s.CreateUser(free))
	require.NoError(t, s.CreateUser(pro))

	require.NoError(t, plan.CheckReminderQuota(s, free))

	seedReminders(t, s, "free", 2)

	err := plan.CheckReminderQuota(s, free)
	assert.ErrorIs(t, err, plan.ErrQuotaExceeded)

	// Pro is never gated, regardless of count
	seedReminders(t, s, "pro", 150)
	require.NoError(t, plan.CheckReminderQuota(s, pro))

	// Upgrading clears the gate even with the old rows still present
	free.PlanType = model.PlanPro
	require.NoError(t, plan.CheckReminderQuota(s, free))
}

func TestFilterNotificationTypes(t *testing.T) {
	requested := []model.NotificationType{model.NotifyEmail, model.NotifySMS, model.NotifyPush}

	got := plan.FilterNotificationTypes(model.PlanFree, requested)
	assert.Equal(t, []model.NotificationType{model.NotifyEmail, model.NotifyPush}, got)

	got = plan.FilterNotificationTypes(model.PlanPro, requested)
	assert.Equal(t, requested, got)
}
