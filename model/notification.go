package model

type NotificationType string

const (
	NotifyEmail NotificationType = "email"
	NotifyPush  NotificationType = "push"
	NotifySMS   NotificationType = "sms"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotifyEmail, NotifyPush, NotifySMS:
		return true
	}
	return false
}

// Notification is a per-channel preference row. Rows are toggled with
// IsEnabled rather than deleted, at most one row per channel per reminder
type Notification struct {
	ID         uint `gorm:"primaryKey;autoIncrement" json:"id"`
	ReminderID uint `gorm:"not null;index" json:"reminder_id"`

	NotificationType NotificationType `gorm:"not null" json:"notification_type"`
	IsEnabled        bool             `gorm:"not null;default:true" json:"is_enabled"`
}
