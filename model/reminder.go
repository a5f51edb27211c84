package model

import "time"

type ReminderType string

const (
	ReminderGeneral ReminderType = "general"
	ReminderVisa    ReminderType = "visa"
	ReminderBill    ReminderType = "bill"
	ReminderTask    ReminderType = "task"
)

func (t ReminderType) Valid() bool {
	switch t {
	case ReminderGeneral, ReminderVisa, ReminderBill, ReminderTask:
		return true
	}
	return false
}

type Reminder struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`

	Title        string       `gorm:"not null" json:"title"`
	Description  *string      `json:"description,omitempty"`
	ReminderType ReminderType `gorm:"not null;default:general" json:"reminder_type"`

	ReminderDate time.Time `gorm:"not null" json:"reminder_date"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`

	Notifications []Notification `gorm:"foreignKey:ReminderID" json:"-"`
}

// ReminderWithVisa is the read shape returned by fetches. VisaData is only
// set when the reminder's type is visa and a sub-record exists.
type ReminderWithVisa struct {
	Reminder
	VisaData *VisaReminder `json:"visa_data,omitempty"`
}
