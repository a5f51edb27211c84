package model

import "time"

type VisaType string

const (
	VisaWork     VisaType = "work"
	VisaTourist  VisaType = "tourist"
	VisaStudent  VisaType = "student"
	VisaBusiness VisaType = "business"
	VisaOther    VisaType = "other"
)

// AllVisaTypes is the canonical order used by the zero-filled
// per-type distribution
var AllVisaTypes = []VisaType{VisaWork, VisaTourist, VisaStudent, VisaBusiness, VisaOther}

func (t VisaType) Valid() bool {
	switch t {
	case VisaWork, VisaTourist, VisaStudent, VisaBusiness, VisaOther:
		return true
	}
	return false
}

// VisaReminder exists if and only if its owning reminder's type is visa.
// Creation and removal always happen in the same transaction as the
// owning reminder's type transition.
type VisaReminder struct {
	ID         uint `gorm:"primaryKey;autoIncrement" json:"id"`
	ReminderID uint `gorm:"not null;uniqueIndex" json:"reminder_id"`

	VisaType   VisaType  `gorm:"not null" json:"visa_type"`
	Country    string    `gorm:"not null" json:"country"`
	ExpiryDate time.Time `gorm:"not null" json:"expiry_date"`
	Notes      *string   `json:"notes,omitempty"`
}

// VisaTypeCount is one bucket of the per-type distribution
type VisaTypeCount struct {
	VisaType VisaType `json:"visa_type"`
	Count    int64    `json:"count"`
}
