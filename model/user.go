// Package model defines database models
package model

import "time"

type PlanType string

const (
	PlanFree PlanType = "free"
	PlanPro  PlanType = "pro"
)

func (p PlanType) Valid() bool {
	return p == PlanFree || p == PlanPro
}

type User struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"unique;not null" json:"username"`
	Email        string `gorm:"unique;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	FullName     string `gorm:"not null" json:"full_name"`

	PlanType      PlanType `gorm:"not null;default:free" json:"plan_type"`
	ReminderLimit int      `gorm:"not null;default:10" json:"reminder_limit"`

	StripeCustomerID     *string `json:"-"`
	StripeSubscriptionID *string `json:"-"`

	IsAdmin   bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`

	Reminders []Reminder `gorm:"foreignKey:UserID" json:"-"`
	Payments  []Payment  `gorm:"foreignKey:UserID" json:"-"`
}
