package model

import "time"

type Payment struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`

	Amount   float64  `gorm:"not null" json:"amount"`
	PlanType PlanType `gorm:"not null" json:"plan_type"`
	IsPaid   bool     `gorm:"not null;default:false" json:"is_paid"`

	StripePaymentID *string   `json:"stripe_payment_id,omitempty"`
	PaymentDate     time.Time `gorm:"not null" json:"payment_date"`
}
