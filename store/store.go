// Package store owns all persisted state. Every mutation goes through a
// Store implementation; composite operations (reminder + visa sub-record +
// notification cascade) are atomic in each backend.
package store

import (
	"time"

	"reminderpro/reminder-api/model"
)

// UserUpdate lists the mutable user fields. Nil pointers are left untouched,
// except ClearSubscription which nils out the stored subscription id.
type UserUpdate struct {
	FullName             *string
	PlanType             *model.PlanType
	ReminderLimit        *int
	StripeCustomerID     *string
	StripeSubscriptionID *string
	ClearSubscription    bool
	IsAdmin              *bool
}

// VisaUpdate carries the visa sub-record fields of a reminder update
type VisaUpdate struct {
	VisaType   model.VisaType
	Country    string
	ExpiryDate time.Time
	Notes      *string
}

// ReminderUpdate is a full-field update of a reminder. VisaData must be set
// when ReminderType is visa and is ignored otherwise.
type ReminderUpdate struct {
	Title        string
	Description  *string
	ReminderType model.ReminderType
	ReminderDate time.Time
	VisaData     *VisaUpdate
}

// PaymentUpdate lists the mutable payment fields
type PaymentUpdate struct {
	IsPaid          *bool
	StripePaymentID *string
}

// Store is the storage engine. Fetches signal absence with a nil result and
// a nil error; real faults come back as errors. Implemented by Gorm
// (transactional, production) and Memory (tests and local runs).
type Store interface {
	// Users
	CreateUser(u *model.User) error
	UserByID(id string) (*model.User, error)
	UserByUsername(username string) (*model.User, error)
	UserByEmail(email string) (*model.User, error)
	UserByStripeSubscriptionID(subID string) (*model.User, error)
	UpdateUser(id string, upd UserUpdate) (*model.User, error)
	AllUsers() ([]model.User, error)
	CountUsersByPlan(plan model.PlanType) (int64, error)
	CountUsers() (int64, error)

	// Reminders
	CreateReminder(r *model.Reminder, visa *model.VisaReminder) error
	ReminderByID(id uint) (*model.ReminderWithVisa, error)
	RemindersByUserID(userID string, typ model.ReminderType) ([]model.Reminder, error)
	UpdateReminder(id uint, upd ReminderUpdate) (*model.ReminderWithVisa, error)
	DeleteReminder(id uint) (bool, error)
	CountRemindersByUserID(userID string) (int64, error)
	CountReminders() (int64, error)
	DueReminders(from, to time.Time) ([]model.Reminder, error)

	// Visa sub-records
	VisaReminderByReminderID(reminderID uint) (*model.VisaReminder, error)
	UpdateVisaReminder(reminderID uint, upd VisaUpdate) (*model.VisaReminder, error)
	VisaRemindersByUserID(userID string) ([]model.ReminderWithVisa, error)
	CountVisaRemindersByType() ([]model.VisaTypeCount, error)
	UpcomingExpirations(days int) (int64, error)

	// Notifications
	CreateNotification(n *model.Notification) error
	NotificationsByReminderID(reminderID uint) ([]model.Notification, error)
	SetNotificationEnabled(id uint, enabled bool) (*model.Notification, error)

	// Payments
	CreatePayment(p *model.Payment) error
	PaymentsByUserID(userID string) ([]model.Payment, error)
	PaymentByStripePaymentID(stripeID string) (*model.Payment, error)
	UpdatePayment(id uint, upd PaymentUpdate) (*model.Payment, error)
	MonthlyRevenue() (float64, error)
	NewSubscriptions() (int64, error)
	Renewals() (int64, error)
}

func monthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}
