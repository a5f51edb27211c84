package store

import (
	"errors"
	"time"

	"reminderpro/reminder-api/model"

	"gorm.io/gorm"
)

// Gorm is the transactional Store backend. Every composite operation runs
// inside a single db.Transaction so a failed statement rolls back the
// whole unit of work.
type Gorm struct {
	db *gorm.DB
}

var _ Store = (*Gorm)(nil)

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

//
// Users
//

func (s *Gorm) CreateUser(u *model.User) error {
	return s.db.Create(u).Error
}

func (s *Gorm) UserByID(id string) (*model.User, error) {
	return s.firstUser("id = ?", id)
}

func (s *Gorm) UserByUsername(username string) (*model.User, error) {
	return s.firstUser("username = ?", username)
}

func (s *Gorm) UserByEmail(email string) (*model.User, error) {
	return s.firstUser("email = ?", email)
}

func (s *Gorm) UserByStripeSubscriptionID(subID string) (*model.User, error) {
	return s.firstUser("stripe_subscription_id = ?", subID)
}

func (s *Gorm) firstUser(query string, arg any) (*model.User, error) {
	var user model.User

	err := s.db.Where(query, arg).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (s *Gorm) UpdateUser(id string, upd UserUpdate) (*model.User, error) {
	values := map[string]any{}

	if upd.FullName != nil {
		values["full_name"] = *upd.FullName
	}
	if upd.PlanType != nil {
		values["plan_type"] = *upd.PlanType
	}
	if upd.ReminderLimit != nil {
		values["reminder_limit"] = *upd.ReminderLimit
	}
	if upd.StripeCustomerID != nil {
		values["stripe_customer_id"] = *upd.StripeCustomerID
	}
	if upd.StripeSubscriptionID != nil {
		values["stripe_subscription_id"] = *upd.StripeSubscriptionID
	}
	if upd.ClearSubscription {
		values["stripe_subscription_id"] = nil
	}
	if upd.IsAdmin != nil {
		values["is_admin"] = *upd.IsAdmin
	}

	var user *model.User

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var u model.User

		if err := tx.Where("id = ?", id).First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if len(values) > 0 {
			if err := tx.Model(&u).Updates(values).Error; err != nil {
				return err
			}
		}

		user = &u
		return nil
	})

	return user, err
}

func (s *Gorm) AllUsers() ([]model.User, error) {
	var users []model.User
	err := s.db.Order("created_at").Find(&users).Error
	return users, err
}

func (s *Gorm) CountUsersByPlan(plan model.PlanType) (int64, error) {
	var n int64
	err := s.db.Model(&model.User{}).Where("plan_type = ?", plan).Count(&n).Error
	return n, err
}

func (s *Gorm) CountUsers() (int64, error) {
	var n int64
	err := s.db.Model(&model.User{}).Count(&n).Error
	return n, err
}

//
// Reminders
//

// CreateReminder inserts the reminder and, for visa reminders with a
// sub-record, the visa row in the same transaction. A failure in either
// insert rolls back both.
func (s *Gorm) CreateReminder(r *model.Reminder, visa *model.VisaReminder) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(r).Error; err != nil {
			return err
		}

		if r.ReminderType == model.ReminderVisa && visa != nil {
			visa.ReminderID = r.ID

			if err := tx.Create(visa).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *Gorm) ReminderByID(id uint) (*model.ReminderWithVisa, error) {
	var reminder model.Reminder

	err := s.db.Where("id = ?", id).First(&reminder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	out := &model.ReminderWithVisa{Reminder: reminder}

	if reminder.ReminderType == model.ReminderVisa {
		visa, err := s.VisaReminderByReminderID(id)
		if err != nil {
			return nil, err
		}
		out.VisaData = visa
	}

	return out, nil
}

func (s *Gorm) RemindersByUserID(userID string, typ model.ReminderType) ([]model.Reminder, error) {
	q := s.db.Where("user_id = ?", userID)
	if typ != "" {
		q = q.Where("reminder_type = ?", typ)
	}

	var reminders []model.Reminder
	err := q.Order("reminder_date").Find(&reminders).Error
	return reminders, err
}

// UpdateReminder applies a full-field update and reconciles the visa
// sub-record in the same transaction: upserted when the type is (or stays)
// visa, deleted when the type moves away from visa.
func (s *Gorm) UpdateReminder(id uint, upd ReminderUpdate) (*model.ReminderWithVisa, error) {
	var result *model.ReminderWithVisa

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var reminder model.Reminder

		if err := tx.Where("id = ?", id).First(&reminder).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		err := tx.Model(&reminder).Updates(map[string]any{
			"title":         upd.Title,
			"description":   upd.Description,
			"reminder_type": upd.ReminderType,
			"reminder_date": upd.ReminderDate,
		}).Error
		if err != nil {
			return err
		}

		result = &model.ReminderWithVisa{Reminder: reminder}

		if upd.ReminderType == model.ReminderVisa && upd.VisaData != nil {
			visa, err := upsertVisa(tx, id, *upd.VisaData)
			if err != nil {
				return err
			}

			result.VisaData = visa
			return nil
		}

		if upd.ReminderType != model.ReminderVisa {
			return tx.Where("reminder_id = ?", id).Delete(&model.VisaReminder{}).Error
		}

		return nil
	})

	return result, err
}

func upsertVisa(tx *gorm.DB, reminderID uint, upd VisaUpdate) (*model.VisaReminder, error) {
	var visa model.VisaReminder

	err := tx.Where("reminder_id = ?", reminderID).First(&visa).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		visa = model.VisaReminder{
			ReminderID: reminderID,
			VisaType:   upd.VisaType,
			Country:    upd.Country,
			ExpiryDate: upd.ExpiryDate,
			Notes:      upd.Notes,
		}

		if err := tx.Create(&visa).Error; err != nil {
			return nil, err
		}

		return &visa, nil
	}

	err = tx.Model(&visa).Updates(map[string]any{
		"visa_type":   upd.VisaType,
		"country":     upd.Country,
		"expiry_date": upd.ExpiryDate,
		"notes":       upd.Notes,
	}).Error
	if err != nil {
		return nil, err
	}

	return &visa, nil
}

// DeleteReminder removes the reminder together with its visa sub-record and
// notification rows. Deleting an id that's already gone returns false, not
// an error.
func (s *Gorm) DeleteReminder(id uint) (bool, error) {
	var removed bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reminder_id = ?", id).Delete(&model.VisaReminder{}).Error; err != nil {
			return err
		}

		if err := tx.Where("reminder_id = ?", id).Delete(&model.Notification{}).Error; err != nil {
			return err
		}

		r := tx.Where("id = ?", id).Delete(&model.Reminder{})
		if r.Error != nil {
			return r.Error
		}

		removed = r.RowsAffected > 0
		return nil
	})

	return removed, err
}

func (s *Gorm) CountRemindersByUserID(userID string) (int64, error) {
	var n int64
	err := s.db.Model(&model.Reminder{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (s *Gorm) CountReminders() (int64, error) {
	var n int64
	err := s.db.Model(&model.Reminder{}).Count(&n).Error
	return n, err
}

func (s *Gorm) DueReminders(from, to time.Time) ([]model.Reminder, error) {
	var reminders []model.Reminder

	err := s.db.
		Where("reminder_date >= ? AND reminder_date < ?", from, to).
		Order("reminder_date").
		Find(&reminders).
		Error

	return reminders, err
}

//
// Visa sub-records
//

func (s *Gorm) VisaReminderByReminderID(reminderID uint) (*model.VisaReminder, error) {
	var visa model.VisaReminder

	err := s.db.Where("reminder_id = ?", reminderID).First(&visa).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &visa, nil
}

func (s *Gorm) UpdateVisaReminder(reminderID uint, upd VisaUpdate) (*model.VisaReminder, error) {
	var visa model.VisaReminder

	err := s.db.Where("reminder_id = ?", reminderID).First(&visa).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	err = s.db.Model(&visa).Updates(map[string]any{
		"visa_type":   upd.VisaType,
		"country":     upd.Country,
		"expiry_date": upd.ExpiryDate,
		"notes":       upd.Notes,
	}).Error
	if err != nil {
		return nil, err
	}

	return &visa, nil
}

func (s *Gorm) VisaRemindersByUserID(userID string) ([]model.ReminderWithVisa, error) {
	reminders, err := s.RemindersByUserID(userID, model.ReminderVisa)
	if err != nil {
		return nil, err
	}

	out := make([]model.ReminderWithVisa, 0, len(reminders))

	for _, r := range reminders {
		visa, err := s.VisaReminderByReminderID(r.ID)
		if err != nil {
			return nil, err
		}
		if visa == nil {
			continue
		}

		out = append(out, model.ReminderWithVisa{Reminder: r, VisaData: visa})
	}

	return out, nil
}

// CountVisaRemindersByType returns one bucket per visa type, zero-filling
// types with no rows so charts always see all five categories
func (s *Gorm) CountVisaRemindersByType() ([]model.VisaTypeCount, error) {
	var rows []model.VisaTypeCount

	err := s.db.Model(&model.VisaReminder{}).
		Select("visa_type, count(*) as count").
		Group("visa_type").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.VisaType]int64, len(rows))
	for _, r := range rows {
		counts[r.VisaType] = r.Count
	}

	out := make([]model.VisaTypeCount, 0, len(model.AllVisaTypes))
	for _, t := range model.AllVisaTypes {
		out = append(out, model.VisaTypeCount{VisaType: t, Count: counts[t]})
	}

	return out, nil
}

// UpcomingExpirations counts visas expiring in the half-open window
// [now, now+days)
func (s *Gorm) UpcomingExpirations(days int) (int64, error) {
	now := time.Now()
	future := now.AddDate(0, 0, days)

	var n int64

	err := s.db.Model(&model.VisaReminder{}).
		Where("expiry_date >= ? AND expiry_date < ?", now, future).
		Count(&n).
		Error

	return n, err
}

//
// Notifications
//

func (s *Gorm) CreateNotification(n *model.Notification) error {
	return s.db.Create(n).Error
}

func (s *Gorm) NotificationsByReminderID(reminderID uint) ([]model.Notification, error) {
	var notifications []model.Notification
	err := s.db.Where("reminder_id = ?", reminderID).Find(&notifications).Error
	return notifications, err
}

func (s *Gorm) SetNotificationEnabled(id uint, enabled bool) (*model.Notification, error) {
	var n model.Notification

	err := s.db.Where("id = ?", id).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := s.db.Model(&n).Update("is_enabled", enabled).Error; err != nil {
		return nil, err
	}

	return &n, nil
}

//
// Payments
//

func (s *Gorm) CreatePayment(p *model.Payment) error {
	if p.PaymentDate.IsZero() {
		p.PaymentDate = time.Now()
	}

	return s.db.Create(p).Error
}

func (s *Gorm) PaymentsByUserID(userID string) ([]model.Payment, error) {
	var payments []model.Payment
	err := s.db.Where("user_id = ?", userID).Order("payment_date").Find(&payments).Error
	return payments, err
}

func (s *Gorm) PaymentByStripePaymentID(stripeID string) (*model.Payment, error) {
	var payment model.Payment

	err := s.db.Where("stripe_payment_id = ?", stripeID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &payment, nil
}

func (s *Gorm) UpdatePayment(id uint, upd PaymentUpdate) (*model.Payment, error) {
	var payment model.Payment

	err := s.db.Where("id = ?", id).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	values := map[string]any{}
	if upd.IsPaid != nil {
		values["is_paid"] = *upd.IsPaid
	}
	if upd.StripePaymentID != nil {
		values["stripe_payment_id"] = *upd.StripePaymentID
	}

	if len(values) > 0 {
		if err := s.db.Model(&payment).Updates(values).Error; err != nil {
			return nil, err
		}
	}

	return &payment, nil
}

func (s *Gorm) MonthlyRevenue() (float64, error) {
	var sum float64

	err := s.db.Model(&model.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("payment_date >= ? AND is_paid = ?", monthStart(time.Now()), true).
		Scan(&sum).
		Error

	return sum, err
}

// NewSubscriptions counts distinct users whose first paid activity is this
// month: they have a current-month paid payment and no payment row at all
// before the month started.
func (s *Gorm) NewSubscriptions() (int64, error) {
	return s.countMonthlyPayers("NOT EXISTS")
}

// Renewals counts distinct users with a current-month paid payment who also
// paid in an earlier month. NewSubscriptions + Renewals always equals the
// distinct count of users paid this month.
func (s *Gorm) Renewals() (int64, error) {
	return s.countMonthlyPayers("EXISTS")
}

func (s *Gorm) countMonthlyPayers(existsOp string) (int64, error) {
	ms := monthStart(time.Now())

	var n int64

	err := s.db.Model(&model.Payment{}).
		Distinct("user_id").
		Where("payment_date >= ? AND is_paid = ?", ms, true).
		Where(existsOp+" (SELECT 1 FROM payments p2 WHERE p2.user_id = payments.user_id AND p2.payment_date < ?)", ms).
		Count(&n).
		Error

	return n, err
}
