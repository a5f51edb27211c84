package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"reminderpro/reminder-api/model"
)

// Memory is the map-backed Store used by tests and local runs. A single
// mutex around every operation gives it the same all-or-nothing behavior
// the transactional backend gets from the database.
type Memory struct {
	mu sync.Mutex

	users         map[string]*model.User
	reminders     map[uint]*model.Reminder
	visaReminders map[uint]*model.VisaReminder
	notifications map[uint]*model.Notification
	payments      map[uint]*model.Payment

	// Monotonic row ids, owned by the instance
	reminderID     uint
	visaReminderID uint
	notificationID uint
	paymentID      uint
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		users:         make(map[string]*model.User),
		reminders:     make(map[uint]*model.Reminder),
		visaReminders: make(map[uint]*model.VisaReminder),
		notifications: make(map[uint]*model.Notification),
		payments:      make(map[uint]*model.Payment),
	}
}

//
// Users
//

func (s *Memory) CreateUser(u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}

	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Memory) UserByID(id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}

	cp := *u
	return &cp, nil
}

func (s *Memory) UserByUsername(username string) (*model.User, error) {
	return s.findUser(func(u *model.User) bool {
		return strings.EqualFold(u.Username, username)
	})
}

func (s *Memory) UserByEmail(email string) (*model.User, error) {
	return s.findUser(func(u *model.User) bool {
		return strings.EqualFold(u.Email, email)
	})
}

func (s *Memory) UserByStripeSubscriptionID(subID string) (*model.User, error) {
	return s.findUser(func(u *model.User) bool {
		return u.StripeSubscriptionID != nil && *u.StripeSubscriptionID == subID
	})
}

func (s *Memory) findUser(match func(*model.User) bool) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}

	return nil, nil
}

func (s *Memory) UpdateUser(id string, upd UserUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}

	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.PlanType != nil {
		u.PlanType = *upd.PlanType
	}
	if upd.ReminderLimit != nil {
		u.ReminderLimit = *upd.ReminderLimit
	}
	if upd.StripeCustomerID != nil {
		u.StripeCustomerID = upd.StripeCustomerID
	}
	if upd.StripeSubscriptionID != nil {
		u.StripeSubscriptionID = upd.StripeSubscriptionID
	}
	if upd.ClearSubscription {
		u.StripeSubscriptionID = nil
	}
	if upd.IsAdmin != nil {
		u.IsAdmin = *upd.IsAdmin
	}

	cp := *u
	return &cp, nil
}

func (s *Memory) AllUsers() ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	return users, nil
}

func (s *Memory) CountUsersByPlan(plan model.PlanType) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, u := range s.users {
		if u.PlanType == plan {
			n++
		}
	}

	return n, nil
}

func (s *Memory) CountUsers() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.users)), nil
}

//
// Reminders
//

func (s *Memory) CreateReminder(r *model.Reminder, visa *model.VisaReminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reminderID++
	r.ID = s.reminderID

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	cp := *r
	s.reminders[r.ID] = &cp

	if r.ReminderType == model.ReminderVisa && visa != nil {
		s.visaReminderID++
		visa.ID = s.visaReminderID
		visa.ReminderID = r.ID

		vcp := *visa
		s.visaReminders[visa.ID] = &vcp
	}

	return nil
}

func (s *Memory) ReminderByID(id uint) (*model.ReminderWithVisa, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reminders[id]
	if !ok {
		return nil, nil
	}

	out := &model.ReminderWithVisa{Reminder: *r}

	if r.ReminderType == model.ReminderVisa {
		if visa := s.visaByReminderLocked(id); visa != nil {
			cp := *visa
			out.VisaData = &cp
		}
	}

	return out, nil
}

func (s *Memory) RemindersByUserID(userID string, typ model.ReminderType) ([]model.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reminders []model.Reminder

	for _, r := range s.reminders {
		if r.UserID != userID {
			continue
		}
		if typ != "" && r.ReminderType != typ {
			continue
		}
		reminders = append(reminders, *r)
	}

	sort.Slice(reminders, func(i, j int) bool {
		return reminders[i].ReminderDate.Before(reminders[j].ReminderDate)
	})

	return reminders, nil
}

func (s *Memory) UpdateReminder(id uint, upd ReminderUpdate) (*model.ReminderWithVisa, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reminders[id]
	if !ok {
		return nil, nil
	}

	r.Title = upd.Title
	r.Description = upd.Description
	r.ReminderType = upd.ReminderType
	r.ReminderDate = upd.ReminderDate

	result := &model.ReminderWithVisa{Reminder: *r}

	if upd.ReminderType == model.ReminderVisa && upd.VisaData != nil {
		visa := s.visaByReminderLocked(id)
		if visa == nil {
			s.visaReminderID++
			visa = &model.VisaReminder{ID: s.visaReminderID, ReminderID: id}
			s.visaReminders[visa.ID] = visa
		}

		visa.VisaType = upd.VisaData.VisaType
		visa.Country = upd.VisaData.Country
		visa.ExpiryDate = upd.VisaData.ExpiryDate
		visa.Notes = upd.VisaData.Notes

		cp := *visa
		result.VisaData = &cp
		return result, nil
	}

	if upd.ReminderType != model.ReminderVisa {
		if visa := s.visaByReminderLocked(id); visa != nil {
			delete(s.visaReminders, visa.ID)
		}
	}

	return result, nil
}

func (s *Memory) DeleteReminder(id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reminders[id]; !ok {
		return false, nil
	}

	if visa := s.visaByReminderLocked(id); visa != nil {
		delete(s.visaReminders, visa.ID)
	}

	for nid, n := range s.notifications {
		if n.ReminderID == id {
			delete(s.notifications, nid)
		}
	}

	delete(s.reminders, id)
	return true, nil
}

func (s *Memory) CountRemindersByUserID(userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, r := range s.reminders {
		if r.UserID == userID {
			n++
		}
	}

	return n, nil
}

func (s *Memory) CountReminders() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.reminders)), nil
}

func (s *Memory) DueReminders(from, to time.Time) ([]model.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reminders []model.Reminder

	for _, r := range s.reminders {
		if !r.ReminderDate.Before(from) && r.ReminderDate.Before(to) {
			reminders = append(reminders, *r)
		}
	}

	sort.Slice(reminders, func(i, j int) bool {
		return reminders[i].ReminderDate.Before(reminders[j].ReminderDate)
	})

	return reminders, nil
}

//
// Visa sub-records
//

func (s *Memory) visaByReminderLocked(reminderID uint) *model.VisaReminder {
	for _, v := range s.visaReminders {
		if v.ReminderID == reminderID {
			return v
		}
	}

	return nil
}

func (s *Memory) VisaReminderByReminderID(reminderID uint) (*model.VisaReminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	visa := s.visaByReminderLocked(reminderID)
	if visa == nil {
		return nil, nil
	}

	cp := *visa
	return &cp, nil
}

func (s *Memory) UpdateVisaReminder(reminderID uint, upd VisaUpdate) (*model.VisaReminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	visa := s.visaByReminderLocked(reminderID)
	if visa == nil {
		return nil, nil
	}

	visa.VisaType = upd.VisaType
	visa.Country = upd.Country
	visa.ExpiryDate = upd.ExpiryDate
	visa.Notes = upd.Notes

	cp := *visa
	return &cp, nil
}

func (s *Memory) VisaRemindersByUserID(userID string) ([]model.ReminderWithVisa, error) {
	reminders, err := s.RemindersByUserID(userID, model.ReminderVisa)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.ReminderWithVisa, 0, len(reminders))

	for _, r := range reminders {
		visa := s.visaByReminderLocked(r.ID)
		if visa == nil {
			continue
		}

		cp := *visa
		out = append(out, model.ReminderWithVisa{Reminder: r, VisaData: &cp})
	}

	return out, nil
}

func (s *Memory) CountVisaRemindersByType() ([]model.VisaTypeCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[model.VisaType]int64)
	for _, v := range s.visaReminders {
		counts[v.VisaType]++
	}

	out := make([]model.VisaTypeCount, 0, len(model.AllVisaTypes))
	for _, t := range model.AllVisaTypes {
		out = append(out, model.VisaTypeCount{VisaType: t, Count: counts[t]})
	}

	return out, nil
}

func (s *Memory) UpcomingExpirations(days int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	future := now.AddDate(0, 0, days)

	var n int64

	for _, v := range s.visaReminders {
		if !v.ExpiryDate.Before(now) && v.ExpiryDate.Before(future) {
			n++
		}
	}

	return n, nil
}

//
// Notifications
//

func (s *Memory) CreateNotification(n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationID++
	n.ID = s.notificationID

	cp := *n
	s.notifications[n.ID] = &cp
	return nil
}

func (s *Memory) NotificationsByReminderID(reminderID uint) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var notifications []model.Notification

	for _, n := range s.notifications {
		if n.ReminderID == reminderID {
			notifications = append(notifications, *n)
		}
	}

	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].ID < notifications[j].ID
	})

	return notifications, nil
}

func (s *Memory) SetNotificationEnabled(id uint, enabled bool) (*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok {
		return nil, nil
	}

	n.IsEnabled = enabled

	cp := *n
	return &cp, nil
}

//
// Payments
//

func (s *Memory) CreatePayment(p *model.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.paymentID++
	p.ID = s.paymentID

	if p.PaymentDate.IsZero() {
		p.PaymentDate = time.Now()
	}

	cp := *p
	s.payments[p.ID] = &cp
	return nil
}

func (s *Memory) PaymentsByUserID(userID string) ([]model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payments []model.Payment

	for _, p := range s.payments {
		if p.UserID == userID {
			payments = append(payments, *p)
		}
	}

	sort.Slice(payments, func(i, j int) bool {
		return payments[i].PaymentDate.Before(payments[j].PaymentDate)
	})

	return payments, nil
}

func (s *Memory) PaymentByStripePaymentID(stripeID string) (*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.payments {
		if p.StripePaymentID != nil && *p.StripePaymentID == stripeID {
			cp := *p
			return &cp, nil
		}
	}

	return nil, nil
}

func (s *Memory) UpdatePayment(id uint, upd PaymentUpdate) (*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		return nil, nil
	}

	if upd.IsPaid != nil {
		p.IsPaid = *upd.IsPaid
	}
	if upd.StripePaymentID != nil {
		p.StripePaymentID = upd.StripePaymentID
	}

	cp := *p
	return &cp, nil
}

func (s *Memory) MonthlyRevenue() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := monthStart(time.Now())

	var sum float64

	for _, p := range s.payments {
		if p.IsPaid && !p.PaymentDate.Before(ms) {
			sum += p.Amount
		}
	}

	return sum, nil
}

func (s *Memory) NewSubscriptions() (int64, error) {
	newSubs, _ := s.partitionMonthlyPayers()
	return newSubs, nil
}

func (s *Memory) Renewals() (int64, error) {
	_, renewals := s.partitionMonthlyPayers()
	return renewals, nil
}

// partitionMonthlyPayers splits the distinct users paid this month by
// whether any of their payment rows predates the month start
func (s *Memory) partitionMonthlyPayers() (newSubs, renewals int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := monthStart(time.Now())

	paidThisMonth := make(map[string]bool)
	paidBefore := make(map[string]bool)

	for _, p := range s.payments {
		if p.PaymentDate.Before(ms) {
			paidBefore[p.UserID] = true
		} else if p.IsPaid {
			paidThisMonth[p.UserID] = true
		}
	}

	for userID := range paidThisMonth {
		if paidBefore[userID] {
			renewals++
		} else {
			newSubs++
		}
	}

	return newSubs, renewals
}
