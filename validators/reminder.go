package validators

import (
	"errors"

	"reminderpro/reminder-api/model"
)

var (
	ErrTitleEmpty          = errors.New("title can't be empty")
	ErrTitleTooLong        = errors.New("title can't be longer than 200 characters")
	ErrReminderTypeInvalid = errors.New("invalid reminder type provided")
	ErrReminderDateMissing = errors.New("no reminder date provided")

	ErrVisaDataMissing   = errors.New("visa reminders require visa data")
	ErrVisaTypeInvalid   = errors.New("invalid visa type provided")
	ErrCountryEmpty      = errors.New("country can't be empty")
	ErrExpiryDateMissing = errors.New("no expiry date provided")

	ErrNotificationTypeInvalid = errors.New("invalid notification type provided")
)

// VisaInput is the visa sub-record part of a create/update request
type VisaInput struct {
	VisaType   model.VisaType `json:"visa_type"`
	Country    string         `json:"country"`
	ExpiryDate string         `json:"expiry_date"`
	Notes      *string        `json:"notes"`
}

// ReminderInput is the shared request body of reminder create/update
type ReminderInput struct {
	Title         string                   `json:"title"`
	Description   *string                  `json:"description"`
	ReminderType  model.ReminderType       `json:"reminder_type"`
	ReminderDate  string                   `json:"reminder_date"`
	VisaData      *VisaInput               `json:"visa_data"`
	Notifications []model.NotificationType `json:"notifications"`
}

func ReminderValidator(in *ReminderInput) error {
	if in.Title == "" {
		return ErrTitleEmpty
	}

	if len(in.Title) > 200 {
		return ErrTitleTooLong
	}

	if !in.ReminderType.Valid() {
		return ErrReminderTypeInvalid
	}

	if in.ReminderDate == "" {
		return ErrReminderDateMissing
	}

	if in.ReminderType == model.ReminderVisa {
		if in.VisaData == nil {
			return ErrVisaDataMissing
		}

		if err := VisaValidator(in.VisaData); err != nil {
			return err
		}
	}

	for _, t := range in.Notifications {
		if !t.Valid() {
			return ErrNotificationTypeInvalid
		}
	}

	return nil
}

func VisaValidator(in *VisaInput) error {
	if !in.VisaType.Valid() {
		return ErrVisaTypeInvalid
	}

	if in.Country == "" {
		return ErrCountryEmpty
	}

	if in.ExpiryDate == "" {
		return ErrExpiryDateMissing
	}

	return nil
}
