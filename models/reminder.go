package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reminder status values
const (
	ReminderStatusPending   = "pending"
	ReminderStatusSent      = "sent"
	ReminderStatusCancelled = "cancelled"
	ReminderStatusFailed    = "failed"
)

// Reminder type values, by timing relative to the due date
const (
	ReminderSevenDaysBefore = "seven_days_before"
	ReminderOneDayBefore    = "one_day_before"
	ReminderDueDate         = "due_date"
	ReminderFollowUpMissed  = "follow_up_missed" // 7 days after due date if missed
)

// DefaultNotificationChannels is a JSON array stored as a string
const DefaultNotificationChannels = `["push", "sms", "email"]`

type VaccinationReminder struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	BeneficiaryID uuid.UUID `gorm:"type:uuid;index;not null"`

	VaccineCode string `gorm:"type:varchar(50);index;not null"`
	VaccineName string `gorm:"not null"`
	DoseNumber  int    `gorm:"default:1;not null"`
	DoseLabel   string `gorm:"type:varchar(100)"` // e.g. "Birth Dose", "Dose 1"

	ReminderType  string    `gorm:"type:varchar(30);not null"`
	ScheduledDate time.Time `gorm:"type:date;index;not null"`
	ScheduledTime time.Time `gorm:"index;not null"` // exact datetime to send

	Status string     `gorm:"type:varchar(20);default:'pending';index;not null"`
	SentAt *time.Time

	NotificationChannels string `gorm:"type:varchar(255);not null"`
	IsEnabled            bool   `gorm:"default:true;index;not null"`

	VaccinationID *uuid.UUID `gorm:"type:uuid"`
	IsBirthDose   bool       `gorm:"default:false;not null"`

	DueDateStart *time.Time `gorm:"type:date"`
	DueDateEnd   *time.Time `gorm:"type:date"`

	FailureReason string `gorm:"type:text"`
	RetryCount    int    `gorm:"default:0;not null"`

	gorm.Model
}

func (r *VaccinationReminder) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
