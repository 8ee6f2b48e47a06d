// services/reminder_service.go
package services

import (
	"time"

	"vaxtrack-backend/models"
	"vaxtrack-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Hour of day at which reminder notifications go out
const ReminderHour = 9

// Reminder timing offsets in days relative to the due date
const (
	SevenDaysBeforeOffset = 7
	OneDayBeforeOffset    = 1
	FollowUpMissedOffset  = 7
)

// ReminderService schedules and manages persisted vaccination reminders.
// Scheduling is a bounded, synchronous computation: it only writes PENDING
// rows; actual delivery happens elsewhere via the dispatch service.
type ReminderService struct {
	db       *gorm.DB
	timeline *TimelineService
}

func NewReminderService(db *gorm.DB) *ReminderService {
	return &ReminderService{
		db:       db,
		timeline: NewTimelineService(db),
	}
}

// ScheduleReminders schedules reminders for all non-completed doses on a
// beneficiary's timeline. Doses that already have a PENDING reminder are
// skipped unless forceReschedule is set, in which case their PENDING rows
// are cancelled first. All writes happen in one transaction.
func (s *ReminderService) ScheduleReminders(
	beneficiaryID uuid.UUID,
	forceReschedule bool,
) ([]models.VaccinationReminder, error) {
	timeline, err := s.timeline.GetTimeline(beneficiaryID)
	if err != nil {
		return nil, err
	}

	dob := utils.BeginningOfDay(timeline.Beneficiary.DateOfBirth)
	today := utils.BeginningOfDay(time.Now())

	var created []models.VaccinationReminder

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range timeline.Timeline {
			if item.Status == StatusCompleted {
				continue
			}

			// Birth doses are due on the date of birth itself
			dueDate := item.DueDate
			var dueDateStart, dueDateEnd *time.Time
			if item.IsBirthDose {
				dueDate = dob
				dueDateStart = &dob
			} else {
				dueDateStart = item.DateRangeStart
				dueDateEnd = item.DateRangeEnd
			}

			if !forceReschedule {
				var count int64
				if err := tx.Model(&models.VaccinationReminder{}).
					Where("beneficiary_id = ? AND vaccine_code = ? AND dose_number = ? AND status = ?",
						beneficiaryID, item.VaccineCode, item.DoseNumber, models.ReminderStatusPending).
					Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					continue // reminders already scheduled for this dose
				}
			} else {
				if err := tx.Model(&models.VaccinationReminder{}).
					Where("beneficiary_id = ? AND vaccine_code = ? AND dose_number = ? AND status = ?",
						beneficiaryID, item.VaccineCode, item.DoseNumber, models.ReminderStatusPending).
					Update("status", models.ReminderStatusCancelled).Error; err != nil {
					return err
				}
			}

			reminders := buildDoseReminders(beneficiaryID, item, dueDate, today, dueDateStart, dueDateEnd)
			for i := range reminders {
				if err := tx.Create(&reminders[i]).Error; err != nil {
					return err
				}
			}
			created = append(created, reminders...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// buildDoseReminders materializes the reminder rows for one dose. Offsets
// whose scheduled date already passed are not created; the follow-up is the
// opposite and only exists once the due date has passed.
func buildDoseReminders(
	beneficiaryID uuid.UUID,
	item TimelineItem,
	dueDate, today time.Time,
	dueDateStart, dueDateEnd *time.Time,
) []models.VaccinationReminder {
	var reminders []models.VaccinationReminder

	newReminder := func(reminderType string, scheduledDate time.Time) models.VaccinationReminder {
		return models.VaccinationReminder{
			BeneficiaryID:        beneficiaryID,
			VaccineCode:          item.VaccineCode,
			VaccineName:          item.VaccineName,
			DoseNumber:           item.DoseNumber,
			DoseLabel:            item.DoseLabel,
			ReminderType:         reminderType,
			ScheduledDate:        scheduledDate,
			ScheduledTime:        utils.AtHour(scheduledDate, ReminderHour),
			Status:               models.ReminderStatusPending,
			NotificationChannels: models.DefaultNotificationChannels,
			IsEnabled:            true,
			IsBirthDose:          item.IsBirthDose,
			DueDateStart:         dueDateStart,
			DueDateEnd:           dueDateEnd,
		}
	}

	sevenDaysBefore := dueDate.AddDate(0, 0, -SevenDaysBeforeOffset)
	if !sevenDaysBefore.Before(today) {
		reminders = append(reminders, newReminder(models.ReminderSevenDaysBefore, sevenDaysBefore))
	}

	oneDayBefore := dueDate.AddDate(0, 0, -OneDayBeforeOffset)
	if !oneDayBefore.Before(today) {
		reminders = append(reminders, newReminder(models.ReminderOneDayBefore, oneDayBefore))
	}

	if !dueDate.Before(today) {
		reminders = append(reminders, newReminder(models.ReminderDueDate, dueDate))
	}

	// Follow-up for missed doses, only scheduled retroactively
	if dueDate.Before(today) {
		followUp := dueDate.AddDate(0, 0, FollowUpMissedOffset)
		reminders = append(reminders, newReminder(models.ReminderFollowUpMissed, followUp))
	}

	return reminders
}

// CancelReminder cancels a single reminder. A no-op if the reminder is not
// PENDING anymore.
func (s *ReminderService) CancelReminder(reminderID uuid.UUID) error {
	var reminder models.VaccinationReminder
	if err := s.db.First(&reminder, "id = ?", reminderID).Error; err != nil {
		return err
	}
	if reminder.Status != models.ReminderStatusPending {
		return nil
	}
	return s.db.Model(&reminder).Update("status", models.ReminderStatusCancelled).Error
}

// SetReminderEnabled toggles the user preference for one reminder
func (s *ReminderService) SetReminderEnabled(reminderID uuid.UUID, enabled bool) error {
	var reminder models.VaccinationReminder
	if err := s.db.First(&reminder, "id = ?", reminderID).Error; err != nil {
		return err
	}
	return s.db.Model(&reminder).Update("is_enabled", enabled).Error
}

// CancelRemindersForVaccination cancels all pending reminders for a dose
// once it has been recorded as given
func (s *ReminderService) CancelRemindersForVaccination(
	beneficiaryID uuid.UUID,
	vaccineCode string,
	doseNumber int,
) error {
	return s.db.Model(&models.VaccinationReminder{}).
		Where("beneficiary_id = ? AND vaccine_code = ? AND dose_number = ? AND status = ?",
			beneficiaryID, vaccineCode, doseNumber, models.ReminderStatusPending).
		Update("status", models.ReminderStatusCancelled).Error
}

// GetUpcomingReminders returns a beneficiary's pending, enabled reminders
// scheduled within the next daysAhead days, earliest first
func (s *ReminderService) GetUpcomingReminders(
	beneficiaryID uuid.UUID,
	daysAhead int,
) ([]models.VaccinationReminder, error) {
	today := utils.BeginningOfDay(time.Now())
	endDate := today.AddDate(0, 0, daysAhead)

	var reminders []models.VaccinationReminder
	err := s.db.
		Where("beneficiary_id = ? AND status = ? AND is_enabled = ?",
			beneficiaryID, models.ReminderStatusPending, true).
		Where("scheduled_date >= ? AND scheduled_date <= ?", today, endDate).
		Order("scheduled_date asc").
		Find(&reminders).Error
	return reminders, err
}

// GetNextReminder returns the earliest upcoming reminder for a beneficiary
// within the next year, or nil if none exists
func (s *ReminderService) GetNextReminder(beneficiaryID uuid.UUID) (*models.VaccinationReminder, error) {
	reminders, err := s.GetUpcomingReminders(beneficiaryID, 365)
	if err != nil {
		return nil, err
	}
	if len(reminders) == 0 {
		return nil, nil
	}
	return &reminders[0], nil
}

// GetPendingReminders returns pending, enabled reminders whose scheduled
// time has arrived, for the dispatch poller
func (s *ReminderService) GetPendingReminders(limit int) ([]models.VaccinationReminder, error) {
	var reminders []models.VaccinationReminder
	err := s.db.
		Where("status = ? AND is_enabled = ? AND scheduled_time <= ?",
			models.ReminderStatusPending, true, time.Now()).
		Order("scheduled_time asc").
		Limit(limit).
		Find(&reminders).Error
	return reminders, err
}

// MarkReminderSent records the dispatch outcome for a reminder. Failure
// increments the retry counter; retry policy itself is external.
func (s *ReminderService) MarkReminderSent(reminderID uuid.UUID, success bool, failureReason string) error {
	var reminder models.VaccinationReminder
	if err := s.db.First(&reminder, "id = ?", reminderID).Error; err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if success {
		now := time.Now()
		updates["status"] = models.ReminderStatusSent
		updates["sent_at"] = &now
	} else {
		updates["status"] = models.ReminderStatusFailed
		updates["failure_reason"] = failureReason
		updates["retry_count"] = reminder.RetryCount + 1
	}

	return s.db.Model(&reminder).Updates(updates).Error
}
