// services/dispatch_service.go
package services

import (
	"fmt"
	"log"
	"os"
	"strings"

	"vaxtrack-backend/models"

	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

// How many due reminders one dispatch run picks up
const dispatchBatchSize = 100

// DispatchService delivers due reminders to guardians. It is the only part
// of the system that performs network I/O; scheduling itself never sends.
type DispatchService struct {
	db        *gorm.DB
	reminders *ReminderService
	client    *twilio.RestClient
}

func NewDispatchService(db *gorm.DB) *DispatchService {
	// Initialize Twilio client
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &DispatchService{
		db:        db,
		reminders: NewReminderService(db),
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

// StartScheduler runs the dispatch pass daily at the reminder hour
func (s *DispatchService) StartScheduler() {
	c := cron.New()

	c.AddFunc(fmt.Sprintf("0 %d * * *", ReminderHour), func() {
		s.DispatchDueReminders()
	})

	c.Start()
	log.Println("Reminder dispatch scheduler started")
}

// DispatchDueReminders sends every pending reminder whose scheduled time
// has arrived and records the outcome on each row
func (s *DispatchService) DispatchDueReminders() {
	log.Println("Starting reminder dispatch run...")

	due, err := s.reminders.GetPendingReminders(dispatchBatchSize)
	if err != nil {
		log.Printf("Failed to fetch due reminders: %v", err)
		return
	}

	for _, reminder := range due {
		s.dispatchReminder(reminder)
	}

	log.Printf("Reminder dispatch run completed, %d reminders processed", len(due))
}

func (s *DispatchService) dispatchReminder(reminder models.VaccinationReminder) {
	phone, beneficiaryName, err := s.guardianContact(reminder)
	if err != nil {
		log.Printf("Reminder %s: failed to resolve guardian contact: %v", reminder.ID, err)
		if err := s.reminders.MarkReminderSent(reminder.ID, false, "no guardian contact: "+err.Error()); err != nil {
			log.Printf("Reminder %s: failed to record failure: %v", reminder.ID, err)
		}
		return
	}

	message := composeReminderMessage(reminder, beneficiaryName)

	// Determine channel (WhatsApp if available, else SMS)
	channel := "sms"
	to := phone
	if strings.HasPrefix(phone, "+") {
		to = "whatsapp:" + phone
		channel = "whatsapp"
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(message)

	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	} else {
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	}

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("Failed to send reminder to %s: %v", phone, err)
		if err := s.reminders.MarkReminderSent(reminder.ID, false, err.Error()); err != nil {
			log.Printf("Reminder %s: failed to record failure: %v", reminder.ID, err)
		}
		return
	}

	if resp.Sid != nil {
		log.Printf("Reminder sent to %s, SID: %s", phone, *resp.Sid)
	} else {
		log.Printf("Reminder sent to %s, but no SID returned", phone)
	}

	if err := s.reminders.MarkReminderSent(reminder.ID, true, ""); err != nil {
		log.Printf("Reminder %s: failed to record success: %v", reminder.ID, err)
	}
}

// guardianContact resolves the phone number of the account that owns the
// reminder's beneficiary
func (s *DispatchService) guardianContact(reminder models.VaccinationReminder) (string, string, error) {
	var beneficiary models.Beneficiary
	if err := s.db.First(&beneficiary, "id = ?", reminder.BeneficiaryID).Error; err != nil {
		return "", "", err
	}

	var guardian models.User
	if err := s.db.First(&guardian, "id = ?", beneficiary.AccountID).Error; err != nil {
		return "", "", err
	}

	if guardian.Phone == "" {
		return "", "", fmt.Errorf("guardian %s has no phone number", guardian.ID)
	}
	return guardian.Phone, beneficiary.FullName(), nil
}

func composeReminderMessage(reminder models.VaccinationReminder, beneficiaryName string) string {
	dueDate := reminder.ScheduledDate.Format("02 Jan 2006")
	if reminder.DueDateStart != nil {
		dueDate = reminder.DueDateStart.Format("02 Jan 2006")
	}

	switch reminder.ReminderType {
	case models.ReminderSevenDaysBefore:
		return fmt.Sprintf("%s's %s (%s) is due in 7 days, on %s.",
			beneficiaryName, reminder.VaccineName, reminder.DoseLabel, dueDate)
	case models.ReminderOneDayBefore:
		return fmt.Sprintf("%s's %s (%s) is due tomorrow, %s.",
			beneficiaryName, reminder.VaccineName, reminder.DoseLabel, dueDate)
	case models.ReminderDueDate:
		return fmt.Sprintf("%s's %s (%s) is due today. Please visit your vaccination center.",
			beneficiaryName, reminder.VaccineName, reminder.DoseLabel)
	case models.ReminderFollowUpMissed:
		return fmt.Sprintf("%s's %s (%s) was due on %s and has not been recorded. Please schedule it soon.",
			beneficiaryName, reminder.VaccineName, reminder.DoseLabel, dueDate)
	default:
		return fmt.Sprintf("%s's %s (%s) is due on %s.",
			beneficiaryName, reminder.VaccineName, reminder.DoseLabel, dueDate)
	}
}
