// controllers/reminder.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"vaxtrack-backend/config"
	"vaxtrack-backend/services"
	"vaxtrack-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SetReminderEnabledInput defines the expected JSON structure
type SetReminderEnabledInput struct {
	IsEnabled *bool `json:"isEnabled" binding:"required"`
}

// MarkReminderSentInput defines the expected JSON structure for recording
// a dispatch outcome
type MarkReminderSentInput struct {
	Success       *bool  `json:"success" binding:"required"`
	FailureReason string `json:"failureReason"`
}

// ScheduleReminders schedules reminders for all upcoming doses of a
// beneficiary. Pass force=true to cancel and recreate existing pending ones.
func ScheduleReminders(c *gin.Context) {
	accountID, ok := accountUUID(c)
	if !ok {
		return
	}

	beneficiary, ok := ownedBeneficiary(c, accountID)
	if !ok {
		return
	}

	force := c.Query("force") == "true"

	reminderService := services.NewReminderService(config.DB)
	reminders, err := reminderService.ScheduleReminders(beneficiary.ID, force)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Beneficiary not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to schedule reminders")
		}
		return
	}

	c.JSON(http.StatusOK, reminders)
}

// GetUpcomingReminders returns a beneficiary's pending reminders within the
// next daysAhead days (default 30)
func GetUpcomingReminders(c *gin.Context) {
	accountID, ok := accountUUID(c)
	if !ok {
		return
	}

	beneficiary, ok := ownedBeneficiary(c, accountID)
	if !ok {
		return
	}

	daysAhead := 30
	if v := c.Query("daysAhead"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid daysAhead value")
			return
		}
		daysAhead = n
	}

	reminderService := services.NewReminderService(config.DB)
	reminders, err := reminderService.GetUpcomingReminders(beneficiary.ID, daysAhead)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve reminders")
		return
	}

	c.JSON(http.StatusOK, reminders)
}

// GetNextReminder returns the earliest upcoming reminder for a beneficiary
func GetNextReminder(c *gin.Context) {
	accountID, ok := accountUUID(c)
	if !ok {
		return
	}

	beneficiary, ok := ownedBeneficiary(c, accountID)
	if !ok {
		return
	}

	reminderService := services.NewReminderService(config.DB)
	reminder, err := reminderService.GetNextReminder(beneficiary.ID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve reminder")
		return
	}

	if reminder == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, reminder)
}

// CancelReminder cancels a specific pending reminder
func CancelReminder(c *gin.Context) {
	reminderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reminder ID format")
		return
	}

	reminderService := services.NewReminderService(config.DB)
	if err := reminderService.CancelReminder(reminderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Reminder not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to cancel reminder")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reminder cancelled"})
}

// SetReminderEnabled toggles a reminder on or off
func SetReminderEnabled(c *gin.Context) {
	reminderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reminder ID format")
		return
	}

	var input SetReminderEnabledInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	reminderService := services.NewReminderService(config.DB)
	if err := reminderService.SetReminderEnabled(reminderID, *input.IsEnabled); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Reminder not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update reminder")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reminder updated"})
}

// GetPendingReminders returns reminders due for dispatch, for an external
// delivery poller
func GetPendingReminders(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid limit value")
			return
		}
		limit = n
	}

	reminderService := services.NewReminderService(config.DB)
	reminders, err := reminderService.GetPendingReminders(limit)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve reminders")
		return
	}

	c.JSON(http.StatusOK, reminders)
}

// MarkReminderSent records the outcome of a dispatch attempt
func MarkReminderSent(c *gin.Context) {
	reminderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reminder ID format")
		return
	}

	var input MarkReminderSentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	reminderService := services.NewReminderService(config.DB)
	if err := reminderService.MarkReminderSent(reminderID, *input.Success, input.FailureReason); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Reminder not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update reminder")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reminder updated"})
}
