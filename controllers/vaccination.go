package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"vaxtrack-backend/config"
	"vaxtrack-backend/models"
	"vaxtrack-backend/services"
	"vaxtrack-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateVaccinationInput defines the expected JSON structure for recording
// an administered dose
type CreateVaccinationInput struct {
	VaccineCode     string    `json:"vaccineCode" binding:"required"`
	DoseNumber      int       `json:"doseNumber" binding:"min=0"`
	VaccinationDate time.Time `json:"vaccinationDate" binding:"required"`
	AdministeredBy  string    `json:"administeredBy"`
	BatchNumber     string    `json:"batchNumber"`
	Notes           string    `json:"notes"`
}

// CreateVaccination records an administered dose for a beneficiary and
// cancels any pending reminders for it
func CreateVaccination(c *gin.Context) {
	accountID, ok := accountUUID(c)
	if !ok {
		return
	}

	beneficiary, ok := ownedBeneficiary(c, accountID)
	if !ok {
		return
	}

	var input CreateVaccinationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.VaccinationDate.After(time.Now()) {
		utils.RespondWithError(c, http.StatusBadRequest, "Vaccination date cannot be in the future")
		return
	}

	var vaccine models.VaccineMaster
	if err := config.DB.Where("vaccine_code = ?", input.VaccineCode).
		First(&vaccine).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Vaccine not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	doseNumber := input.DoseNumber
	if doseNumber == 0 {
		doseNumber = 1
	}

	vaccination := models.Vaccination{
		BeneficiaryID:   beneficiary.ID,
		VaccineID:       vaccine.ID,
		VaccineName:     vaccine.VaccineName,
		DoseNumber:      doseNumber,
		VaccinationDate: utils.BeginningOfDay(input.VaccinationDate),
		AdministeredBy:  input.AdministeredBy,
		BatchNumber:     input.BatchNumber,
		Notes:           input.Notes,
		IsActive:        true,
	}

	if err := config.DB.Create(&vaccination).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record vaccination")
		return
	}

	// The dose is given; its pending reminders are obsolete
	reminderService := services.NewReminderService(config.DB)
	if err := reminderService.CancelRemindersForVaccination(
		beneficiary.ID, vaccine.VaccineCode, doseNumber,
	); err != nil {
		log.Printf("Failed to cancel reminders for vaccination %s: %v", vaccination.ID, err)
	}

	c.JSON(http.StatusCreated, vaccination)
}

// GetVaccinations retrieves the administered doses for a beneficiary
func GetVaccinations(c *gin.Context) {
	accountID, ok := accountUUID(c)
	if !ok {
		return
	}

	beneficiary, ok := ownedBeneficiary(c, accountID)
	if !ok {
		return
	}

	var vaccinations []models.Vaccination
	if err := config.DB.
		Where("beneficiary_id = ? AND is_active = ?", beneficiary.ID, true).
		Order("vaccination_date asc").
		Find(&vaccinations).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve vaccinations")
		return
	}

	c.JSON(http.StatusOK, vaccinations)
}
