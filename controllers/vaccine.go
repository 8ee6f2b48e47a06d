package controllers

import (
	"errors"
	"net/http"

	"vaxtrack-backend/config"
	"vaxtrack-backend/models"
	"vaxtrack-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateVaccineInput defines the expected JSON structure for adding a
// catalog entry
type CreateVaccineInput struct {
	VaccineCode         string              `json:"vaccineCode" binding:"required"`
	VaccineName         string              `json:"vaccineName" binding:"required"`
	Description         string              `json:"description"`
	TotalDoses          int                 `json:"totalDoses" binding:"min=1"`
	DosageSchedule      models.DoseSchedule `json:"dosageSchedule"`
	RecommendedAgeStart string              `json:"recommendedAgeStart"`
	RecommendedAgeEnd   string              `json:"recommendedAgeEnd"`
}

// CreateVaccine adds a vaccine to the catalog
func CreateVaccine(c *gin.Context) {
	var input CreateVaccineInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// A catalog entry needs at least one way to derive a schedule
	if len(input.DosageSchedule) == 0 && input.RecommendedAgeStart == "" {
		utils.RespondWithError(c, http.StatusBadRequest,
			"Either dosageSchedule or recommendedAgeStart is required")
		return
	}

	var existing models.VaccineMaster
	if err := config.DB.Where("vaccine_code = ?", input.VaccineCode).
		First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Vaccine code already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	totalDoses := input.TotalDoses
	if totalDoses == 0 {
		totalDoses = 1
	}

	vaccine := models.VaccineMaster{
		VaccineCode:         input.VaccineCode,
		VaccineName:         input.VaccineName,
		Description:         input.Description,
		TotalDoses:          totalDoses,
		DosageSchedule:      input.DosageSchedule,
		RecommendedAgeStart: input.RecommendedAgeStart,
		RecommendedAgeEnd:   input.RecommendedAgeEnd,
		IsActive:            true,
	}

	if err := config.DB.Create(&vaccine).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create vaccine")
		return
	}

	c.JSON(http.StatusCreated, vaccine)
}

// GetVaccines retrieves the active vaccine catalog
func GetVaccines(c *gin.Context) {
	var vaccines []models.VaccineMaster
	if err := config.DB.Where("is_active = ?", true).Find(&vaccines).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve vaccines")
		return
	}

	c.JSON(http.StatusOK, vaccines)
}

// GetVaccine retrieves a catalog entry by vaccine code
func GetVaccine(c *gin.Context) {
	code := c.Param("code")

	var vaccine models.VaccineMaster
	if err := config.DB.Where("vaccine_code = ?", code).First(&vaccine).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Vaccine not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, vaccine)
}
