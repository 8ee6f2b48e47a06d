package controllers

import (
	"errors"
	"net/http"
	"time"

	"vaxtrack-backend/config"
	"vaxtrack-backend/models"
	"vaxtrack-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateBeneficiaryInput defines the expected JSON structure for creating a beneficiary
type CreateBeneficiaryInput struct {
	Type        string    `json:"type" binding:"required,oneof=CHILD ADULT"`
	FirstName   string    `json:"firstName" binding:"required"`
	LastName    string    `json:"lastName" binding:"required"`
	Gender      string    `json:"gender" binding:"omitempty,oneof=male female other"`
	DateOfBirth time.Time `json:"dateOfBirth" binding:"required"`
}

// UpdateBeneficiaryInput defines the expected JSON structure for updating a beneficiary
type UpdateBeneficiaryInput struct {
	FirstName   *string    `json:"firstName"`
	LastName    *string    `json:"lastName"`
	Gender      *string    `json:"gender"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
	IsActive    *bool      `json:"isActive"`
}

// accountUUID pulls the authenticated account ID out of the request context
func accountUUID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(userID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return uuid.Nil, false
	}
	return id, true
}

// ownedBeneficiary loads a beneficiary by path param and verifies the caller
// owns it. Writes the error response itself on failure.
func ownedBeneficiary(c *gin.Context, accountID uuid.UUID) (*models.Beneficiary, bool) {
	beneficiaryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid beneficiary ID format")
		return nil, false
	}

	var beneficiary models.Beneficiary
	if err := config.DB.Where("account_id = ? AND id = ?", accountID, beneficiaryID).
		First(&beneficiary).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Beneficiary not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &beneficiary, true
}

// CreateBeneficiary adds a child or adult to the caller's account
func CreateBeneficiary(c *gin.Context) {
	accountID, ok := accountUUID(c)
	if !ok {
		return
	}

	var input CreateBeneficiaryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.DateOfBirth.After(time.Now()) {
		utils.RespondWithError(c, http.StatusBadRequest, "Date of birth cannot be in the future")
		return
	}

	beneficiary := models.Beneficiary{
		AccountID:   accountID,
		Type:        input.Type,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Gender:      input.Gender,
		DateOfBirth: utils.BeginningOfDay(input.DateOfBirth),
		IsActive:    true,
	}

	if err := config.DB.Create(&beneficiary).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create beneficiary")
		return
	}

	c.JSON(http.StatusCreated, beneficiary)
}

// GetBeneficiaries retrieves all beneficiaries for the caller's account
func GetBeneficiaries(c *gin.Context) {
	accountID, ok := accountUUID(c)
	if !ok {
		return
	}

	var beneficiaries []models.Beneficiary
	if err := config.DB.Where("account_id = ?", accountID).Find(&beneficiaries).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve beneficiaries")
		return
	}

	c.JSON(http.StatusOK, beneficiaries)
}

// GetBeneficiary retrieves a specific beneficiary by ID
func GetBeneficiary(c *gin.Context) {
	accountID, ok := accountUUID(c)
	if !ok {
		return
	}

	beneficiary, ok := ownedBeneficiary(c, accountID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, beneficiary)
}

// UpdateBeneficiary updates an existing beneficiary
func UpdateBeneficiary(c *gin.Context) {
	accountID, ok := accountUUID(c)
	if !ok {
		return
	}

	beneficiary, ok := ownedBeneficiary(c, accountID)
	if !ok {
		return
	}

	var input UpdateBeneficiaryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.FirstName != nil {
		beneficiary.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		beneficiary.LastName = *input.LastName
	}
	if input.Gender != nil {
		beneficiary.Gender = *input.Gender
	}
	if input.DateOfBirth != nil {
		beneficiary.DateOfBirth = utils.BeginningOfDay(*input.DateOfBirth)
	}
	if input.IsActive != nil {
		beneficiary.IsActive = *input.IsActive
	}

	if err := config.DB.Save(beneficiary).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update beneficiary")
		return
	}

	c.JSON(http.StatusOK, beneficiary)
}

// DeleteBeneficiary soft deletes a beneficiary
func DeleteBeneficiary(c *gin.Context) {
	accountID, ok := accountUUID(c)
	if !ok {
		return
	}

	beneficiaryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid beneficiary ID format")
		return
	}

	result := config.DB.Where("account_id = ? AND id = ?", accountID, beneficiaryID).
		Delete(&models.Beneficiary{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete beneficiary")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Beneficiary not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Beneficiary deleted successfully"})
}
