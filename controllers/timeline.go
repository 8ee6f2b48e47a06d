package controllers

import (
	"errors"
	"net/http"

	"vaxtrack-backend/config"
	"vaxtrack-backend/services"
	"vaxtrack-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetTimeline returns the full vaccination timeline for a beneficiary:
// every scheduled dose with its status and due dates, plus a short-range
// reminders preview
func GetTimeline(c *gin.Context) {
	accountID, ok := accountUUID(c)
	if !ok {
		return
	}

	beneficiary, ok := ownedBeneficiary(c, accountID)
	if !ok {
		return
	}

	timelineService := services.NewTimelineService(config.DB)
	timeline, err := timelineService.GetTimeline(beneficiary.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Beneficiary not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to build timeline")
		}
		return
	}

	c.JSON(http.StatusOK, timeline)
}
