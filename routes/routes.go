package routes

import (
	"os"
	"strings"

	"vaxtrack-backend/config"
	"vaxtrack-backend/controllers"
	"vaxtrack-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}
	if env := os.Getenv("ALLOWED_ORIGINS"); env != "" {
		allowedOrigins = strings.Split(env, ",")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Beneficiary routes
		beneficiaries := api.Group("/beneficiaries")
		{
			beneficiaries.POST("", controllers.CreateBeneficiary)
			beneficiaries.GET("", controllers.GetBeneficiaries)
			beneficiaries.GET("/:id", controllers.GetBeneficiary)
			beneficiaries.PUT("/:id", controllers.UpdateBeneficiary)
			beneficiaries.DELETE("/:id", controllers.DeleteBeneficiary)

			// Vaccination records
			beneficiaries.POST("/:id/vaccinations", controllers.CreateVaccination)
			beneficiaries.GET("/:id/vaccinations", controllers.GetVaccinations)

			// Timeline
			beneficiaries.GET("/:id/timeline", controllers.GetTimeline)

			// Reminder scheduling per beneficiary
			beneficiaries.POST("/:id/reminders/schedule", controllers.ScheduleReminders)
			beneficiaries.GET("/:id/reminders/upcoming", controllers.GetUpcomingReminders)
			beneficiaries.GET("/:id/reminders/next", controllers.GetNextReminder)
		}

		// Vaccine catalog routes
		vaccines := api.Group("/vaccines")
		{
			vaccines.POST("", controllers.CreateVaccine)
			vaccines.GET("", controllers.GetVaccines)
			vaccines.GET("/:code", controllers.GetVaccine)
		}

		// Reminder routes
		reminders := api.Group("/reminders")
		{
			reminders.GET("/pending", controllers.GetPendingReminders)
			reminders.POST("/:id/cancel", controllers.CancelReminder)
			reminders.PUT("/:id/enabled", controllers.SetReminderEnabled)
			reminders.POST("/:id/sent", controllers.MarkReminderSent)
		}
	}

	return r
}
