package main

import (
	"fmt"
	"log"
	"os"

	"vaxtrack-backend/config"
	"vaxtrack-backend/models"
	"vaxtrack-backend/routes"
	"vaxtrack-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.User{},
		&models.Beneficiary{},
		&models.VaccineMaster{},
		&models.Vaccination{},
		&models.VaccinationReminder{},
	)

	if err := config.EnsureReminderConstraints(); err != nil {
		log.Printf("Failed to ensure reminder constraints: %v", err)
	}
}

func main() {

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dispatcher := services.NewDispatchService(config.DB)
	dispatcher.StartScheduler()

	r := routes.SetupRouter()
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
