package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"coursehub/backend/config"
	"coursehub/backend/middleware"
	"coursehub/backend/routes"
	"coursehub/backend/services"
	"coursehub/backend/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	if err := utils.SeedRoles(db); err != nil {
		log.Fatalf("Error seeding roles: %v", err)
	}

	// Initialize logger and mailer
	logger := utils.InitLogger()
	mailer := services.NewMailer(cfg, logger)

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, mailer, logger)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
