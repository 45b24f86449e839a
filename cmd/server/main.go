package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"tradepro-network/internal/adapters/http/middleware"
	"tradepro-network/internal/adapters/http/routes"
	"tradepro-network/internal/adapters/persistence/models"
	"tradepro-network/internal/adapters/persistence/repositories"
	"tradepro-network/internal/config"
	"tradepro-network/internal/core/services"

	"github.com/gofiber/fiber/v2"

	_ "tradepro-network/docs" // Swagger docs
)

// @title TradePro Network API
// @version 1.0
// @description Membership and referral network backend for TradePro Network
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@tradepro.network

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host api.tradepro.network
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed the package catalog
	if err := config.SeedMasterData(db); err != nil {
		log.Printf("⚠️ Warning: Failed to seed master data: %v", err)
	}

	// Seed admin account (and demo network in dev)
	if err := config.SeedInitialData(db, cfg); err != nil {
		log.Printf("⚠️ Warning: Failed to seed initial data: %v", err)
	}

	// Nightly maintenance: counter reconcile, earnings sync, token purge
	userRepo := repositories.NewUserRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	cronService := services.NewCronService(
		userRepo,
		repositories.NewRefreshTokenRepository(db),
		repositories.NewNotificationRepository(db),
		services.NewReferralService(userRepo),
		services.NewEarningsService(userRepo, transactionRepo),
	)
	if err := cronService.Start(); err != nil {
		log.Fatalf("❌ Failed to start cron scheduler: %v", err)
	}
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "TradePro Network API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
