package routes

import (
	"tradepro-network/internal/adapters/http/handlers"
	"tradepro-network/internal/adapters/http/middleware"
	"tradepro-network/internal/adapters/persistence/repositories"
	"tradepro-network/internal/config"
	"tradepro-network/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	packageRepo := repositories.NewPackageRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	withdrawalRepo := repositories.NewWithdrawalRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)

	// Initialize services
	earningsService := services.NewEarningsService(userRepo, transactionRepo)
	referralService := services.NewReferralService(userRepo)
	authService := services.NewAuthService(userRepo, packageRepo, refreshTokenRepo, transactionRepo, notificationRepo, earningsService, cfg.JWT)
	userService := services.NewUserService(userRepo, packageRepo, transactionRepo, refreshTokenRepo)
	packageService := services.NewPackageService(packageRepo, userRepo, transactionRepo, notificationRepo, earningsService)
	withdrawalService := services.NewWithdrawalService(withdrawalRepo, userRepo, transactionRepo, notificationRepo)
	notificationService := services.NewNotificationService(notificationRepo)
	dashboardService := services.NewDashboardService(userRepo, withdrawalRepo, transactionRepo, notificationRepo, earningsService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, userService, cfg)
	userHandler := handlers.NewUserHandler(userService, authService)
	teamHandler := handlers.NewTeamHandler(referralService, earningsService)
	packageHandler := handlers.NewPackageHandler(packageService)
	withdrawalHandler := handlers.NewWithdrawalHandler(withdrawalService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public, rate limited)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Package catalog (public list, authenticated upgrade)
	packageRoutes := apiV1.Group("/packages")
	packageRoutes.Get("/", packageHandler.List)
	packageRoutes.Post("/upgrade", middleware.AuthMiddleware(cfg), packageHandler.Upgrade)

	// Member routes (authenticated)
	userRoutes := apiV1.Group("/users", middleware.AuthMiddleware(cfg))
	userRoutes.Put("/me", userHandler.UpdateProfile)
	userRoutes.Put("/me/password", middleware.StrictRateLimiter(), userHandler.ChangePassword)
	userRoutes.Get("/me/transactions", userHandler.Transactions)

	teamRoutes := apiV1.Group("/team", middleware.AuthMiddleware(cfg))
	teamRoutes.Get("/tree", teamHandler.Tree)
	teamRoutes.Get("/earnings", teamHandler.Earnings)

	withdrawalRoutes := apiV1.Group("/withdrawals", middleware.AuthMiddleware(cfg))
	withdrawalRoutes.Post("/", middleware.StrictRateLimiter(), withdrawalHandler.Submit)
	withdrawalRoutes.Get("/", withdrawalHandler.History)

	notificationRoutes := apiV1.Group("/notifications", middleware.AuthMiddleware(cfg))
	notificationRoutes.Get("/", notificationHandler.List)
	notificationRoutes.Put("/read-all", notificationHandler.MarkAllRead)
	notificationRoutes.Put("/:id/read", notificationHandler.MarkRead)

	dashboardRoutes := apiV1.Group("/dashboard", middleware.AuthMiddleware(cfg))
	dashboardRoutes.Get("/", dashboardHandler.Member)

	// Admin routes
	adminRoutes := apiV1.Group("/admin", middleware.AuthMiddleware(cfg), middleware.AdminOnly())
	setupAdminRoutes(adminRoutes, userHandler, teamHandler, withdrawalHandler, dashboardHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (5 req/min/IP)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupAdminRoutes configures admin routes
func setupAdminRoutes(
	router fiber.Router,
	userHandler *handlers.UserHandler,
	teamHandler *handlers.TeamHandler,
	withdrawalHandler *handlers.WithdrawalHandler,
	dashboardHandler *handlers.DashboardHandler,
) {
	// User directory
	router.Get("/users", userHandler.List)
	router.Post("/users", userHandler.Create)
	router.Get("/users/:id", userHandler.Get)
	router.Put("/users/:id", userHandler.Update)
	router.Delete("/users/:id", userHandler.Delete)
	router.Put("/users/:id/password", userHandler.ResetPassword)
	router.Get("/users/:id/tree", teamHandler.UserTree)
	router.Get("/users/:id/earnings", teamHandler.UserEarnings)

	// Withdrawal review queue
	router.Get("/withdrawals", withdrawalHandler.List)
	router.Put("/withdrawals/:id/approve", withdrawalHandler.Approve)
	router.Put("/withdrawals/:id/reject", withdrawalHandler.Reject)

	// Overview
	router.Get("/dashboard", dashboardHandler.Admin)
}
