package routes

import (
	"github.com/aloysiustan/teachrate-backend/internal/api/handlers"
	"github.com/aloysiustan/teachrate-backend/internal/api/middleware"
	"github.com/aloysiustan/teachrate-backend/internal/config"
	"github.com/aloysiustan/teachrate-backend/internal/scoring"
	"github.com/aloysiustan/teachrate-backend/internal/services"
	"github.com/aloysiustan/teachrate-backend/internal/storage"
	"github.com/aloysiustan/teachrate-backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	// Middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RateLimitMiddleware(cfg))

	validationService := services.NewValidationService(cfg.AbstractEmailAPIKey)

	// Scorer lifecycle is owned here, not by the storage layer: one shared
	// inference client feeds both model adapters.
	inferenceClient := scoring.NewInferenceClient(cfg.InferenceURL, cfg.InferenceAPIKey)
	sentimentScorer := scoring.NewSentimentScorer(inferenceClient)
	biasScorer := scoring.NewBiasScorer(inferenceClient)

	ledger := storage.NewGormLedger(db)

	// Initialize services
	emailService := services.NewEmailService(cfg)
	authService := services.NewAuthService(db, cfg.JWTSecret, validationService, emailService, cfg.BaseURL)
	reviewService := services.NewReviewService(ledger, sentimentScorer, biasScorer)
	teacherService := services.NewTeacherService(db, ledger)
	adminService := services.NewAdminService(db, cfg, emailService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	passwordHandler := handlers.NewPasswordHandler(authService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	teacherHandler := handlers.NewTeacherHandler(teacherService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "message": "Server is running"})
	})

	// API routes
	api := router.Group("/api/v1")

	// Auth routes (public)
	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", middleware.AuthMiddleware(cfg), authHandler.Logout)
		auth.POST("/refresh-token", authHandler.RefreshToken)
		auth.GET("/profile", middleware.AuthMiddleware(cfg), authHandler.GetProfile)
		auth.PUT("/profile-update", middleware.AuthMiddleware(cfg), authHandler.UpdateProfile)
	}

	// Password reset routes
	passwordGroup := api.Group("/password")
	{
		passwordGroup.POST("/forgot", passwordHandler.ForgotPassword)
		passwordGroup.GET("/validate-reset-token", passwordHandler.ValidateResetToken)
		passwordGroup.POST("/reset", passwordHandler.ResetPassword)
		passwordGroup.POST("/change", middleware.AuthMiddleware(cfg), passwordHandler.ChangePassword)
	}

	// Teacher directory (public)
	teachers := api.Group("/teachers")
	{
		teachers.GET("/", teacherHandler.SearchTeachers)
		teachers.GET("/:teacher_id", teacherHandler.GetTeacherProfile)
		teachers.GET("/:teacher_id/reviews", teacherHandler.GetTeacherReviews)
	}

	// Review pipeline (authenticated)
	reviews := api.Group("/teachers/:teacher_id/reviews", middleware.AuthMiddleware(cfg), middleware.ReviewerOrAdmin())
	{
		reviews.POST("/", reviewHandler.SubmitReview)
		reviews.POST("/:review_id/modify", reviewHandler.ModifyReview)
	}

	// Schools (public)
	api.GET("/schools", teacherHandler.GetSchools)

	// Admin routes
	admin := api.Group("/admin", middleware.AuthMiddleware(cfg), middleware.AdminOnly())
	{
		admin.GET("/dashboard", adminHandler.GetDashboard)

		// Directory management
		admin.POST("/schools", adminHandler.CreateSchool)
		admin.POST("/teachers", adminHandler.CreateTeacher)
		admin.PUT("/teachers/:teacher_id", adminHandler.UpdateTeacher)
		admin.DELETE("/teachers/:teacher_id", adminHandler.DeleteTeacher)
		admin.POST("/teachers/:teacher_id/photo", adminHandler.UploadTeacherPhoto)

		// Review oversight
		admin.GET("/reviews/unreliable", adminHandler.GetUnreliableReviews)
		admin.GET("/reviews/ai", adminHandler.GetAIReviews)
	}

	logger.Info("Routes initialized successfully")
}
