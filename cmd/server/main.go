package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alflem/onboarding-api/internal/config"
	"github.com/alflem/onboarding-api/internal/constants"
	"github.com/alflem/onboarding-api/internal/database"
	"github.com/alflem/onboarding-api/internal/handlers"
	"github.com/alflem/onboarding-api/internal/middleware"
	"github.com/alflem/onboarding-api/internal/models"
	"github.com/alflem/onboarding-api/internal/repository"
	"github.com/alflem/onboarding-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	logger, err := newLogger(cfg.GinMode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if cfg.DBDriver == "postgres" {
		if err := database.AddIndexes(database.GetDB()); err != nil {
			logger.Fatal("Failed to add indexes", zap.Error(err))
		}
	}

	// Initialize Gin router
	r := gin.New()
	r.Use(middleware.Logger(logger), gin.Recovery())

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,
		"tcp",
		redisAddr,
		"",
		"",
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		logger.Fatal("Failed to create Redis store", zap.Error(err))
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize repositories and services
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	checklistRepo := repository.NewChecklistRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	buddyRepo := repository.NewBuddyRepository(db)

	authService := services.NewAuthService(userRepo, orgRepo)
	checklistService := services.NewChecklistService(checklistRepo)
	buddyService := services.NewBuddyService(buddyRepo, userRepo, orgRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	templateHandler := handlers.NewTemplateHandler(checklistService, authService)
	categoryHandler := handlers.NewCategoryHandler(checklistService, checklistRepo)
	taskHandler := handlers.NewTaskHandler(checklistService, checklistRepo)
	employeeHandler := handlers.NewEmployeeHandler(userRepo, buddyService)
	orgHandler := handlers.NewOrganizationHandler(orgRepo)
	prepHandler := handlers.NewBuddyPreparationHandler(buddyService)
	checklistHandler := handlers.NewChecklistHandler(buddyService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Onboarding API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Template routes (admin)
		templates := api.Group("/templates")
		templates.Use(middleware.RequireAuth(), middleware.RequireAdmin())
		{
			templates.GET("", templateHandler.ListTemplates)
			templates.POST("", templateHandler.CreateTemplate)
			templates.POST("/import", templateHandler.ImportTemplate)
			templates.GET("/:id", middleware.RequireTemplateAccess(), templateHandler.GetTemplate)
			templates.DELETE("/:id", middleware.RequireTemplateAccess(), templateHandler.DeleteTemplate)
			templates.POST("/:id/reset", middleware.RequireTemplateAccess(), templateHandler.ResetTemplate)
			templates.POST("/:id/reset-buddy", middleware.RequireTemplateAccess(), templateHandler.ResetBuddyTemplate)
			templates.GET("/:id/export", middleware.RequireTemplateAccess(), templateHandler.ExportTemplate)
		}

		// Category routes (admin)
		categories := api.Group("/categories")
		categories.Use(middleware.RequireAuth(), middleware.RequireAdmin())
		{
			categories.POST("", categoryHandler.CreateCategory)
			categories.PATCH("/reorder", categoryHandler.ReorderCategories)
			categories.GET("/:id", middleware.RequireCategoryAccess(), categoryHandler.GetCategory)
			categories.PATCH("/:id", middleware.RequireCategoryAccess(), categoryHandler.UpdateCategory)
			categories.DELETE("/:id", middleware.RequireCategoryAccess(), categoryHandler.DeleteCategory)
		}

		// Task routes (admin)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(), middleware.RequireAdmin())
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.PATCH("/reorder", taskHandler.ReorderTasks)
			tasks.GET("/:id", middleware.RequireTaskAccess(), taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.RequireTaskAccess(), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireTaskAccess(), taskHandler.DeleteTask)
			tasks.PATCH("/:id/move", middleware.RequireTaskAccess(), taskHandler.MoveTask)
		}

		// Employee roster (admin)
		employees := api.Group("/employees")
		employees.Use(middleware.RequireAuth(), middleware.RequireAdmin())
		{
			employees.GET("", employeeHandler.ListEmployees)
			employees.GET("/:id", employeeHandler.GetEmployee)
			employees.DELETE("/:id", employeeHandler.DeleteEmployee)
			employees.PATCH("/:id/buddy", employeeHandler.AssignBuddy)
		}

		// Buddy preparations (admin)
		preps := api.Group("/buddy-preparations")
		preps.Use(middleware.RequireAuth(), middleware.RequireAdmin())
		{
			preps.GET("", prepHandler.ListPreparations)
			preps.POST("", prepHandler.CreatePreparation)
			preps.PATCH("/:id", prepHandler.UpdatePreparation)
			preps.DELETE("/:id", prepHandler.DeletePreparation)
		}

		// Buddy + personal checklist views (any authenticated user)
		api.GET("/buddy-people", middleware.RequireAuth(), prepHandler.ListPeople)

		checklist := api.Group("/checklist")
		checklist.Use(middleware.RequireAuth())
		{
			checklist.GET("/me", checklistHandler.MyChecklist)
			checklist.PATCH("/progress", checklistHandler.SetMyProgress)
			checklist.GET("/employee/:id", checklistHandler.PersonChecklist)
			checklist.PATCH("/employee/:id/progress", checklistHandler.SetPersonProgress)
		}

		// Organization routes (super admin)
		orgs := api.Group("/organizations")
		orgs.Use(middleware.RequireAuth(), middleware.RequireRole(models.RoleSuperAdmin))
		{
			orgs.GET("", orgHandler.ListOrganizations)
			orgs.POST("", orgHandler.CreateOrganization)
			orgs.GET("/:id", orgHandler.GetOrganization)
			orgs.PATCH("/:id", orgHandler.UpdateOrganization)
			orgs.DELETE("/:id", orgHandler.DeleteOrganization)
		}
	}

	// Start server
	logger.Info("Server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func newLogger(ginMode string) (*zap.Logger, error) {
	if ginMode == "release" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
