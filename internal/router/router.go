// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/licensestack/ls-backend/internal/config"
	"github.com/licensestack/ls-backend/internal/handlers"
	"github.com/licensestack/ls-backend/internal/middleware"
	"github.com/licensestack/ls-backend/internal/services"
	"github.com/licensestack/ls-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(cfg)

	authService := services.NewAuthService(db, cfg)
	licenseService := services.NewLicenseService(db, cfg, notificationService)
	allocationService := services.NewAllocationService(db)
	softwareService := services.NewSoftwareService(db)
	apiKeyService := services.NewAPIKeyService(db)
	adminService := services.NewAdminService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	licenseHandler := handlers.NewLicenseHandler(licenseService)
	allocationHandler := handlers.NewAllocationHandler(allocationService)
	softwareHandler := handlers.NewSoftwareHandler(softwareService)
	adminHandler := handlers.NewAdminHandler(adminService, apiKeyService)
	verificationHandler := handlers.NewVerificationHandler(licenseService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Software catalog
		software := v1.Group("/software")
		software.Use(middleware.AuthRequired())
		{
			software.GET("", softwareHandler.GetSoftware)
			software.GET("/:id", softwareHandler.GetSoftwareByID)
		}

		// License issuance
		licenses := v1.Group("/licenses")
		licenses.Use(middleware.AuthRequired())
		{
			licenses.POST("", licenseHandler.IssueLicense)
			licenses.GET("/recent", licenseHandler.GetRecentLicenses)
		}

		// Quota inspection
		allocations := v1.Group("/allocations")
		allocations.Use(middleware.AuthRequired())
		{
			allocations.GET("/remaining", allocationHandler.GetRemainingQuota)
		}

		// License verification (API key authenticated)
		verify := v1.Group("/verify")
		verify.Use(middleware.VerifyRateLimit(), middleware.APIKeyRequired(apiKeyService))
		{
			verify.GET("/:key", verificationHandler.VerifyLicenseKey)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			// Dashboard
			admin.GET("/dashboard/stats", adminHandler.GetDashboardStats)

			// Reseller management
			adminResellers := admin.Group("/resellers")
			{
				adminResellers.GET("", adminHandler.GetResellers)
				adminResellers.POST("", adminHandler.CreateReseller)
			}

			// Allocation management
			adminAllocations := admin.Group("/allocations")
			{
				adminAllocations.GET("", allocationHandler.GetAllocations)
				adminAllocations.POST("", allocationHandler.GrantAllocation)
				adminAllocations.PUT("/quota", allocationHandler.SetQuota)
			}

			// Software management
			adminSoftware := admin.Group("/software")
			{
				adminSoftware.POST("", softwareHandler.CreateSoftware)
				adminSoftware.PUT("/:id", softwareHandler.UpdateSoftware)
				adminSoftware.DELETE("/:id", softwareHandler.DeactivateSoftware)
			}

			// API key management
			adminAPIKeys := admin.Group("/api-keys")
			{
				adminAPIKeys.GET("", adminHandler.GetAPIKeys)
				adminAPIKeys.POST("", adminHandler.CreateAPIKey)
				adminAPIKeys.DELETE("/:id", adminHandler.RevokeAPIKey)
			}
		}
	}

	return r
}
