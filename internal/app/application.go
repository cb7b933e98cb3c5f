package app

import (
	"net/http"
	"time"

	"github.com/ak/nutriplan/internal/app/middleware"
	"github.com/ak/nutriplan/internal/domain/services"
	"github.com/ak/nutriplan/internal/infrastructure/balancer"
	"github.com/ak/nutriplan/internal/infrastructure/config"
	"github.com/ak/nutriplan/internal/infrastructure/database"
	"github.com/ak/nutriplan/internal/infrastructure/repositories"
	"github.com/ak/nutriplan/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Application holds all application dependencies and services
type Application struct {
	config            *config.Config
	logger            *logger.Logger
	mongodb           *database.MongoDB
	repos             *repositories.Provider
	foodService       services.FoodService
	templateService   services.TemplateService
	assignmentService services.AssignmentService
	identityService   services.IdentityService
	router            *gin.Engine
}

// New creates a new Application instance
func New(cfg *config.Config, log *logger.Logger, mongodb *database.MongoDB) (*Application, error) {
	repos := repositories.NewProvider(mongodb)

	// Initialize identity service (optional - Keycloak may not be available in dev)
	var identitySvc services.IdentityService
	if cfg.Keycloak.URL != "" {
		var err error
		identitySvc, err = services.NewIdentityService(cfg.Keycloak)
		if err != nil {
			log.Warn("Keycloak unavailable, authentication endpoints disabled",
				zap.Error(err))
		}
	}

	resolver := services.NewSubstitutionResolver(repos.Substitution, log)
	balancerClient := balancer.NewClient(&cfg.Balancer, log)

	app := &Application{
		config:          cfg,
		logger:          log,
		mongodb:         mongodb,
		repos:           repos,
		foodService:     services.NewFoodService(repos.Food),
		templateService: services.NewTemplateService(repos.Template),
		assignmentService: services.NewAssignmentService(
			repos.Preference,
			repos.Template,
			repos.Food,
			repos.Plan,
			resolver,
			balancerClient,
			log,
		),
		identityService: identitySvc,
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	app.router = gin.New()

	// Add middleware
	app.router.Use(middleware.RecoveryMiddleware(log.Logger))
	app.router.Use(middleware.RequestID())
	app.router.Use(app.loggerMiddleware())
	app.router.Use(app.corsMiddleware())

	// Setup routes
	app.setupRoutes()

	return app, nil
}

// Router returns the HTTP handler
func (a *Application) Router() http.Handler {
	return a.router
}

func (a *Application) jwtConfig() middleware.JWTConfig {
	return middleware.JWTConfig{
		Secret:           a.config.JWT.Secret,
		Issuer:           a.config.JWT.Issuer,
		AccessTokenTTL:   a.config.JWT.AccessTokenTTL,
		RefreshThreshold: a.config.JWT.RefreshThreshold,
	}
}

// setupRoutes configures all application routes
func (a *Application) setupRoutes() {
	// Health check endpoints
	a.router.GET("/health", a.healthCheck)
	a.router.GET("/ready", a.readinessCheck)

	v1 := a.router.Group("/api/v1")
	{
		// Public info endpoint
		v1.GET("/info", a.apiInfo)

		// Authentication
		auth := v1.Group("/auth")
		{
			auth.POST("/login", a.login)
			auth.POST("/refresh", a.refreshToken)
		}

		// Everything below requires a verified platform token.
		protected := v1.Group("")
		protected.Use(middleware.JWTMiddleware(a.jwtConfig()))

		// Food catalog management
		foods := protected.Group("/foods")
		{
			foods.GET("", a.listFoods)
			foods.POST("", a.createFood)
			foods.GET("/:id", a.getFood)
			foods.PUT("/:id", a.updateFood)
			foods.DELETE("/:id", a.deleteFood)
		}

		// Substitution mapping management
		substitutions := protected.Group("/substitutions")
		{
			substitutions.GET("", a.listSubstitutions)
			substitutions.POST("", a.createSubstitution)
			substitutions.GET("/source/:food_id", a.listSubstitutionsBySource)
			substitutions.DELETE("/:source_id/:target_id", a.deleteSubstitution)
		}

		// Plan template management
		templates := protected.Group("/templates")
		{
			templates.GET("", a.listTemplates)
			templates.POST("", a.createTemplate)
			templates.GET("/:id", a.getTemplate)
			templates.PUT("/:id", a.updateTemplate)
			templates.DELETE("/:id", a.deleteTemplate)
			templates.POST("/:id/macros", a.previewTemplateMacros)
		}

		// Client preference management and provisioning
		clients := protected.Group("/clients")
		{
			clients.POST("", a.createClient)
			clients.GET("/:id/preferences", a.getClientPreferences)
			clients.PUT("/:id/preferences", a.upsertClientPreferences)
		}

		// Template assignment
		protected.POST("/assignments", a.createAssignment)

		// Personalized plans
		plans := protected.Group("/plans")
		{
			plans.GET("", a.listPlans)
			plans.GET("/:plan_id", a.getPlan)
		}
	}
}

// Middleware

func (a *Application) loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip logging for health checks
		if c.Request.URL.Path == "/health" || c.Request.URL.Path == "/ready" {
			c.Next()
			return
		}

		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		a.logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("user_id", middleware.GetUserID(c)),
		)
	}
}

func (a *Application) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
