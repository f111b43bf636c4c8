package handlers

import (
	"github.com/SscSPs/travel_backoffice/cmd/docs"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/SscSPs/travel_backoffice/internal/platform/config"
	"github.com/SscSPs/travel_backoffice/internal/utils"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RouteOptions carries the optional collaborators of RegisterRoutes.
type RouteOptions struct {
	// PublicLimiter throttles the unauthenticated login and bootstrap routes. Nil disables it.
	PublicLimiter *limiter.Limiter
	Posthog       *utils.PosthogClientWrapper
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	opts RouteOptions,
) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	public := r.Group("/api/v1")
	if opts.PublicLimiter != nil {
		public.Use(middleware.RateLimit(opts.PublicLimiter))
	}
	registerBootstrapRoutes(public, services.Bootstrap)
	registerAuthRoutes(public, services)

	setupAPIV1Routes(r, cfg, services, opts)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the authenticated /api/v1 group and delegates to
// specific entity route registrations.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	opts RouteOptions,
) {
	v1 := r.Group("/api/v1",
		middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer),
		middleware.ActorMiddleware(services.Principal),
	)
	if opts.Posthog != nil {
		v1.Use(middleware.PosthogMiddleware(opts.Posthog))
	}

	registerPermissionRoutes(v1, services.Authorization, services.PermissionGroup)
	registerPermissionGroupRoutes(v1, services.PermissionGroup)
	registerEmployeeRoutes(v1, services.Principal)
	registerTicketRoutes(v1, services.Ledger)
	registerExchangeRateRoutes(v1, services.ExchangeRate)
	registerReportRoutes(v1, services.Report)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
