package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/damianS7/photogram-backend-sub000/internal/infra/config"
	"github.com/damianS7/photogram-backend-sub000/internal/transport/http/handlers"
	"github.com/damianS7/photogram-backend-sub000/internal/transport/http/middleware"
	"github.com/damianS7/photogram-backend-sub000/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth         *usecase.AuthService
	Registration *usecase.RegistrationService
	Lifecycle    *usecase.LifecycleService
	Credentials  *usecase.CredentialService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Services ServiceSet
	Sessions middleware.SessionVerifier
	Metrics  *middleware.HTTPMetrics
	Database DatabaseChecker
	Cache    CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}
	if len(deps.Config.App.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.App.CORSAllowedOrigins))
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		authHandler := handlers.NewAuthHandler(deps.Services.Auth)
		authHandler.RegisterRoutes(authGroup)

		accountGroup := api.Group("/accounts")
		registrationHandler := handlers.NewRegistrationHandler(deps.Services.Registration, deps.Services.Lifecycle)
		registrationHandler.RegisterRoutes(accountGroup)

		passwordHandler := handlers.NewPasswordHandler(deps.Services.Credentials, deps.Logger)
		passwordGroup := api.Group("/password")
		if deps.Sessions != nil {
			passwordGroup.POST("/change", middleware.RequireSession(deps.Sessions), passwordHandler.ChangePassword)
		}
		resetGroup := passwordGroup.Group("/reset")
		resetGroup.POST("/request", passwordHandler.ResetPassword)
		resetGroup.POST("/confirm", passwordHandler.ConfirmReset)
	}

	return r
}
