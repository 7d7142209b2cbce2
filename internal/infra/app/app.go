package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/damianS7/photogram-backend-sub000/internal/core/port"
	"github.com/damianS7/photogram-backend-sub000/internal/infra/config"
	"github.com/damianS7/photogram-backend-sub000/internal/infra/database"
	kafkainfra "github.com/damianS7/photogram-backend-sub000/internal/infra/kafka"
	"github.com/damianS7/photogram-backend-sub000/internal/infra/logger"
	redisinfra "github.com/damianS7/photogram-backend-sub000/internal/infra/redis"
	"github.com/damianS7/photogram-backend-sub000/internal/infra/security"
	"github.com/damianS7/photogram-backend-sub000/internal/infra/telemetry"
	postgresrepo "github.com/damianS7/photogram-backend-sub000/internal/repository/postgres"
	redisrepo "github.com/damianS7/photogram-backend-sub000/internal/repository/redis"
	"github.com/damianS7/photogram-backend-sub000/internal/transport/http/middleware"
	"github.com/damianS7/photogram-backend-sub000/internal/transport/http/routes"
	"github.com/damianS7/photogram-backend-sub000/internal/usecase"
)

// Application owns the wired service graph and its long-lived resources.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	tracer   *telemetry.TracerProvider
	producer *kafkainfra.Producer
}

// New builds the application: config in, fully wired HTTP engine out.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)
	uow := postgresrepo.NewUnitOfWork(pool, repos.Accounts, repos.Tokens)
	consumedCache := redisrepo.NewConsumedTokenCache(redisClient.Client(), cfg.Redis.ConsumedTokenPrefix)

	var producer *kafkainfra.Producer
	var eventPublisher port.EventPublisher
	var notifier port.Notifier
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			stub := kafkainfra.NewStubPublisher(log)
			eventPublisher, notifier = stub, stub
		} else {
			publisher := kafkainfra.NewEventPublisher(producer, cfg.App, log)
			eventPublisher, notifier = publisher, publisher
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		stub := kafkainfra.NewStubPublisher(log)
		eventPublisher, notifier = stub, stub
	}

	hasher := security.NewPasswordHasher()
	policy := security.DefaultPasswordValidator()

	sessionIssuer, err := security.NewSessionIssuer(cfg.Session.Secret, cfg.App.Name, cfg.Session.TTL)
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init session issuer: %w", err)
	}

	tokenService := usecase.NewTokenService(
		repos.Tokens,
		cfg.Tokens.VerificationTTL,
		cfg.Tokens.ResetTTL,
		log,
		usecase.WithConsumedTokenCache(consumedCache),
	)
	registrationService := usecase.NewRegistrationService(repos.Accounts, tokenService, hasher, policy, notifier, eventPublisher, log)
	lifecycleService := usecase.NewLifecycleService(repos.Accounts, uow, tokenService, notifier, eventPublisher, log)
	credentialService := usecase.NewCredentialService(repos.Accounts, uow, tokenService, hasher, policy, notifier, eventPublisher, log)
	authService := usecase.NewAuthService(repos.Accounts, hasher, sessionIssuer, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Namespace: "photogram"})
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Sessions: sessionIssuer,
		Metrics:  metrics,
		Database: pool,
		Cache:    redisClient,
		Services: routes.ServiceSet{
			Auth:         authService,
			Registration: registrationService,
			Lifecycle:    lifecycleService,
			Credentials:  credentialService,
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		tracer:   tracer,
		producer: producer,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			_ = a.producer.Close()
		}
	}()
	defer func() {
		if a.tracer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.tracer.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("telemetry shutdown failed", zap.Error(err))
			}
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting accounts API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case err := <-serverErrCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down accounts API")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}

	return nil
}
