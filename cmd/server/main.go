package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fleetboss/fleet-service/internal/adapters"
	"github.com/fleetboss/fleet-service/internal/config"
	"github.com/fleetboss/fleet-service/internal/credential"
	"github.com/fleetboss/fleet-service/internal/crest"
	"github.com/fleetboss/fleet-service/internal/database"
	"github.com/fleetboss/fleet-service/internal/fleet"
	"github.com/fleetboss/fleet-service/internal/handlers"
	customMiddleware "github.com/fleetboss/fleet-service/internal/middleware"
	"github.com/fleetboss/fleet-service/internal/service"
	"github.com/fleetboss/fleet-service/internal/sso"
	"github.com/fleetboss/fleet-service/internal/storage"
	"github.com/fleetboss/fleet-service/pkg/jwt"
	"github.com/fleetboss/fleet-service/pkg/logger"
	"github.com/fleetboss/fleet-service/pkg/metrics"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Encoding); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	startTime := time.Now()
	go func() {
		for {
			metrics.ServiceUptime.Set(time.Since(startTime).Seconds())
			time.Sleep(cfg.Metrics.UpdateInterval)
		}
	}()
	metrics.ServiceInfo.WithLabelValues(version, buildTime).Set(1)

	// Initialize database
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize Redis
	redis, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redis.Close()

	// Initialize JWT validator
	jwtValidator := jwt.NewValidator(cfg.Auth.PublicKeyURL, redis, cfg.Timeouts.JWTValidatorClient)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.JWTValidatorClient)
	defer cancel()

	if err := jwtValidator.Initialize(ctx); err != nil {
		logger.Fatal("Failed to initialize JWT validator", zap.Error(err))
	}

	go func() {
		ticker := time.NewTicker(cfg.Auth.RefreshInterval)
		defer ticker.Stop()

		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.JWTValidatorClient)
			if err := jwtValidator.RefreshPublicKey(ctx); err != nil {
				logger.Error("Failed to refresh JWT public key", zap.Error(err))
			}
			cancel()
		}
	}()

	// Storage
	repository := storage.NewRepository(&storage.RepositoryDependencies{
		DB:               adapters.NewDatabaseAdapter(db),
		MetricsCollector: adapters.NewMetricsAdapter(),
	})

	// Character credentials and the remote fleet API
	credentials := credential.NewManager(
		repository.Credential,
		sso.NewClient(cfg.SSO, logger.Named("sso")),
		adapters.NewLockAdapter(redis, logger.Named("lock")),
		credential.OptionsFromConfig(cfg.SSO),
		logger.Named("credential"),
	)

	crestClient := crest.NewClient(cfg.CREST, logger.Named("crest"))
	opener := fleet.NewOpener(crestClient, func(characterID int64) fleet.TokenSource {
		return credentials.For(characterID)
	}, logger.Named("fleet"))

	serviceLayer := service.NewService(&service.ServiceDependencies{
		Repository: repository,
		Fleets:     opener,
		URLParser:  crestClient,
		Logger:     logger.Get(),
	})

	allHandlers := handlers.NewHandlers(&handlers.HandlerDependencies{
		Service: serviceLayer,
		DB:      db,
		Redis:   redis,
		Logger:  logger.Named("handlers"),
	})

	publicRouter := newPublicRouter(cfg, allHandlers, customMiddleware.Auth(jwtValidator))
	internalRouter := newInternalRouter(cfg, allHandlers)

	publicServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      publicRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	internalServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.InternalPort),
		Handler:      internalRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Starting Fleet Service public server",
			zap.String("host", cfg.Server.Host),
			zap.String("port", cfg.Server.Port),
		)

		if err := publicServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start public server", zap.Error(err))
		}
	}()

	go func() {
		logger.Info("Starting Fleet Service internal server",
			zap.String("host", cfg.Server.Host),
			zap.String("port", cfg.Server.InternalPort),
		)

		if err := internalServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start internal server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), cfg.Timeouts.GracefulShutdown)
	defer cancel()

	shutdownErr := make(chan error, 2)

	go func() {
		if err := publicServer.Shutdown(ctx); err != nil {
			shutdownErr <- fmt.Errorf("public server shutdown error: %w", err)
		} else {
			shutdownErr <- nil
		}
	}()

	go func() {
		if err := internalServer.Shutdown(ctx); err != nil {
			shutdownErr <- fmt.Errorf("internal server shutdown error: %w", err)
		} else {
			shutdownErr <- nil
		}
	}()

	for i := 0; i < 2; i++ {
		if err := <-shutdownErr; err != nil {
			logger.Error("Server forced to shutdown", zap.Error(err))
		}
	}

	logger.Info("Servers exited")
}

func newPublicRouter(cfg *config.Config, h *handlers.Handlers, auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Recovery())
	r.Use(customMiddleware.Logging())
	r.Use(customMiddleware.Metrics())
	r.Use(middleware.Timeout(cfg.Timeouts.HTTPMiddleware))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	h.RegisterFleetRoutes(r, auth)
	return r
}

func newInternalRouter(cfg *config.Config, h *handlers.Handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Recovery())
	r.Use(customMiddleware.Metrics())
	r.Use(middleware.Timeout(cfg.Timeouts.HTTPMiddleware))

	r.Get("/health", h.Health.Health)
	r.Get("/ready", h.Health.Ready)
	r.Handle("/metrics", promhttp.Handler())
	return r
}
