package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/crm-service/internal/auth"
	"github.com/SAP-F-2025/crm-service/internal/cache"
	"github.com/SAP-F-2025/crm-service/internal/config"
	"github.com/SAP-F-2025/crm-service/internal/handlers"
	"github.com/SAP-F-2025/crm-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/crm-service/internal/services"
	"github.com/SAP-F-2025/crm-service/internal/utils"
	"github.com/SAP-F-2025/crm-service/internal/validator"
	"github.com/SAP-F-2025/crm-service/pkg"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.NewLogger("production", nil).LogError(err, "Failed to load configuration")
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment, os.Stdout)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.LogError(err, "Failed to connect to database")
		os.Exit(1)
	}
	if err := pkg.Migrate(db); err != nil {
		logger.LogError(err, "Failed to migrate database")
		os.Exit(1)
	}
	repo := postgres.NewRepository(db)
	defer repo.Close()

	var cacheService cache.CacheService = cache.NoopCache{}
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, logger.Slog())
	}

	publisher, err := cfg.Events.CreateEventPublisher(logger.Slog())
	if err != nil {
		logger.LogError(err, "Failed to create event publisher")
		os.Exit(1)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.LogError(err, "Failed to close event publisher")
		}
	}()

	var verifier auth.Verifier
	switch cfg.AuthProvider {
	case "casdoor":
		verifier = auth.NewCasdoorVerifier(auth.CasdoorConfig(cfg.Casdoor))
	default:
		verifier = auth.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	}

	serviceManager := services.NewServiceManager(
		repo,
		cacheService,
		publisher,
		services.AnalyticsConfig{Location: cfg.AnalyticsTimezone, CacheTTL: cfg.AnalyticsCacheTTL},
		logger.Slog(),
		validator.New(),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.ContextLogger(logger), utils.LoggerMiddleware(logger))
	handlers.NewHandlerManager(serviceManager, repo, verifier, logger).SetupRoutes(router)

	// Quizzes are embedded on customer sites, so the public form is cross-origin
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", auth.ImpersonateHeader, utils.RequestIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", "X-Row-Count", utils.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsMiddleware.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment, "auth_provider", cfg.AuthProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, "Failed to start server")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.LogError(err, "Server forced to shutdown")
	}

	logger.Info("Server shutdown gracefully")
}
