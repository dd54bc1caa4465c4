package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/anonto42/whatsyourrecipe/backend/internal/cache"
	"github.com/anonto42/whatsyourrecipe/backend/internal/handlers"
	"github.com/anonto42/whatsyourrecipe/backend/internal/logging"
	"github.com/anonto42/whatsyourrecipe/backend/internal/metrics"
	"github.com/anonto42/whatsyourrecipe/backend/internal/migrations"
	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"github.com/anonto42/whatsyourrecipe/backend/internal/router"
	"github.com/anonto42/whatsyourrecipe/backend/internal/services"
	"github.com/anonto42/whatsyourrecipe/backend/internal/validators"
	"github.com/anonto42/whatsyourrecipe/backend/pkg/config"
	"github.com/anonto42/whatsyourrecipe/backend/pkg/firebase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AutoMigrate {
		if err := migrate(cfg.PostgresConnStr); err != nil {
			logging.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize databases")
	}
	defer db.CloseDB()

	var mongoDB *mongo.Database
	if db.Mongo != nil {
		mongoDB = db.Mongo.Database(cfg.MongoDatabase)
	}
	repos, err := router.NewRepositories(ctx, db.Postgres, mongoDB)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize repositories")
	}

	var appCache cache.Cache = cache.Nop{}
	if db.Redis != nil {
		appCache = cache.NewRedisCache(db.Redis, "wyr:")
	}

	// Firebase is optional; without it firebase-login answers 401
	var verifier services.FirebaseVerifier
	app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	switch {
	case err == nil:
		verifier = app.AuthClient
	case errors.Is(err, firebase.ErrNotConfigured):
		logging.Info().Msg("Firebase not configured, firebase-login disabled")
	default:
		logging.Warn().Err(err).Msg("Failed to initialize Firebase, firebase-login disabled")
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	// Setup global middleware
	config.SetupMiddleware(e, cfg)

	// Setup routes and dependencies
	router.SetupRoutes(e, router.Options{
		Repos:       repos,
		Cache:       appCache,
		Firebase:    verifier,
		JWTSecret:   cfg.JWTSecret,
		AccessTTL:   cfg.AccessTokenTTL,
		RefreshTTL:  cfg.RefreshTokenTTL,
		AuthLimiter: config.AuthRateLimiter(cfg),
		Health: handlers.HealthInfo{
			Environment: cfg.Env,
			Port:        cfg.Port,
			APIURL:      cfg.PublicAPIURL,
			MongoReady:  db.Mongo != nil,
			RedisReady:  db.Redis != nil,
		},
		Probe: func(ctx context.Context) (int64, error) {
			var count int64
			err := db.Postgres.WithContext(ctx).Model(&models.Recipe{}).Count(&count).Error
			return count, err
		},
	})

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metricsMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logging.Info().Str("port", cfg.MetricsPort).Msg("Metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("Metrics server stopped")
		}
	}()

	// Start server
	go func() {
		logging.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("Server stopped")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Metrics server shutdown failed")
	}
}

func migrate(dsn string) error {
	runner, err := migrations.NewRunner(dsn)
	if err != nil {
		return err
	}
	defer runner.Close()
	return runner.Up()
}

func metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}
