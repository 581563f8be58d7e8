package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"fintrack/docs"

	"github.com/labstack/echo/v4"

	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/db"
	"fintrack/internal/handler"
	"fintrack/internal/model"
	"fintrack/internal/ratelimit"
	"fintrack/internal/repository"
	"fintrack/internal/router"
	"fintrack/internal/service"
	"fintrack/internal/storage"
)

const (
	resetMaxAttempts = 5
	resetWindow      = time.Hour
)

// @title Finance Tracker API
// @version 1.0
// @description Personal finance tracker API with JWT authentication, expense trackers, and transaction management.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.HideBanner = true

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.AccessToken{},
		&model.PasswordResetToken{},
		&model.Tracker{},
		&model.Transaction{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	tokenRepo := repository.NewAccessTokenRepository(gormDB)
	resetRepo := repository.NewPasswordResetRepository(gormDB)
	trackerRepo := repository.NewTrackerRepository(gormDB)
	transactionRepo := repository.NewTransactionRepository(gormDB)

	// Expired token rows only stop resolving, they never delete themselves.
	if n, err := tokenRepo.DeleteExpired(context.Background()); err != nil {
		log.Printf("purge expired access tokens: %v", err)
	} else if n > 0 {
		log.Printf("purged %d expired access tokens", n)
	}

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenIssuer := auth.NewTokenIssuer(jwtService, tokenRepo, userRepo, cacheClient)
	resetBroker := auth.NewResetBroker(resetRepo)
	resetLimiter := ratelimit.New(cacheClient.Unwrap(), resetMaxAttempts, resetWindow)

	// Initialize file storage
	var store storage.Storage
	switch cfg.StorageBackend {
	case "s3":
		store, err = storage.NewS3(context.Background(), storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			BaseURL:   cfg.BaseURL,
		})
		if err != nil {
			log.Fatalf("s3 storage init: %v", err)
		}
	default:
		store, err = storage.NewLocal(cfg.StorageDir, cfg.BaseURL)
		if err != nil {
			log.Fatalf("local storage init: %v", err)
		}
		e.Static("/storage", cfg.StorageDir)
	}

	mailer := &service.LogMailer{BaseURL: cfg.BaseURL}

	// Initialize services
	authService := service.NewAuthService(userRepo, tokenIssuer, resetBroker, resetLimiter, mailer)
	profileService := service.NewProfileService(userRepo, store, cacheClient)
	trackerService := service.NewTrackerService(trackerRepo)
	transactionService := service.NewTransactionService(trackerService, transactionRepo, store)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	profileHandler := handler.NewProfileHandler(profileService)
	trackerHandler := handler.NewTrackerHandler(trackerService)
	transactionHandler := handler.NewTransactionHandler(transactionService)

	// Register routes
	router.Register(
		e,
		cfg,
		tokenIssuer,
		authHandler,
		profileHandler,
		trackerHandler,
		transactionHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
