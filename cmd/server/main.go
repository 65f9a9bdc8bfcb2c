package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	"animalsquad/docs" // swagger docs
	"animalsquad/internal/auth"
	"animalsquad/internal/cache"
	"animalsquad/internal/config"
	"animalsquad/internal/db"
	"animalsquad/internal/handler"
	"animalsquad/internal/logger"
	"animalsquad/internal/metrics"
	"animalsquad/internal/model"
	"animalsquad/internal/repository"
	"animalsquad/internal/router"
	"animalsquad/internal/service"
	"animalsquad/internal/storage"
)

// @title Animal Squad API
// @version 1.0
// @description Pet social network account API with multipart signup, profile images and JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logg, err := logger.New(cfg.AppEnv, cfg.LogLevel, "animalsquad")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logg.Fatal("database init", zap.Error(err))
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		logg.Warn("RESET_DB=true detected, dropping all tables")
		for _, table := range []interface{}{&model.Post{}, &model.Pet{}, &model.Address{}} {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				logg.Warn("failed to drop table (may not exist)", zap.Error(err))
			}
		}
	}

	if err := db.Migrate(gormDB, logg); err != nil {
		logg.Fatal("migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = cacheClient.Close() }()

	ctx := context.Background()
	if err := cacheClient.Ping(ctx); err != nil {
		logg.Fatal("redis init", zap.Error(err))
	}

	files, err := storage.Open(ctx, cfg.BucketURL, cfg.PublicImageURL)
	if err != nil {
		logg.Fatal("blob storage init", zap.Error(err))
	}
	defer func() { _ = files.Close() }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewCollector(registry)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	petService := service.NewPetService(
		repository.NewUnitOfWork(gormDB),
		files,
		jwtService,
		tokenStore,
		recorder,
		service.NewPetServiceConfig(cfg.PublicImageURL, cfg.AdminCode),
		logg.Named("pet"),
	)
	authService := service.NewAuthService(repository.NewPetRepository(gormDB), jwtService, tokenStore, logg.Named("auth"))

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())

	router.Register(e, cfg, jwtService, tokenStore, registry, router.Handlers{
		Pet:  handler.NewPetHandler(petService, cfg.MaxUploadBytes),
		Auth: handler.NewAuthHandler(authService),
	}, logg.Named("http"))

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}
	logg.Info("swagger documentation available", zap.String("url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html"))

	go func() {
		addr := ":" + cfg.ServerPort
		logg.Info("HTTP server starting", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logg.Error("HTTP server forced shutdown", zap.Error(err))
	}
}
