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

	"go.uber.org/zap"

	"github.com/sirswa/crm_backend/config"
	"github.com/sirswa/crm_backend/repositories"
	"github.com/sirswa/crm_backend/routes"
	"github.com/sirswa/crm_backend/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := config.NewLogger(cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store repositories.Store
	switch cfg.DBDriver {
	case "memory":
		logger.Warn("using in-memory store, data is lost on restart")
		store = repositories.NewMemoryStore()
	default:
		client, err := config.ConnectDB(cfg, logger)
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}()
		store = repositories.NewMongoStore(client, cfg.DBName)
	}

	redisClient := config.ConnectRedis(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	app := routes.NewApp(routes.Options{
		Store:        store,
		Redis:        redisClient,
		Logger:       logger,
		JWTSecret:    cfg.JWTSecret,
		JWTExpiresIn: cfg.JWTExpiresIn,
		BreakGlass: services.BreakGlass{
			Email:        cfg.BreakGlassEmail,
			Password:     cfg.BreakGlassPassword,
			PasswordHash: cfg.BreakGlassPasswordHash,
			Name:         cfg.BreakGlassName,
		},
		UploadDir:   cfg.UploadDir,
		CORSOrigins: cfg.CORSAllowedOrigins,
		SMTP: services.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		},
		RateLimit: true,
		HSTS:      !cfg.IsDevelopment(),
	})

	if err := app.Photos.Init(); err != nil {
		logger.Fatal("upload directory unavailable", zap.Error(err))
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := app.Users.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
			logger.Error("bootstrap admin failed", zap.Error(err))
		}
	}
	if cfg.BreakGlassEnabled() {
		logger.Warn("break-glass admin enabled", zap.String("email", cfg.BreakGlassEmail))
	}

	if revoker, ok := app.Revoker.(*services.MemoryRevoker); ok {
		go revoker.RunCleanup(ctx, 10*time.Minute)
	}
	if app.Limiter != nil {
		go app.Limiter.RunCleanup(ctx, 5*time.Minute)
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := app.Echo.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Echo.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
