package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goldentime/records-api/internal/auth"
	"github.com/goldentime/records-api/internal/cache"
	"github.com/goldentime/records-api/internal/config"
	"github.com/goldentime/records-api/internal/database"
	"github.com/goldentime/records-api/internal/handlers"
	"github.com/goldentime/records-api/internal/mailer"
	"github.com/goldentime/records-api/internal/otp"
	"github.com/goldentime/records-api/internal/repository"
	"github.com/goldentime/records-api/internal/scancode"
	"github.com/goldentime/records-api/internal/services"
	"github.com/goldentime/records-api/internal/storage"
	"github.com/goldentime/records-api/pkg/logger"
	"github.com/rs/zerolog/log"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

func runMigrate() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := database.Connect(database.Config{
		URL:         cfg.Database.URL,
		LogLevel:    cfg.Database.LogLevel,
		AutoMigrate: true,
	}); err != nil {
		return err
	}
	defer database.Close()

	log.Info().Msg("Migrations applied")
	return nil
}

// newCache returns nil when caching is disabled
func newCache(cfg *config.Config) (cache.Cache, error) {
	if !cfg.Cache.Enabled {
		log.Info().Msg("Cache disabled")
		return nil, nil
	}
	if cfg.Cache.Type == "redis" {
		addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
		c, err := cache.NewRedisCache(addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		log.Info().Str("addr", addr).Msg("Redis cache initialized")
		return c, nil
	}
	log.Info().Msg("Memory cache initialized")
	return cache.NewMemoryCache(time.Minute), nil
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log.Info().Msg("Starting GoldenTime records API")

	// Connect to database
	if err := database.Connect(database.Config{
		URL:         cfg.Database.URL,
		LogLevel:    cfg.Database.LogLevel,
		AutoMigrate: cfg.Database.AutoMigrate,
	}); err != nil {
		return err
	}
	defer database.Close()

	cacheImpl, err := newCache(cfg)
	if err != nil {
		return err
	}
	checks := map[string]handlers.Pinger{"database": database.Ping}
	if cacheImpl != nil {
		defer cacheImpl.Close()
		checks["cache"] = cacheImpl.Ping
	}

	fileStore, err := storage.NewCloudinaryStore(cfg.Storage.CloudName, cfg.Storage.APIKey, cfg.Storage.APISecret, cfg.Storage.Folder)
	if err != nil {
		return err
	}

	// Initialize repositories
	doctorRepo := repository.NewDoctorRepository()
	patientRepo := repository.NewPatientRepository()
	auditRepo := repository.NewAuditRepository()

	// Initialize services
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	smtp := mailer.NewSMTPMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password)
	issuer := otp.NewIssuer(doctorRepo, smtp, cfg.Auth.OTPTTL)
	auditor := services.NewAuditor(auditRepo)

	doctorService := services.NewDoctorService(doctorRepo, issuer, fileStore, tokens, auditor)
	adminService := services.NewAdminService(doctorRepo, tokens, auditor, services.AdminCredentials{
		Email:    cfg.Auth.AdminEmail,
		Password: cfg.Auth.AdminPassword,
	})
	patientService := services.NewPatientService(patientRepo, scancode.NewEncoder(cfg.App.FrontendURL), cacheImpl, cfg.Cache.TTL, auditor)

	router := handlers.NewRouter(handlers.RouterConfig{
		Doctor:         handlers.NewDoctorHandler(doctorService, cfg.Server.MaxUploadBytes),
		Admin:          handlers.NewAdminHandler(adminService),
		Patient:        handlers.NewPatientHandler(patientService),
		Health:         handlers.NewHealthHandler(checks),
		Tokens:         tokens,
		AdminGuard:     cfg.Auth.AdminGuard,
		MetricsEnabled: cfg.Metrics.Enabled,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: cfg.CORS.AllowedMethods,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
	})
	if !cfg.Auth.AdminGuard {
		log.Warn().Msg("Admin routes are not guarded by a token")
	}

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	}

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}
