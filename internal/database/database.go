package database

import (
	"context"
	"fmt"
	"time"

	"github.com/goldentime/records-api/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database instance
var DB *gorm.DB

// Config holds database configuration
type Config struct {
	URL         string
	LogLevel    string
	AutoMigrate bool
}

// Connect opens the connection pool and optionally runs migrations
func Connect(cfg Config) error {
	var gormLogger logger.Interface
	switch cfg.LogLevel {
	case "silent":
		gormLogger = logger.Default.LogMode(logger.Silent)
	case "error":
		gormLogger = logger.Default.LogMode(logger.Error)
	case "info":
		gormLogger = logger.Default.LogMode(logger.Info)
	default:
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	DB = db

	if cfg.AutoMigrate {
		if err := AutoMigrate(); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	log.Info().Bool("migrated", cfg.AutoMigrate).Msg("Database connected")
	return nil
}

// AutoMigrate creates or updates the tables for all models
func AutoMigrate() error {
	return DB.AutoMigrate(
		&models.Doctor{},
		&models.Patient{},
		&models.AuditLog{},
	)
}

// Ping checks that the database answers within the context deadline
func Ping(ctx context.Context) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
