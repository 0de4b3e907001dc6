package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Mail     MailConfig     `mapstructure:"mail"`
	Storage  StorageConfig  `mapstructure:"storage"`
	App      AppConfig      `mapstructure:"app"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
}

type DatabaseConfig struct {
	URL         string `mapstructure:"url"`
	LogLevel    string `mapstructure:"log_level"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Type    string        `mapstructure:"type"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// AuthConfig holds token signing and static admin credentials
type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
	// AdminGuard requires admin routes to carry the admin login token as Bearer
	AdminGuard bool          `mapstructure:"admin_guard"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	OTPTTL     time.Duration `mapstructure:"otp_ttl"`
}

type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type StorageConfig struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	Folder    string `mapstructure:"folder"`
}

type AppConfig struct {
	FrontendURL string `mapstructure:"frontend_url"`
}

// envBindings maps config keys to the environment variables that set them
var envBindings = map[string]string{
	"server.host":             "HOST",
	"server.port":             "PORT",
	"server.read_timeout":     "SERVER_READ_TIMEOUT",
	"server.write_timeout":    "SERVER_WRITE_TIMEOUT",
	"server.max_upload_bytes": "MAX_UPLOAD_BYTES",
	"database.url":            "DATABASE_URL",
	"database.log_level":      "DB_LOG_LEVEL",
	"database.auto_migrate":   "DB_AUTO_MIGRATE",
	"redis.host":              "REDIS_HOST",
	"redis.port":              "REDIS_PORT",
	"redis.password":          "REDIS_PASSWORD",
	"redis.db":                "REDIS_DB",
	"cache.enabled":           "CACHE_ENABLED",
	"cache.type":              "CACHE_TYPE",
	"cache.ttl":               "CACHE_TTL",
	"cors.allowed_origins":    "CORS_ALLOWED_ORIGINS",
	"cors.allowed_methods":    "CORS_ALLOWED_METHODS",
	"cors.allowed_headers":    "CORS_ALLOWED_HEADERS",
	"log.level":               "LOG_LEVEL",
	"log.format":              "LOG_FORMAT",
	"metrics.enabled":         "METRICS_ENABLED",
	"auth.jwt_secret":         "JWT_SECRET",
	"auth.admin_email":        "ADMIN_EMAIL",
	"auth.admin_password":     "ADMIN_PASSWORD",
	"auth.admin_guard":        "ADMIN_GUARD_ENABLED",
	"auth.session_ttl":        "SESSION_TTL",
	"auth.otp_ttl":            "OTP_TTL",
	"mail.host":               "SMTP_HOST",
	"mail.port":               "SMTP_PORT",
	"mail.username":           "EMAIL_USER",
	"mail.password":           "EMAIL_PASS",
	"storage.cloud_name":      "CLOUDINARY_NAME",
	"storage.api_key":         "CLOUDINARY_API_KEY",
	"storage.api_secret":      "CLOUDINARY_SECRET_KEY",
	"storage.folder":          "CLOUDINARY_FOLDER",
	"app.frontend_url":        "FRONTEND_URL",
}

// Load reads an optional .env file and builds the configuration from the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.CORS.AllowedOrigins = splitList(cfg.CORS.AllowedOrigins)
	cfg.CORS.AllowedMethods = splitList(cfg.CORS.AllowedMethods)
	cfg.CORS.AllowedHeaders = splitList(cfg.CORS.AllowedHeaders)

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 4000)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.max_upload_bytes", 5<<20)

	v.SetDefault("database.url", "")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", time.Hour)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "Authorization"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.admin_email", "")
	v.SetDefault("auth.admin_password", "")
	v.SetDefault("auth.admin_guard", false)
	v.SetDefault("auth.session_ttl", 24*time.Hour)
	v.SetDefault("auth.otp_ttl", 10*time.Minute)

	v.SetDefault("mail.host", "smtp.gmail.com")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")

	v.SetDefault("storage.cloud_name", "")
	v.SetDefault("storage.api_key", "")
	v.SetDefault("storage.api_secret", "")
	v.SetDefault("storage.folder", "goldentime/credentials")

	v.SetDefault("app.frontend_url", "http://localhost:5173")
}

// splitList flattens comma separated entries coming from a single env value
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks that the settings required to serve traffic are present
func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.Auth.AdminEmail == "" {
		missing = append(missing, "ADMIN_EMAIL")
	}
	if c.Auth.AdminPassword == "" {
		missing = append(missing, "ADMIN_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	if c.Auth.OTPTTL <= 0 {
		return fmt.Errorf("otp ttl must be positive")
	}
	if c.Cache.Type != "memory" && c.Cache.Type != "redis" {
		return fmt.Errorf("unsupported cache type: %s", c.Cache.Type)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}
	return nil
}
