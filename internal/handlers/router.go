package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goldentime/records-api/internal/auth"
	"github.com/goldentime/records-api/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig collects everything the HTTP surface is built from
type RouterConfig struct {
	Doctor  *DoctorHandler
	Admin   *AdminHandler
	Patient *PatientHandler
	Health  *HealthHandler
	Tokens  *auth.TokenManager

	AdminGuard     bool
	MetricsEnabled bool
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// NewRouter builds the chi router with global middleware and every route
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	if cfg.MetricsEnabled {
		r.Use(middleware.Metrics)
	}
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Compress(5))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if cfg.Health != nil {
		r.Get("/health", cfg.Health.Health)
		r.Get("/ready", cfg.Health.Ready)
	}
	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	doctorAuth := middleware.DoctorAuth(cfg.Tokens)

	r.Route("/api/doctor", func(r chi.Router) {
		r.Post("/register", cfg.Doctor.Register)
		r.Post("/login", cfg.Doctor.Login)
		r.Post("/verify-otp", cfg.Doctor.VerifyOTP)
		r.With(doctorAuth).Get("/get-profile", cfg.Doctor.GetProfile)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", cfg.Admin.Login)

		r.Group(func(r chi.Router) {
			if cfg.AdminGuard {
				r.Use(middleware.AdminAuth(cfg.Tokens))
			}
			r.Get("/all-doctors", cfg.Admin.AllDoctors)
			r.Post("/change-status", cfg.Admin.ChangeStatus)
			r.Post("/toggle-block", cfg.Admin.ToggleBlock)
			r.Get("/audit-logs", cfg.Admin.AuditLogs)
		})
	})

	r.Route("/api/patient", func(r chi.Router) {
		r.With(doctorAuth).Post("/sync", cfg.Patient.Sync)
		r.Get("/qr", cfg.Patient.QRCode)
	})

	return r
}
