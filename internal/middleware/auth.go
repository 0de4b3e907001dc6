package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/goldentime/records-api/internal/auth"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	DoctorIDKey   contextKey = "doctor_id"
	AdminEmailKey contextKey = "admin_email"
)

const (
	msgNoToken      = "No token provided. Please login."
	msgInvalidToken = "Session expired or invalid token."
)

// bearerToken returns the token of a "Bearer <token>" header
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": msg})
}

// DoctorAuth middleware requires a doctor session token
func DoctorAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, msgNoToken)
				return
			}

			doctorID, err := tokens.ParseDoctor(token)
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("Rejected doctor token")
				unauthorized(w, msgInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), DoctorIDKey, doctorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminAuth middleware requires an admin token
func AdminAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, msgNoToken)
				return
			}

			email, err := tokens.ParseAdmin(token)
			if err != nil {
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("Rejected admin token")
				unauthorized(w, msgInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), AdminEmailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetDoctorID extracts the authenticated doctor from context
func GetDoctorID(ctx context.Context) (uuid.UUID, bool) {
	doctorID, ok := ctx.Value(DoctorIDKey).(uuid.UUID)
	return doctorID, ok
}

// GetAdminEmail extracts the authenticated admin from context
func GetAdminEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(AdminEmailKey).(string)
	return email, ok
}
