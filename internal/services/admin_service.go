package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/goldentime/records-api/internal/auth"
	"github.com/goldentime/records-api/internal/metrics"
	"github.com/goldentime/records-api/internal/models"
	"github.com/goldentime/records-api/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Messages returned to the administrator
const (
	MsgAdminWelcome        = "Welcome, System Administrator"
	MsgInvalidAdmin        = "Invalid Admin Credentials"
	MsgDoctorBlockedNode   = "Doctor Node Blocked"
	MsgDoctorUnblockedNode = "Doctor Node Unblocked"
	MsgUnknownDoctor       = "Doctor not found"
	MsgInvalidStatus       = "Invalid status. Allowed values: pending, approved, rejected"
)

// AdminCredentials are the static administrator email and password
type AdminCredentials struct {
	Email    string
	Password string
}

// AdminService handles the administrator login and doctor moderation
type AdminService struct {
	doctors     DoctorStore
	tokens      *auth.TokenManager
	audit       *Auditor
	credentials AdminCredentials
}

// NewAdminService creates a new admin service
func NewAdminService(doctors DoctorStore, tokens *auth.TokenManager, audit *Auditor, credentials AdminCredentials) *AdminService {
	return &AdminService{
		doctors:     doctors,
		tokens:      tokens,
		audit:       audit,
		credentials: credentials,
	}
}

// Login compares both credentials exactly and returns an admin token
func (s *AdminService) Login(ctx context.Context, req models.AdminLoginRequest) (string, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(req.Email), []byte(s.credentials.Email)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.credentials.Password)) == 1
	if !emailOK || !passwordOK {
		metrics.Logins.WithLabelValues(auth.RoleAdmin, "login", "denied").Inc()
		log.Warn().Str("email", req.Email).Msg("Rejected admin login")
		return "", unauthorizedError(MsgInvalidAdmin)
	}

	token, err := s.tokens.IssueAdminToken(s.credentials.Email)
	if err != nil {
		return "", internalError("", err)
	}
	metrics.Logins.WithLabelValues(auth.RoleAdmin, "login", "success").Inc()
	return token, nil
}

// ListDoctors returns every doctor, newest first
func (s *AdminService) ListDoctors(ctx context.Context) ([]models.Doctor, error) {
	doctors, err := s.doctors.List(ctx)
	if err != nil {
		return nil, internalError("", err)
	}
	return doctors, nil
}

// ChangeStatus sets the approval state of a doctor and returns the confirmation message
func (s *AdminService) ChangeStatus(ctx context.Context, actor Actor, req models.ChangeStatusRequest) (string, error) {
	id, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return "", validationError("Invalid doctorId")
	}
	status := models.DoctorStatus(req.Status)
	if !status.Valid() {
		return "", validationError(MsgInvalidStatus)
	}

	err = s.doctors.UpdateStatus(ctx, id, status)
	s.audit.Record(ctx, actor, models.AuditActionStatusChanged, "doctor", id.String(), err, map[string]interface{}{
		"status": string(status),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", notFoundError(MsgUnknownDoctor)
		}
		return "", internalError("", err)
	}

	log.Info().Str("doctor_id", id.String()).Str("status", string(status)).Msg("Doctor status updated")
	return fmt.Sprintf("Doctor status updated to %s", status), nil
}

// ToggleBlock inverts the block flag of a doctor and returns the new value
func (s *AdminService) ToggleBlock(ctx context.Context, actor Actor, req models.ToggleBlockRequest) (bool, error) {
	id, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return false, validationError("Invalid doctorId")
	}

	blocked, err := s.doctors.ToggleBlocked(ctx, id)
	s.audit.Record(ctx, actor, models.AuditActionBlockToggled, "doctor", id.String(), err, map[string]interface{}{
		"isBlocked": blocked,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, notFoundError(MsgUnknownDoctor)
		}
		return false, internalError("", err)
	}

	log.Info().Str("doctor_id", id.String()).Bool("blocked", blocked).Msg("Doctor block flag toggled")
	return blocked, nil
}

// AuditLogs lists moderation and registration history
func (s *AdminService) AuditLogs(ctx context.Context, q models.AuditQuery) ([]models.AuditLog, error) {
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	logs, err := s.audit.List(ctx, q)
	if err != nil {
		return nil, internalError("", err)
	}
	return logs, nil
}

// BlockMessage is the confirmation shown after a toggle
func BlockMessage(blocked bool) string {
	if blocked {
		return MsgDoctorBlockedNode
	}
	return MsgDoctorUnblockedNode
}
