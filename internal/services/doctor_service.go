package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/goldentime/records-api/internal/auth"
	"github.com/goldentime/records-api/internal/metrics"
	"github.com/goldentime/records-api/internal/models"
	"github.com/goldentime/records-api/internal/otp"
	"github.com/goldentime/records-api/internal/repository"
	"github.com/goldentime/records-api/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Messages returned to doctors
const (
	MsgDuplicateDoctor    = "A doctor with this email or wallet address is already registered."
	MsgDoctorNotFound     = "Doctor node not found. Please verify your credentials or register."
	MsgDoctorBlocked      = "Access Denied: Your account has been blocked by the administrator."
	MsgDoctorPending      = "Pending Approval: Your credentials are still under review by the admin."
	MsgDoctorRejected     = "Access Denied: Your registration node was rejected."
	MsgOTPDispatchFailed  = "Failed to send OTP. Please check your internet or email configuration."
	MsgInvalidOTP         = "Invalid or expired OTP"
	MsgAccessDenied       = "Access Denied"
	MsgNodeAuthenticated  = "Node Authenticated Successfully"
	MsgRegistrationQueued = "OTP sent to email. Complete verification."
	MsgOTPDispatched      = "Security code dispatched to your registered email."
)

// CredentialFiles are the two documents attached to a registration
type CredentialFiles struct {
	DegreeCertificate io.Reader
	MedicalLicense    io.Reader
}

// VerifyResult is the outcome of a successful code check
type VerifyResult struct {
	Token   string
	Message string
}

// DoctorService handles registration and the two-step doctor login
type DoctorService struct {
	doctors DoctorStore
	issuer  CodeIssuer
	files   storage.FileStore
	tokens  *auth.TokenManager
	audit   *Auditor
	now     func() time.Time
}

// NewDoctorService creates a new doctor service
func NewDoctorService(doctors DoctorStore, issuer CodeIssuer, files storage.FileStore, tokens *auth.TokenManager, audit *Auditor) *DoctorService {
	return &DoctorService{
		doctors: doctors,
		issuer:  issuer,
		files:   files,
		tokens:  tokens,
		audit:   audit,
		now:     time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register rejects known identities, uploads the credential documents, creates a pending doctor and mails a first code
func (s *DoctorService) Register(ctx context.Context, actor Actor, req models.DoctorRegisterRequest, files CredentialFiles) (*models.Doctor, error) {
	if files.DegreeCertificate == nil || files.MedicalLicense == nil {
		return nil, validationError("Credential files missing")
	}

	email := normalizeEmail(req.Email)
	wallet := strings.TrimSpace(req.WalletAddress)
	exists, err := s.doctors.ExistsByEmailOrWallet(ctx, email, wallet)
	if err != nil {
		return nil, internalError("", err)
	}
	if exists {
		return nil, conflictError(MsgDuplicateDoctor, repository.ErrDuplicate)
	}

	degreeURL, err := s.files.Upload(ctx, "degreeCertificate", files.DegreeCertificate)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upload degree certificate")
		return nil, internalError("", err)
	}
	licenseURL, err := s.files.Upload(ctx, "medicalLicense", files.MedicalLicense)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upload medical license")
		return nil, internalError("", err)
	}

	doctor := &models.Doctor{
		FullName:          strings.TrimSpace(req.FullName),
		Email:             email,
		HospitalName:      req.HospitalName,
		Specialization:    req.Specialization,
		WalletAddress:     wallet,
		LicenseID:         req.LicenseID,
		DegreeCertificate: degreeURL,
		MedicalLicense:    licenseURL,
		Status:            models.DoctorStatusPending,
	}

	if err := s.doctors.Create(ctx, doctor); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflictError(MsgDuplicateDoctor, err)
		}
		return nil, internalError("", err)
	}

	if actor.ID == "" {
		actor.ID = doctor.ID.String()
	}
	s.audit.Record(ctx, actor, models.AuditActionDoctorRegistered, "doctor", doctor.ID.String(), nil, map[string]interface{}{
		"email":        doctor.Email,
		"hospitalName": doctor.HospitalName,
	})

	log.Info().Str("doctor_id", doctor.ID.String()).Str("email", doctor.Email).Msg("Doctor registered")

	if err := s.issue(ctx, doctor); err != nil {
		return nil, err
	}
	return doctor, nil
}

// Login checks the email and wallet pair and mails a fresh code to approved doctors
func (s *DoctorService) Login(ctx context.Context, req models.DoctorLoginRequest) error {
	email := normalizeEmail(req.Email)
	wallet := strings.TrimSpace(req.WalletAddress)
	if email == "" || wallet == "" {
		return validationError("Email and Wallet Address are required for authentication.")
	}

	doctor, err := s.doctors.GetByEmailAndWallet(ctx, email, wallet)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.Logins.WithLabelValues(auth.RoleDoctor, "login", "not_found").Inc()
			return notFoundError(MsgDoctorNotFound)
		}
		return internalError("", err)
	}

	if err := loginGate(doctor); err != nil {
		metrics.Logins.WithLabelValues(auth.RoleDoctor, "login", "denied").Inc()
		return err
	}

	if err := s.issue(ctx, doctor); err != nil {
		return err
	}
	metrics.Logins.WithLabelValues(auth.RoleDoctor, "login", "code_sent").Inc()
	return nil
}

// VerifyOTP consumes the emailed code and issues a session. Blocked and rejected
// doctors lose the code but get no session.
func (s *DoctorService) VerifyOTP(ctx context.Context, req models.VerifyOTPRequest) (*VerifyResult, error) {
	doctor, err := s.doctors.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.Logins.WithLabelValues(auth.RoleDoctor, "verify", "invalid").Inc()
			return nil, validationError(MsgInvalidOTP)
		}
		return nil, internalError("", err)
	}

	code := strings.TrimSpace(req.OTP)
	now := s.now()
	if !otp.Valid(code, doctor.OTP, doctor.OTPExpires, now) {
		metrics.Logins.WithLabelValues(auth.RoleDoctor, "verify", "invalid").Inc()
		return nil, validationError(MsgInvalidOTP)
	}

	// the stored code may have been used or replaced since it was read
	if err := s.doctors.ConsumeOTP(ctx, doctor.ID, code, now); err != nil {
		if errors.Is(err, repository.ErrCodeMismatch) {
			metrics.Logins.WithLabelValues(auth.RoleDoctor, "verify", "invalid").Inc()
			return nil, validationError(MsgInvalidOTP)
		}
		return nil, internalError("", err)
	}

	switch {
	case doctor.IsBlocked:
		metrics.Logins.WithLabelValues(auth.RoleDoctor, "verify", "denied").Inc()
		return nil, forbiddenError(MsgDoctorBlocked)
	case doctor.Status == models.DoctorStatusRejected:
		metrics.Logins.WithLabelValues(auth.RoleDoctor, "verify", "denied").Inc()
		return nil, forbiddenError(MsgDoctorRejected)
	}

	token, err := s.tokens.IssueDoctorToken(doctor.ID)
	if err != nil {
		return nil, internalError("", err)
	}

	metrics.Logins.WithLabelValues(auth.RoleDoctor, "verify", "success").Inc()
	log.Info().Str("doctor_id", doctor.ID.String()).Str("status", string(doctor.Status)).Msg("Doctor session issued")
	return &VerifyResult{Token: token, Message: MsgNodeAuthenticated}, nil
}

// Profile returns the doctor behind a session. Blocked doctors look absent.
func (s *DoctorService) Profile(ctx context.Context, id uuid.UUID) (*models.Doctor, error) {
	doctor, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError(MsgAccessDenied)
		}
		return nil, internalError("", err)
	}
	if doctor.IsBlocked {
		return nil, notFoundError(MsgAccessDenied)
	}
	return doctor, nil
}

func (s *DoctorService) issue(ctx context.Context, doctor *models.Doctor) error {
	if err := s.issuer.Issue(ctx, doctor.ID, doctor.Email); err != nil {
		if errors.Is(err, otp.ErrDispatch) {
			return internalError(MsgOTPDispatchFailed, err)
		}
		return internalError("", err)
	}
	return nil
}

// loginGate applies the account checks in order: blocked, pending, rejected
func loginGate(d *models.Doctor) error {
	if d.IsBlocked {
		return forbiddenError(MsgDoctorBlocked)
	}
	switch d.Status {
	case models.DoctorStatusPending:
		return forbiddenError(MsgDoctorPending)
	case models.DoctorStatusRejected:
		return forbiddenError(MsgDoctorRejected)
	}
	return nil
}
