package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goldentime/records-api/internal/cache"
	"github.com/goldentime/records-api/internal/metrics"
	"github.com/goldentime/records-api/internal/models"
	"github.com/goldentime/records-api/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Messages returned by the patient mirror
const (
	MsgPatientSynced    = "Data mirrored to Cloud & QR Generated"
	MsgDuplicatePatient = "Patient ID already exists in Cloud Database"
	MsgQRLookupEmpty    = "Please provide a walletAddress or email to search."
	MsgQRNotFound       = "No QR Code found for this identity."
)

// ScanCoder renders the scan code stored with a patient
type ScanCoder interface {
	PatientDataURL(patientID string) (string, error)
}

// PatientService mirrors patient identities and serves their scan codes
type PatientService struct {
	patients PatientStore
	coder    ScanCoder
	cache    cache.Cache
	cacheTTL time.Duration
	audit    *Auditor
}

// NewPatientService creates a new patient service. A nil cache disables lookup caching.
func NewPatientService(patients PatientStore, coder ScanCoder, c cache.Cache, cacheTTL time.Duration, audit *Auditor) *PatientService {
	return &PatientService{
		patients: patients,
		coder:    coder,
		cache:    c,
		cacheTTL: cacheTTL,
		audit:    audit,
	}
}

// Sync stores the identity of a ledger patient with a freshly rendered scan code
func (s *PatientService) Sync(ctx context.Context, actor Actor, doctorID uuid.UUID, req models.SyncPatientRequest) (string, error) {
	patientID := strings.TrimSpace(req.PatientID)
	if patientID == "" || strings.TrimSpace(req.Phone) == "" {
		return "", validationError("patientID and phone are required")
	}

	qr, err := s.coder.PatientDataURL(patientID)
	if err != nil {
		return "", internalError("", err)
	}

	patient := &models.Patient{
		PatientID:       patientID,
		Phone:           req.Phone,
		Email:           req.Email,
		WalletAddress:   req.WalletAddress,
		QRCode:          qr,
		RecordsSnapshot: req.InitialRecords,
		CreatedBy:       doctorID,
	}
	if patient.RecordsSnapshot == nil {
		patient.RecordsSnapshot = []models.RecordEntry{}
	}

	if err := s.patients.Create(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", conflictError(MsgDuplicatePatient, err)
		}
		return "", internalError("", err)
	}

	if s.cache != nil {
		if keys := cache.QRCodeKeys(patient.WalletAddress, patient.Email); len(keys) > 0 {
			if err := s.cache.Delete(ctx, keys...); err != nil {
				log.Warn().Err(err).Str("patient_id", patientID).Msg("Failed to invalidate scan code cache")
			}
		}
	}

	if actor.ID == "" {
		actor.ID = doctorID.String()
	}
	s.audit.Record(ctx, actor, models.AuditActionPatientSynced, "patient", patientID, nil, map[string]interface{}{
		"records": len(patient.RecordsSnapshot),
	})

	log.Info().Str("patient_id", patientID).Str("doctor_id", doctorID.String()).Msg("Patient mirrored")
	return qr, nil
}

// QRCode finds the scan code of the patient matching every non-empty field of lookup
func (s *PatientService) QRCode(ctx context.Context, lookup models.QRLookup) (string, error) {
	lookup.WalletAddress = strings.TrimSpace(lookup.WalletAddress)
	lookup.Email = strings.TrimSpace(lookup.Email)
	if lookup.WalletAddress == "" && lookup.Email == "" {
		return "", validationError(MsgQRLookupEmpty)
	}

	key := cache.QRCodeKey(lookup.WalletAddress, lookup.Email)
	if s.cache != nil {
		data, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			metrics.QRCacheLookups.WithLabelValues("hit").Inc()
			return string(data), nil
		case errors.Is(err, cache.ErrCacheMiss):
			metrics.QRCacheLookups.WithLabelValues("miss").Inc()
		default:
			log.Warn().Err(err).Str("key", key).Msg("Scan code cache read failed")
		}
	}

	qr, err := s.patients.FindQRCode(ctx, lookup)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", notFoundError(MsgQRNotFound)
		}
		return "", internalError("", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, []byte(qr), s.cacheTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Scan code cache write failed")
		}
	}
	return qr, nil
}
