package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/goldentime/records-api/internal/database"
	"github.com/goldentime/records-api/internal/models"
)

// PatientRepository handles patient mirror database operations
type PatientRepository struct{}

// NewPatientRepository creates a new patient repository
func NewPatientRepository() *PatientRepository {
	return &PatientRepository{}
}

// Create inserts a patient. An existing patientID returns ErrDuplicate and leaves the stored row untouched.
func (r *PatientRepository) Create(ctx context.Context, patient *models.Patient) error {
	if err := database.DB.WithContext(ctx).Create(patient).Error; err != nil {
		if err = translate(err); errors.Is(err, ErrDuplicate) {
			return err
		}
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

// FindQRCode returns the scan code of the first patient matching every non-empty lookup field
func (r *PatientRepository) FindQRCode(ctx context.Context, lookup models.QRLookup) (string, error) {
	query := database.DB.WithContext(ctx).Model(&models.Patient{}).Select("qr_code")
	if lookup.WalletAddress != "" {
		query = query.Where("wallet_address = ?", lookup.WalletAddress)
	}
	if lookup.Email != "" {
		query = query.Where("email = ?", lookup.Email)
	}

	var patient models.Patient
	if err := query.Order("created_at ASC").First(&patient).Error; err != nil {
		return "", lookupError("failed to find patient qr code", err)
	}
	if patient.QRCode == "" {
		return "", ErrNotFound
	}
	return patient.QRCode, nil
}
