package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goldentime/records-api/internal/database"
	"github.com/goldentime/records-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DoctorRepository handles doctor database operations
type DoctorRepository struct{}

// NewDoctorRepository creates a new doctor repository
func NewDoctorRepository() *DoctorRepository {
	return &DoctorRepository{}
}

// Create inserts a new doctor. Unique violations on email or wallet return ErrDuplicate.
func (r *DoctorRepository) Create(ctx context.Context, doctor *models.Doctor) error {
	if err := database.DB.WithContext(ctx).Create(doctor).Error; err != nil {
		if err = translate(err); errors.Is(err, ErrDuplicate) {
			return err
		}
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

// GetByID retrieves a doctor by ID
func (r *DoctorRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := database.DB.WithContext(ctx).Where("id = ?", id).First(&doctor).Error; err != nil {
		return nil, lookupError("failed to get doctor", err)
	}
	return &doctor, nil
}

// GetByEmail retrieves a doctor by email
func (r *DoctorRepository) GetByEmail(ctx context.Context, email string) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := database.DB.WithContext(ctx).Where("email = ?", email).First(&doctor).Error; err != nil {
		return nil, lookupError("failed to get doctor", err)
	}
	return &doctor, nil
}

// GetByEmailAndWallet retrieves the doctor owning both the email and the wallet
func (r *DoctorRepository) GetByEmailAndWallet(ctx context.Context, email, wallet string) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := database.DB.WithContext(ctx).
		Where("email = ? AND wallet_address = ?", email, wallet).
		First(&doctor).Error; err != nil {
		return nil, lookupError("failed to get doctor", err)
	}
	return &doctor, nil
}

// List retrieves every doctor, newest first
func (r *DoctorRepository) List(ctx context.Context) ([]models.Doctor, error) {
	var doctors []models.Doctor
	if err := database.DB.WithContext(ctx).Order("created_at DESC").Find(&doctors).Error; err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

// SaveOTP stores a code and its expiry, replacing any previous code
func (r *DoctorRepository) SaveOTP(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"otp":         code,
		"otp_expires": expiresAt,
	}, "failed to save otp")
}

// ConsumeOTP clears the code pair and flags the email as verified, but only while the
// stored code equals code and expires after now. Otherwise it returns ErrCodeMismatch.
func (r *DoctorRepository) ConsumeOTP(ctx context.Context, id uuid.UUID, code string, now time.Time) error {
	result := database.DB.WithContext(ctx).
		Model(&models.Doctor{}).
		Where("id = ? AND otp = ? AND otp_expires > ?", id, code, now).
		Updates(map[string]interface{}{
			"otp":         gorm.Expr("NULL"),
			"otp_expires": gorm.Expr("NULL"),
			"is_verified": true,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to consume otp: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCodeMismatch
	}
	return nil
}

// ExistsByEmailOrWallet reports whether either identity is already registered
func (r *DoctorRepository) ExistsByEmailOrWallet(ctx context.Context, email, wallet string) (bool, error) {
	var count int64
	if err := database.DB.WithContext(ctx).
		Model(&models.Doctor{}).
		Where("email = ? OR wallet_address = ?", email, wallet).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check doctor identity: %w", err)
	}
	return count > 0, nil
}

// UpdateStatus overwrites the approval status
func (r *DoctorRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DoctorStatus) error {
	return r.update(ctx, id, map[string]interface{}{
		"status": string(status),
	}, "failed to update doctor status")
}

// ToggleBlocked negates the block flag in one statement and returns the new value
func (r *DoctorRepository) ToggleBlocked(ctx context.Context, id uuid.UUID) (bool, error) {
	var doctor models.Doctor
	result := database.DB.WithContext(ctx).
		Model(&doctor).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "is_blocked"}}}).
		Where("id = ?", id).
		Update("is_blocked", gorm.Expr("NOT is_blocked"))
	if result.Error != nil {
		return false, fmt.Errorf("failed to toggle block: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, ErrNotFound
	}
	return doctor.IsBlocked, nil
}

func (r *DoctorRepository) update(ctx context.Context, id uuid.UUID, updates map[string]interface{}, msg string) error {
	result := database.DB.WithContext(ctx).
		Model(&models.Doctor{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("%s: %w", msg, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func lookupError(msg string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
