package services

import (
	"context"
	"time"

	"github.com/goldentime/records-api/internal/models"
	"github.com/google/uuid"
)

// DoctorStore is the persistence the doctor and admin flows need
type DoctorStore interface {
	Create(ctx context.Context, doctor *models.Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Doctor, error)
	GetByEmail(ctx context.Context, email string) (*models.Doctor, error)
	GetByEmailAndWallet(ctx context.Context, email, wallet string) (*models.Doctor, error)
	ExistsByEmailOrWallet(ctx context.Context, email, wallet string) (bool, error)
	List(ctx context.Context) ([]models.Doctor, error)
	SaveOTP(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error
	ConsumeOTP(ctx context.Context, id uuid.UUID, code string, now time.Time) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.DoctorStatus) error
	ToggleBlocked(ctx context.Context, id uuid.UUID) (bool, error)
}

// PatientStore is the persistence the patient mirror needs
type PatientStore interface {
	Create(ctx context.Context, patient *models.Patient) error
	FindQRCode(ctx context.Context, lookup models.QRLookup) (string, error)
}

// AuditStore persists audit entries
type AuditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, q models.AuditQuery) ([]models.AuditLog, error)
}

// CodeIssuer issues a one-time code to a doctor
type CodeIssuer interface {
	Issue(ctx context.Context, id uuid.UUID, email string) error
}
