package services

import (
	"context"
	"io"
	"time"

	"github.com/goldentime/records-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockDoctorStore struct {
	mock.Mock
}

func (m *MockDoctorStore) Create(ctx context.Context, doctor *models.Doctor) error {
	args := m.Called(ctx, doctor)
	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockDoctorStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Doctor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Doctor), args.Error(1)
}

func (m *MockDoctorStore) GetByEmail(ctx context.Context, email string) (*models.Doctor, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Doctor), args.Error(1)
}

func (m *MockDoctorStore) GetByEmailAndWallet(ctx context.Context, email, wallet string) (*models.Doctor, error) {
	args := m.Called(ctx, email, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Doctor), args.Error(1)
}

func (m *MockDoctorStore) List(ctx context.Context) ([]models.Doctor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Doctor), args.Error(1)
}

func (m *MockDoctorStore) SaveOTP(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	args := m.Called(ctx, id, code, expiresAt)
	return args.Error(0)
}

func (m *MockDoctorStore) ExistsByEmailOrWallet(ctx context.Context, email, wallet string) (bool, error) {
	args := m.Called(ctx, email, wallet)
	return args.Bool(0), args.Error(1)
}

func (m *MockDoctorStore) ConsumeOTP(ctx context.Context, id uuid.UUID, code string, now time.Time) error {
	args := m.Called(ctx, id, code, now)
	return args.Error(0)
}

func (m *MockDoctorStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DoctorStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockDoctorStore) ToggleBlocked(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockPatientStore struct {
	mock.Mock
}

func (m *MockPatientStore) Create(ctx context.Context, patient *models.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *MockPatientStore) FindQRCode(ctx context.Context, lookup models.QRLookup) (string, error) {
	args := m.Called(ctx, lookup)
	return args.String(0), args.Error(1)
}

type MockAuditStore struct {
	mock.Mock
}

func (m *MockAuditStore) Create(ctx context.Context, log *models.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditStore) List(ctx context.Context, q models.AuditQuery) ([]models.AuditLog, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AuditLog), args.Error(1)
}

type MockIssuer struct {
	mock.Mock
}

func (m *MockIssuer) Issue(ctx context.Context, id uuid.UUID, email string) error {
	args := m.Called(ctx, id, email)
	return args.Error(0)
}

type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Upload(ctx context.Context, name string, file io.Reader) (string, error) {
	args := m.Called(ctx, name, file)
	return args.String(0), args.Error(1)
}

type MockScanCoder struct {
	mock.Mock
}

func (m *MockScanCoder) PatientDataURL(patientID string) (string, error) {
	args := m.Called(patientID)
	return args.String(0), args.Error(1)
}
