package repository

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goldentime/records-api/internal/database"
	"github.com/goldentime/records-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var dbReady bool

// TestMain starts a throwaway Postgres for the repository tests. Skipped with -short
// or when no container runtime is available.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	container, err := startPostgres(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "postgres container unavailable, repository tests will skip: %v\n", err)
		os.Exit(m.Run())
	}

	code := m.Run()
	database.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func startPostgres(ctx context.Context) (testcontainers.Container, error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "goldentime_test",
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return container, fmt.Errorf("failed to get postgres host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return container, fmt.Errorf("failed to get postgres port: %w", err)
	}

	url := fmt.Sprintf("postgres://test:testpass@%s:%s/goldentime_test?sslmode=disable", host, port.Port())
	if err := database.Connect(database.Config{URL: url, LogLevel: "silent", AutoMigrate: true}); err != nil {
		return container, err
	}
	dbReady = true
	return container, nil
}

func requireDB(t *testing.T) {
	t.Helper()
	if !dbReady {
		t.Skip("postgres not available")
	}
	require.NoError(t, database.DB.Exec("TRUNCATE doctors, patients, audit_logs").Error)
}

func newDoctor(email, wallet string) *models.Doctor {
	return &models.Doctor{
		FullName:          "Dr. Test",
		Email:             email,
		HospitalName:      "General",
		Specialization:    "Cardiology",
		WalletAddress:     wallet,
		LicenseID:         "L1",
		DegreeCertificate: "https://files/degree.png",
		MedicalLicense:    "https://files/license.png",
	}
}

func TestDoctorRepository_CreateAndLookup(t *testing.T) {
	requireDB(t)
	repo := NewDoctorRepository()
	ctx := context.Background()

	d := newDoctor("ada@x.com", "0xA")
	require.NoError(t, repo.Create(ctx, d))
	assert.NotEqual(t, uuid.Nil, d.ID)
	assert.Equal(t, models.DoctorStatusPending, d.Status)

	got, err := repo.GetByEmailAndWallet(ctx, "ada@x.com", "0xA")
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)

	_, err = repo.GetByEmailAndWallet(ctx, "ada@x.com", "0xB")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Create(ctx, newDoctor("ada@x.com", "0xC")), ErrDuplicate)
	assert.ErrorIs(t, repo.Create(ctx, newDoctor("bob@x.com", "0xA")), ErrDuplicate)

	exists, err := repo.ExistsByEmailOrWallet(ctx, "other@x.com", "0xA")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.ExistsByEmailOrWallet(ctx, "other@x.com", "0xZ")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDoctorRepository_ConsumeOTPConcurrently(t *testing.T) {
	requireDB(t)
	repo := NewDoctorRepository()
	ctx := context.Background()

	d := newDoctor("ada@x.com", "0xA")
	require.NoError(t, repo.Create(ctx, d))
	require.NoError(t, repo.SaveOTP(ctx, d.ID, "123456", time.Now().Add(10*time.Minute)))

	const attempts = 8
	var wg sync.WaitGroup
	var consumed atomic.Int32
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if repo.ConsumeOTP(ctx, d.ID, "123456", time.Now()) == nil {
				consumed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), consumed.Load())
}

func TestDoctorRepository_OTPLifecycle(t *testing.T) {
	requireDB(t)
	repo := NewDoctorRepository()
	ctx := context.Background()

	d := newDoctor("ada@x.com", "0xA")
	require.NoError(t, repo.Create(ctx, d))

	expires := time.Now().Add(10 * time.Minute).UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.SaveOTP(ctx, d.ID, "123456", expires))

	got, err := repo.GetByEmail(ctx, "ada@x.com")
	require.NoError(t, err)
	require.NotNil(t, got.OTP)
	assert.Equal(t, "123456", *got.OTP)
	assert.True(t, expires.Equal(*got.OTPExpires))

	now := time.Now()
	assert.ErrorIs(t, repo.ConsumeOTP(ctx, d.ID, "654321", now), ErrCodeMismatch)
	assert.ErrorIs(t, repo.ConsumeOTP(ctx, d.ID, "123456", expires), ErrCodeMismatch, "expired at the expiry instant")

	require.NoError(t, repo.ConsumeOTP(ctx, d.ID, "123456", now))
	assert.ErrorIs(t, repo.ConsumeOTP(ctx, d.ID, "123456", now), ErrCodeMismatch, "codes are single use")

	got, err = repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Nil(t, got.OTP)
	assert.Nil(t, got.OTPExpires)
	assert.True(t, got.IsVerified)

	assert.ErrorIs(t, repo.SaveOTP(ctx, uuid.New(), "000000", expires), ErrNotFound)
}

func TestDoctorRepository_StatusAndBlock(t *testing.T) {
	requireDB(t)
	repo := NewDoctorRepository()
	ctx := context.Background()

	d := newDoctor("ada@x.com", "0xA")
	require.NoError(t, repo.Create(ctx, d))

	require.NoError(t, repo.UpdateStatus(ctx, d.ID, models.DoctorStatusApproved))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), models.DoctorStatusApproved), ErrNotFound)

	blocked, err := repo.ToggleBlocked(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = repo.ToggleBlocked(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, blocked)

	_, err = repo.ToggleBlocked(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DoctorStatusApproved, got.Status)
	assert.False(t, got.IsBlocked)
}

func TestDoctorRepository_ListNewestFirst(t *testing.T) {
	requireDB(t)
	repo := NewDoctorRepository()
	ctx := context.Background()

	first := newDoctor("a@x.com", "0x1")
	require.NoError(t, repo.Create(ctx, first))
	time.Sleep(5 * time.Millisecond)
	second := newDoctor("b@x.com", "0x2")
	require.NoError(t, repo.Create(ctx, second))

	doctors, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, doctors, 2)
	assert.Equal(t, second.ID, doctors[0].ID)
	assert.Equal(t, first.ID, doctors[1].ID)
}

func TestPatientRepository(t *testing.T) {
	requireDB(t)
	repo := NewPatientRepository()
	ctx := context.Background()

	p := &models.Patient{
		PatientID:     "PAT-001",
		Phone:         "+1555",
		Email:         "p@x.com",
		WalletAddress: "0xP",
		QRCode:        "data:image/png;base64,AAA",
		RecordsSnapshot: []models.RecordEntry{
			{Key: "bp", Value: "120/80", AuthorWallet: "0xA", Timestamp: 1700000000},
		},
		CreatedBy: uuid.New(),
	}
	require.NoError(t, repo.Create(ctx, p))

	dup := *p
	dup.ID = uuid.Nil
	dup.QRCode = "data:image/png;base64,BBB"
	assert.ErrorIs(t, repo.Create(ctx, &dup), ErrDuplicate)

	qr, err := repo.FindQRCode(ctx, models.QRLookup{WalletAddress: "0xP"})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAA", qr, "duplicate never overwrites")

	qr, err = repo.FindQRCode(ctx, models.QRLookup{Email: "p@x.com", WalletAddress: "0xP"})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAA", qr)

	_, err = repo.FindQRCode(ctx, models.QRLookup{Email: "p@x.com", WalletAddress: "0xOther"})
	assert.ErrorIs(t, err, ErrNotFound, "both fields must match")

	var stored models.Patient
	require.NoError(t, database.DB.First(&stored, "patient_id = ?", "PAT-001").Error)
	require.Len(t, stored.RecordsSnapshot, 1)
	assert.Equal(t, "120/80", stored.RecordsSnapshot[0].Value)
}

func TestAuditRepository(t *testing.T) {
	requireDB(t)
	repo := NewAuditRepository()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.AuditLog{
			Actor:       "admin@x.com",
			Action:      models.AuditActionBlockToggled,
			ResourceUID: "doc-1",
			Status:      "success",
			Details:     map[string]interface{}{"isBlocked": i%2 == 0},
		}))
	}
	require.NoError(t, repo.Create(ctx, &models.AuditLog{Actor: "admin@x.com", Action: models.AuditActionStatusChanged, ResourceUID: "doc-2", Status: "success"}))

	logs, err := repo.List(ctx, models.AuditQuery{ResourceUID: "doc-1", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	logs, err = repo.List(ctx, models.AuditQuery{Limit: 50})
	require.NoError(t, err)
	assert.Len(t, logs, 4)
}
