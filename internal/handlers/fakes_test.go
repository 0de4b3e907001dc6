package handlers

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goldentime/records-api/internal/models"
	"github.com/goldentime/records-api/internal/repository"
	"github.com/google/uuid"
)

// memDoctors is an in-memory doctor store with the same uniqueness rules as the database
type memDoctors struct {
	mu      sync.Mutex
	doctors map[uuid.UUID]*models.Doctor
}

func newMemDoctors() *memDoctors {
	return &memDoctors{doctors: make(map[uuid.UUID]*models.Doctor)}
}

func (m *memDoctors) Create(ctx context.Context, doctor *models.Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.doctors {
		if d.Email == doctor.Email || d.WalletAddress == doctor.WalletAddress {
			return repository.ErrDuplicate
		}
	}
	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}
	doctor.CreatedAt = time.Now()
	cp := *doctor
	m.doctors[doctor.ID] = &cp
	return nil
}

func (m *memDoctors) find(match func(*models.Doctor) bool) (*models.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.doctors {
		if match(d) {
			cp := *d
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memDoctors) GetByID(ctx context.Context, id uuid.UUID) (*models.Doctor, error) {
	return m.find(func(d *models.Doctor) bool { return d.ID == id })
}

func (m *memDoctors) GetByEmail(ctx context.Context, email string) (*models.Doctor, error) {
	return m.find(func(d *models.Doctor) bool { return d.Email == email })
}

func (m *memDoctors) GetByEmailAndWallet(ctx context.Context, email, wallet string) (*models.Doctor, error) {
	return m.find(func(d *models.Doctor) bool { return d.Email == email && d.WalletAddress == wallet })
}

func (m *memDoctors) List(ctx context.Context) ([]models.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Doctor, 0, len(m.doctors))
	for _, d := range m.doctors {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memDoctors) mutate(id uuid.UUID, fn func(*models.Doctor)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(d)
	return nil
}

func (m *memDoctors) SaveOTP(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	return m.mutate(id, func(d *models.Doctor) {
		d.OTP = &code
		d.OTPExpires = &expiresAt
	})
}

func (m *memDoctors) ExistsByEmailOrWallet(ctx context.Context, email, wallet string) (bool, error) {
	_, err := m.find(func(d *models.Doctor) bool { return d.Email == email || d.WalletAddress == wallet })
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (m *memDoctors) ConsumeOTP(ctx context.Context, id uuid.UUID, code string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[id]
	if !ok || d.OTP == nil || *d.OTP != code || d.OTPExpires == nil || !now.Before(*d.OTPExpires) {
		return repository.ErrCodeMismatch
	}
	d.OTP = nil
	d.OTPExpires = nil
	d.IsVerified = true
	return nil
}

// slowLookups delays every email lookup so concurrent verifications overlap
type slowLookups struct {
	*memDoctors
	delay time.Duration
}

func (s slowLookups) GetByEmail(ctx context.Context, email string) (*models.Doctor, error) {
	d, err := s.memDoctors.GetByEmail(ctx, email)
	time.Sleep(s.delay)
	return d, err
}

func (m *memDoctors) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DoctorStatus) error {
	return m.mutate(id, func(d *models.Doctor) { d.Status = status })
}

func (m *memDoctors) ToggleBlocked(ctx context.Context, id uuid.UUID) (bool, error) {
	var blocked bool
	err := m.mutate(id, func(d *models.Doctor) {
		d.IsBlocked = !d.IsBlocked
		blocked = d.IsBlocked
	})
	return blocked, err
}

type memPatients struct {
	mu       sync.Mutex
	patients []models.Patient
}

func (m *memPatients) Create(ctx context.Context, patient *models.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.patients {
		if p.PatientID == patient.PatientID {
			return repository.ErrDuplicate
		}
	}
	m.patients = append(m.patients, *patient)
	return nil
}

func (m *memPatients) FindQRCode(ctx context.Context, lookup models.QRLookup) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.patients {
		if lookup.WalletAddress != "" && p.WalletAddress != lookup.WalletAddress {
			continue
		}
		if lookup.Email != "" && p.Email != lookup.Email {
			continue
		}
		return p.QRCode, nil
	}
	return "", repository.ErrNotFound
}

type memAudit struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func (m *memAudit) Create(ctx context.Context, log *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, *log)
	return nil
}

func (m *memAudit) List(ctx context.Context, q models.AuditQuery) ([]models.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AuditLog
	for _, l := range m.logs {
		if q.ResourceUID == "" || l.ResourceUID == q.ResourceUID {
			out = append(out, l)
		}
	}
	return out, nil
}

// outbox records the last code mailed to each address
type outbox struct {
	mu    sync.Mutex
	codes map[string]string
	err   error
}

func newOutbox() *outbox {
	return &outbox{codes: make(map[string]string)}
}

func (o *outbox) SendOTP(ctx context.Context, to, code string, ttl time.Duration) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.codes[to] = code
	return nil
}

func (o *outbox) last(to string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.codes[to]
}

type fakeFiles struct{}

func (fakeFiles) Upload(ctx context.Context, name string, file io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, file); err != nil {
		return "", err
	}
	return "https://files.example.com/" + name + ".png", nil
}

// countingFiles counts uploads and stores nothing
type countingFiles struct {
	calls atomic.Int32
}

func (c *countingFiles) Upload(ctx context.Context, name string, file io.Reader) (string, error) {
	c.calls.Add(1)
	return fakeFiles{}.Upload(ctx, name, file)
}
