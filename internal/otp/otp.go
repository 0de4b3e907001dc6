package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/goldentime/records-api/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// Length is the number of digits in a code
	Length = 6

	codeMin = 100000
	codeMax = 999999
)

// ErrDispatch is returned when the code was stored but could not be mailed
var ErrDispatch = errors.New("failed to dispatch one-time code")

// Generate returns a code drawn uniformly from [100000, 999999]
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

// Valid reports whether submitted matches the stored code and the check happens strictly before expiry
func Valid(submitted string, stored *string, expires *time.Time, now time.Time) bool {
	if stored == nil || expires == nil || submitted == "" {
		return false
	}
	if submitted != *stored {
		return false
	}
	return now.Before(*expires)
}

// Store persists a code pair on its owning record
type Store interface {
	SaveOTP(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error
}

// Sender delivers a code to an email address
type Sender interface {
	SendOTP(ctx context.Context, to, code string, ttl time.Duration) error
}

// Issuer generates, persists and mails one-time codes
type Issuer struct {
	store    Store
	sender   Sender
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
}

// NewIssuer creates an issuer whose codes live for ttl
func NewIssuer(store Store, sender Sender, ttl time.Duration) *Issuer {
	return &Issuer{
		store:    store,
		sender:   sender,
		ttl:      ttl,
		now:      time.Now,
		generate: Generate,
	}
}

// Issue stores a fresh code on the record and mails it. A mail failure returns an error
// wrapping ErrDispatch; the stored code is left in place.
func (i *Issuer) Issue(ctx context.Context, id uuid.UUID, email string) error {
	code, err := i.generate()
	if err != nil {
		return err
	}
	expiresAt := i.now().Add(i.ttl)

	if err := i.store.SaveOTP(ctx, id, code, expiresAt); err != nil {
		return err
	}

	if err := i.sender.SendOTP(ctx, email, code, i.ttl); err != nil {
		metrics.OTPDispatch.WithLabelValues("failed").Inc()
		log.Error().Err(err).Str("doctor_id", id.String()).Msg("Failed to send otp email")
		return fmt.Errorf("%w: %v", ErrDispatch, err)
	}

	metrics.OTPDispatch.WithLabelValues("sent").Inc()
	log.Info().Str("doctor_id", id.String()).Time("expires_at", expiresAt).Msg("OTP dispatched")
	return nil
}
