package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Roles carried in session tokens
const (
	RoleDoctor = "doctor"
	RoleAdmin  = "admin"
)

// ErrInvalidToken covers every way a token can fail verification
var ErrInvalidToken = errors.New("invalid token")

// SessionClaims represents the JWT claims of a session
type SessionClaims struct {
	DoctorID string `json:"id,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 session tokens
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a token manager. ttl applies to doctor sessions only.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// IssueDoctorToken signs a token for a doctor that expires after the session ttl
func (tm *TokenManager) IssueDoctorToken(doctorID uuid.UUID) (string, error) {
	now := tm.now()
	claims := &SessionClaims{
		DoctorID: doctorID.String(),
		Role:     RoleDoctor,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}
	return tm.sign(claims)
}

// IssueAdminToken signs a token for the static administrator. It has no expiry;
// rotating the signing secret is the only way to invalidate it.
func (tm *TokenManager) IssueAdminToken(email string) (string, error) {
	claims := &SessionClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  email,
			IssuedAt: jwt.NewNumericDate(tm.now()),
		},
	}
	return tm.sign(claims)
}

func (tm *TokenManager) sign(claims *SessionClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature and expiry and returns the claims
func (tm *TokenManager) Parse(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseDoctor verifies a doctor token and returns the doctor ID it carries
func (tm *TokenManager) ParseDoctor(tokenString string) (uuid.UUID, error) {
	claims, err := tm.Parse(tokenString)
	if err != nil {
		return uuid.Nil, err
	}
	if claims.Role != RoleDoctor {
		return uuid.Nil, ErrInvalidToken
	}
	id, err := uuid.Parse(claims.DoctorID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}

// ParseAdmin verifies an admin token and returns the admin email it carries
func (tm *TokenManager) ParseAdmin(tokenString string) (string, error) {
	claims, err := tm.Parse(tokenString)
	if err != nil {
		return "", err
	}
	if claims.Role != RoleAdmin {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
