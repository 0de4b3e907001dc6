package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DoctorStatus is the approval state of a doctor node
type DoctorStatus string

const (
	DoctorStatusPending  DoctorStatus = "pending"
	DoctorStatusApproved DoctorStatus = "approved"
	DoctorStatusRejected DoctorStatus = "rejected"
)

// Valid reports whether s is one of the known approval states
func (s DoctorStatus) Valid() bool {
	switch s {
	case DoctorStatusPending, DoctorStatusApproved, DoctorStatusRejected:
		return true
	}
	return false
}

// Doctor is a registered practitioner. The one-time code fields never leave the server.
type Doctor struct {
	ID                uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	FullName          string       `gorm:"type:varchar(255);not null" json:"fullName"`
	Email             string       `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	HospitalName      string       `gorm:"type:varchar(255);not null" json:"hospitalName"`
	Specialization    string       `gorm:"type:varchar(255);not null" json:"specialization"`
	WalletAddress     string       `gorm:"type:varchar(100);not null;uniqueIndex" json:"walletAddress"`
	LicenseID         string       `gorm:"type:varchar(100);not null" json:"licenseId"`
	DegreeCertificate string       `gorm:"type:text;not null" json:"degreeCertificate"`
	MedicalLicense    string       `gorm:"type:text;not null" json:"medicalLicense"`
	Status            DoctorStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	IsBlocked         bool         `gorm:"not null;default:false" json:"isBlocked"`
	IsVerified        bool         `gorm:"not null;default:false" json:"isVerified"`

	OTP        *string    `gorm:"type:varchar(6)" json:"-"`
	OTPExpires *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName overrides the table name
func (Doctor) TableName() string {
	return "doctors"
}

// BeforeCreate hook
func (d *Doctor) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = DoctorStatusPending
	}
	return nil
}

// DoctorRegisterRequest carries the text fields of the registration form
type DoctorRegisterRequest struct {
	FullName       string `json:"fullName" form:"fullName" validate:"required"`
	Email          string `json:"email" form:"email" validate:"required,email"`
	HospitalName   string `json:"hospitalName" form:"hospitalName" validate:"required"`
	Specialization string `json:"specialization" form:"specialization" validate:"required"`
	WalletAddress  string `json:"walletAddress" form:"walletAddress" validate:"required"`
	LicenseID      string `json:"licenseId" form:"licenseId" validate:"required"`
}

// DoctorLoginRequest is the first login step
type DoctorLoginRequest struct {
	Email         string `json:"email" form:"email" validate:"required"`
	WalletAddress string `json:"walletAddress" form:"walletAddress" validate:"required"`
}

// VerifyOTPRequest completes a login with the emailed code
type VerifyOTPRequest struct {
	Email string `json:"email" form:"email" validate:"required"`
	OTP   string `json:"otp" form:"otp" validate:"required"`
}

// AdminLoginRequest carries the static admin credentials
type AdminLoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// ChangeStatusRequest moves a doctor between approval states
type ChangeStatusRequest struct {
	DoctorID string `json:"doctorId" form:"doctorId" validate:"required,uuid"`
	Status   string `json:"status" form:"status" validate:"required"`
}

// ToggleBlockRequest flips the block flag of a doctor
type ToggleBlockRequest struct {
	DoctorID string `json:"doctorId" form:"doctorId" validate:"required,uuid"`
}
