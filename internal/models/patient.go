package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RecordEntry is one medical entry already committed to the ledger
type RecordEntry struct {
	Key            string `json:"key"`
	Value          string `json:"value"`
	Description    string `json:"description"`
	Prescription   string `json:"prescription"`
	IsConfidential bool   `json:"isConfidential"`
	AuthorWallet   string `json:"authorWallet"`
	AuthorName     string `json:"authorName"`
	Timestamp      int64  `json:"timestamp"`
}

// Patient mirrors the identity part of a ledger patient plus its scan code
type Patient struct {
	ID              uuid.UUID                        `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID       string                           `gorm:"column:patient_id;type:varchar(255);not null;uniqueIndex" json:"patientID"`
	Phone           string                           `gorm:"type:varchar(50);not null" json:"phone"`
	Email           string                           `gorm:"type:varchar(255);index" json:"email,omitempty"`
	WalletAddress   string                           `gorm:"type:varchar(100);index" json:"walletAddress,omitempty"`
	QRCode          string                           `gorm:"column:qr_code;type:text" json:"qrCode"`
	RecordsSnapshot datatypes.JSONSlice[RecordEntry] `json:"recordsSnapshot"`
	CreatedBy       uuid.UUID                        `gorm:"type:uuid;index" json:"createdBy"`
	CreatedAt       time.Time                        `json:"createdAt"`
	UpdatedAt       time.Time                        `json:"updatedAt"`
}

// TableName overrides the table name
func (Patient) TableName() string {
	return "patients"
}

// BeforeCreate hook
func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// SyncPatientRequest is the payload a doctor sends after writing the patient to the ledger
type SyncPatientRequest struct {
	PatientID      string        `json:"patientID" validate:"required"`
	Phone          string        `json:"phone" validate:"required"`
	Email          string        `json:"email" validate:"omitempty,email"`
	WalletAddress  string        `json:"walletAddress"`
	InitialRecords []RecordEntry `json:"initialRecords"`
}

// QRLookup selects a patient by wallet and/or email
type QRLookup struct {
	WalletAddress string `form:"walletAddress"`
	Email         string `form:"email"`
}
