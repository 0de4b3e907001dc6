package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit actions
const (
	AuditActionDoctorRegistered = "doctor.registered"
	AuditActionStatusChanged    = "doctor.status_changed"
	AuditActionBlockToggled     = "doctor.block_toggled"
	AuditActionPatientSynced    = "patient.synced"
)

// AuditLog represents an audit log entry
type AuditLog struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Actor        string            `gorm:"type:varchar(255);not null;index" json:"actor"`
	Action       string            `gorm:"type:varchar(100);not null;index" json:"action"`
	ResourceType string            `gorm:"type:varchar(50);index" json:"resourceType"`
	ResourceUID  string            `gorm:"type:varchar(255);index" json:"resourceUid"`
	IPAddress    string            `gorm:"type:varchar(45)" json:"ipAddress,omitempty"`
	UserAgent    string            `gorm:"type:text" json:"userAgent,omitempty"`
	Status       string            `gorm:"type:varchar(20);index" json:"status"` // success, failure
	ErrorMessage string            `gorm:"type:text" json:"errorMessage,omitempty"`
	Details      datatypes.JSONMap `json:"details,omitempty"`
	CreatedAt    time.Time         `gorm:"index" json:"timestamp"`
}

// TableName overrides the table name
func (AuditLog) TableName() string {
	return "audit_logs"
}

// BeforeCreate hook
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AuditQuery filters audit log listings
type AuditQuery struct {
	ResourceUID string `form:"resourceUid"`
	Limit       int    `form:"limit"`
	Offset      int    `form:"offset"`
}
