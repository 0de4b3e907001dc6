package repository

import (
	"context"
	"fmt"

	"github.com/goldentime/records-api/internal/database"
	"github.com/goldentime/records-api/internal/models"
)

// AuditRepository handles audit log database operations
type AuditRepository struct{}

// NewAuditRepository creates a new audit repository
func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

// Create creates a new audit log entry
func (r *AuditRepository) Create(ctx context.Context, log *models.AuditLog) error {
	if err := database.DB.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// List retrieves audit logs, newest first, optionally narrowed to one resource
func (r *AuditRepository) List(ctx context.Context, q models.AuditQuery) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	query := database.DB.WithContext(ctx).Order("created_at DESC")

	if q.ResourceUID != "" {
		query = query.Where("resource_uid = ?", q.ResourceUID)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}

	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to get audit logs: %w", err)
	}

	return logs, nil
}
