package services

import (
	"context"

	"github.com/goldentime/records-api/internal/models"
	"github.com/rs/zerolog/log"
)

// Actor identifies who triggered an operation, for the audit trail
type Actor struct {
	ID        string
	IPAddress string
	UserAgent string
}

// Auditor writes audit entries without ever failing the calling operation
type Auditor struct {
	store AuditStore
}

// NewAuditor creates an auditor. A nil store disables auditing.
func NewAuditor(store AuditStore) *Auditor {
	return &Auditor{store: store}
}

// Record stores one entry. Errors are logged and swallowed.
func (a *Auditor) Record(ctx context.Context, actor Actor, action, resourceType, resourceUID string, opErr error, details map[string]interface{}) {
	if a == nil || a.store == nil {
		return
	}

	entry := &models.AuditLog{
		Actor:        actor.ID,
		Action:       action,
		ResourceType: resourceType,
		ResourceUID:  resourceUID,
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
		Status:       "success",
		Details:      details,
	}
	if opErr != nil {
		entry.Status = "failure"
		entry.ErrorMessage = opErr.Error()
	}

	if err := a.store.Create(ctx, entry); err != nil {
		log.Warn().Err(err).Str("action", action).Str("resource_uid", resourceUID).Msg("Failed to write audit log")
	}
}

// List returns stored entries
func (a *Auditor) List(ctx context.Context, q models.AuditQuery) ([]models.AuditLog, error) {
	if a == nil || a.store == nil {
		return []models.AuditLog{}, nil
	}
	return a.store.List(ctx, q)
}
