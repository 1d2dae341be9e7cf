package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction kind of mutation recorded
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionAdjust AuditAction = "adjust"
)

// AuditEntry is one immutable record of a mutation. Entries are appended
// inside the same transaction as the mutation they describe and are never
// updated or deleted.
type AuditEntry struct {
	ID       string
	TenantID string

	UserID    string
	UserEmail string

	Action       AuditAction
	ResourceType string
	ResourceID   string

	OldValues map[string]any
	NewValues map[string]any

	RequestID string
	CreatedAt time.Time
}

// NewAuditEntry builds an audit entry attributed to the active tenant context.
func NewAuditEntry(tc TenantContext, action AuditAction, resourceType, resourceID string, oldValues, newValues map[string]any) *AuditEntry {
	return &AuditEntry{
		ID:           "audit_" + uuid.New().String(),
		TenantID:     tc.TenantID,
		UserID:       tc.UserID,
		UserEmail:    tc.UserEmail,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		OldValues:    oldValues,
		NewValues:    newValues,
		RequestID:    tc.RequestID,
		CreatedAt:    time.Now().UTC(),
	}
}
