package data

import (
	"context"

	"go.uber.org/zap"

	"tracktok/internal/domain"
)

// auditRepo is the audit trail repository implementation. Reads only; audit
// rows are written through the ledger transaction.
type auditRepo struct {
	data *Data
	log  *zap.Logger
}

// NewAuditRepo creates a new audit repository.
func NewAuditRepo(data *Data, logger *zap.Logger) domain.AuditRepository {
	return &auditRepo{data: data, log: logger}
}

// History implements domain.AuditRepository.
func (r *auditRepo) History(ctx context.Context, tenantID, resourceType, resourceID string, limit int) ([]*domain.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var models []AuditLogModel
	err := r.data.db.WithContext(ctx).
		Where("tenant_id = ? AND resource_type = ? AND resource_id = ?", tenantID, resourceType, resourceID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.AuditEntry, 0, len(models))
	for i := range models {
		entry, err := models[i].ToEntity()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
