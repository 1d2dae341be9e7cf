package biz

import (
	"context"

	"go.uber.org/zap"

	"tracktok/internal/domain"
)

// AuditUsecase reads the audit trail. Writing happens only inside ledger
// transactions; there is no API to add, change or remove entries here.
type AuditUsecase struct {
	auditRepo domain.AuditRepository
	log       *zap.Logger
}

// NewAuditUsecase creates the audit usecase.
func NewAuditUsecase(auditRepo domain.AuditRepository, logger *zap.Logger) *AuditUsecase {
	return &AuditUsecase{auditRepo: auditRepo, log: logger}
}

// History returns the mutation history of one resource, newest first.
func (uc *AuditUsecase) History(ctx context.Context, tc domain.TenantContext, resourceType, resourceID string, limit int) ([]*domain.AuditEntry, error) {
	if !tc.Valid() {
		return nil, domain.ErrTenantRequired
	}
	return uc.auditRepo.History(ctx, tc.TenantID, resourceType, resourceID, limit)
}
