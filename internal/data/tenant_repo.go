package data

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tracktok/internal/domain"
)

// tenantRepo is the tenant repository implementation.
type tenantRepo struct {
	data *Data
	log  *zap.Logger
}

// NewTenantRepo creates a new tenant repository.
func NewTenantRepo(data *Data, logger *zap.Logger) domain.TenantRepository {
	return &tenantRepo{data: data, log: logger}
}

// GetByID implements domain.TenantRepository.
func (r *tenantRepo) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	var model TenantModel
	err := r.data.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTenantRequired
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// GetBySubdomain implements domain.TenantRepository.
func (r *tenantRepo) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	var model TenantModel
	err := r.data.db.WithContext(ctx).Where("subdomain = ?", subdomain).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTenantRequired
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// GetByCustomDomain implements domain.TenantRepository. The lookup goes
// through the tenant_domains mapping table.
func (r *tenantRepo) GetByCustomDomain(ctx context.Context, customDomain string) (*domain.Tenant, error) {
	var mapping TenantDomainModel
	err := r.data.db.WithContext(ctx).
		Where("domain = ? AND is_active = ?", customDomain, true).
		First(&mapping).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTenantRequired
		}
		return nil, err
	}
	return r.GetByID(ctx, mapping.TenantID)
}

// ListActive implements domain.TenantRepository.
func (r *tenantRepo) ListActive(ctx context.Context) ([]*domain.Tenant, error) {
	var models []TenantModel
	err := r.data.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	tenants := make([]*domain.Tenant, 0, len(models))
	for i := range models {
		tenants = append(tenants, models[i].ToEntity())
	}
	return tenants, nil
}
