package data

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tracktok/internal/domain"
)

// accountRepo is the account repository implementation.
type accountRepo struct {
	data *Data
	log  *zap.Logger
}

// NewAccountRepo creates a new account repository.
func NewAccountRepo(data *Data, logger *zap.Logger) domain.AccountRepository {
	return &accountRepo{data: data, log: logger}
}

// Get implements domain.AccountRepository.
func (r *accountRepo) Get(ctx context.Context, tenantID, id string) (*domain.Account, error) {
	var model AccountModel
	err := r.data.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// ListLowBalance implements domain.AccountRepository. The threshold filter is
// pushed into SQL so tenants with many healthy accounts stay cheap to scan.
func (r *accountRepo) ListLowBalance(ctx context.Context, tenantID string) ([]*domain.Account, error) {
	var models []AccountModel
	err := r.data.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ? AND is_archived = ?", tenantID, true, false).
		Where("low_balance_threshold IS NOT NULL AND low_balance_threshold > 0").
		Where("current_balance <= low_balance_threshold").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(models))
	for i := range models {
		accounts = append(accounts, models[i].ToEntity())
	}
	return accounts, nil
}
