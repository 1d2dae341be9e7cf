package data

import (
	"context"

	"go.uber.org/zap"

	"tracktok/internal/domain"
)

// preferencesRepo is the notification preferences repository implementation.
type preferencesRepo struct {
	data *Data
	log  *zap.Logger
}

// NewPreferencesRepo creates a new preferences repository.
func NewPreferencesRepo(data *Data, logger *zap.Logger) domain.PreferencesRepository {
	return &preferencesRepo{data: data, log: logger}
}

// ListRecipients implements domain.PreferencesRepository.
func (r *preferencesRepo) ListRecipients(ctx context.Context, tenantID string) ([]*domain.UserPreferences, error) {
	var models []UserPreferencesModel
	err := r.data.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	prefs := make([]*domain.UserPreferences, 0, len(models))
	for i := range models {
		prefs = append(prefs, models[i].ToEntity())
	}
	return prefs, nil
}
