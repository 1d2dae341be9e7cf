package data

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tracktok/internal/domain"
)

// alertRepo is the alert repository implementation.
type alertRepo struct {
	data *Data
	log  *zap.Logger
}

// NewAlertRepo creates a new alert repository.
func NewAlertRepo(data *Data, logger *zap.Logger) domain.AlertRepository {
	return &alertRepo{data: data, log: logger}
}

// Upsert implements domain.AlertRepository. The conflict target matches the
// partial unique index uq_alerts_live on (tenant_id, alert_type, entity_type,
// entity_id) WHERE deleted_at IS NULL, so re-evaluation refreshes the live
// alert in place instead of stacking duplicates. The refresh resets the
// read/dismissed/notification flags: a dismissed alert whose condition
// still holds must resurface.
func (r *alertRepo) Upsert(ctx context.Context, alert *domain.Alert) (*domain.Alert, error) {
	model, err := FromAlertEntity(alert)
	if err != nil {
		return nil, err
	}

	err = r.data.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "tenant_id"},
				{Name: "alert_type"},
				{Name: "entity_type"},
				{Name: "entity_id"},
			},
			TargetWhere: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "deleted_at IS NULL"},
			}},
			DoUpdates: clause.Assignments(map[string]any{
				"severity":             model.Severity,
				"title":                model.Title,
				"message":              model.Message,
				"metadata":             model.Metadata,
				"is_read":              false,
				"read_at":              nil,
				"read_by":              "",
				"is_dismissed":         false,
				"dismissed_at":         nil,
				"notification_sent":    false,
				"notification_sent_at": nil,
				"updated_at":           model.UpdatedAt,
			}),
		}).
		Create(model).Error
	if err != nil {
		return nil, err
	}

	// On conflict the existing row keeps its id, so reload by dedup key.
	var stored AlertModel
	err = r.data.db.WithContext(ctx).
		Where("tenant_id = ? AND alert_type = ? AND entity_type = ? AND entity_id = ? AND deleted_at IS NULL",
			alert.TenantID, string(alert.Type), alert.EntityType, alert.EntityID).
		First(&stored).Error
	if err != nil {
		return nil, err
	}
	return stored.ToEntity()
}

// Get implements domain.AlertRepository.
func (r *alertRepo) Get(ctx context.Context, tenantID, id string) (*domain.Alert, error) {
	var model AlertModel
	err := r.data.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ? AND deleted_at IS NULL", id, tenantID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAlertNotFound
		}
		return nil, err
	}
	return model.ToEntity()
}

// List implements domain.AlertRepository.
func (r *alertRepo) List(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Alert, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var models []AlertModel
	err := r.data.db.WithContext(ctx).
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toAlertEntities(models)
}

// ListUnread implements domain.AlertRepository.
func (r *alertRepo) ListUnread(ctx context.Context, tenantID string, limit int) ([]*domain.Alert, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var models []AlertModel
	err := r.data.db.WithContext(ctx).
		Where("tenant_id = ? AND is_read = ? AND is_dismissed = ? AND deleted_at IS NULL", tenantID, false, false).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toAlertEntities(models)
}

// UnreadCount implements domain.AlertRepository.
func (r *alertRepo) UnreadCount(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	err := r.data.db.WithContext(ctx).
		Model(&AlertModel{}).
		Where("tenant_id = ? AND is_read = ? AND is_dismissed = ? AND deleted_at IS NULL", tenantID, false, false).
		Count(&count).Error
	return count, err
}

// Update implements domain.AlertRepository.
func (r *alertRepo) Update(ctx context.Context, alert *domain.Alert) error {
	model, err := FromAlertEntity(alert)
	if err != nil {
		return err
	}

	result := r.data.db.WithContext(ctx).
		Model(&AlertModel{}).
		Where("id = ? AND tenant_id = ?", alert.ID, alert.TenantID).
		Updates(map[string]any{
			"is_read":              model.IsRead,
			"read_at":              model.ReadAt,
			"read_by":              model.ReadBy,
			"is_dismissed":         model.IsDismissed,
			"dismissed_at":         model.DismissedAt,
			"notification_sent":    model.NotificationSent,
			"notification_sent_at": model.NotificationSentAt,
			"updated_at":           model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrAlertNotFound
	}
	return nil
}

func toAlertEntities(models []AlertModel) ([]*domain.Alert, error) {
	alerts := make([]*domain.Alert, 0, len(models))
	for i := range models {
		alert, err := models[i].ToEntity()
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}
