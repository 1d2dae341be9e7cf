package data

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tracktok/internal/domain"
)

// projectRepo is the project repository implementation.
type projectRepo struct {
	data *Data
	log  *zap.Logger
}

// NewProjectRepo creates a new project repository.
func NewProjectRepo(data *Data, logger *zap.Logger) domain.ProjectRepository {
	return &projectRepo{data: data, log: logger}
}

// Get implements domain.ProjectRepository.
func (r *projectRepo) Get(ctx context.Context, tenantID, id string) (*domain.Project, error) {
	var model ProjectModel
	err := r.data.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// ListActive implements domain.ProjectRepository.
func (r *projectRepo) ListActive(ctx context.Context, tenantID string) ([]*domain.Project, error) {
	var models []ProjectModel
	err := r.data.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, string(domain.ProjectStatusActive)).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	projects := make([]*domain.Project, 0, len(models))
	for i := range models {
		projects = append(projects, models[i].ToEntity())
	}
	return projects, nil
}

// TotalSpent implements domain.ProjectRepository.
func (r *projectRepo) TotalSpent(ctx context.Context, tenantID, projectID string) (decimal.Decimal, error) {
	var spent decimal.NullDecimal
	err := r.data.db.WithContext(ctx).
		Model(&ExpenseModel{}).
		Where("tenant_id = ? AND project_id = ? AND deleted_at IS NULL", tenantID, projectID).
		Select("SUM(amount)").
		Scan(&spent).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !spent.Valid {
		return decimal.Zero, nil
	}
	return spent.Decimal, nil
}
