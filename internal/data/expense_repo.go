package data

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tracktok/internal/domain"
)

// expenseRepo is the expense repository implementation. All reads exclude
// soft-deleted rows; the ledger transaction path has its own loader that
// includes them.
type expenseRepo struct {
	data *Data
	log  *zap.Logger
}

// NewExpenseRepo creates a new expense repository.
func NewExpenseRepo(data *Data, logger *zap.Logger) domain.ExpenseRepository {
	return &expenseRepo{data: data, log: logger}
}

// Get implements domain.ExpenseRepository.
func (r *expenseRepo) Get(ctx context.Context, tenantID, id string) (*domain.Expense, error) {
	var model ExpenseModel
	err := r.data.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ? AND deleted_at IS NULL", id, tenantID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// List implements domain.ExpenseRepository.
func (r *expenseRepo) List(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Expense, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var models []ExpenseModel
	err := r.data.db.WithContext(ctx).
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID).
		Order("expense_date DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	expenses := make([]*domain.Expense, 0, len(models))
	for i := range models {
		expenses = append(expenses, models[i].ToEntity())
	}
	return expenses, nil
}
