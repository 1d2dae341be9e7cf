package data

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tracktok/internal/domain"
)

// budgetRepo is the budget repository implementation.
type budgetRepo struct {
	data *Data
	log  *zap.Logger
}

// NewBudgetRepo creates a new budget repository.
func NewBudgetRepo(data *Data, logger *zap.Logger) domain.BudgetRepository {
	return &budgetRepo{data: data, log: logger}
}

// ListAlertEnabled implements domain.BudgetRepository.
func (r *budgetRepo) ListAlertEnabled(ctx context.Context, tenantID string) ([]*domain.Budget, error) {
	var models []BudgetModel
	err := r.data.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ? AND alert_enabled = ?", tenantID, true, true).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	budgets := make([]*domain.Budget, 0, len(models))
	for i := range models {
		budgets = append(budgets, models[i].ToEntity())
	}
	return budgets, nil
}

// SpentAmount implements domain.BudgetRepository. Spend is always derived
// from live expense rows inside the budget window, never cached on the
// budget itself.
func (r *budgetRepo) SpentAmount(ctx context.Context, budget *domain.Budget) (decimal.Decimal, error) {
	query := r.data.db.WithContext(ctx).
		Model(&ExpenseModel{}).
		Where("tenant_id = ? AND deleted_at IS NULL", budget.TenantID).
		Where("expense_date >= ? AND expense_date <= ?", budget.StartDate, budget.EndDate)

	if budget.CategoryID != "" {
		query = query.Where("category_id = ?", budget.CategoryID)
	}
	if budget.OwnerID != "" {
		query = query.Where("created_by = ?", budget.OwnerID)
	}

	var spent decimal.NullDecimal
	if err := query.Select("SUM(amount)").Scan(&spent).Error; err != nil {
		return decimal.Zero, err
	}
	if !spent.Valid {
		return decimal.Zero, nil
	}
	return spent.Decimal, nil
}
