package biz

import (
	"context"

	"go.uber.org/zap"

	"tracktok/internal/domain"
)

// QueryUsecase serves tenant-scoped reads that never touch balances.
type QueryUsecase struct {
	accountRepo domain.AccountRepository
	expenseRepo domain.ExpenseRepository
	log         *zap.Logger
}

// NewQueryUsecase creates the query usecase.
func NewQueryUsecase(accountRepo domain.AccountRepository, expenseRepo domain.ExpenseRepository, logger *zap.Logger) *QueryUsecase {
	return &QueryUsecase{accountRepo: accountRepo, expenseRepo: expenseRepo, log: logger}
}

// GetAccount returns one of the tenant's accounts.
func (uc *QueryUsecase) GetAccount(ctx context.Context, tc domain.TenantContext, accountID string) (*domain.Account, error) {
	if !tc.Valid() {
		return nil, domain.ErrTenantRequired
	}
	return uc.accountRepo.Get(ctx, tc.TenantID, accountID)
}

// GetExpense returns one of the tenant's live expenses.
func (uc *QueryUsecase) GetExpense(ctx context.Context, tc domain.TenantContext, expenseID string) (*domain.Expense, error) {
	if !tc.Valid() {
		return nil, domain.ErrTenantRequired
	}
	return uc.expenseRepo.Get(ctx, tc.TenantID, expenseID)
}

// ListExpenses returns the tenant's live expenses, newest first.
func (uc *QueryUsecase) ListExpenses(ctx context.Context, tc domain.TenantContext, limit, offset int) ([]*domain.Expense, error) {
	if !tc.Valid() {
		return nil, domain.ErrTenantRequired
	}
	return uc.expenseRepo.List(ctx, tc.TenantID, limit, offset)
}
