package biz

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tracktok/internal/domain"
	"tracktok/pkg/monitoring"
)

// CreateExpenseInput carries the fields needed to record a new expense.
type CreateExpenseInput struct {
	AccountID   string
	ProjectID   string
	CategoryID  string
	Amount      decimal.Decimal
	Currency    string
	Title       string
	ExpenseDate time.Time
	Notes       string
}

// UpdateExpenseInput carries an expense amendment. Nil fields are left
// unchanged; a non-empty AccountID moves the expense to another account.
type UpdateExpenseInput struct {
	Amount    *decimal.Decimal
	AccountID string
	Title     *string
	Notes     *string
}

// LedgerUsecase owns every balance-affecting mutation. All writes go through
// a single locked transaction per operation: the account row lock serializes
// concurrent mutations and the balance delta commits atomically with the
// expense row and its audit entry.
type LedgerUsecase struct {
	tx          domain.TxManager
	tenantRepo  domain.TenantRepository
	projectRepo domain.ProjectRepository
	log         *zap.Logger
}

// NewLedgerUsecase creates the ledger usecase.
func NewLedgerUsecase(tx domain.TxManager, tenantRepo domain.TenantRepository, projectRepo domain.ProjectRepository, logger *zap.Logger) *LedgerUsecase {
	return &LedgerUsecase{tx: tx, tenantRepo: tenantRepo, projectRepo: projectRepo, log: logger}
}

// requireActiveTenant loads the tenant and rejects suspended ones.
func (uc *LedgerUsecase) requireActiveTenant(ctx context.Context, tc domain.TenantContext) (*domain.Tenant, error) {
	if !tc.Valid() {
		return nil, domain.ErrTenantRequired
	}
	tenant, err := uc.tenantRepo.GetByID(ctx, tc.TenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.IsActive {
		return nil, domain.ErrTenantSuspended
	}
	return tenant, nil
}

// CreateExpense records a new expense and debits its account, atomically.
func (uc *LedgerUsecase) CreateExpense(ctx context.Context, tc domain.TenantContext, input CreateExpenseInput) (*domain.Expense, error) {
	tenant, err := uc.requireActiveTenant(ctx, tc)
	if err != nil {
		return nil, err
	}

	// A project reference must belong to the same tenant. A foreign project
	// is indistinguishable from a missing one.
	if input.ProjectID != "" {
		if _, err := uc.projectRepo.Get(ctx, tc.TenantID, input.ProjectID); err != nil {
			if errors.Is(err, domain.ErrProjectNotFound) {
				return nil, domain.ErrCrossTenantViolation
			}
			return nil, err
		}
	}

	expense, err := domain.NewExpense(tc.TenantID, input.AccountID, input.Amount, input.Currency, input.Title, input.ExpenseDate, tc.UserID)
	if err != nil {
		return nil, err
	}
	expense.ProjectID = input.ProjectID
	expense.CategoryID = input.CategoryID
	expense.Notes = input.Notes

	err = uc.mutate(ctx, "create_expense", func(tx domain.LedgerTx) error {
		count, err := tx.CountExpenses(ctx, tc.TenantID)
		if err != nil {
			return err
		}
		if !tenant.WithinExpenseLimit(count) {
			return domain.ErrPlanLimitExceeded
		}

		account, err := tx.LockAccount(ctx, tc.TenantID, input.AccountID)
		if err != nil {
			return err
		}

		oldBalance := account.CurrentBalance
		account.Debit(expense.Amount)

		if err := tx.InsertExpense(ctx, expense); err != nil {
			return err
		}
		if err := tx.SaveAccountBalance(ctx, account); err != nil {
			return err
		}

		return tx.AppendAudit(ctx, domain.NewAuditEntry(tc, domain.AuditActionCreate, "expense", expense.ID,
			nil,
			map[string]any{
				"amount":      expense.Amount.String(),
				"account_id":  account.ID,
				"title":       expense.Title,
				"old_balance": oldBalance.String(),
				"new_balance": account.CurrentBalance.String(),
			},
		))
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info("expense created",
		zap.String("tenant_id", tc.TenantID),
		zap.String("expense_id", expense.ID),
		zap.String("account_id", expense.AccountID),
		zap.String("amount", expense.Amount.String()),
	)
	return expense, nil
}

// UpdateExpense amends an expense. Amount changes apply the balance delta to
// the account; an account move credits the old account and debits the new
// one, both locked in canonical order inside one transaction.
func (uc *LedgerUsecase) UpdateExpense(ctx context.Context, tc domain.TenantContext, expenseID string, input UpdateExpenseInput) (*domain.Expense, error) {
	if _, err := uc.requireActiveTenant(ctx, tc); err != nil {
		return nil, err
	}
	if input.Amount != nil && input.Amount.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	var updated *domain.Expense
	err := uc.mutate(ctx, "update_expense", func(tx domain.LedgerTx) error {
		expense, err := tx.GetExpense(ctx, tc.TenantID, expenseID)
		if err != nil {
			return err
		}
		if expense.IsDeleted() {
			return domain.ErrExpenseNotFound
		}

		oldAmount := expense.Amount
		oldAccountID := expense.AccountID

		newAmount := oldAmount
		if input.Amount != nil {
			newAmount = *input.Amount
		}
		newAccountID := oldAccountID
		if input.AccountID != "" {
			newAccountID = input.AccountID
		}

		if newAccountID == oldAccountID {
			account, err := tx.LockAccount(ctx, tc.TenantID, oldAccountID)
			if err != nil {
				return err
			}
			// Reverse the old debit, apply the new one.
			account.Credit(oldAmount)
			account.Debit(newAmount)
			if err := tx.SaveAccountBalance(ctx, account); err != nil {
				return err
			}
		} else {
			// Lock both accounts in a direction-independent order so two
			// opposing moves between the same pair cannot deadlock.
			first, second := domain.CanonicalLockOrder(oldAccountID, newAccountID)
			locked := make(map[string]*domain.Account, 2)
			for _, id := range []string{first, second} {
				account, err := tx.LockAccount(ctx, tc.TenantID, id)
				if err != nil {
					return err
				}
				locked[id] = account
			}

			locked[oldAccountID].Credit(oldAmount)
			locked[newAccountID].Debit(newAmount)

			for _, id := range []string{first, second} {
				if err := tx.SaveAccountBalance(ctx, locked[id]); err != nil {
					return err
				}
			}
		}

		expense.RecordEdit(newAmount, newAccountID, tc.UserID)
		if input.Title != nil {
			expense.Title = *input.Title
		}
		if input.Notes != nil {
			expense.Notes = *input.Notes
		}
		if err := tx.SaveExpense(ctx, expense); err != nil {
			return err
		}

		if err := tx.AppendAudit(ctx, domain.NewAuditEntry(tc, domain.AuditActionUpdate, "expense", expense.ID,
			map[string]any{
				"amount":     oldAmount.String(),
				"account_id": oldAccountID,
			},
			map[string]any{
				"amount":     newAmount.String(),
				"account_id": newAccountID,
			},
		)); err != nil {
			return err
		}

		updated = expense
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info("expense updated",
		zap.String("tenant_id", tc.TenantID),
		zap.String("expense_id", expenseID),
	)
	return updated, nil
}

// DeleteExpense soft-deletes an expense and credits its amount back to the
// account. Deleting an already-deleted expense is a no-op success so retries
// cannot double-credit.
func (uc *LedgerUsecase) DeleteExpense(ctx context.Context, tc domain.TenantContext, expenseID string) error {
	if _, err := uc.requireActiveTenant(ctx, tc); err != nil {
		return err
	}

	err := uc.mutate(ctx, "delete_expense", func(tx domain.LedgerTx) error {
		expense, err := tx.GetExpense(ctx, tc.TenantID, expenseID)
		if err != nil {
			return err
		}
		if expense.IsDeleted() {
			return nil
		}

		account, err := tx.LockAccount(ctx, tc.TenantID, expense.AccountID)
		if err != nil {
			return err
		}

		oldBalance := account.CurrentBalance
		account.Credit(expense.Amount)

		expense.SoftDelete()
		if err := tx.SaveExpense(ctx, expense); err != nil {
			return err
		}
		if err := tx.SaveAccountBalance(ctx, account); err != nil {
			return err
		}

		return tx.AppendAudit(ctx, domain.NewAuditEntry(tc, domain.AuditActionDelete, "expense", expense.ID,
			map[string]any{
				"amount":      expense.Amount.String(),
				"account_id":  account.ID,
				"old_balance": oldBalance.String(),
			},
			map[string]any{
				"new_balance": account.CurrentBalance.String(),
			},
		))
	})
	if err != nil {
		return err
	}

	uc.log.Info("expense deleted",
		zap.String("tenant_id", tc.TenantID),
		zap.String("expense_id", expenseID),
	)
	return nil
}

// AdjustBalance sets an account balance to an explicit value, recording the
// manual correction in the audit trail.
func (uc *LedgerUsecase) AdjustBalance(ctx context.Context, tc domain.TenantContext, accountID string, newBalance decimal.Decimal, reason string) (*domain.Account, error) {
	if _, err := uc.requireActiveTenant(ctx, tc); err != nil {
		return nil, err
	}

	var adjusted *domain.Account
	err := uc.mutate(ctx, "adjust_balance", func(tx domain.LedgerTx) error {
		account, err := tx.LockAccount(ctx, tc.TenantID, accountID)
		if err != nil {
			return err
		}

		oldBalance := account.CurrentBalance
		account.Adjust(newBalance)
		if err := tx.SaveAccountBalance(ctx, account); err != nil {
			return err
		}

		if err := tx.AppendAudit(ctx, domain.NewAuditEntry(tc, domain.AuditActionAdjust, "account", account.ID,
			map[string]any{"balance": oldBalance.String()},
			map[string]any{"balance": newBalance.String(), "reason": reason},
		)); err != nil {
			return err
		}

		adjusted = account
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info("account balance adjusted",
		zap.String("tenant_id", tc.TenantID),
		zap.String("account_id", accountID),
		zap.String("new_balance", newBalance.String()),
	)
	return adjusted, nil
}

// mutate wraps a ledger transaction with metrics.
func (uc *LedgerUsecase) mutate(ctx context.Context, operation string, fn func(tx domain.LedgerTx) error) error {
	start := time.Now()
	err := uc.tx.InTx(ctx, fn)
	monitoring.LedgerTxDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	outcome := "success"
	if err != nil {
		outcome = "error"
		if errors.Is(err, domain.ErrLockTimeout) {
			monitoring.LockTimeoutsTotal.Inc()
			outcome = "lock_timeout"
		}
	}
	monitoring.LedgerMutationsTotal.WithLabelValues(operation, outcome).Inc()
	return err
}
