package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tracktok/internal/domain"
)

// pgLockNotAvailable is the postgres error code raised when lock_timeout
// expires while waiting for a row lock.
const pgLockNotAvailable = "55P03"

// txManager implements domain.TxManager on a gorm postgres connection.
type txManager struct {
	data        *Data
	lockTimeout time.Duration
	logger      *zap.Logger
}

// NewTxManager creates the ledger transaction manager. lockTimeout bounds how
// long any statement inside the transaction waits for a row lock.
func NewTxManager(data *Data, lockTimeout time.Duration, logger *zap.Logger) domain.TxManager {
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &txManager{data: data, lockTimeout: lockTimeout, logger: logger}
}

// InTx runs fn inside a single transaction. SET LOCAL scopes the lock timeout
// to this transaction only; any error from fn rolls everything back.
func (m *txManager) InTx(ctx context.Context, fn func(tx domain.LedgerTx) error) error {
	err := m.data.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		timeoutMs := m.lockTimeout.Milliseconds()
		if err := tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", timeoutMs)).Error; err != nil {
			return fmt.Errorf("failed to set lock timeout: %w", err)
		}
		return fn(&ledgerTx{tx: tx})
	})
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

// mapPgError translates driver-level lock timeout errors into the domain
// sentinel so callers can respond with a conflict instead of a 500.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
		return domain.ErrLockTimeout
	}
	return err
}

// ledgerTx implements domain.LedgerTx over an open gorm transaction.
type ledgerTx struct {
	tx *gorm.DB
}

// LockAccount loads an active account under SELECT ... FOR UPDATE. Missing,
// archived and foreign-tenant rows are all the same ErrAccountNotFound so
// callers cannot distinguish another tenant's data from nothing.
func (t *ledgerTx) LockAccount(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	var model AccountModel
	err := t.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND tenant_id = ? AND is_active = ?", accountID, tenantID, true).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, mapPgError(err)
	}
	return model.ToEntity(), nil
}

// SaveAccountBalance persists the balance of a previously locked account.
func (t *ledgerTx) SaveAccountBalance(ctx context.Context, account *domain.Account) error {
	result := t.tx.WithContext(ctx).
		Model(&AccountModel{}).
		Where("id = ? AND tenant_id = ?", account.ID, account.TenantID).
		Updates(map[string]any{
			"current_balance": account.CurrentBalance,
			"updated_at":      account.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// GetExpense loads an expense including soft-deleted rows.
func (t *ledgerTx) GetExpense(ctx context.Context, tenantID, expenseID string) (*domain.Expense, error) {
	var model ExpenseModel
	err := t.tx.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", expenseID, tenantID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// InsertExpense inserts a new expense row.
func (t *ledgerTx) InsertExpense(ctx context.Context, expense *domain.Expense) error {
	return t.tx.WithContext(ctx).Create(FromExpenseEntity(expense)).Error
}

// SaveExpense writes all columns of an existing expense row.
func (t *ledgerTx) SaveExpense(ctx context.Context, expense *domain.Expense) error {
	return t.tx.WithContext(ctx).Save(FromExpenseEntity(expense)).Error
}

// CountExpenses counts the tenant's non-deleted expenses for plan limit checks.
func (t *ledgerTx) CountExpenses(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	err := t.tx.WithContext(ctx).
		Model(&ExpenseModel{}).
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID).
		Count(&count).Error
	return count, err
}

// AppendAudit appends an audit entry in the same transaction as the mutation
// it records. No update or delete path exists for audit rows.
func (t *ledgerTx) AppendAudit(ctx context.Context, entry *domain.AuditEntry) error {
	model, err := FromAuditEntity(entry)
	if err != nil {
		return err
	}
	return t.tx.WithContext(ctx).Create(model).Error
}
