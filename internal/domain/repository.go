package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// TxManager runs a function inside a single database transaction with a
// bounded lock wait. Any error returned by fn rolls the whole transaction
// back; partial balance state is never committed.
type TxManager interface {
	InTx(ctx context.Context, fn func(tx LedgerTx) error) error
}

// LedgerTx is the set of operations available inside a ledger transaction.
// Every method is tenant-scoped at the signature level: there is no way to
// reach another tenant's rows through this interface.
type LedgerTx interface {
	// LockAccount loads an active account under an exclusive row lock
	// (SELECT ... FOR UPDATE). Returns ErrAccountNotFound for missing,
	// inactive or foreign-tenant accounts and ErrLockTimeout when the lock
	// cannot be acquired within the configured wait.
	LockAccount(ctx context.Context, tenantID, accountID string) (*Account, error)

	// SaveAccountBalance persists the balance of a previously locked account.
	SaveAccountBalance(ctx context.Context, account *Account) error

	// GetExpense loads an expense including soft-deleted rows so callers can
	// apply their own already-deleted policy.
	GetExpense(ctx context.Context, tenantID, expenseID string) (*Expense, error)

	InsertExpense(ctx context.Context, expense *Expense) error
	SaveExpense(ctx context.Context, expense *Expense) error

	// CountExpenses counts non-deleted expenses, used for plan limit checks.
	CountExpenses(ctx context.Context, tenantID string) (int64, error)

	// AppendAudit appends an immutable audit entry within the transaction.
	AppendAudit(ctx context.Context, entry *AuditEntry) error
}

// TenantRepository resolves and lists tenants. Tenants are the only entity
// not scoped by a tenant id.
type TenantRepository interface {
	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error)
	GetByCustomDomain(ctx context.Context, domain string) (*Tenant, error)
	ListActive(ctx context.Context) ([]*Tenant, error)
}

// AccountRepository reads accounts outside ledger transactions.
type AccountRepository interface {
	Get(ctx context.Context, tenantID, id string) (*Account, error)
	// ListLowBalance returns active accounts whose balance sits at or below
	// their configured threshold.
	ListLowBalance(ctx context.Context, tenantID string) ([]*Account, error)
}

// ExpenseRepository reads expenses outside ledger transactions.
type ExpenseRepository interface {
	Get(ctx context.Context, tenantID, id string) (*Expense, error)
	List(ctx context.Context, tenantID string, limit, offset int) ([]*Expense, error)
}

// BudgetRepository reads budgets and derives their spent totals.
type BudgetRepository interface {
	ListAlertEnabled(ctx context.Context, tenantID string) ([]*Budget, error)
	// SpentAmount sums active expenses matching the budget's window and
	// optional category/owner scope.
	SpentAmount(ctx context.Context, budget *Budget) (decimal.Decimal, error)
}

// ProjectRepository reads projects and derives their spend.
type ProjectRepository interface {
	// Get returns ErrProjectNotFound for missing or foreign-tenant projects.
	Get(ctx context.Context, tenantID, id string) (*Project, error)
	ListActive(ctx context.Context, tenantID string) ([]*Project, error)
	TotalSpent(ctx context.Context, tenantID, projectID string) (decimal.Decimal, error)
}

// AlertRepository maintains the deduplicated alert set.
type AlertRepository interface {
	// Upsert inserts the alert or, when a live alert already exists for the
	// same key, refreshes it in place and resets its read/dismissed/sent
	// flags. The stored alert is returned.
	Upsert(ctx context.Context, alert *Alert) (*Alert, error)

	Get(ctx context.Context, tenantID, id string) (*Alert, error)
	List(ctx context.Context, tenantID string, limit, offset int) ([]*Alert, error)
	ListUnread(ctx context.Context, tenantID string, limit int) ([]*Alert, error)
	UnreadCount(ctx context.Context, tenantID string) (int64, error)
	Update(ctx context.Context, alert *Alert) error
}

// AuditRepository reads the append-only audit trail. There is deliberately no
// update or delete.
type AuditRepository interface {
	History(ctx context.Context, tenantID, resourceType, resourceID string, limit int) ([]*AuditEntry, error)
}

// PreferencesRepository reads notification preferences for dispatch gating.
type PreferencesRepository interface {
	ListRecipients(ctx context.Context, tenantID string) ([]*UserPreferences, error)
}

// AlertPublisher hands alerts whose notifications are due to the external
// notifier. The engine decides alert existence and state only; delivery is
// someone else's job.
type AlertPublisher interface {
	PublishAlertPending(ctx context.Context, alert *Alert, recipients []string) error
}
