package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseStatus approval workflow state
type ExpenseStatus string

const (
	ExpenseStatusSubmitted ExpenseStatus = "submitted"
	ExpenseStatusApproved  ExpenseStatus = "approved"
	ExpenseStatusRejected  ExpenseStatus = "rejected"
)

// Expense is a single debit against exactly one account (single-entry ledger).
type Expense struct {
	ID         string
	TenantID   string
	AccountID  string
	ProjectID  string // optional
	CategoryID string // optional

	Amount   decimal.Decimal
	Currency string

	Title       string
	ExpenseDate time.Time
	Status      ExpenseStatus
	Notes       string

	// Edit audit metadata, kept on the row so the last mutation is visible
	// without walking the audit log.
	LastAmount    *decimal.Decimal
	LastAccountID string
	EditedBy      string
	EditedAt      *time.Time

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// NewExpense creates a submitted expense. The amount must be strictly
// positive; balance checks are the ledger's concern, not the constructor's.
func NewExpense(tenantID, accountID string, amount decimal.Decimal, currency, title string, expenseDate time.Time, createdBy string) (*Expense, error) {
	if amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	now := time.Now().UTC()
	return &Expense{
		ID:          "exp_" + uuid.New().String(),
		TenantID:    tenantID,
		AccountID:   accountID,
		Amount:      amount,
		Currency:    currency,
		Title:       title,
		ExpenseDate: expenseDate,
		Status:      ExpenseStatusSubmitted,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsDeleted reports whether the expense has been soft-deleted.
func (e *Expense) IsDeleted() bool {
	return e.DeletedAt != nil
}

// SoftDelete marks the expense deleted. The row stays in storage for audit
// history and is excluded from balance and reporting queries.
func (e *Expense) SoftDelete() {
	now := time.Now().UTC()
	e.DeletedAt = &now
	e.UpdatedAt = now
}

// RecordEdit captures the pre-edit amount and account before an amendment is
// applied, then moves the expense to its new amount/account.
func (e *Expense) RecordEdit(newAmount decimal.Decimal, newAccountID, editedBy string) {
	oldAmount := e.Amount
	now := time.Now().UTC()

	e.LastAmount = &oldAmount
	e.LastAccountID = e.AccountID
	e.EditedBy = editedBy
	e.EditedAt = &now

	e.Amount = newAmount
	if newAccountID != "" {
		e.AccountID = newAccountID
	}
	e.UpdatedAt = now
}

// Approve moves the expense into the approved state.
func (e *Expense) Approve(approvedBy string) {
	e.Status = ExpenseStatusApproved
	e.EditedBy = approvedBy
	e.UpdatedAt = time.Now().UTC()
}

// Reject moves the expense into the rejected state.
func (e *Expense) Reject(rejectedBy, reason string) {
	e.Status = ExpenseStatusRejected
	e.EditedBy = rejectedBy
	if reason != "" {
		e.Notes = "Rejection reason: " + reason + "\n" + e.Notes
	}
	e.UpdatedAt = time.Now().UTC()
}
