package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType classifies the funding source behind an account.
type AccountType string

const (
	AccountTypeCash          AccountType = "cash"
	AccountTypeBank          AccountType = "bank"
	AccountTypeCreditCard    AccountType = "credit_card"
	AccountTypeDigitalWallet AccountType = "digital_wallet"
)

// Account is a balance-bearing ledger unit owned by exactly one tenant.
//
// CurrentBalance is the single piece of mutable shared state in the ledger
// core. It is mutated only inside locked transactions driven by the
// LedgerUsecase, never directly by handlers.
type Account struct {
	ID       string
	TenantID string
	Name     string
	Type     AccountType

	Currency            string
	OpeningBalance      decimal.Decimal
	CurrentBalance      decimal.Decimal
	LowBalanceThreshold *decimal.Decimal

	IsActive   bool
	IsArchived bool

	Description string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewAccount creates an active account whose current balance starts at the
// opening balance.
func NewAccount(tenantID, name string, accountType AccountType, currency string, openingBalance decimal.Decimal) *Account {
	now := time.Now().UTC()
	return &Account{
		ID:             "acct_" + uuid.New().String(),
		TenantID:       tenantID,
		Name:           name,
		Type:           accountType,
		Currency:       currency,
		OpeningBalance: openingBalance,
		CurrentBalance: openingBalance,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Debit subtracts amount from the current balance. Balances may go negative:
// overdrafts are surfaced through alerts, not blocked writes.
func (a *Account) Debit(amount decimal.Decimal) {
	a.CurrentBalance = a.CurrentBalance.Sub(amount)
	a.UpdatedAt = time.Now().UTC()
}

// Credit adds amount back to the current balance.
func (a *Account) Credit(amount decimal.Decimal) {
	a.CurrentBalance = a.CurrentBalance.Add(amount)
	a.UpdatedAt = time.Now().UTC()
}

// Adjust sets the balance to an explicit value (manual correction).
func (a *Account) Adjust(newBalance decimal.Decimal) {
	a.CurrentBalance = newBalance
	a.UpdatedAt = time.Now().UTC()
}

// IsLowBalance reports whether the balance sits at or below the configured
// threshold. Accounts without a threshold never report low balance.
func (a *Account) IsLowBalance() bool {
	if a.LowBalanceThreshold == nil || a.LowBalanceThreshold.Sign() <= 0 {
		return false
	}
	return a.CurrentBalance.Cmp(*a.LowBalanceThreshold) <= 0
}

// BalanceChange is the drift from the opening balance.
func (a *Account) BalanceChange() decimal.Decimal {
	return a.CurrentBalance.Sub(a.OpeningBalance)
}
