package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetPeriod window granularity
type BudgetPeriod string

const (
	BudgetPeriodDaily     BudgetPeriod = "daily"
	BudgetPeriodWeekly    BudgetPeriod = "weekly"
	BudgetPeriodMonthly   BudgetPeriod = "monthly"
	BudgetPeriodQuarterly BudgetPeriod = "quarterly"
	BudgetPeriodYearly    BudgetPeriod = "yearly"
	BudgetPeriodCustom    BudgetPeriod = "custom"
)

// Budget is a spending ceiling over a (tenant, optional category, optional
// owner) scope and date window. It is read-only with respect to the ledger:
// spent amount and utilization are derived from expenses, never stored.
type Budget struct {
	ID       string
	TenantID string
	Name     string

	Amount   decimal.Decimal
	Currency string

	Period    BudgetPeriod
	StartDate time.Time
	EndDate   time.Time

	CategoryID string // optional scope
	OwnerID    string // optional scope

	AlertThreshold int // percent, fires budget_warning at or above
	AlertEnabled   bool
	IsActive       bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBudget creates an active budget with the default 80% warning threshold.
func NewBudget(tenantID, name string, amount decimal.Decimal, currency string, period BudgetPeriod, start, end time.Time) *Budget {
	now := time.Now().UTC()
	return &Budget{
		ID:             "budget_" + uuid.New().String(),
		TenantID:       tenantID,
		Name:           name,
		Amount:         amount,
		Currency:       currency,
		Period:         period,
		StartDate:      start,
		EndDate:        end,
		AlertThreshold: 80,
		AlertEnabled:   true,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// UtilizationPercent computes spent/amount as a percentage for a given spent
// total. A zero-amount budget reports zero utilization.
func (b *Budget) UtilizationPercent(spent decimal.Decimal) float64 {
	if b.Amount.Sign() == 0 {
		return 0
	}
	pct, _ := spent.Div(b.Amount).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

// Remaining is the headroom left for a given spent total.
func (b *Budget) Remaining(spent decimal.Decimal) decimal.Decimal {
	return b.Amount.Sub(spent)
}

// DaysLeft counts whole days from now until the window closes, floored at zero.
func (b *Budget) DaysLeft(now time.Time) int {
	d := int(b.EndDate.Sub(now).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
