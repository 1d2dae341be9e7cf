package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBudgetUtilizationPercent(t *testing.T) {
	budget := NewBudget("tenant_1", "Marketing", dec("1000"), "EUR", BudgetPeriodMonthly,
		time.Now().AddDate(0, 0, -10), time.Now().AddDate(0, 0, 20))

	assert.InDelta(t, 80.0, budget.UtilizationPercent(dec("800")), 0.001)
	assert.InDelta(t, 125.0, budget.UtilizationPercent(dec("1250")), 0.001)
	assert.Zero(t, NewBudget("tenant_1", "Empty", dec("0"), "EUR", BudgetPeriodMonthly, time.Now(), time.Now()).UtilizationPercent(dec("50")))
}

func TestBudgetRemaining(t *testing.T) {
	budget := NewBudget("tenant_1", "Travel", dec("500"), "EUR", BudgetPeriodQuarterly,
		time.Now(), time.Now().AddDate(0, 3, 0))

	assert.True(t, budget.Remaining(dec("120")).Equal(dec("380")))
	assert.True(t, budget.Remaining(dec("600")).Equal(dec("-100")), "overspent budgets report negative headroom")
}

func TestBudgetDaysLeftFlooredAtZero(t *testing.T) {
	now := time.Now()
	past := NewBudget("tenant_1", "Old", dec("100"), "EUR", BudgetPeriodMonthly,
		now.AddDate(0, -2, 0), now.AddDate(0, -1, 0))

	assert.Zero(t, past.DaysLeft(now))
}

func TestNewBudgetDefaults(t *testing.T) {
	budget := NewBudget("tenant_1", "Ops", dec("100"), "EUR", BudgetPeriodMonthly, time.Now(), time.Now())

	assert.Equal(t, 80, budget.AlertThreshold)
	assert.True(t, budget.AlertEnabled)
	assert.True(t, budget.IsActive)
}
