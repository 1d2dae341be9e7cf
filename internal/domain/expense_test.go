package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExpenseRejectsNonPositiveAmount(t *testing.T) {
	_, err := NewExpense("tenant_1", "acct_1", dec("0"), "EUR", "Lunch", time.Now(), "user_1")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewExpense("tenant_1", "acct_1", dec("-5.00"), "EUR", "Lunch", time.Now(), "user_1")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestExpenseSoftDelete(t *testing.T) {
	expense, err := NewExpense("tenant_1", "acct_1", dec("25.00"), "EUR", "Taxi", time.Now(), "user_1")
	require.NoError(t, err)
	require.False(t, expense.IsDeleted())

	expense.SoftDelete()

	assert.True(t, expense.IsDeleted())
	assert.NotNil(t, expense.DeletedAt)
}

func TestExpenseRecordEditKeepsPreviousValues(t *testing.T) {
	expense, err := NewExpense("tenant_1", "acct_1", dec("200.00"), "EUR", "Hotel", time.Now(), "user_1")
	require.NoError(t, err)

	expense.RecordEdit(dec("350.00"), "acct_2", "user_2")

	require.NotNil(t, expense.LastAmount)
	assert.True(t, expense.LastAmount.Equal(dec("200.00")))
	assert.Equal(t, "acct_1", expense.LastAccountID)
	assert.Equal(t, "user_2", expense.EditedBy)
	assert.NotNil(t, expense.EditedAt)
	assert.True(t, expense.Amount.Equal(dec("350.00")))
	assert.Equal(t, "acct_2", expense.AccountID)
}

func TestExpenseRecordEditWithoutAccountMove(t *testing.T) {
	expense, err := NewExpense("tenant_1", "acct_1", dec("10.00"), "EUR", "Coffee", time.Now(), "user_1")
	require.NoError(t, err)

	expense.RecordEdit(dec("12.00"), "", "user_1")

	assert.Equal(t, "acct_1", expense.AccountID, "empty account id keeps the current account")
	assert.True(t, expense.Amount.Equal(dec("12.00")))
}
