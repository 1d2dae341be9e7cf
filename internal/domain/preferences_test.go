package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldEmailForAlert(t *testing.T) {
	prefs := &UserPreferences{
		Email:                     "user@example.com",
		EmailNotificationsEnabled: true,
		EmailFrequency:            EmailFrequencyInstant,
		NotifyLowBalance:          true,
		NotifyBudgetExceeded:      true,
		NotifyForecastOverspend:   true,
		NotifyProjectDeadline:     true,
	}

	assert.True(t, prefs.ShouldEmailForAlert(AlertTypeLowBalance))
	assert.True(t, prefs.ShouldEmailForAlert(AlertTypeBudgetExceeded))
	assert.True(t, prefs.ShouldEmailForAlert(AlertTypeBudgetWarning))
	assert.True(t, prefs.ShouldEmailForAlert(AlertTypeForecastOverspend))
	assert.True(t, prefs.ShouldEmailForAlert(AlertTypeProjectDeadline))
	assert.True(t, prefs.ShouldEmailForAlert(AlertTypeDeadlineOverdue))
}

func TestShouldEmailForAlertGlobalToggle(t *testing.T) {
	prefs := &UserPreferences{
		EmailNotificationsEnabled: false,
		EmailFrequency:            EmailFrequencyInstant,
		NotifyLowBalance:          true,
	}

	assert.False(t, prefs.ShouldEmailForAlert(AlertTypeLowBalance))
}

func TestShouldEmailForAlertPerTypeOptOut(t *testing.T) {
	prefs := &UserPreferences{
		EmailNotificationsEnabled: true,
		EmailFrequency:            EmailFrequencyInstant,
		NotifyLowBalance:          false,
		NotifyBudgetExceeded:      true,
		NotifyProjectDeadline:     false,
	}

	assert.False(t, prefs.ShouldEmailForAlert(AlertTypeLowBalance))
	assert.True(t, prefs.ShouldEmailForAlert(AlertTypeBudgetExceeded))
	assert.False(t, prefs.ShouldEmailForAlert(AlertTypeProjectDeadline))
	assert.False(t, prefs.ShouldEmailForAlert(AlertTypeDeadlineOverdue))
}

func TestShouldEmailForAlertDigestFrequenciesAreNotInstant(t *testing.T) {
	prefs := &UserPreferences{
		EmailNotificationsEnabled: true,
		EmailFrequency:            EmailFrequencyDaily,
		NotifyLowBalance:          true,
	}

	assert.False(t, prefs.ShouldEmailForAlert(AlertTypeLowBalance), "daily digests go out in a batch, not instantly")
}
