package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertRefreshResetsFlags(t *testing.T) {
	key := AlertKey{TenantID: "tenant_1", Type: AlertTypeBudgetWarning, EntityType: "budget", EntityID: "budget_1"}
	alert := NewAlert(key, SeverityWarning, "Budget at 80%", "msg", nil)

	alert.MarkRead("user_1")
	alert.Dismiss()
	alert.MarkNotificationSent()
	require.True(t, alert.IsRead)
	require.True(t, alert.IsDismissed)
	require.True(t, alert.NotificationSent)

	alert.Refresh(SeverityError, "Budget at 95%", "msg2", map[string]any{"utilization": 95.0})

	assert.False(t, alert.IsRead)
	assert.Nil(t, alert.ReadAt)
	assert.Empty(t, alert.ReadBy)
	assert.False(t, alert.IsDismissed)
	assert.Nil(t, alert.DismissedAt)
	assert.False(t, alert.NotificationSent)
	assert.Nil(t, alert.NotificationSentAt)
	assert.Equal(t, SeverityError, alert.Severity)
	assert.Equal(t, "Budget at 95%", alert.Title)
}

func TestAlertMarkRead(t *testing.T) {
	key := AlertKey{TenantID: "tenant_1", Type: AlertTypeLowBalance, EntityType: "account", EntityID: "acct_1"}
	alert := NewAlert(key, SeverityWarning, "Low balance", "msg", nil)

	alert.MarkRead("user_9")

	assert.True(t, alert.IsRead)
	assert.Equal(t, "user_9", alert.ReadBy)
	assert.NotNil(t, alert.ReadAt)
}

func TestAlertKeyRoundTrip(t *testing.T) {
	key := AlertKey{TenantID: "tenant_1", Type: AlertTypeForecastOverspend, EntityType: "project", EntityID: "proj_1"}
	alert := NewAlert(key, SeverityWarning, "t", "m", nil)

	assert.Equal(t, key, alert.Key())
}
