package biz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tracktok/internal/domain"
)

type alertFixture struct {
	uc        *AlertUsecase
	accounts  *fakeAccountRepo
	budgets   *fakeBudgetRepo
	projects  *fakeProjectRepo
	alerts    *fakeAlertRepo
	tenants   *fakeTenantRepo
	prefs     *fakePrefsRepo
	publisher *fakePublisher
	tenantID  string
}

func newAlertFixture(t *testing.T) *alertFixture {
	t.Helper()

	tenant := domain.NewTenant("Acme", "acme", domain.TenantPlanPro)
	f := &alertFixture{
		accounts:  &fakeAccountRepo{lowBalance: make(map[string][]*domain.Account)},
		budgets:   &fakeBudgetRepo{budgets: make(map[string][]*domain.Budget), spent: make(map[string]decimal.Decimal)},
		projects:  &fakeProjectRepo{projects: make(map[string][]*domain.Project), spent: make(map[string]decimal.Decimal)},
		alerts:    newFakeAlertRepo(),
		tenants:   newFakeTenantRepo(tenant),
		prefs:     &fakePrefsRepo{prefs: make(map[string][]*domain.UserPreferences)},
		publisher: &fakePublisher{},
		tenantID:  tenant.ID,
	}
	f.uc = NewAlertUsecase(
		f.accounts, f.budgets, f.projects, f.alerts, f.tenants, f.prefs, f.publisher,
		AlertConfig{TenantConcurrency: 2, ForecastMinConfidence: 90},
		zap.NewNop(),
	)
	return f
}

func (f *alertFixture) lowBalanceAccount(balance, threshold string) *domain.Account {
	account := domain.NewAccount(f.tenantID, "Operating", domain.AccountTypeBank, "EUR", dec("1000"))
	account.CurrentBalance = dec(balance)
	th := dec(threshold)
	account.LowBalanceThreshold = &th
	f.accounts.lowBalance[f.tenantID] = append(f.accounts.lowBalance[f.tenantID], account)
	return account
}

func (f *alertFixture) budget(amount, spent string, threshold int) *domain.Budget {
	now := time.Now().UTC()
	budget := domain.NewBudget(f.tenantID, "Marketing", dec(amount), "EUR", domain.BudgetPeriodMonthly,
		now.AddDate(0, 0, -15), now.AddDate(0, 0, 15))
	budget.AlertThreshold = threshold
	f.budgets.budgets[f.tenantID] = append(f.budgets.budgets[f.tenantID], budget)
	f.budgets.spent[budget.ID] = dec(spent)
	return budget
}

func (f *alertFixture) project(budget, spent string, daysElapsed, daysRemaining int) *domain.Project {
	now := time.Now().UTC()
	start := now.AddDate(0, 0, -daysElapsed)
	end := now.AddDate(0, 0, daysRemaining)
	project := domain.NewProject(f.tenantID, "Launch", dec(budget), "EUR", &start, &end)
	f.projects.projects[f.tenantID] = append(f.projects.projects[f.tenantID], project)
	f.projects.spent[project.ID] = dec(spent)
	return project
}

func TestEvaluateTenantLowBalance(t *testing.T) {
	f := newAlertFixture(t)
	account := f.lowBalanceAccount("40.00", "50.00")

	require.NoError(t, f.uc.EvaluateTenant(context.Background(), f.tenantID))

	key := domain.AlertKey{TenantID: f.tenantID, Type: domain.AlertTypeLowBalance, EntityType: "account", EntityID: account.ID}
	alert, ok := f.alerts.alerts[key]
	require.True(t, ok)
	assert.Equal(t, domain.SeverityWarning, alert.Severity)
}

func TestEvaluateTenantNegativeBalanceEscalates(t *testing.T) {
	f := newAlertFixture(t)
	account := f.lowBalanceAccount("-20.00", "50.00")

	require.NoError(t, f.uc.EvaluateTenant(context.Background(), f.tenantID))

	key := domain.AlertKey{TenantID: f.tenantID, Type: domain.AlertTypeLowBalance, EntityType: "account", EntityID: account.ID}
	require.Contains(t, f.alerts.alerts, key)
	assert.Equal(t, domain.SeverityError, f.alerts.alerts[key].Severity)
}

func TestEvaluateTenantBudgetWarning(t *testing.T) {
	f := newAlertFixture(t)
	budget := f.budget("1000", "850", 80)

	require.NoError(t, f.uc.EvaluateTenant(context.Background(), f.tenantID))

	warnKey := domain.AlertKey{TenantID: f.tenantID, Type: domain.AlertTypeBudgetWarning, EntityType: "budget", EntityID: budget.ID}
	exceededKey := domain.AlertKey{TenantID: f.tenantID, Type: domain.AlertTypeBudgetExceeded, EntityType: "budget", EntityID: budget.ID}
	assert.Contains(t, f.alerts.alerts, warnKey)
	assert.NotContains(t, f.alerts.alerts, exceededKey)
}

func TestEvaluateTenantBudgetExceededSupersedesWarning(t *testing.T) {
	f := newAlertFixture(t)
	budget := f.budget("1000", "1200", 80)

	require.NoError(t, f.uc.EvaluateTenant(context.Background(), f.tenantID))

	warnKey := domain.AlertKey{TenantID: f.tenantID, Type: domain.AlertTypeBudgetWarning, EntityType: "budget", EntityID: budget.ID}
	exceededKey := domain.AlertKey{TenantID: f.tenantID, Type: domain.AlertTypeBudgetExceeded, EntityType: "budget", EntityID: budget.ID}
	assert.NotContains(t, f.alerts.alerts, warnKey)
	require.Contains(t, f.alerts.alerts, exceededKey)
	assert.Equal(t, domain.SeverityError, f.alerts.alerts[exceededKey].Severity)
}

func TestEvaluateTenantBudgetOutsideWindowSkipped(t *testing.T) {
	f := newAlertFixture(t)
	now := time.Now().UTC()
	stale := domain.NewBudget(f.tenantID, "Last quarter", dec("100"), "EUR", domain.BudgetPeriodQuarterly,
		now.AddDate(0, -6, 0), now.AddDate(0, -3, 0))
	f.budgets.budgets[f.tenantID] = []*domain.Budget{stale}
	f.budgets.spent[stale.ID] = dec("500")

	require.NoError(t, f.uc.EvaluateTenant(context.Background(), f.tenantID))

	assert.Empty(t, f.alerts.alerts)
}

func TestEvaluateTenantForecastNeedsConfidence(t *testing.T) {
	f := newAlertFixture(t)
	// 50% of the timeline elapsed, trending over budget, but below the 90%
	// confidence floor.
	f.project("800", "900", 50, 50)

	require.NoError(t, f.uc.EvaluateTenant(context.Background(), f.tenantID))
	assert.Empty(t, f.alerts.alerts)
}

func TestEvaluateTenantForecastOverspend(t *testing.T) {
	f := newAlertFixture(t)
	project := f.project("800", "900", 90, 10)

	require.NoError(t, f.uc.EvaluateTenant(context.Background(), f.tenantID))

	key := domain.AlertKey{TenantID: f.tenantID, Type: domain.AlertTypeForecastOverspend, EntityType: "project", EntityID: project.ID}
	require.Contains(t, f.alerts.alerts, key)
	assert.Equal(t, domain.SeverityWarning, f.alerts.alerts[key].Severity)
}

func TestEvaluateTenantForecastHighConfidenceIsError(t *testing.T) {
	f := newAlertFixture(t)
	project := f.project("800", "1000", 96, 4)

	require.NoError(t, f.uc.EvaluateTenant(context.Background(), f.tenantID))

	key := domain.AlertKey{TenantID: f.tenantID, Type: domain.AlertTypeForecastOverspend, EntityType: "project", EntityID: project.ID}
	require.Contains(t, f.alerts.alerts, key)
	assert.Equal(t, domain.SeverityError, f.alerts.alerts[key].Severity)
}

func TestEvaluateTenantDeadlineHorizon(t *testing.T) {
	f := newAlertFixture(t)
	far := f.project("1000", "10", 5, 30)
	soon := f.project("1000", "10", 5, 10)
	imminent := f.project("1000", "10", 5, 3)

	require.NoError(t, f.uc.EvaluateTenant(context.Background(), f.tenantID))

	farKey := domain.AlertKey{TenantID: f.tenantID, Type: domain.AlertTypeProjectDeadline, EntityType: "project", EntityID: far.ID}
	assert.NotContains(t, f.alerts.alerts, farKey, "deadlines beyond two weeks stay quiet")

	soonKey := domain.AlertKey{TenantID: f.tenantID, Type: domain.AlertTypeProjectDeadline, EntityType: "project", EntityID: soon.ID}
	require.Contains(t, f.alerts.alerts, soonKey)
	assert.Equal(t, domain.SeverityInfo, f.alerts.alerts[soonKey].Severity)

	imminentKey := domain.AlertKey{TenantID: f.tenantID, Type: domain.AlertTypeProjectDeadline, EntityType: "project", EntityID: imminent.ID}
	require.Contains(t, f.alerts.alerts, imminentKey)
	assert.Equal(t, domain.SeverityWarning, f.alerts.alerts[imminentKey].Severity)
}

func TestEvaluateTenantOverdueDeadline(t *testing.T) {
	f := newAlertFixture(t)
	overdue := f.project("1000", "10", 20, -3)

	require.NoError(t, f.uc.EvaluateTenant(context.Background(), f.tenantID))

	key := domain.AlertKey{TenantID: f.tenantID, Type: domain.AlertTypeDeadlineOverdue, EntityType: "project", EntityID: overdue.ID}
	require.Contains(t, f.alerts.alerts, key)
	assert.Equal(t, domain.SeverityError, f.alerts.alerts[key].Severity)
}

func TestEvaluateTenantDeduplicatesAcrossRuns(t *testing.T) {
	f := newAlertFixture(t)
	f.lowBalanceAccount("40.00", "50.00")

	require.NoError(t, f.uc.EvaluateTenant(context.Background(), f.tenantID))
	require.Len(t, f.alerts.alerts, 1)

	// Dismiss, then re-evaluate: same single alert, resurfaced.
	var alert *domain.Alert
	for _, a := range f.alerts.alerts {
		alert = a
	}
	alert.Dismiss()

	require.NoError(t, f.uc.EvaluateTenant(context.Background(), f.tenantID))
	assert.Len(t, f.alerts.alerts, 1, "re-evaluation must not stack a duplicate")
	assert.False(t, alert.IsDismissed, "refresh resurfaces dismissed alerts")
}

func TestDispatchRespectsPreferences(t *testing.T) {
	f := newAlertFixture(t)
	f.lowBalanceAccount("40.00", "50.00")
	f.prefs.prefs[f.tenantID] = []*domain.UserPreferences{
		{
			Email:                     "instant@acme.test",
			EmailNotificationsEnabled: true,
			EmailFrequency:            domain.EmailFrequencyInstant,
			NotifyLowBalance:          true,
		},
		{
			Email:                     "optout@acme.test",
			EmailNotificationsEnabled: true,
			EmailFrequency:            domain.EmailFrequencyInstant,
			NotifyLowBalance:          false,
		},
		{
			Email:                     "daily@acme.test",
			EmailNotificationsEnabled: true,
			EmailFrequency:            domain.EmailFrequencyDaily,
			NotifyLowBalance:          true,
		},
	}

	require.NoError(t, f.uc.EvaluateTenant(context.Background(), f.tenantID))

	require.Len(t, f.publisher.published, 1)
	assert.Equal(t, []string{"instant@acme.test"}, f.publisher.published[0].recipients)

	for _, a := range f.alerts.alerts {
		assert.True(t, a.NotificationSent)
	}
}

func TestDispatchSkipsWhenNoRecipients(t *testing.T) {
	f := newAlertFixture(t)
	f.lowBalanceAccount("40.00", "50.00")

	require.NoError(t, f.uc.EvaluateTenant(context.Background(), f.tenantID))

	assert.Empty(t, f.publisher.published)
	for _, a := range f.alerts.alerts {
		assert.False(t, a.NotificationSent, "undelivered alerts stay eligible for the next pass")
	}
}

func TestDispatchPublishFailureKeepsAlertUnsent(t *testing.T) {
	f := newAlertFixture(t)
	f.lowBalanceAccount("40.00", "50.00")
	f.prefs.prefs[f.tenantID] = []*domain.UserPreferences{
		{
			Email:                     "instant@acme.test",
			EmailNotificationsEnabled: true,
			EmailFrequency:            domain.EmailFrequencyInstant,
			NotifyLowBalance:          true,
		},
	}
	f.publisher.err = errors.New("broker unavailable")

	require.NoError(t, f.uc.EvaluateTenant(context.Background(), f.tenantID))

	for _, a := range f.alerts.alerts {
		assert.False(t, a.NotificationSent, "failed publish must leave the alert eligible for retry")
	}
}

func TestEvaluateAllIsolatesTenantFailures(t *testing.T) {
	f := newAlertFixture(t)
	broken := domain.NewTenant("Broken", "broken", domain.TenantPlanFree)
	f.tenants.tenants[broken.ID] = broken
	f.accounts.failFor = broken.ID
	f.lowBalanceAccount("40.00", "50.00")

	err := f.uc.EvaluateAll(context.Background())

	require.NoError(t, err, "one failing tenant must not fail the pass")
	assert.Len(t, f.alerts.alerts, 1, "healthy tenant still evaluated")
}

func TestMarkReadAndDismiss(t *testing.T) {
	f := newAlertFixture(t)
	f.lowBalanceAccount("40.00", "50.00")
	require.NoError(t, f.uc.EvaluateTenant(context.Background(), f.tenantID))

	var alertID string
	for _, a := range f.alerts.alerts {
		alertID = a.ID
	}
	tc := domain.TenantContext{TenantID: f.tenantID, UserID: "user_7"}

	read, err := f.uc.MarkRead(context.Background(), tc, alertID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	assert.Equal(t, "user_7", read.ReadBy)

	dismissed, err := f.uc.Dismiss(context.Background(), tc, alertID)
	require.NoError(t, err)
	assert.True(t, dismissed.IsDismissed)

	count, err := f.uc.UnreadCount(context.Background(), tc)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAlertsAreTenantScoped(t *testing.T) {
	f := newAlertFixture(t)
	f.lowBalanceAccount("40.00", "50.00")
	require.NoError(t, f.uc.EvaluateTenant(context.Background(), f.tenantID))

	var alertID string
	for _, a := range f.alerts.alerts {
		alertID = a.ID
	}

	_, err := f.uc.MarkRead(context.Background(), domain.TenantContext{TenantID: "tenant_other", UserID: "u"}, alertID)
	assert.ErrorIs(t, err, domain.ErrAlertNotFound)
}
