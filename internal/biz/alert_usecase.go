package biz

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tracktok/internal/domain"
	"tracktok/pkg/monitoring"
)

// AlertConfig tunes the threshold engine.
type AlertConfig struct {
	// TenantConcurrency bounds how many tenants are evaluated in parallel.
	TenantConcurrency int
	// ForecastMinConfidence is the minimum projection confidence (percent of
	// project timeline elapsed) before a forecast alert fires.
	ForecastMinConfidence float64
}

// AlertUsecase is the threshold engine. Evaluation is idempotent: conditions
// that still hold refresh their existing alert in place, conditions produce at
// most one live alert per (type, entity) and nothing is ever double-stacked.
type AlertUsecase struct {
	accountRepo domain.AccountRepository
	budgetRepo  domain.BudgetRepository
	projectRepo domain.ProjectRepository
	alertRepo   domain.AlertRepository
	tenantRepo  domain.TenantRepository
	prefsRepo   domain.PreferencesRepository
	publisher   domain.AlertPublisher
	config      AlertConfig
	log         *zap.Logger
}

// NewAlertUsecase creates the alert usecase.
func NewAlertUsecase(
	accountRepo domain.AccountRepository,
	budgetRepo domain.BudgetRepository,
	projectRepo domain.ProjectRepository,
	alertRepo domain.AlertRepository,
	tenantRepo domain.TenantRepository,
	prefsRepo domain.PreferencesRepository,
	publisher domain.AlertPublisher,
	config AlertConfig,
	logger *zap.Logger,
) *AlertUsecase {
	if config.TenantConcurrency <= 0 {
		config.TenantConcurrency = 8
	}
	if config.ForecastMinConfidence <= 0 {
		config.ForecastMinConfidence = 90
	}
	return &AlertUsecase{
		accountRepo: accountRepo,
		budgetRepo:  budgetRepo,
		projectRepo: projectRepo,
		alertRepo:   alertRepo,
		tenantRepo:  tenantRepo,
		prefsRepo:   prefsRepo,
		publisher:   publisher,
		config:      config,
		log:         logger,
	}
}

// EvaluateAll evaluates every active tenant. Tenants run concurrently with a
// bounded limit; one tenant failing never blocks the others.
func (uc *AlertUsecase) EvaluateAll(ctx context.Context) error {
	tenants, err := uc.tenantRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active tenants: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.config.TenantConcurrency)

	for _, tenant := range tenants {
		tenant := tenant
		g.Go(func() error {
			if err := uc.EvaluateTenant(gctx, tenant.ID); err != nil {
				uc.log.Error("tenant alert evaluation failed",
					zap.String("tenant_id", tenant.ID),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	return g.Wait()
}

// EvaluateTenant runs all threshold rules for one tenant and dispatches
// notifications for alerts that have not been delivered yet.
func (uc *AlertUsecase) EvaluateTenant(ctx context.Context, tenantID string) error {
	start := time.Now()
	defer func() {
		monitoring.AlertEvaluationDuration.Observe(time.Since(start).Seconds())
	}()

	var upserted []*domain.Alert

	lowBalance, err := uc.evaluateLowBalance(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("low balance rules: %w", err)
	}
	upserted = append(upserted, lowBalance...)

	budget, err := uc.evaluateBudgets(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("budget rules: %w", err)
	}
	upserted = append(upserted, budget...)

	forecast, err := uc.evaluateForecasts(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("forecast rules: %w", err)
	}
	upserted = append(upserted, forecast...)

	deadline, err := uc.evaluateDeadlines(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("deadline rules: %w", err)
	}
	upserted = append(upserted, deadline...)

	return uc.dispatchNotifications(ctx, tenantID, upserted)
}

// evaluateLowBalance fires one alert per account sitting at or below its
// configured threshold.
func (uc *AlertUsecase) evaluateLowBalance(ctx context.Context, tenantID string) ([]*domain.Alert, error) {
	accounts, err := uc.accountRepo.ListLowBalance(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	alerts := make([]*domain.Alert, 0, len(accounts))
	for _, account := range accounts {
		severity := domain.SeverityWarning
		if account.CurrentBalance.Sign() < 0 {
			severity = domain.SeverityError
		}

		threshold := ""
		if account.LowBalanceThreshold != nil {
			threshold = account.LowBalanceThreshold.String()
		}

		alert, err := uc.upsert(ctx,
			domain.AlertKey{TenantID: tenantID, Type: domain.AlertTypeLowBalance, EntityType: "account", EntityID: account.ID},
			severity,
			fmt.Sprintf("Low balance on %s", account.Name),
			fmt.Sprintf("Account %s is at %s %s, at or below its threshold of %s.",
				account.Name, account.CurrentBalance.String(), account.Currency, threshold),
			map[string]any{
				"balance":   account.CurrentBalance.String(),
				"threshold": threshold,
				"currency":  account.Currency,
			},
		)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}

// evaluateBudgets fires a warning at the budget's own threshold and an
// exceeded alert at full utilization. The exceeded alert supersedes the
// warning for the same budget.
func (uc *AlertUsecase) evaluateBudgets(ctx context.Context, tenantID string) ([]*domain.Alert, error) {
	budgets, err := uc.budgetRepo.ListAlertEnabled(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var alerts []*domain.Alert
	for _, budget := range budgets {
		if now.Before(budget.StartDate) || now.After(budget.EndDate) {
			continue
		}

		spent, err := uc.budgetRepo.SpentAmount(ctx, budget)
		if err != nil {
			return nil, err
		}
		utilization := budget.UtilizationPercent(spent)

		metadata := map[string]any{
			"spent":       spent.String(),
			"amount":      budget.Amount.String(),
			"utilization": utilization,
			"days_left":   budget.DaysLeft(now),
		}

		switch {
		case utilization >= 100:
			alert, err := uc.upsert(ctx,
				domain.AlertKey{TenantID: tenantID, Type: domain.AlertTypeBudgetExceeded, EntityType: "budget", EntityID: budget.ID},
				domain.SeverityError,
				fmt.Sprintf("Budget %q exceeded", budget.Name),
				fmt.Sprintf("Spent %s of %s %s (%.1f%%).",
					spent.String(), budget.Amount.String(), budget.Currency, utilization),
				metadata,
			)
			if err != nil {
				return nil, err
			}
			alerts = append(alerts, alert)
		case utilization >= float64(budget.AlertThreshold):
			alert, err := uc.upsert(ctx,
				domain.AlertKey{TenantID: tenantID, Type: domain.AlertTypeBudgetWarning, EntityType: "budget", EntityID: budget.ID},
				domain.SeverityWarning,
				fmt.Sprintf("Budget %q at %.0f%%", budget.Name, utilization),
				fmt.Sprintf("Spent %s of %s %s with %d days left in the period.",
					spent.String(), budget.Amount.String(), budget.Currency, budget.DaysLeft(now)),
				metadata,
			)
			if err != nil {
				return nil, err
			}
			alerts = append(alerts, alert)
		}
	}
	return alerts, nil
}

// evaluateForecasts projects each active project's spend at its current burn
// rate and alerts when the projection exceeds the starting budget with enough
// of the timeline elapsed to trust it.
func (uc *AlertUsecase) evaluateForecasts(ctx context.Context, tenantID string) ([]*domain.Alert, error) {
	projects, err := uc.projectRepo.ListActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var alerts []*domain.Alert
	for _, project := range projects {
		daysElapsed := project.DaysElapsed(now)
		daysRemaining := project.DaysRemaining(now)
		if daysElapsed <= 0 || daysRemaining < 0 {
			continue
		}

		spent, err := uc.projectRepo.TotalSpent(ctx, tenantID, project.ID)
		if err != nil {
			return nil, err
		}

		forecast := domain.ProjectOverspend(spent, project.StartingBudget, daysElapsed, daysRemaining)
		if !forecast.WillExceed || forecast.Confidence < uc.config.ForecastMinConfidence {
			continue
		}

		severity := domain.SeverityWarning
		if forecast.Confidence >= 95 {
			severity = domain.SeverityError
		}

		alert, err := uc.upsert(ctx,
			domain.AlertKey{TenantID: tenantID, Type: domain.AlertTypeForecastOverspend, EntityType: "project", EntityID: project.ID},
			severity,
			fmt.Sprintf("Project %q trending over budget", project.Name),
			fmt.Sprintf("At the current burn rate of %s/day, projected total %s exceeds the budget of %s by %s.",
				forecast.DailyBurnRate.StringFixed(2), forecast.ProjectedTotal.StringFixed(2),
				project.StartingBudget.String(), forecast.ProjectedOverage.StringFixed(2)),
			map[string]any{
				"spent":             spent.String(),
				"daily_burn_rate":   forecast.DailyBurnRate.StringFixed(2),
				"projected_total":   forecast.ProjectedTotal.StringFixed(2),
				"projected_overage": forecast.ProjectedOverage.StringFixed(2),
				"confidence":        forecast.Confidence,
			},
		)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}

// evaluateDeadlines alerts on active projects whose end date is inside the
// two-week horizon: overdue projects escalate to a distinct alert type,
// projects inside a week warn, the rest of the horizon is informational.
func (uc *AlertUsecase) evaluateDeadlines(ctx context.Context, tenantID string) ([]*domain.Alert, error) {
	projects, err := uc.projectRepo.ListActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var alerts []*domain.Alert
	for _, project := range projects {
		days, ok := project.DaysToDeadline(now)
		if !ok || days > 14 {
			continue
		}

		alertType := domain.AlertTypeProjectDeadline
		severity := domain.SeverityInfo
		descriptor := fmt.Sprintf("ends in %d days", days)
		switch {
		case days < 0:
			alertType = domain.AlertTypeDeadlineOverdue
			severity = domain.SeverityError
			descriptor = "is overdue"
		case days <= 7:
			severity = domain.SeverityWarning
		}

		alert, err := uc.upsert(ctx,
			domain.AlertKey{TenantID: tenantID, Type: alertType, EntityType: "project", EntityID: project.ID},
			severity,
			fmt.Sprintf("Project deadline: %s", project.Name),
			fmt.Sprintf("Project %q %s. Ensure final expenses and reports are in.", project.Name, descriptor),
			map[string]any{
				"end_date":       project.EndDate.Format("2006-01-02"),
				"days_remaining": days,
				"project_name":   project.Name,
			},
		)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}

func (uc *AlertUsecase) upsert(ctx context.Context, key domain.AlertKey, severity domain.AlertSeverity, title, message string, metadata map[string]any) (*domain.Alert, error) {
	alert := domain.NewAlert(key, severity, title, message, metadata)
	stored, err := uc.alertRepo.Upsert(ctx, alert)
	if err != nil {
		return nil, err
	}
	monitoring.AlertsUpserted.WithLabelValues(string(key.Type)).Inc()
	return stored, nil
}

// dispatchNotifications hands undelivered alerts to the notifier, gated by
// each user's preferences. Only instant-frequency opt-ins get an event;
// digest users are batched by a separate process.
func (uc *AlertUsecase) dispatchNotifications(ctx context.Context, tenantID string, alerts []*domain.Alert) error {
	pending := make([]*domain.Alert, 0, len(alerts))
	for _, alert := range alerts {
		if !alert.NotificationSent {
			pending = append(pending, alert)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	prefs, err := uc.prefsRepo.ListRecipients(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("list recipients: %w", err)
	}

	for _, alert := range pending {
		var recipients []string
		for _, p := range prefs {
			if p.ShouldEmailForAlert(alert.Type) {
				recipients = append(recipients, p.Email)
			}
		}
		if len(recipients) == 0 {
			continue
		}

		if err := uc.publisher.PublishAlertPending(ctx, alert, recipients); err != nil {
			uc.log.Error("alert notification publish failed",
				zap.String("alert_id", alert.ID),
				zap.Error(err),
			)
			continue
		}

		alert.MarkNotificationSent()
		if err := uc.alertRepo.Update(ctx, alert); err != nil {
			return fmt.Errorf("mark notification sent: %w", err)
		}
	}
	return nil
}

// MarkRead marks an alert read by the requesting user.
func (uc *AlertUsecase) MarkRead(ctx context.Context, tc domain.TenantContext, alertID string) (*domain.Alert, error) {
	if !tc.Valid() {
		return nil, domain.ErrTenantRequired
	}

	alert, err := uc.alertRepo.Get(ctx, tc.TenantID, alertID)
	if err != nil {
		return nil, err
	}
	alert.MarkRead(tc.UserID)
	if err := uc.alertRepo.Update(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// Dismiss hides an alert until its condition is refreshed.
func (uc *AlertUsecase) Dismiss(ctx context.Context, tc domain.TenantContext, alertID string) (*domain.Alert, error) {
	if !tc.Valid() {
		return nil, domain.ErrTenantRequired
	}

	alert, err := uc.alertRepo.Get(ctx, tc.TenantID, alertID)
	if err != nil {
		return nil, err
	}
	alert.Dismiss()
	if err := uc.alertRepo.Update(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// List returns the tenant's alerts, newest first.
func (uc *AlertUsecase) List(ctx context.Context, tc domain.TenantContext, limit, offset int) ([]*domain.Alert, error) {
	if !tc.Valid() {
		return nil, domain.ErrTenantRequired
	}
	return uc.alertRepo.List(ctx, tc.TenantID, limit, offset)
}

// ListUnread returns undismissed unread alerts.
func (uc *AlertUsecase) ListUnread(ctx context.Context, tc domain.TenantContext, limit int) ([]*domain.Alert, error) {
	if !tc.Valid() {
		return nil, domain.ErrTenantRequired
	}
	return uc.alertRepo.ListUnread(ctx, tc.TenantID, limit)
}

// UnreadCount returns the badge count.
func (uc *AlertUsecase) UnreadCount(ctx context.Context, tc domain.TenantContext) (int64, error) {
	if !tc.Valid() {
		return 0, domain.ErrTenantRequired
	}
	return uc.alertRepo.UnreadCount(ctx, tc.TenantID)
}
