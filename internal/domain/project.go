package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectStatus lifecycle state
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusArchived  ProjectStatus = "archived"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
)

// Project is a budgeted initiative whose spend is tracked for overspend
// forecasting.
type Project struct {
	ID       string
	TenantID string
	Name     string

	StartingBudget decimal.Decimal
	Currency       string

	StartDate *time.Time
	EndDate   *time.Time
	Status    ProjectStatus

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProject creates an active project.
func NewProject(tenantID, name string, startingBudget decimal.Decimal, currency string, start, end *time.Time) *Project {
	now := time.Now().UTC()
	return &Project{
		ID:             "proj_" + uuid.New().String(),
		TenantID:       tenantID,
		Name:           name,
		StartingBudget: startingBudget,
		Currency:       currency,
		StartDate:      start,
		EndDate:        end,
		Status:         ProjectStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// UtilizationPercent computes spent/startingBudget as a percentage.
func (p *Project) UtilizationPercent(spent decimal.Decimal) float64 {
	if p.StartingBudget.Sign() == 0 {
		return 0
	}
	pct, _ := spent.Div(p.StartingBudget).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

// DaysElapsed counts whole days since the project started, or -1 without a
// start date.
func (p *Project) DaysElapsed(now time.Time) int {
	if p.StartDate == nil {
		return -1
	}
	return int(now.Sub(*p.StartDate).Hours() / 24)
}

// DaysToDeadline counts calendar days from now until the end date, negative
// once the deadline has passed. Returns false without an end date.
func (p *Project) DaysToDeadline(now time.Time) (int, bool) {
	if p.EndDate == nil {
		return 0, false
	}
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = p.EndDate.UTC().Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(today).Hours() / 24), true
}

// DaysRemaining counts whole days until the project ends, floored at zero,
// or -1 without an end date.
func (p *Project) DaysRemaining(now time.Time) int {
	if p.EndDate == nil {
		return -1
	}
	d := int(p.EndDate.Sub(now).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
