package domain

import (
	"time"

	"github.com/google/uuid"
)

// TenantPlan subscription plan
type TenantPlan string

const (
	TenantPlanFree       TenantPlan = "free"
	TenantPlanPro        TenantPlan = "pro"
	TenantPlanEnterprise TenantPlan = "enterprise"
)

// Tenant is the isolation boundary: every scoped entity belongs to exactly one tenant.
type Tenant struct {
	ID        string
	Name      string
	Subdomain string
	Plan      TenantPlan

	MaxUsers    int
	MaxAccounts int
	MaxExpenses int

	IsActive         bool
	SuspendedAt      *time.Time
	SuspensionReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTenant creates an active tenant with the plan's default limits.
func NewTenant(name, subdomain string, plan TenantPlan) *Tenant {
	now := time.Now().UTC()

	maxUsers, maxAccounts, maxExpenses := 5, 3, 1000
	switch plan {
	case TenantPlanPro:
		maxUsers, maxAccounts, maxExpenses = 50, 25, 100000
	case TenantPlanEnterprise:
		maxUsers, maxAccounts, maxExpenses = -1, -1, -1 // unlimited
	}

	return &Tenant{
		ID:          "tenant_" + uuid.New().String(),
		Name:        name,
		Subdomain:   subdomain,
		Plan:        plan,
		MaxUsers:    maxUsers,
		MaxAccounts: maxAccounts,
		MaxExpenses: maxExpenses,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Suspend soft-suspends the tenant. Children are never hard-deleted.
func (t *Tenant) Suspend(reason string) {
	now := time.Now().UTC()
	t.IsActive = false
	t.SuspendedAt = &now
	t.SuspensionReason = reason
	t.UpdatedAt = now
}

// Reactivate lifts a suspension.
func (t *Tenant) Reactivate() {
	t.IsActive = true
	t.SuspendedAt = nil
	t.SuspensionReason = ""
	t.UpdatedAt = time.Now().UTC()
}

// WithinExpenseLimit reports whether one more expense fits the plan limit.
func (t *Tenant) WithinExpenseLimit(currentCount int64) bool {
	if t.MaxExpenses < 0 {
		return true
	}
	return currentCount < int64(t.MaxExpenses)
}

// WithinAccountLimit reports whether one more account fits the plan limit.
func (t *Tenant) WithinAccountLimit(currentCount int64) bool {
	if t.MaxAccounts < 0 {
		return true
	}
	return currentCount < int64(t.MaxAccounts)
}

// TenantDomain maps a custom domain (expenses.acme.com) to a tenant.
type TenantDomain struct {
	ID        string
	TenantID  string
	Domain    string
	IsActive  bool
	CreatedAt time.Time
}

// TenantContext is the active tenant resolved once per request and passed
// explicitly into every core call. There is no ambient global tenant state.
type TenantContext struct {
	TenantID  string
	UserID    string
	UserEmail string
	RequestID string
}

// Valid reports whether a tenant was actually resolved.
func (tc TenantContext) Valid() bool {
	return tc.TenantID != ""
}
