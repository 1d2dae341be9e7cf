package domain

import "errors"

var (
	// ErrTenantRequired no tenant could be resolved for a tenant-scoped operation
	ErrTenantRequired = errors.New("tenant required")

	// ErrTenantSuspended the resolved tenant is suspended
	ErrTenantSuspended = errors.New("tenant is suspended")

	// ErrCrossTenantViolation a write tried to link entities of different tenants
	ErrCrossTenantViolation = errors.New("cross-tenant relationship violation")

	// ErrAccountNotFound account missing, inactive or owned by another tenant
	ErrAccountNotFound = errors.New("account not found")

	// ErrExpenseNotFound expense missing or owned by another tenant
	ErrExpenseNotFound = errors.New("expense not found")

	// ErrAlertNotFound alert missing or owned by another tenant
	ErrAlertNotFound = errors.New("alert not found")

	// ErrProjectNotFound project missing or owned by another tenant
	ErrProjectNotFound = errors.New("project not found")

	// ErrLockTimeout the account row lock could not be acquired in time
	ErrLockTimeout = errors.New("lock wait timeout")

	// ErrInvalidAmount expense amount must be strictly positive
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrPlanLimitExceeded the tenant plan limit for a resource is exhausted
	ErrPlanLimitExceeded = errors.New("tenant plan limit exceeded")

	// ErrValidation request failed schema-level validation
	ErrValidation = errors.New("validation failed")
)
