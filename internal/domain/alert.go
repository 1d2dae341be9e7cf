package domain

import (
	"time"

	"github.com/google/uuid"
)

// AlertType threshold rule family that produced the alert
type AlertType string

const (
	AlertTypeLowBalance        AlertType = "low_balance"
	AlertTypeBudgetWarning     AlertType = "budget_warning"
	AlertTypeBudgetExceeded    AlertType = "budget_exceeded"
	AlertTypeForecastOverspend AlertType = "forecast_overspend"
	AlertTypeProjectDeadline   AlertType = "project_deadline"
	AlertTypeDeadlineOverdue   AlertType = "deadline_overdue"
)

// AlertSeverity display and routing severity
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityError    AlertSeverity = "error"
	SeverityCritical AlertSeverity = "critical"
)

// AlertKey is the dedup key: at most one live alert exists per key.
type AlertKey struct {
	TenantID   string
	Type       AlertType
	EntityType string
	EntityID   string
}

// Alert is a deduplicated notification produced by the threshold engine.
// Re-evaluation upserts in place; it never stacks duplicate rows.
type Alert struct {
	ID         string
	TenantID   string
	Type       AlertType
	Severity   AlertSeverity
	EntityType string
	EntityID   string

	Title    string
	Message  string
	Metadata map[string]any

	IsRead bool
	ReadAt *time.Time
	ReadBy string

	IsDismissed bool
	DismissedAt *time.Time

	NotificationSent   bool
	NotificationSentAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// NewAlert creates an unread, undelivered alert.
func NewAlert(key AlertKey, severity AlertSeverity, title, message string, metadata map[string]any) *Alert {
	now := time.Now().UTC()
	return &Alert{
		ID:         "alert_" + uuid.New().String(),
		TenantID:   key.TenantID,
		Type:       key.Type,
		Severity:   severity,
		EntityType: key.EntityType,
		EntityID:   key.EntityID,
		Title:      title,
		Message:    message,
		Metadata:   metadata,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Key returns the dedup key of the alert.
func (a *Alert) Key() AlertKey {
	return AlertKey{TenantID: a.TenantID, Type: a.Type, EntityType: a.EntityType, EntityID: a.EntityID}
}

// Refresh updates the alert for a condition that still holds and resets the
// read/dismissed/notification flags. A dismissed "budget at 80%" alert must
// resurface when the budget hits 95%, not stay silently dismissed.
func (a *Alert) Refresh(severity AlertSeverity, title, message string, metadata map[string]any) {
	a.Severity = severity
	a.Title = title
	a.Message = message
	a.Metadata = metadata

	a.IsRead = false
	a.ReadAt = nil
	a.ReadBy = ""
	a.IsDismissed = false
	a.DismissedAt = nil
	a.NotificationSent = false
	a.NotificationSentAt = nil

	a.UpdatedAt = time.Now().UTC()
}

// MarkRead records who read the alert and when.
func (a *Alert) MarkRead(userID string) {
	now := time.Now().UTC()
	a.IsRead = true
	a.ReadAt = &now
	a.ReadBy = userID
	a.UpdatedAt = now
}

// Dismiss hides the alert until its condition materially changes again.
func (a *Alert) Dismiss() {
	now := time.Now().UTC()
	a.IsDismissed = true
	a.DismissedAt = &now
	a.UpdatedAt = now
}

// MarkNotificationSent records that the notifier was handed this alert.
func (a *Alert) MarkNotificationSent() {
	now := time.Now().UTC()
	a.NotificationSent = true
	a.NotificationSentAt = &now
	a.UpdatedAt = now
}
