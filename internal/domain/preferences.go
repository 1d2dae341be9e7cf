package domain

// EmailFrequency delivery cadence for alert emails
type EmailFrequency string

const (
	EmailFrequencyInstant EmailFrequency = "instant"
	EmailFrequencyDaily   EmailFrequency = "daily"
	EmailFrequencyWeekly  EmailFrequency = "weekly"
)

// UserPreferences gates notification dispatch per user. The alert engine only
// decides alert existence and state; whether an email actually goes out is a
// function of these flags plus the external notifier.
type UserPreferences struct {
	UserID   string
	TenantID string
	Email    string

	EmailNotificationsEnabled bool
	EmailFrequency            EmailFrequency

	NotifyLowBalance        bool
	NotifyBudgetExceeded    bool
	NotifyForecastOverspend bool
	NotifyProjectDeadline   bool
}

// ShouldEmailForAlert reports whether an instant email should be dispatched
// for the given alert type. Digest frequencies are batched elsewhere and
// return false here.
func (p *UserPreferences) ShouldEmailForAlert(alertType AlertType) bool {
	if !p.EmailNotificationsEnabled {
		return false
	}

	switch alertType {
	case AlertTypeLowBalance:
		if !p.NotifyLowBalance {
			return false
		}
	case AlertTypeBudgetExceeded, AlertTypeBudgetWarning:
		if !p.NotifyBudgetExceeded {
			return false
		}
	case AlertTypeForecastOverspend:
		if !p.NotifyForecastOverspend {
			return false
		}
	case AlertTypeProjectDeadline, AlertTypeDeadlineOverdue:
		if !p.NotifyProjectDeadline {
			return false
		}
	}

	return p.EmailFrequency == EmailFrequencyInstant
}
