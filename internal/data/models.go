package data

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"tracktok/internal/domain"
)

// TenantModel is the tenant database model.
type TenantModel struct {
	ID               string `gorm:"primaryKey;type:varchar(64)"`
	Name             string `gorm:"type:varchar(255);not null"`
	Subdomain        string `gorm:"uniqueIndex;type:varchar(63);not null"`
	Plan             string `gorm:"type:varchar(32);not null"`
	MaxUsers         int    `gorm:"not null"`
	MaxAccounts      int    `gorm:"not null"`
	MaxExpenses      int    `gorm:"not null"`
	IsActive         bool   `gorm:"not null;default:true"`
	SuspendedAt      *time.Time
	SuspensionReason string    `gorm:"type:text"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for TenantModel.
func (TenantModel) TableName() string {
	return "tenants"
}

// ToEntity converts TenantModel to domain.Tenant.
func (m *TenantModel) ToEntity() *domain.Tenant {
	return &domain.Tenant{
		ID:               m.ID,
		Name:             m.Name,
		Subdomain:        m.Subdomain,
		Plan:             domain.TenantPlan(m.Plan),
		MaxUsers:         m.MaxUsers,
		MaxAccounts:      m.MaxAccounts,
		MaxExpenses:      m.MaxExpenses,
		IsActive:         m.IsActive,
		SuspendedAt:      m.SuspendedAt,
		SuspensionReason: m.SuspensionReason,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// FromTenantEntity converts domain.Tenant to TenantModel.
func FromTenantEntity(t *domain.Tenant) *TenantModel {
	return &TenantModel{
		ID:               t.ID,
		Name:             t.Name,
		Subdomain:        t.Subdomain,
		Plan:             string(t.Plan),
		MaxUsers:         t.MaxUsers,
		MaxAccounts:      t.MaxAccounts,
		MaxExpenses:      t.MaxExpenses,
		IsActive:         t.IsActive,
		SuspendedAt:      t.SuspendedAt,
		SuspensionReason: t.SuspensionReason,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

// TenantDomainModel maps custom domains to tenants.
type TenantDomainModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)"`
	TenantID  string    `gorm:"index;type:varchar(64);not null"`
	Domain    string    `gorm:"uniqueIndex;type:varchar(255);not null"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for TenantDomainModel.
func (TenantDomainModel) TableName() string {
	return "tenant_domains"
}

// AccountModel is the account database model.
type AccountModel struct {
	ID                  string           `gorm:"primaryKey;type:varchar(64)"`
	TenantID            string           `gorm:"index:idx_accounts_tenant;type:varchar(64);not null"`
	Name                string           `gorm:"type:varchar(255);not null"`
	Type                string           `gorm:"type:varchar(32);not null"`
	Currency            string           `gorm:"type:varchar(3);not null"`
	OpeningBalance      decimal.Decimal  `gorm:"type:numeric(14,2);not null"`
	CurrentBalance      decimal.Decimal  `gorm:"type:numeric(14,2);not null"`
	LowBalanceThreshold *decimal.Decimal `gorm:"type:numeric(14,2)"`
	IsActive            bool             `gorm:"not null;default:true"`
	IsArchived          bool             `gorm:"not null;default:false"`
	Description         string           `gorm:"type:text"`
	CreatedBy           string           `gorm:"type:varchar(64)"`
	CreatedAt           time.Time        `gorm:"not null"`
	UpdatedAt           time.Time        `gorm:"not null"`
}

// TableName returns the table name for AccountModel.
func (AccountModel) TableName() string {
	return "accounts"
}

// ToEntity converts AccountModel to domain.Account.
func (m *AccountModel) ToEntity() *domain.Account {
	return &domain.Account{
		ID:                  m.ID,
		TenantID:            m.TenantID,
		Name:                m.Name,
		Type:                domain.AccountType(m.Type),
		Currency:            m.Currency,
		OpeningBalance:      m.OpeningBalance,
		CurrentBalance:      m.CurrentBalance,
		LowBalanceThreshold: m.LowBalanceThreshold,
		IsActive:            m.IsActive,
		IsArchived:          m.IsArchived,
		Description:         m.Description,
		CreatedBy:           m.CreatedBy,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// FromAccountEntity converts domain.Account to AccountModel.
func FromAccountEntity(a *domain.Account) *AccountModel {
	return &AccountModel{
		ID:                  a.ID,
		TenantID:            a.TenantID,
		Name:                a.Name,
		Type:                string(a.Type),
		Currency:            a.Currency,
		OpeningBalance:      a.OpeningBalance,
		CurrentBalance:      a.CurrentBalance,
		LowBalanceThreshold: a.LowBalanceThreshold,
		IsActive:            a.IsActive,
		IsArchived:          a.IsArchived,
		Description:         a.Description,
		CreatedBy:           a.CreatedBy,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

// ExpenseModel is the expense database model. Soft deletion is an explicit
// deleted_at column rather than gorm.DeletedAt because the ledger needs to
// load deleted rows to keep deletion idempotent.
type ExpenseModel struct {
	ID            string           `gorm:"primaryKey;type:varchar(64)"`
	TenantID      string           `gorm:"index:idx_expenses_tenant_date;type:varchar(64);not null"`
	AccountID     string           `gorm:"index;type:varchar(64);not null"`
	ProjectID     string           `gorm:"index;type:varchar(64)"`
	CategoryID    string           `gorm:"type:varchar(64)"`
	Amount        decimal.Decimal  `gorm:"type:numeric(14,2);not null"`
	Currency      string           `gorm:"type:varchar(3);not null"`
	Title         string           `gorm:"type:varchar(500);not null"`
	ExpenseDate   time.Time        `gorm:"index:idx_expenses_tenant_date;not null"`
	Status        string           `gorm:"type:varchar(32);not null"`
	Notes         string           `gorm:"type:text"`
	LastAmount    *decimal.Decimal `gorm:"type:numeric(14,2)"`
	LastAccountID string           `gorm:"type:varchar(64)"`
	EditedBy      string           `gorm:"type:varchar(64)"`
	EditedAt      *time.Time
	CreatedBy     string     `gorm:"type:varchar(64)"`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`
	DeletedAt     *time.Time `gorm:"index"`
}

// TableName returns the table name for ExpenseModel.
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToEntity converts ExpenseModel to domain.Expense.
func (m *ExpenseModel) ToEntity() *domain.Expense {
	return &domain.Expense{
		ID:            m.ID,
		TenantID:      m.TenantID,
		AccountID:     m.AccountID,
		ProjectID:     m.ProjectID,
		CategoryID:    m.CategoryID,
		Amount:        m.Amount,
		Currency:      m.Currency,
		Title:         m.Title,
		ExpenseDate:   m.ExpenseDate,
		Status:        domain.ExpenseStatus(m.Status),
		Notes:         m.Notes,
		LastAmount:    m.LastAmount,
		LastAccountID: m.LastAccountID,
		EditedBy:      m.EditedBy,
		EditedAt:      m.EditedAt,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		DeletedAt:     m.DeletedAt,
	}
}

// FromExpenseEntity converts domain.Expense to ExpenseModel.
func FromExpenseEntity(e *domain.Expense) *ExpenseModel {
	return &ExpenseModel{
		ID:            e.ID,
		TenantID:      e.TenantID,
		AccountID:     e.AccountID,
		ProjectID:     e.ProjectID,
		CategoryID:    e.CategoryID,
		Amount:        e.Amount,
		Currency:      e.Currency,
		Title:         e.Title,
		ExpenseDate:   e.ExpenseDate,
		Status:        string(e.Status),
		Notes:         e.Notes,
		LastAmount:    e.LastAmount,
		LastAccountID: e.LastAccountID,
		EditedBy:      e.EditedBy,
		EditedAt:      e.EditedAt,
		CreatedBy:     e.CreatedBy,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
		DeletedAt:     e.DeletedAt,
	}
}

// BudgetModel is the budget database model.
type BudgetModel struct {
	ID             string          `gorm:"primaryKey;type:varchar(64)"`
	TenantID       string          `gorm:"index;type:varchar(64);not null"`
	Name           string          `gorm:"type:varchar(255);not null"`
	Amount         decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Currency       string          `gorm:"type:varchar(3);not null"`
	Period         string          `gorm:"type:varchar(32);not null"`
	StartDate      time.Time       `gorm:"not null"`
	EndDate        time.Time       `gorm:"not null"`
	CategoryID     string          `gorm:"type:varchar(64)"`
	OwnerID        string          `gorm:"type:varchar(64)"`
	AlertThreshold int             `gorm:"not null;default:80"`
	AlertEnabled   bool            `gorm:"not null;default:true"`
	IsActive       bool            `gorm:"not null;default:true"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for BudgetModel.
func (BudgetModel) TableName() string {
	return "budgets"
}

// ToEntity converts BudgetModel to domain.Budget.
func (m *BudgetModel) ToEntity() *domain.Budget {
	return &domain.Budget{
		ID:             m.ID,
		TenantID:       m.TenantID,
		Name:           m.Name,
		Amount:         m.Amount,
		Currency:       m.Currency,
		Period:         domain.BudgetPeriod(m.Period),
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		CategoryID:     m.CategoryID,
		OwnerID:        m.OwnerID,
		AlertThreshold: m.AlertThreshold,
		AlertEnabled:   m.AlertEnabled,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// ProjectModel is the project database model.
type ProjectModel struct {
	ID             string          `gorm:"primaryKey;type:varchar(64)"`
	TenantID       string          `gorm:"index;type:varchar(64);not null"`
	Name           string          `gorm:"type:varchar(255);not null"`
	StartingBudget decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Currency       string          `gorm:"type:varchar(3);not null"`
	StartDate      *time.Time
	EndDate        *time.Time
	Status         string    `gorm:"type:varchar(32);not null"`
	CreatedBy      string    `gorm:"type:varchar(64)"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for ProjectModel.
func (ProjectModel) TableName() string {
	return "projects"
}

// ToEntity converts ProjectModel to domain.Project.
func (m *ProjectModel) ToEntity() *domain.Project {
	return &domain.Project{
		ID:             m.ID,
		TenantID:       m.TenantID,
		Name:           m.Name,
		StartingBudget: m.StartingBudget,
		Currency:       m.Currency,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		Status:         domain.ProjectStatus(m.Status),
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// AlertModel is the alert database model. The live-alert dedup constraint is a
// partial unique index on (tenant_id, alert_type, entity_type, entity_id)
// where deleted_at is null, created in the migrations.
type AlertModel struct {
	ID                 string `gorm:"primaryKey;type:varchar(64)"`
	TenantID           string `gorm:"type:varchar(64);not null"`
	AlertType          string `gorm:"type:varchar(32);not null"`
	Severity           string `gorm:"type:varchar(16);not null"`
	EntityType         string `gorm:"type:varchar(32);not null"`
	EntityID           string `gorm:"type:varchar(64);not null"`
	Title              string `gorm:"type:varchar(500);not null"`
	Message            string `gorm:"type:text"`
	Metadata           string `gorm:"type:jsonb"`
	IsRead             bool   `gorm:"not null;default:false"`
	ReadAt             *time.Time
	ReadBy             string `gorm:"type:varchar(64)"`
	IsDismissed        bool   `gorm:"not null;default:false"`
	DismissedAt        *time.Time
	NotificationSent   bool `gorm:"not null;default:false"`
	NotificationSentAt *time.Time
	CreatedAt          time.Time  `gorm:"not null"`
	UpdatedAt          time.Time  `gorm:"not null"`
	DeletedAt          *time.Time `gorm:"index"`
}

// TableName returns the table name for AlertModel.
func (AlertModel) TableName() string {
	return "alerts"
}

// ToEntity converts AlertModel to domain.Alert.
func (m *AlertModel) ToEntity() (*domain.Alert, error) {
	var metadata map[string]any
	if m.Metadata != "" {
		if err := json.Unmarshal([]byte(m.Metadata), &metadata); err != nil {
			return nil, err
		}
	}

	return &domain.Alert{
		ID:                 m.ID,
		TenantID:           m.TenantID,
		Type:               domain.AlertType(m.AlertType),
		Severity:           domain.AlertSeverity(m.Severity),
		EntityType:         m.EntityType,
		EntityID:           m.EntityID,
		Title:              m.Title,
		Message:            m.Message,
		Metadata:           metadata,
		IsRead:             m.IsRead,
		ReadAt:             m.ReadAt,
		ReadBy:             m.ReadBy,
		IsDismissed:        m.IsDismissed,
		DismissedAt:        m.DismissedAt,
		NotificationSent:   m.NotificationSent,
		NotificationSentAt: m.NotificationSentAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
		DeletedAt:          m.DeletedAt,
	}, nil
}

// FromAlertEntity converts domain.Alert to AlertModel.
func FromAlertEntity(a *domain.Alert) (*AlertModel, error) {
	metadataJSON := ""
	if a.Metadata != nil {
		b, err := json.Marshal(a.Metadata)
		if err != nil {
			return nil, err
		}
		metadataJSON = string(b)
	}

	return &AlertModel{
		ID:                 a.ID,
		TenantID:           a.TenantID,
		AlertType:          string(a.Type),
		Severity:           string(a.Severity),
		EntityType:         a.EntityType,
		EntityID:           a.EntityID,
		Title:              a.Title,
		Message:            a.Message,
		Metadata:           metadataJSON,
		IsRead:             a.IsRead,
		ReadAt:             a.ReadAt,
		ReadBy:             a.ReadBy,
		IsDismissed:        a.IsDismissed,
		DismissedAt:        a.DismissedAt,
		NotificationSent:   a.NotificationSent,
		NotificationSentAt: a.NotificationSentAt,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
		DeletedAt:          a.DeletedAt,
	}, nil
}

// AuditLogModel is the append-only audit trail database model.
type AuditLogModel struct {
	ID           string `gorm:"primaryKey;type:varchar(64)"`
	TenantID     string `gorm:"index:idx_audit_tenant_resource;type:varchar(64);not null"`
	UserID       string `gorm:"type:varchar(64)"`
	UserEmail    string `gorm:"type:varchar(255)"`
	Action       string `gorm:"type:varchar(32);not null"`
	ResourceType string `gorm:"index:idx_audit_tenant_resource;type:varchar(64);not null"`
	ResourceID   string `gorm:"index:idx_audit_tenant_resource;type:varchar(64);not null"`
	OldValues    string    `gorm:"type:jsonb"`
	NewValues    string    `gorm:"type:jsonb"`
	RequestID    string    `gorm:"type:varchar(64)"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for AuditLogModel.
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// ToEntity converts AuditLogModel to domain.AuditEntry.
func (m *AuditLogModel) ToEntity() (*domain.AuditEntry, error) {
	var oldValues, newValues map[string]any
	if m.OldValues != "" {
		if err := json.Unmarshal([]byte(m.OldValues), &oldValues); err != nil {
			return nil, err
		}
	}
	if m.NewValues != "" {
		if err := json.Unmarshal([]byte(m.NewValues), &newValues); err != nil {
			return nil, err
		}
	}

	return &domain.AuditEntry{
		ID:           m.ID,
		TenantID:     m.TenantID,
		UserID:       m.UserID,
		UserEmail:    m.UserEmail,
		Action:       domain.AuditAction(m.Action),
		ResourceType: m.ResourceType,
		ResourceID:   m.ResourceID,
		OldValues:    oldValues,
		NewValues:    newValues,
		RequestID:    m.RequestID,
		CreatedAt:    m.CreatedAt,
	}, nil
}

// FromAuditEntity converts domain.AuditEntry to AuditLogModel.
func FromAuditEntity(e *domain.AuditEntry) (*AuditLogModel, error) {
	oldJSON, newJSON := "", ""
	if e.OldValues != nil {
		b, err := json.Marshal(e.OldValues)
		if err != nil {
			return nil, err
		}
		oldJSON = string(b)
	}
	if e.NewValues != nil {
		b, err := json.Marshal(e.NewValues)
		if err != nil {
			return nil, err
		}
		newJSON = string(b)
	}

	return &AuditLogModel{
		ID:           e.ID,
		TenantID:     e.TenantID,
		UserID:       e.UserID,
		UserEmail:    e.UserEmail,
		Action:       string(e.Action),
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		OldValues:    oldJSON,
		NewValues:    newJSON,
		RequestID:    e.RequestID,
		CreatedAt:    e.CreatedAt,
	}, nil
}

// UserPreferencesModel stores per-user notification preferences.
type UserPreferencesModel struct {
	UserID                    string `gorm:"primaryKey;type:varchar(64)"`
	TenantID                  string `gorm:"index;type:varchar(64);not null"`
	Email                     string `gorm:"type:varchar(255);not null"`
	EmailNotificationsEnabled bool   `gorm:"not null;default:true"`
	EmailFrequency            string `gorm:"type:varchar(16);not null;default:'instant'"`
	NotifyLowBalance          bool   `gorm:"not null;default:true"`
	NotifyBudgetExceeded      bool   `gorm:"not null;default:true"`
	NotifyForecastOverspend   bool   `gorm:"not null;default:true"`
	NotifyProjectDeadline     bool   `gorm:"not null;default:true"`
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// TableName returns the table name for UserPreferencesModel.
func (UserPreferencesModel) TableName() string {
	return "user_preferences"
}

// ToEntity converts UserPreferencesModel to domain.UserPreferences.
func (m *UserPreferencesModel) ToEntity() *domain.UserPreferences {
	return &domain.UserPreferences{
		UserID:                    m.UserID,
		TenantID:                  m.TenantID,
		Email:                     m.Email,
		EmailNotificationsEnabled: m.EmailNotificationsEnabled,
		EmailFrequency:            domain.EmailFrequency(m.EmailFrequency),
		NotifyLowBalance:          m.NotifyLowBalance,
		NotifyBudgetExceeded:      m.NotifyBudgetExceeded,
		NotifyForecastOverspend:   m.NotifyForecastOverspend,
		NotifyProjectDeadline:     m.NotifyProjectDeadline,
	}
}
