package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tracktok/internal/biz"
	"tracktok/internal/domain"
)

// LedgerService is the transport-facing facade. It converts between wire
// DTOs and domain types and delegates everything else to the usecases.
type LedgerService struct {
	ledger *biz.LedgerUsecase
	query  *biz.QueryUsecase
	alerts *biz.AlertUsecase
	audit  *biz.AuditUsecase
	log    *zap.Logger
}

// NewLedgerService creates the service facade.
func NewLedgerService(
	ledger *biz.LedgerUsecase,
	query *biz.QueryUsecase,
	alerts *biz.AlertUsecase,
	audit *biz.AuditUsecase,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		ledger: ledger,
		query:  query,
		alerts: alerts,
		audit:  audit,
		log:    logger,
	}
}

// CreateExpenseRequest is the create expense payload.
type CreateExpenseRequest struct {
	AccountID   string `json:"account_id" binding:"required"`
	ProjectID   string `json:"project_id"`
	CategoryID  string `json:"category_id"`
	Amount      string `json:"amount" binding:"required"`
	Currency    string `json:"currency" binding:"required"`
	Title       string `json:"title" binding:"required"`
	ExpenseDate string `json:"expense_date" binding:"required"`
	Notes       string `json:"notes"`
}

// UpdateExpenseRequest is the amend expense payload. Omitted fields stay
// unchanged.
type UpdateExpenseRequest struct {
	Amount    *string `json:"amount"`
	AccountID string  `json:"account_id"`
	Title     *string `json:"title"`
	Notes     *string `json:"notes"`
}

// AdjustBalanceRequest is the manual balance correction payload.
type AdjustBalanceRequest struct {
	NewBalance string `json:"new_balance" binding:"required"`
	Reason     string `json:"reason"`
}

// ExpenseDTO is the wire shape of an expense.
type ExpenseDTO struct {
	ID          string `json:"id"`
	AccountID   string `json:"account_id"`
	ProjectID   string `json:"project_id,omitempty"`
	CategoryID  string `json:"category_id,omitempty"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Title       string `json:"title"`
	ExpenseDate string `json:"expense_date"`
	Status      string `json:"status"`
	Notes       string `json:"notes,omitempty"`
	CreatedBy   string `json:"created_by,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// AccountDTO is the wire shape of an account.
type AccountDTO struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Type                string `json:"type"`
	Currency            string `json:"currency"`
	OpeningBalance      string `json:"opening_balance"`
	CurrentBalance      string `json:"current_balance"`
	LowBalanceThreshold string `json:"low_balance_threshold,omitempty"`
	IsActive            bool   `json:"is_active"`
}

// AlertDTO is the wire shape of an alert.
type AlertDTO struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Severity    string         `json:"severity"`
	EntityType  string         `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	IsRead      bool           `json:"is_read"`
	IsDismissed bool           `json:"is_dismissed"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

// AuditEntryDTO is the wire shape of an audit entry.
type AuditEntryDTO struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id,omitempty"`
	UserEmail    string         `json:"user_email,omitempty"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	OldValues    map[string]any `json:"old_values,omitempty"`
	NewValues    map[string]any `json:"new_values,omitempty"`
	RequestID    string         `json:"request_id,omitempty"`
	CreatedAt    string         `json:"created_at"`
}

// CreateExpense records a new expense.
func (s *LedgerService) CreateExpense(ctx context.Context, tc domain.TenantContext, req CreateExpenseRequest) (*ExpenseDTO, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	expenseDate, err := parseDate(req.ExpenseDate)
	if err != nil {
		return nil, err
	}

	expense, err := s.ledger.CreateExpense(ctx, tc, biz.CreateExpenseInput{
		AccountID:   req.AccountID,
		ProjectID:   req.ProjectID,
		CategoryID:  req.CategoryID,
		Amount:      amount,
		Currency:    req.Currency,
		Title:       req.Title,
		ExpenseDate: expenseDate,
		Notes:       req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return toExpenseDTO(expense), nil
}

// UpdateExpense amends an expense.
func (s *LedgerService) UpdateExpense(ctx context.Context, tc domain.TenantContext, expenseID string, req UpdateExpenseRequest) (*ExpenseDTO, error) {
	input := biz.UpdateExpenseInput{
		AccountID: req.AccountID,
		Title:     req.Title,
		Notes:     req.Notes,
	}
	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			return nil, err
		}
		input.Amount = &amount
	}

	expense, err := s.ledger.UpdateExpense(ctx, tc, expenseID, input)
	if err != nil {
		return nil, err
	}
	return toExpenseDTO(expense), nil
}

// DeleteExpense soft-deletes an expense.
func (s *LedgerService) DeleteExpense(ctx context.Context, tc domain.TenantContext, expenseID string) error {
	return s.ledger.DeleteExpense(ctx, tc, expenseID)
}

// AdjustBalance sets an account balance to an explicit value.
func (s *LedgerService) AdjustBalance(ctx context.Context, tc domain.TenantContext, accountID string, req AdjustBalanceRequest) (*AccountDTO, error) {
	newBalance, err := decimal.NewFromString(req.NewBalance)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid balance %q", domain.ErrValidation, req.NewBalance)
	}

	account, err := s.ledger.AdjustBalance(ctx, tc, accountID, newBalance, req.Reason)
	if err != nil {
		return nil, err
	}
	return toAccountDTO(account), nil
}

// GetExpense returns one expense.
func (s *LedgerService) GetExpense(ctx context.Context, tc domain.TenantContext, expenseID string) (*ExpenseDTO, error) {
	expense, err := s.query.GetExpense(ctx, tc, expenseID)
	if err != nil {
		return nil, err
	}
	return toExpenseDTO(expense), nil
}

// ListExpenses returns the tenant's expenses.
func (s *LedgerService) ListExpenses(ctx context.Context, tc domain.TenantContext, limit, offset int) ([]*ExpenseDTO, error) {
	expenses, err := s.query.ListExpenses(ctx, tc, limit, offset)
	if err != nil {
		return nil, err
	}
	dtos := make([]*ExpenseDTO, 0, len(expenses))
	for _, e := range expenses {
		dtos = append(dtos, toExpenseDTO(e))
	}
	return dtos, nil
}

// GetAccount returns one account.
func (s *LedgerService) GetAccount(ctx context.Context, tc domain.TenantContext, accountID string) (*AccountDTO, error) {
	account, err := s.query.GetAccount(ctx, tc, accountID)
	if err != nil {
		return nil, err
	}
	return toAccountDTO(account), nil
}

// ListAlerts returns the tenant's alerts.
func (s *LedgerService) ListAlerts(ctx context.Context, tc domain.TenantContext, limit, offset int) ([]*AlertDTO, error) {
	alerts, err := s.alerts.List(ctx, tc, limit, offset)
	if err != nil {
		return nil, err
	}
	return toAlertDTOs(alerts), nil
}

// ListUnreadAlerts returns unread, undismissed alerts.
func (s *LedgerService) ListUnreadAlerts(ctx context.Context, tc domain.TenantContext, limit int) ([]*AlertDTO, error) {
	alerts, err := s.alerts.ListUnread(ctx, tc, limit)
	if err != nil {
		return nil, err
	}
	return toAlertDTOs(alerts), nil
}

// UnreadAlertCount returns the badge count.
func (s *LedgerService) UnreadAlertCount(ctx context.Context, tc domain.TenantContext) (int64, error) {
	return s.alerts.UnreadCount(ctx, tc)
}

// EvaluateAlerts runs the threshold rules for the caller's tenant on demand.
func (s *LedgerService) EvaluateAlerts(ctx context.Context, tc domain.TenantContext) error {
	if !tc.Valid() {
		return domain.ErrTenantRequired
	}
	return s.alerts.EvaluateTenant(ctx, tc.TenantID)
}

// MarkAlertRead marks an alert read.
func (s *LedgerService) MarkAlertRead(ctx context.Context, tc domain.TenantContext, alertID string) (*AlertDTO, error) {
	alert, err := s.alerts.MarkRead(ctx, tc, alertID)
	if err != nil {
		return nil, err
	}
	return toAlertDTO(alert), nil
}

// DismissAlert dismisses an alert.
func (s *LedgerService) DismissAlert(ctx context.Context, tc domain.TenantContext, alertID string) (*AlertDTO, error) {
	alert, err := s.alerts.Dismiss(ctx, tc, alertID)
	if err != nil {
		return nil, err
	}
	return toAlertDTO(alert), nil
}

// AuditHistory returns the audit trail of one resource.
func (s *LedgerService) AuditHistory(ctx context.Context, tc domain.TenantContext, resourceType, resourceID string, limit int) ([]*AuditEntryDTO, error) {
	entries, err := s.audit.History(ctx, tc, resourceType, resourceID, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]*AuditEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, &AuditEntryDTO{
			ID:           e.ID,
			UserID:       e.UserID,
			UserEmail:    e.UserEmail,
			Action:       string(e.Action),
			ResourceType: e.ResourceType,
			ResourceID:   e.ResourceID,
			OldValues:    e.OldValues,
			NewValues:    e.NewValues,
			RequestID:    e.RequestID,
			CreatedAt:    e.CreatedAt.Format(time.RFC3339),
		})
	}
	return dtos, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", domain.ErrValidation, raw)
	}
	// Money is stored at scale 2; sub-cent input would silently lose
	// precision on write, so it is rejected here instead.
	if !amount.Equal(amount.Round(2)) {
		return decimal.Zero, fmt.Errorf("%w: amount %q has more than two decimal places", domain.ErrValidation, raw)
	}
	return amount, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", domain.ErrValidation, raw)
	}
	return t, nil
}

func toExpenseDTO(e *domain.Expense) *ExpenseDTO {
	return &ExpenseDTO{
		ID:          e.ID,
		AccountID:   e.AccountID,
		ProjectID:   e.ProjectID,
		CategoryID:  e.CategoryID,
		Amount:      e.Amount.StringFixed(2),
		Currency:    e.Currency,
		Title:       e.Title,
		ExpenseDate: e.ExpenseDate.Format("2006-01-02"),
		Status:      string(e.Status),
		Notes:       e.Notes,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.Format(time.RFC3339),
	}
}

func toAccountDTO(a *domain.Account) *AccountDTO {
	threshold := ""
	if a.LowBalanceThreshold != nil {
		threshold = a.LowBalanceThreshold.StringFixed(2)
	}
	return &AccountDTO{
		ID:                  a.ID,
		Name:                a.Name,
		Type:                string(a.Type),
		Currency:            a.Currency,
		OpeningBalance:      a.OpeningBalance.StringFixed(2),
		CurrentBalance:      a.CurrentBalance.StringFixed(2),
		LowBalanceThreshold: threshold,
		IsActive:            a.IsActive,
	}
}

func toAlertDTO(a *domain.Alert) *AlertDTO {
	return &AlertDTO{
		ID:          a.ID,
		Type:        string(a.Type),
		Severity:    string(a.Severity),
		EntityType:  a.EntityType,
		EntityID:    a.EntityID,
		Title:       a.Title,
		Message:     a.Message,
		Metadata:    a.Metadata,
		IsRead:      a.IsRead,
		IsDismissed: a.IsDismissed,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   a.UpdatedAt.Format(time.RFC3339),
	}
}

func toAlertDTOs(alerts []*domain.Alert) []*AlertDTO {
	dtos := make([]*AlertDTO, 0, len(alerts))
	for _, a := range alerts {
		dtos = append(dtos, toAlertDTO(a))
	}
	return dtos
}
