package biz

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"tracktok/internal/domain"
	"tracktok/pkg/cache"
)

// fakeStore is an in-memory stand-in for the data layer. It implements
// domain.TxManager and hands out a fakeTx that mutates its maps the way the
// real transaction mutates rows, including rollback on error.
type fakeStore struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	expenses map[string]*domain.Expense
	audits   []*domain.AuditEntry

	// lockOrder records every account id passed to LockAccount, in order.
	lockOrder []string

	// Injectable failures for rollback tests.
	insertExpenseErr error
	saveBalanceErr   error
	appendAuditErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: make(map[string]*domain.Account),
		expenses: make(map[string]*domain.Expense),
	}
}

func (s *fakeStore) addAccount(a *domain.Account) { s.accounts[a.ID] = a }
func (s *fakeStore) addExpense(e *domain.Expense) { s.expenses[e.ID] = e }

func (s *fakeStore) balance(accountID string) decimal.Decimal {
	return s.accounts[accountID].CurrentBalance
}

func (s *fakeStore) InTx(ctx context.Context, fn func(tx domain.LedgerTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &fakeTx{store: s, pendingAccounts: make(map[string]*domain.Account), pendingExpenses: make(map[string]*domain.Expense)}
	if err := fn(tx); err != nil {
		return err
	}

	// Commit.
	for id, a := range tx.pendingAccounts {
		s.accounts[id] = a
	}
	for id, e := range tx.pendingExpenses {
		s.expenses[id] = e
	}
	s.audits = append(s.audits, tx.pendingAudits...)
	return nil
}

type fakeTx struct {
	store           *fakeStore
	pendingAccounts map[string]*domain.Account
	pendingExpenses map[string]*domain.Expense
	pendingAudits   []*domain.AuditEntry
}

func (t *fakeTx) LockAccount(_ context.Context, tenantID, accountID string) (*domain.Account, error) {
	t.store.lockOrder = append(t.store.lockOrder, accountID)

	if a, ok := t.pendingAccounts[accountID]; ok && a.TenantID == tenantID {
		return a, nil
	}
	a, ok := t.store.accounts[accountID]
	if !ok || a.TenantID != tenantID || !a.IsActive {
		return nil, domain.ErrAccountNotFound
	}
	copied := *a
	return &copied, nil
}

func (t *fakeTx) SaveAccountBalance(_ context.Context, account *domain.Account) error {
	if t.store.saveBalanceErr != nil {
		return t.store.saveBalanceErr
	}
	t.pendingAccounts[account.ID] = account
	return nil
}

func (t *fakeTx) GetExpense(_ context.Context, tenantID, expenseID string) (*domain.Expense, error) {
	e, ok := t.store.expenses[expenseID]
	if !ok || e.TenantID != tenantID {
		return nil, domain.ErrExpenseNotFound
	}
	copied := *e
	return &copied, nil
}

func (t *fakeTx) InsertExpense(_ context.Context, expense *domain.Expense) error {
	if t.store.insertExpenseErr != nil {
		return t.store.insertExpenseErr
	}
	t.pendingExpenses[expense.ID] = expense
	return nil
}

func (t *fakeTx) SaveExpense(_ context.Context, expense *domain.Expense) error {
	t.pendingExpenses[expense.ID] = expense
	return nil
}

func (t *fakeTx) CountExpenses(_ context.Context, tenantID string) (int64, error) {
	var count int64
	for _, e := range t.store.expenses {
		if e.TenantID == tenantID && !e.IsDeleted() {
			count++
		}
	}
	return count, nil
}

func (t *fakeTx) AppendAudit(_ context.Context, entry *domain.AuditEntry) error {
	if t.store.appendAuditErr != nil {
		return t.store.appendAuditErr
	}
	t.pendingAudits = append(t.pendingAudits, entry)
	return nil
}

type fakeTenantRepo struct {
	tenants       map[string]*domain.Tenant
	customDomains map[string]string // host -> tenant id
}

func newFakeTenantRepo(tenants ...*domain.Tenant) *fakeTenantRepo {
	r := &fakeTenantRepo{
		tenants:       make(map[string]*domain.Tenant),
		customDomains: make(map[string]string),
	}
	for _, t := range tenants {
		r.tenants[t.ID] = t
	}
	return r
}

func (r *fakeTenantRepo) GetByID(_ context.Context, id string) (*domain.Tenant, error) {
	t, ok := r.tenants[id]
	if !ok {
		return nil, domain.ErrTenantRequired
	}
	return t, nil
}

func (r *fakeTenantRepo) GetBySubdomain(_ context.Context, subdomain string) (*domain.Tenant, error) {
	for _, t := range r.tenants {
		if t.Subdomain == subdomain {
			return t, nil
		}
	}
	return nil, domain.ErrTenantRequired
}

func (r *fakeTenantRepo) GetByCustomDomain(_ context.Context, host string) (*domain.Tenant, error) {
	if id, ok := r.customDomains[host]; ok {
		return r.GetByID(context.Background(), id)
	}
	return nil, domain.ErrTenantRequired
}

func (r *fakeTenantRepo) ListActive(_ context.Context) ([]*domain.Tenant, error) {
	var out []*domain.Tenant
	for _, t := range r.tenants {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeAccountRepo struct {
	lowBalance map[string][]*domain.Account
	failFor    string
}

func (r *fakeAccountRepo) Get(_ context.Context, tenantID, id string) (*domain.Account, error) {
	for _, a := range r.lowBalance[tenantID] {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *fakeAccountRepo) ListLowBalance(_ context.Context, tenantID string) ([]*domain.Account, error) {
	if r.failFor != "" && r.failFor == tenantID {
		return nil, errors.New("storage unavailable")
	}
	return r.lowBalance[tenantID], nil
}

type fakeBudgetRepo struct {
	budgets map[string][]*domain.Budget
	spent   map[string]decimal.Decimal
}

func (r *fakeBudgetRepo) ListAlertEnabled(_ context.Context, tenantID string) ([]*domain.Budget, error) {
	return r.budgets[tenantID], nil
}

func (r *fakeBudgetRepo) SpentAmount(_ context.Context, budget *domain.Budget) (decimal.Decimal, error) {
	return r.spent[budget.ID], nil
}

type fakeProjectRepo struct {
	projects map[string][]*domain.Project
	spent    map[string]decimal.Decimal
}

func (r *fakeProjectRepo) Get(_ context.Context, tenantID, id string) (*domain.Project, error) {
	for _, p := range r.projects[tenantID] {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrProjectNotFound
}

func (r *fakeProjectRepo) ListActive(_ context.Context, tenantID string) ([]*domain.Project, error) {
	return r.projects[tenantID], nil
}

func (r *fakeProjectRepo) TotalSpent(_ context.Context, _, projectID string) (decimal.Decimal, error) {
	return r.spent[projectID], nil
}

// fakeAlertRepo keeps at most one live alert per key, refreshing in place the
// way the partial unique index upsert does.
type fakeAlertRepo struct {
	alerts map[domain.AlertKey]*domain.Alert
}

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{alerts: make(map[domain.AlertKey]*domain.Alert)}
}

func (r *fakeAlertRepo) Upsert(_ context.Context, alert *domain.Alert) (*domain.Alert, error) {
	key := alert.Key()
	if existing, ok := r.alerts[key]; ok {
		existing.Refresh(alert.Severity, alert.Title, alert.Message, alert.Metadata)
		return existing, nil
	}
	r.alerts[key] = alert
	return alert, nil
}

func (r *fakeAlertRepo) Get(_ context.Context, tenantID, id string) (*domain.Alert, error) {
	for _, a := range r.alerts {
		if a.ID == id && a.TenantID == tenantID {
			return a, nil
		}
	}
	return nil, domain.ErrAlertNotFound
}

func (r *fakeAlertRepo) List(_ context.Context, tenantID string, _, _ int) ([]*domain.Alert, error) {
	var out []*domain.Alert
	for _, a := range r.alerts {
		if a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAlertRepo) ListUnread(_ context.Context, tenantID string, _ int) ([]*domain.Alert, error) {
	var out []*domain.Alert
	for _, a := range r.alerts {
		if a.TenantID == tenantID && !a.IsRead && !a.IsDismissed {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAlertRepo) UnreadCount(ctx context.Context, tenantID string) (int64, error) {
	unread, err := r.ListUnread(ctx, tenantID, 0)
	return int64(len(unread)), err
}

func (r *fakeAlertRepo) Update(_ context.Context, alert *domain.Alert) error {
	key := alert.Key()
	if _, ok := r.alerts[key]; !ok {
		return domain.ErrAlertNotFound
	}
	r.alerts[key] = alert
	return nil
}

type fakePrefsRepo struct {
	prefs map[string][]*domain.UserPreferences
}

func (r *fakePrefsRepo) ListRecipients(_ context.Context, tenantID string) ([]*domain.UserPreferences, error) {
	return r.prefs[tenantID], nil
}

type publishedEvent struct {
	alert      *domain.Alert
	recipients []string
}

type fakePublisher struct {
	published []publishedEvent
	err       error
}

func (p *fakePublisher) PublishAlertPending(_ context.Context, alert *domain.Alert, recipients []string) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, publishedEvent{alert: alert, recipients: recipients})
	return nil
}

// fakeCache is a map-backed cache.Cache.
type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
	gets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.data[key]
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *fakeCache) Close() error { return nil }
