package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/iho/ledgerlock/internal/domain"
)

// FakeAccountRepository is an in-memory implementation of AccountLookup,
// AccountStore, ActivityStore and LedgerRepository. Func fields override the
// default behaviour.
type FakeAccountRepository struct {
	mu         sync.RWMutex
	order      []domain.AccountID
	starting   map[domain.AccountID]domain.Money
	activities []domain.Activity

	ByIDFunc            func(ctx context.Context, id domain.AccountID) (*domain.Account, error)
	AllFunc             func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	StoreFunc           func(ctx context.Context, account *domain.Account) error
	StoreActivitiesFunc func(ctx context.Context, activities []domain.Activity) error
	TotalsFunc          func(ctx context.Context) (domain.LedgerTotals, error)
	SnapshotFunc        func(ctx context.Context, visit func(*domain.Account) error) (domain.LedgerTotals, error)
}

func NewFakeAccountRepository() *FakeAccountRepository {
	return &FakeAccountRepository{
		starting: make(map[domain.AccountID]domain.Money),
	}
}

// Seed registers an account with the given starting balance.
func (m *FakeAccountRepository) Seed(id domain.AccountID, startingBalance domain.Money) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.starting[id]; !ok {
		m.order = append(m.order, id)
	}
	m.starting[id] = startingBalance
}

// Activities returns every stored activity.
func (m *FakeAccountRepository) Activities() []domain.Activity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Activity(nil), m.activities...)
}

func (m *FakeAccountRepository) ByID(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
	if m.ByIDFunc != nil {
		return m.ByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.load(id)
}

func (m *FakeAccountRepository) All(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.AllFunc != nil {
		return m.AllFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if offset >= len(m.order) {
		return nil, nil
	}
	end := min(offset+limit, len(m.order))
	accounts := make([]*domain.Account, 0, end-offset)
	for _, id := range m.order[offset:end] {
		account, err := m.load(id)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (m *FakeAccountRepository) Store(ctx context.Context, account *domain.Account) error {
	if m.StoreFunc != nil {
		return m.StoreFunc(ctx, account)
	}
	m.Seed(account.ID(), account.Baseline())
	return nil
}

func (m *FakeAccountRepository) StoreActivities(ctx context.Context, activities []domain.Activity) error {
	if m.StoreActivitiesFunc != nil {
		return m.StoreActivitiesFunc(ctx, activities)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities = append(m.activities, activities...)
	return nil
}

func (m *FakeAccountRepository) Totals(ctx context.Context) (domain.LedgerTotals, error) {
	if m.TotalsFunc != nil {
		return m.TotalsFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totals(), nil
}

// Snapshot visits every account under one read lock.
func (m *FakeAccountRepository) Snapshot(ctx context.Context, visit func(*domain.Account) error) (domain.LedgerTotals, error) {
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc(ctx, visit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		account, err := m.load(id)
		if err != nil {
			return domain.LedgerTotals{}, err
		}
		if err := visit(account); err != nil {
			return domain.LedgerTotals{}, err
		}
	}
	return m.totals(), nil
}

func (m *FakeAccountRepository) totals() domain.LedgerTotals {
	totals := domain.LedgerTotals{
		StartingBalances: domain.ZeroMoney(),
		Deposits:         domain.ZeroMoney(),
		Withdrawals:      domain.ZeroMoney(),
		Accounts:         int64(len(m.order)),
	}
	for _, balance := range m.starting {
		totals.StartingBalances = totals.StartingBalances.Plus(balance)
	}
	for _, a := range m.activities {
		switch a.Kind() {
		case domain.ActivityKindDeposit:
			totals.Deposits = totals.Deposits.Plus(a.Amount())
		case domain.ActivityKindWithdrawal:
			totals.Withdrawals = totals.Withdrawals.Plus(a.Amount())
		}
	}
	return totals
}

func (m *FakeAccountRepository) load(id domain.AccountID) (*domain.Account, error) {
	starting, ok := m.starting[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	var history []domain.Activity
	for _, a := range m.activities {
		if a.Involves(id) {
			history = append(history, a)
		}
	}
	return domain.LoadAccount(id, starting, history), nil
}

// FakeBalanceCache is an in-memory BalanceCache.
type FakeBalanceCache struct {
	mu       sync.Mutex
	balances map[domain.AccountID]domain.Money

	Invalidated []domain.AccountID
	GetErr      error
}

func NewFakeBalanceCache() *FakeBalanceCache {
	return &FakeBalanceCache{balances: make(map[domain.AccountID]domain.Money)}
}

func (m *FakeBalanceCache) GetBalance(ctx context.Context, id domain.AccountID) (domain.Money, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return domain.Money{}, false, m.GetErr
	}
	balance, ok := m.balances[id]
	return balance, ok, nil
}

func (m *FakeBalanceCache) SetBalance(ctx context.Context, id domain.AccountID, balance domain.Money, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[id] = balance
	return nil
}

func (m *FakeBalanceCache) InvalidateBalance(ctx context.Context, ids ...domain.AccountID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.balances, id)
	}
	m.Invalidated = append(m.Invalidated, ids...)
	return nil
}

// FakeOperationObserver records observed outcomes per operation.
type FakeOperationObserver struct {
	mu       sync.Mutex
	outcomes map[string][]string
}

func NewFakeOperationObserver() *FakeOperationObserver {
	return &FakeOperationObserver{outcomes: make(map[string][]string)}
}

func (m *FakeOperationObserver) ObserveOperation(operation, outcome string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[operation] = append(m.outcomes[operation], outcome)
}

// Outcomes returns the outcomes observed for operation in call order.
func (m *FakeOperationObserver) Outcomes(operation string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.outcomes[operation]...)
}

// FakeIdempotencyStore is an in-memory IdempotencyStore.
type FakeIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewFakeIdempotencyStore() *FakeIdempotencyStore {
	return &FakeIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *FakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *FakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}
