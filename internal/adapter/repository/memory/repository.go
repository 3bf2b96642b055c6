// Package memory keeps accounts and activities in process memory. It backs
// STORAGE_DRIVER=memory and usecase-level tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/iho/ledgerlock/internal/domain"
)

type accountRecord struct {
	startBalance domain.Money
	history      []domain.Activity
}

// Repository implements usecase.AccountLookup, usecase.AccountStore,
// usecase.ActivityStore and usecase.LedgerRepository.
type Repository struct {
	mu       sync.RWMutex
	order    []domain.AccountID
	accounts map[domain.AccountID]*accountRecord
	totals   domain.LedgerTotals
}

// NewRepository creates an empty Repository.
func NewRepository() *Repository {
	return &Repository{
		accounts: make(map[domain.AccountID]*accountRecord),
		totals: domain.LedgerTotals{
			StartingBalances: domain.ZeroMoney(),
			Deposits:         domain.ZeroMoney(),
			Withdrawals:      domain.ZeroMoney(),
		},
	}
}

// ByID rebuilds the account from its starting balance and history.
func (r *Repository) ByID(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.accounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}

	return domain.LoadAccount(id, record.startBalance, slices.Clone(record.history)), nil
}

// All lists accounts in creation order.
func (r *Repository) All(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if offset >= len(r.order) {
		return []*domain.Account{}, nil
	}

	page := r.order[offset:min(offset+limit, len(r.order))]
	accounts := make([]*domain.Account, 0, len(page))
	for _, id := range page {
		record := r.accounts[id]
		accounts = append(accounts, domain.LoadAccount(id, record.startBalance, slices.Clone(record.history)))
	}

	return accounts, nil
}

// Store inserts a new account with the activities recorded since it was
// opened.
func (r *Repository) Store(ctx context.Context, account *domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.ID()]; exists {
		return fmt.Errorf("account %s already exists", account.ID())
	}

	unsaved := slices.Collect(account.UnsavedActivities())
	for _, a := range unsaved {
		if err := r.checkSides(a, account.ID()); err != nil {
			return err
		}
	}

	r.accounts[account.ID()] = &accountRecord{startBalance: account.Baseline()}
	r.order = append(r.order, account.ID())
	r.totals.StartingBalances = r.totals.StartingBalances.Plus(account.Baseline())
	r.totals.Accounts++

	for _, a := range unsaved {
		r.append(a)
	}

	return nil
}

// StoreActivities appends activities atomically: either every activity is
// stored or none is.
func (r *Repository) StoreActivities(ctx context.Context, activities []domain.Activity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range activities {
		if err := r.checkSides(a, domain.AccountID{}); err != nil {
			return err
		}
	}

	for _, a := range activities {
		r.append(a)
	}

	return nil
}

// Totals returns ledger-wide sums.
func (r *Repository) Totals(ctx context.Context) (domain.LedgerTotals, error) {
	if err := ctx.Err(); err != nil {
		return domain.LedgerTotals{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.totals, nil
}

// Snapshot visits every account and returns the totals under a single read
// lock, so no write can interleave.
func (r *Repository) Snapshot(ctx context.Context, visit func(*domain.Account) error) (domain.LedgerTotals, error) {
	if err := ctx.Err(); err != nil {
		return domain.LedgerTotals{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		record := r.accounts[id]
		if err := visit(domain.LoadAccount(id, record.startBalance, slices.Clone(record.history))); err != nil {
			return domain.LedgerTotals{}, err
		}
	}

	return r.totals, nil
}

// Ping always succeeds.
func (r *Repository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// checkSides rejects activities naming unknown accounts. pending is an
// account about to be inserted by the same call.
func (r *Repository) checkSides(a domain.Activity, pending domain.AccountID) error {
	for _, side := range []func() (domain.AccountID, bool){a.Source, a.Target} {
		id, ok := side()
		if !ok || id == pending {
			continue
		}
		if _, exists := r.accounts[id]; !exists {
			return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
		}
	}

	return nil
}

func (r *Repository) append(a domain.Activity) {
	if source, ok := a.Source(); ok {
		record := r.accounts[source]
		record.history = append(record.history, a)
	}
	if target, ok := a.Target(); ok {
		record := r.accounts[target]
		record.history = append(record.history, a)
	}

	switch a.Kind() {
	case domain.ActivityKindDeposit:
		r.totals.Deposits = r.totals.Deposits.Plus(a.Amount())
	case domain.ActivityKindWithdrawal:
		r.totals.Withdrawals = r.totals.Withdrawals.Plus(a.Amount())
	}
}
